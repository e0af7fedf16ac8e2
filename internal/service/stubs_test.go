package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grindx/fittrack/internal/domain"
	"grindx/fittrack/internal/repository"
)

// In-memory repository stubs shared by the service tests. They mirror the
// Mongo repositories' observable behavior: merge updates touch only non-nil
// fields, lists sort newest first, and lookups return copies so callers
// cannot mutate the store.

type stubUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return primitive.NilObjectID, repository.ErrDuplicateEmail
		}
	}
	stored := *user
	stored.ID = primitive.NewObjectID()
	stored.Email = strings.ToLower(stored.Email)
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.users[stored.ID] = stored
	return stored.ID, nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			found := user
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := user
	return &found, nil
}

func (r *stubUserRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	var users []domain.User
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, update repository.UserProfileUpdate) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.FitnessGoals != nil {
		user.FitnessGoals = *update.FitnessGoals
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return nil
}

type stubWorkoutRepo struct {
	workouts map[primitive.ObjectID]domain.Workout
}

func newStubWorkoutRepo() *stubWorkoutRepo {
	return &stubWorkoutRepo{workouts: make(map[primitive.ObjectID]domain.Workout)}
}

func (r *stubWorkoutRepo) Create(_ context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	stored := *workout
	stored.ID = primitive.NewObjectID()
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.workouts[stored.ID] = stored
	return stored.ID, nil
}

func (r *stubWorkoutRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	workout, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := workout
	return &found, nil
}

func (r *stubWorkoutRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Workout, error) {
	var workouts []domain.Workout
	for _, id := range ids {
		if workout, ok := r.workouts[id]; ok {
			workouts = append(workouts, workout)
		}
	}
	return workouts, nil
}

func (r *stubWorkoutRepo) Update(_ context.Context, id primitive.ObjectID, update repository.WorkoutUpdate) error {
	workout, ok := r.workouts[id]
	if !ok {
		return repository.ErrNotFound
	}
	if update.Name != nil {
		workout.Name = *update.Name
	}
	if update.Category != nil {
		workout.Category = *update.Category
	}
	if update.Sets != nil {
		workout.Sets = *update.Sets
	}
	if update.Reps != nil {
		workout.Reps = *update.Reps
	}
	if update.Notes != nil {
		workout.Notes = *update.Notes
	}
	if update.ReferenceLink != nil {
		workout.ReferenceLink = *update.ReferenceLink
	}
	workout.UpdatedAt = time.Now().UTC()
	r.workouts[id] = workout
	return nil
}

func (r *stubWorkoutRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

func (r *stubWorkoutRepo) List(_ context.Context, filter repository.WorkoutFilter, page, limit int) ([]domain.Workout, int64, error) {
	var matched []domain.Workout
	for _, workout := range r.workouts {
		if filter.Category != nil && workout.Category != *filter.Category {
			continue
		}
		matched = append(matched, workout)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return pageOf(matched, page, limit), int64(len(matched)), nil
}

type stubLogRepo struct {
	logs map[primitive.ObjectID]domain.Log
}

func newStubLogRepo() *stubLogRepo {
	return &stubLogRepo{logs: make(map[primitive.ObjectID]domain.Log)}
}

func (r *stubLogRepo) Create(_ context.Context, log *domain.Log) (primitive.ObjectID, error) {
	stored := *log
	stored.ID = primitive.NewObjectID()
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.logs[stored.ID] = stored
	return stored.ID, nil
}

func (r *stubLogRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Log, error) {
	log, ok := r.logs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := log
	return &found, nil
}

func (r *stubLogRepo) Update(_ context.Context, id primitive.ObjectID, update repository.LogUpdate) error {
	log, ok := r.logs[id]
	if !ok {
		return repository.ErrNotFound
	}
	if update.CompletedAt != nil {
		log.CompletedAt = *update.CompletedAt
	}
	if update.Duration != nil {
		log.Duration = *update.Duration
	}
	if update.Notes != nil {
		log.Notes = *update.Notes
	}
	if update.IsShared != nil {
		log.IsShared = *update.IsShared
	}
	log.UpdatedAt = time.Now().UTC()
	r.logs[id] = log
	return nil
}

func (r *stubLogRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.logs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.logs, id)
	return nil
}

func (r *stubLogRepo) List(_ context.Context, filter repository.LogFilter, page, limit int) ([]domain.Log, int64, error) {
	var matched []domain.Log
	for _, log := range r.logs {
		if filter.SharedOnly && !log.IsShared {
			continue
		}
		if filter.UserID != nil && log.UserID != *filter.UserID {
			continue
		}
		matched = append(matched, log)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CompletedAt.After(matched[j].CompletedAt)
	})
	return pageOf(matched, page, limit), int64(len(matched)), nil
}

func (r *stubLogRepo) AddLike(_ context.Context, logID, userID primitive.ObjectID) error {
	log, ok := r.logs[logID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, id := range log.Likes {
		if id == userID {
			return nil
		}
	}
	log.Likes = append(log.Likes, userID)
	r.logs[logID] = log
	return nil
}

func (r *stubLogRepo) RemoveLike(_ context.Context, logID, userID primitive.ObjectID) error {
	log, ok := r.logs[logID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := log.Likes[:0]
	for _, id := range log.Likes {
		if id != userID {
			kept = append(kept, id)
		}
	}
	log.Likes = kept
	r.logs[logID] = log
	return nil
}

func (r *stubLogRepo) AddComment(_ context.Context, logID primitive.ObjectID, comment domain.Comment) error {
	log, ok := r.logs[logID]
	if !ok {
		return repository.ErrNotFound
	}
	log.Comments = append(log.Comments, comment)
	r.logs[logID] = log
	return nil
}

type stubAttachmentRepo struct {
	attachments map[primitive.ObjectID]domain.Attachment
}

func newStubAttachmentRepo() *stubAttachmentRepo {
	return &stubAttachmentRepo{attachments: make(map[primitive.ObjectID]domain.Attachment)}
}

func (r *stubAttachmentRepo) Upsert(_ context.Context, attachment *domain.Attachment) (primitive.ObjectID, error) {
	stored := *attachment
	if existing, ok := r.attachments[attachment.LogID]; ok {
		stored.ID = existing.ID
	} else {
		stored.ID = primitive.NewObjectID()
		stored.CreatedAt = time.Now().UTC()
	}
	r.attachments[attachment.LogID] = stored
	*attachment = stored
	return stored.ID, nil
}

func (r *stubAttachmentRepo) GetByLogID(_ context.Context, logID primitive.ObjectID) (*domain.Attachment, error) {
	attachment, ok := r.attachments[logID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := attachment
	return &found, nil
}

func (r *stubAttachmentRepo) DeleteByLogID(_ context.Context, logID primitive.ObjectID) error {
	if _, ok := r.attachments[logID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.attachments, logID)
	return nil
}

// stubFileStorage records object keys and hands back deterministic URLs.
type stubFileStorage struct {
	uploads []string
	deleted []string
}

func (s *stubFileStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	s.uploads = append(s.uploads, objectKey)
	return "https://storage.test/upload/" + objectKey, nil
}

func (s *stubFileStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (s *stubFileStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	return nil
}

func pageOf[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
