package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grindx/fittrack/internal/domain"
	"grindx/fittrack/internal/repository"
	"grindx/fittrack/internal/storage"
)

// --- Error Definitions ---
var (
	ErrLogNotFound        = errors.New("log not found")
	ErrLogAccessDenied    = errors.New("not authorized to access this log")
	ErrAttachmentNotFound = errors.New("log has no attachment")
)

// LogInput carries the fields required to create a log.
type LogInput struct {
	WorkoutID   primitive.ObjectID
	CompletedAt time.Time
	Duration    int
	Notes       string
	IsShared    bool
}

// LogDetail pairs a log with its denormalized workout summary. Workout may
// be nil when the referenced workout has since been deleted.
type LogDetail struct {
	Log     domain.Log
	Workout *domain.Workout
	Owner   *domain.User
}

// AttachmentTicket carries a presigned URL for a direct-to-storage upload
// or download, plus the attachment metadata it belongs to.
type AttachmentTicket struct {
	Attachment domain.Attachment
	URL        string
	ExpiresIn  time.Duration
}

// LogService implements workout session logs: owned by their logger,
// visible to others only while shared. The shared feed, likes, comments and
// attachments all hang off this service.
type LogService interface {
	Create(ctx context.Context, ownerID primitive.ObjectID, input LogInput) (*LogDetail, error)
	GetByID(ctx context.Context, actorID, logID primitive.ObjectID) (*LogDetail, error)
	List(ctx context.Context, actorID primitive.ObjectID, sharedFeed bool, page, limit int) ([]LogDetail, repository.Pagination, error)
	Update(ctx context.Context, actorID, logID primitive.ObjectID, update repository.LogUpdate) (*LogDetail, error)
	Delete(ctx context.Context, actorID, logID primitive.ObjectID) error
	ToggleLike(ctx context.Context, actorID, logID primitive.ObjectID) (*LogDetail, error)
	AddComment(ctx context.Context, actorID, logID primitive.ObjectID, text string) (*LogDetail, error)
	RequestAttachmentUpload(ctx context.Context, actorID, logID primitive.ObjectID, fileName, contentType string) (*AttachmentTicket, error)
	GetAttachmentDownload(ctx context.Context, actorID, logID primitive.ObjectID) (*AttachmentTicket, error)
}

// logService implements the LogService interface.
type logService struct {
	logRepo        repository.LogRepository
	workoutRepo    repository.WorkoutRepository
	userRepo       repository.UserRepository
	attachmentRepo repository.AttachmentRepository
	fileStorage    storage.FileStorage
}

// NewLogService creates a new instance of logService.
func NewLogService(
	logRepo repository.LogRepository,
	workoutRepo repository.WorkoutRepository,
	userRepo repository.UserRepository,
	attachmentRepo repository.AttachmentRepository,
	fileStorage storage.FileStorage,
) LogService {
	return &logService{
		logRepo:        logRepo,
		workoutRepo:    workoutRepo,
		userRepo:       userRepo,
		attachmentRepo: attachmentRepo,
		fileStorage:    fileStorage,
	}
}

// Create validates and persists a new log owned by ownerID. The referenced
// workout must exist at creation time.
func (s *logService) Create(ctx context.Context, ownerID primitive.ObjectID, input LogInput) (*LogDetail, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID is required to create a log")
	}
	if err := validateLogInput(input); err != nil {
		return nil, err
	}

	workout, err := s.workoutRepo.GetByID(ctx, input.WorkoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validationError("workout does not exist")
		}
		return nil, err
	}

	log := &domain.Log{
		WorkoutID:   input.WorkoutID,
		UserID:      ownerID,
		CompletedAt: input.CompletedAt.UTC(),
		Duration:    input.Duration,
		Notes:       input.Notes,
		IsShared:    input.IsShared,
	}

	logID, err := s.logRepo.Create(ctx, log)
	if err != nil {
		return nil, err
	}

	created, err := s.logRepo.GetByID(ctx, logID)
	if err != nil {
		return nil, err
	}

	return &LogDetail{Log: *created, Workout: workout, Owner: s.owner(ctx, ownerID)}, nil
}

// GetByID retrieves a single log. The acting user must own the log or the
// log must be shared; otherwise access is denied even though it exists.
func (s *logService) GetByID(ctx context.Context, actorID, logID primitive.ObjectID) (*LogDetail, error) {
	log, err := s.fetchVisible(ctx, actorID, logID)
	if err != nil {
		return nil, err
	}
	return s.withWorkout(ctx, log), nil
}

// List returns one page of logs, most recently completed first. With
// sharedFeed set it returns every user's shared logs (the community feed);
// otherwise it returns the acting user's own logs, shared or not.
func (s *logService) List(ctx context.Context, actorID primitive.ObjectID, sharedFeed bool, page, limit int) ([]LogDetail, repository.Pagination, error) {
	page, limit = repository.NormalizePageLimit(page, limit)

	filter := repository.LogFilter{}
	if sharedFeed {
		filter.SharedOnly = true
	} else {
		filter.UserID = &actorID
	}

	logs, total, err := s.logRepo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, repository.Pagination{}, err
	}

	details, err := s.attachSummaries(ctx, logs)
	if err != nil {
		return nil, repository.Pagination{}, err
	}

	return details, repository.NewPagination(page, limit, total), nil
}

// Update applies a merge update to a log after checking ownership. An
// explicit isShared=false or empty notes applies; absent fields do not.
func (s *logService) Update(ctx context.Context, actorID, logID primitive.ObjectID, update repository.LogUpdate) (*LogDetail, error) {
	log, err := s.fetchOwned(ctx, actorID, logID)
	if err != nil {
		return nil, err
	}

	if err := validateLogUpdate(update); err != nil {
		return nil, err
	}

	if err := s.logRepo.Update(ctx, log.ID, update); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}

	updated, err := s.logRepo.GetByID(ctx, logID)
	if err != nil {
		return nil, err
	}
	return s.withWorkout(ctx, updated), nil
}

// Delete removes a log after checking ownership, along with any attachment
// object and its metadata.
func (s *logService) Delete(ctx context.Context, actorID, logID primitive.ObjectID) error {
	log, err := s.fetchOwned(ctx, actorID, logID)
	if err != nil {
		return err
	}

	if attachment, err := s.attachmentRepo.GetByLogID(ctx, log.ID); err == nil {
		// Best effort: a leaked object is preferable to a blocked delete.
		_ = s.fileStorage.DeleteObject(ctx, attachment.ObjectKey)
		_ = s.attachmentRepo.DeleteByLogID(ctx, log.ID)
	}

	if err := s.logRepo.Delete(ctx, log.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLogNotFound
		}
		return err
	}
	return nil
}

// ToggleLike adds the actor's like to a visible log, or withdraws it when
// already present.
func (s *logService) ToggleLike(ctx context.Context, actorID, logID primitive.ObjectID) (*LogDetail, error) {
	log, err := s.fetchVisible(ctx, actorID, logID)
	if err != nil {
		return nil, err
	}

	liked := false
	for _, id := range log.Likes {
		if id == actorID {
			liked = true
			break
		}
	}

	if liked {
		err = s.logRepo.RemoveLike(ctx, log.ID, actorID)
	} else {
		err = s.logRepo.AddLike(ctx, log.ID, actorID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}

	updated, err := s.logRepo.GetByID(ctx, logID)
	if err != nil {
		return nil, err
	}
	return s.withWorkout(ctx, updated), nil
}

// AddComment appends a comment by the actor to a visible log.
func (s *logService) AddComment(ctx context.Context, actorID, logID primitive.ObjectID, text string) (*LogDetail, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationError("comment text is required")
	}
	if len(text) > domain.MaxCommentLen {
		return nil, validationError("comment cannot be more than %d characters", domain.MaxCommentLen)
	}

	log, err := s.fetchVisible(ctx, actorID, logID)
	if err != nil {
		return nil, err
	}

	comment := domain.Comment{
		UserID:    actorID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.logRepo.AddComment(ctx, log.ID, comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}

	updated, err := s.logRepo.GetByID(ctx, logID)
	if err != nil {
		return nil, err
	}
	return s.withWorkout(ctx, updated), nil
}

// RequestAttachmentUpload reserves an object key for a progress photo or
// video on an owned log and returns a presigned PUT URL the client uploads
// to directly. Re-requesting replaces the previous attachment metadata.
func (s *logService) RequestAttachmentUpload(ctx context.Context, actorID, logID primitive.ObjectID, fileName, contentType string) (*AttachmentTicket, error) {
	if fileName == "" || contentType == "" {
		return nil, validationError("file name and content type are required")
	}

	log, err := s.fetchOwned(ctx, actorID, logID)
	if err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("attachments/%s/%s%s", log.ID.Hex(), uuid.NewString(), path.Ext(fileName))

	attachment := &domain.Attachment{
		LogID:       log.ID,
		UserID:      actorID,
		ObjectKey:   objectKey,
		FileName:    fileName,
		ContentType: contentType,
	}
	if _, err := s.attachmentRepo.Upsert(ctx, attachment); err != nil {
		return nil, err
	}

	url, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}

	return &AttachmentTicket{
		Attachment: *attachment,
		URL:        url,
		ExpiresIn:  storage.DefaultPresignedURLExpiry,
	}, nil
}

// GetAttachmentDownload returns a presigned GET URL for the attachment on a
// visible log.
func (s *logService) GetAttachmentDownload(ctx context.Context, actorID, logID primitive.ObjectID) (*AttachmentTicket, error) {
	log, err := s.fetchVisible(ctx, actorID, logID)
	if err != nil {
		return nil, err
	}

	attachment, err := s.attachmentRepo.GetByLogID(ctx, log.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, attachment.ObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}

	return &AttachmentTicket{
		Attachment: *attachment,
		URL:        url,
		ExpiresIn:  storage.DefaultPresignedURLExpiry,
	}, nil
}

// fetchOwned loads a log and asserts the actor owns it. Existence is
// checked before ownership: a missing log is NotFound, a foreign one is
// AccessDenied.
func (s *logService) fetchOwned(ctx context.Context, actorID, logID primitive.ObjectID) (*domain.Log, error) {
	log, err := s.logRepo.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}
	if log.UserID != actorID {
		return nil, ErrLogAccessDenied
	}
	return log, nil
}

// fetchVisible loads a log and asserts the actor may read it: owner, or
// anyone once the log is shared.
func (s *logService) fetchVisible(ctx context.Context, actorID, logID primitive.ObjectID) (*domain.Log, error) {
	log, err := s.logRepo.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}
	if !log.VisibleTo(actorID) {
		return nil, ErrLogAccessDenied
	}
	return log, nil
}

// withWorkout attaches the workout and owner summaries to a single log.
func (s *logService) withWorkout(ctx context.Context, log *domain.Log) *LogDetail {
	detail := &LogDetail{Log: *log, Owner: s.owner(ctx, log.UserID)}
	workout, err := s.workoutRepo.GetByID(ctx, log.WorkoutID)
	if err == nil {
		detail.Workout = workout
	}
	return detail
}

func (s *logService) owner(ctx context.Context, userID primitive.ObjectID) *domain.User {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil
	}
	user.PasswordHash = ""
	return user
}

// attachSummaries batch-resolves workout and owner references for a page of
// logs using single $in lookups.
func (s *logService) attachSummaries(ctx context.Context, logs []domain.Log) ([]LogDetail, error) {
	workoutSeen := make(map[primitive.ObjectID]bool, len(logs))
	workoutIDs := make([]primitive.ObjectID, 0, len(logs))
	userSeen := make(map[primitive.ObjectID]bool, len(logs))
	userIDs := make([]primitive.ObjectID, 0, len(logs))
	for _, l := range logs {
		if !workoutSeen[l.WorkoutID] {
			workoutSeen[l.WorkoutID] = true
			workoutIDs = append(workoutIDs, l.WorkoutID)
		}
		if !userSeen[l.UserID] {
			userSeen[l.UserID] = true
			userIDs = append(userIDs, l.UserID)
		}
	}

	workouts, err := s.workoutRepo.GetByIDs(ctx, workoutIDs)
	if err != nil {
		return nil, err
	}
	workoutsByID := make(map[primitive.ObjectID]*domain.Workout, len(workouts))
	for i := range workouts {
		workoutsByID[workouts[i].ID] = &workouts[i]
	}

	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	usersByID := make(map[primitive.ObjectID]*domain.User, len(users))
	for i := range users {
		users[i].PasswordHash = ""
		usersByID[users[i].ID] = &users[i]
	}

	details := make([]LogDetail, len(logs))
	for i, l := range logs {
		details[i] = LogDetail{
			Log:     l,
			Workout: workoutsByID[l.WorkoutID],
			Owner:   usersByID[l.UserID],
		}
	}
	return details, nil
}

// validateLogInput checks the full field set for creation.
func validateLogInput(input LogInput) error {
	if input.WorkoutID == primitive.NilObjectID {
		return validationError("workout ID is required")
	}
	if input.CompletedAt.IsZero() {
		return validationError("completion date is required")
	}
	if input.Duration < domain.MinDurationMinutes || input.Duration > domain.MaxDurationMinutes {
		return validationError("duration must be between %d and %d minutes", domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}
	if len(input.Notes) > domain.MaxNotesLen {
		return validationError("notes cannot be more than %d characters", domain.MaxNotesLen)
	}
	return nil
}

// validateLogUpdate checks only the fields present in a merge update.
func validateLogUpdate(update repository.LogUpdate) error {
	if update.CompletedAt != nil && update.CompletedAt.IsZero() {
		return validationError("completion date cannot be empty")
	}
	if update.Duration != nil && (*update.Duration < domain.MinDurationMinutes || *update.Duration > domain.MaxDurationMinutes) {
		return validationError("duration must be between %d and %d minutes", domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}
	if update.Notes != nil && len(*update.Notes) > domain.MaxNotesLen {
		return validationError("notes cannot be more than %d characters", domain.MaxNotesLen)
	}
	return nil
}
