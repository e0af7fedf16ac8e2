package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grindx/fittrack/internal/domain"
	"grindx/fittrack/internal/repository"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound     = errors.New("workout not found")
	ErrWorkoutAccessDenied = errors.New("not authorized to modify this workout")
	ErrValidationFailed    = errors.New("validation failed")
)

// validationError wraps ErrValidationFailed with the violated constraint so
// handlers can report a field-level message while still matching on the
// sentinel.
func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}

var referenceLinkPattern = regexp.MustCompile(`^https?://.+`)

// WorkoutInput carries the fields required to create a workout.
type WorkoutInput struct {
	Name          string
	Category      domain.Category
	Sets          int
	Reps          int
	Notes         string
	ReferenceLink string
}

// WorkoutDetail pairs a workout with its denormalized owner record. Owner
// may be nil when the creating account no longer exists; the workout stays
// in the public catalog regardless.
type WorkoutDetail struct {
	Workout domain.Workout
	Owner   *domain.User
}

// WorkoutService implements the public workout catalog: anyone may read,
// only the creator may mutate.
type WorkoutService interface {
	Create(ctx context.Context, ownerID primitive.ObjectID, input WorkoutInput) (*WorkoutDetail, error)
	GetByID(ctx context.Context, workoutID primitive.ObjectID) (*WorkoutDetail, error)
	List(ctx context.Context, category *domain.Category, page, limit int) ([]WorkoutDetail, repository.Pagination, error)
	Update(ctx context.Context, actorID, workoutID primitive.ObjectID, update repository.WorkoutUpdate) (*WorkoutDetail, error)
	Delete(ctx context.Context, actorID, workoutID primitive.ObjectID) error
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	workoutRepo repository.WorkoutRepository
	userRepo    repository.UserRepository
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(workoutRepo repository.WorkoutRepository, userRepo repository.UserRepository) WorkoutService {
	return &workoutService{
		workoutRepo: workoutRepo,
		userRepo:    userRepo,
	}
}

// Create validates and persists a new workout owned by ownerID.
func (s *workoutService) Create(ctx context.Context, ownerID primitive.ObjectID, input WorkoutInput) (*WorkoutDetail, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID is required to create a workout")
	}
	if err := validateWorkoutInput(input); err != nil {
		return nil, err
	}

	workout := &domain.Workout{
		Name:          input.Name,
		Category:      input.Category,
		Sets:          input.Sets,
		Reps:          input.Reps,
		Notes:         input.Notes,
		ReferenceLink: input.ReferenceLink,
		CreatedBy:     ownerID,
	}

	workoutID, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}

	// Fetch again so timestamps set by the repository come back populated.
	created, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		return nil, err
	}

	return s.withOwner(ctx, created), nil
}

// GetByID retrieves a single workout. Workouts are public catalog entries;
// no identity is required to read one.
func (s *workoutService) GetByID(ctx context.Context, workoutID primitive.ObjectID) (*WorkoutDetail, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return s.withOwner(ctx, workout), nil
}

// List returns one page of the catalog, optionally filtered by category,
// with owner summaries attached in a single batched lookup. The filter is a
// plain equality match: a category no workout carries yields an empty page,
// not an error. The closed-set check applies only where workouts are written.
func (s *workoutService) List(ctx context.Context, category *domain.Category, page, limit int) ([]WorkoutDetail, repository.Pagination, error) {
	page, limit = repository.NormalizePageLimit(page, limit)

	filter := repository.WorkoutFilter{}
	if category != nil && *category != "" && *category != "All" {
		filter.Category = category
	}

	workouts, total, err := s.workoutRepo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, repository.Pagination{}, err
	}

	owners, err := s.ownersByID(ctx, workouts)
	if err != nil {
		return nil, repository.Pagination{}, err
	}

	details := make([]WorkoutDetail, len(workouts))
	for i, w := range workouts {
		details[i] = WorkoutDetail{Workout: w, Owner: owners[w.CreatedBy]}
	}

	return details, repository.NewPagination(page, limit, total), nil
}

// Update applies a merge update to a workout after checking ownership.
// Fields absent from the update are left untouched; fields explicitly sent,
// including empty notes or reference link, are written as given.
func (s *workoutService) Update(ctx context.Context, actorID, workoutID primitive.ObjectID, update repository.WorkoutUpdate) (*WorkoutDetail, error) {
	existing, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	if existing.CreatedBy != actorID {
		return nil, ErrWorkoutAccessDenied
	}

	if err := validateWorkoutUpdate(update); err != nil {
		return nil, err
	}

	if err := s.workoutRepo.Update(ctx, workoutID, update); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	updated, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	return s.withOwner(ctx, updated), nil
}

// Delete removes a workout after checking ownership. Logs referencing the
// workout are kept; they render without a workout summary afterwards.
func (s *workoutService) Delete(ctx context.Context, actorID, workoutID primitive.ObjectID) error {
	existing, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}

	if existing.CreatedBy != actorID {
		return ErrWorkoutAccessDenied
	}

	if err := s.workoutRepo.Delete(ctx, workoutID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	return nil
}

// withOwner attaches the owner record to a single workout. A missing owner
// is not an error.
func (s *workoutService) withOwner(ctx context.Context, workout *domain.Workout) *WorkoutDetail {
	detail := &WorkoutDetail{Workout: *workout}
	owner, err := s.userRepo.GetByID(ctx, workout.CreatedBy)
	if err == nil {
		owner.PasswordHash = ""
		detail.Owner = owner
	}
	return detail
}

// ownersByID batch-fetches the owners of a page of workouts.
func (s *workoutService) ownersByID(ctx context.Context, workouts []domain.Workout) (map[primitive.ObjectID]*domain.User, error) {
	seen := make(map[primitive.ObjectID]bool, len(workouts))
	ids := make([]primitive.ObjectID, 0, len(workouts))
	for _, w := range workouts {
		if !seen[w.CreatedBy] {
			seen[w.CreatedBy] = true
			ids = append(ids, w.CreatedBy)
		}
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	owners := make(map[primitive.ObjectID]*domain.User, len(users))
	for i := range users {
		users[i].PasswordHash = ""
		owners[users[i].ID] = &users[i]
	}
	return owners, nil
}

// validateWorkoutInput checks the full field set for creation.
func validateWorkoutInput(input WorkoutInput) error {
	if input.Name == "" {
		return validationError("name is required")
	}
	if len(input.Name) > domain.MaxWorkoutNameLen {
		return validationError("name cannot be more than %d characters", domain.MaxWorkoutNameLen)
	}
	if !input.Category.IsValid() {
		return validationError("category must be one of the known categories")
	}
	if input.Sets < domain.MinSets || input.Sets > domain.MaxSets {
		return validationError("sets must be between %d and %d", domain.MinSets, domain.MaxSets)
	}
	if input.Reps < domain.MinReps || input.Reps > domain.MaxReps {
		return validationError("reps must be between %d and %d", domain.MinReps, domain.MaxReps)
	}
	if len(input.Notes) > domain.MaxNotesLen {
		return validationError("notes cannot be more than %d characters", domain.MaxNotesLen)
	}
	if input.ReferenceLink != "" && !referenceLinkPattern.MatchString(input.ReferenceLink) {
		return validationError("reference link must be a valid http(s) URL")
	}
	return nil
}

// validateWorkoutUpdate checks only the fields present in a merge update.
func validateWorkoutUpdate(update repository.WorkoutUpdate) error {
	if update.Name != nil {
		if *update.Name == "" {
			return validationError("name cannot be empty")
		}
		if len(*update.Name) > domain.MaxWorkoutNameLen {
			return validationError("name cannot be more than %d characters", domain.MaxWorkoutNameLen)
		}
	}
	if update.Category != nil && !update.Category.IsValid() {
		return validationError("category must be one of the known categories")
	}
	if update.Sets != nil && (*update.Sets < domain.MinSets || *update.Sets > domain.MaxSets) {
		return validationError("sets must be between %d and %d", domain.MinSets, domain.MaxSets)
	}
	if update.Reps != nil && (*update.Reps < domain.MinReps || *update.Reps > domain.MaxReps) {
		return validationError("reps must be between %d and %d", domain.MinReps, domain.MaxReps)
	}
	if update.Notes != nil && len(*update.Notes) > domain.MaxNotesLen {
		return validationError("notes cannot be more than %d characters", domain.MaxNotesLen)
	}
	if update.ReferenceLink != nil && *update.ReferenceLink != "" && !referenceLinkPattern.MatchString(*update.ReferenceLink) {
		return validationError("reference link must be a valid http(s) URL")
	}
	return nil
}
