package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grindx/fittrack/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound       = RepositoryError("not found")
	ErrDuplicateEmail = RepositoryError("email already registered")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserProfileUpdate carries the profile fields a user may change. Nil fields
// are left untouched; non-nil fields are written as-is, including empty
// strings, so "field omitted" and "field cleared" stay distinguishable.
type UserProfileUpdate struct {
	Name         *string
	FitnessGoals *string
}

// WorkoutFilter selects workouts for list queries.
type WorkoutFilter struct {
	Category *domain.Category
}

// WorkoutUpdate carries the mutable workout fields; merge semantics as above.
type WorkoutUpdate struct {
	Name          *string
	Category      *domain.Category
	Sets          *int
	Reps          *int
	Notes         *string
	ReferenceLink *string
}

// LogFilter selects logs for list queries. When UserID is set only that
// user's logs match; when SharedOnly is set only shared logs match.
type LogFilter struct {
	UserID     *primitive.ObjectID
	SharedOnly bool
}

// LogUpdate carries the mutable log fields; merge semantics as above.
type LogUpdate struct {
	CompletedAt *time.Time
	Duration    *int
	Notes       *string
	IsShared    *bool
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update UserProfileUpdate) error
}

// WorkoutRepository defines the interface for interacting with workout data.
// List returns one page of workouts (creation time descending) plus the total
// match count so callers can build the pagination envelope.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Workout, error)
	Update(ctx context.Context, id primitive.ObjectID, update WorkoutUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter WorkoutFilter, page, limit int) ([]domain.Workout, int64, error)
}

// LogRepository defines the interface for interacting with log data.
// List returns one page of logs (completion time descending) plus the total
// match count. Like and comment mutations are single-document array updates.
type LogRepository interface {
	Create(ctx context.Context, log *domain.Log) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Log, error)
	Update(ctx context.Context, id primitive.ObjectID, update LogUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter LogFilter, page, limit int) ([]domain.Log, int64, error)
	AddLike(ctx context.Context, logID, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, logID, userID primitive.ObjectID) error
	AddComment(ctx context.Context, logID primitive.ObjectID, comment domain.Comment) error
}

// AttachmentRepository defines the interface for attachment metadata.
type AttachmentRepository interface {
	Upsert(ctx context.Context, attachment *domain.Attachment) (primitive.ObjectID, error)
	GetByLogID(ctx context.Context, logID primitive.ObjectID) (*domain.Attachment, error)
	DeleteByLogID(ctx context.Context, logID primitive.ObjectID) error
}
