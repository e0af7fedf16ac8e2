package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field constraints for logs.
const (
	MinDurationMinutes = 1
	MaxDurationMinutes = 1440
	MaxCommentLen      = 200
)

// Comment is a single comment left on a shared log.
type Comment struct {
	UserID    primitive.ObjectID `bson:"user" json:"userId"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Log records one completed workout session. A log is visible to users other
// than its owner only while IsShared is true.
type Log struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	WorkoutID   primitive.ObjectID   `bson:"workoutId" json:"workoutId"`
	UserID      primitive.ObjectID   `bson:"userId" json:"userId"`
	CompletedAt time.Time            `bson:"completedAt" json:"completedAt"`
	Duration    int                  `bson:"duration" json:"duration"` // minutes
	Notes       string               `bson:"notes,omitempty" json:"notes,omitempty"`
	IsShared    bool                 `bson:"isShared" json:"isShared"`
	Likes       []primitive.ObjectID `bson:"likes,omitempty" json:"likes,omitempty"`
	Comments    []Comment            `bson:"comments,omitempty" json:"comments,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// VisibleTo reports whether the given user may read this log.
func (l *Log) VisibleTo(userID primitive.ObjectID) bool {
	return l.IsShared || l.UserID == userID
}
