package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is the closed set of workout categories.
type Category string

const (
	CategoryLegs      Category = "Legs"
	CategoryArms      Category = "Arms"
	CategoryCardio    Category = "Cardio"
	CategoryCore      Category = "Core"
	CategoryBack      Category = "Back"
	CategoryChest     Category = "Chest"
	CategoryShoulders Category = "Shoulders"
	CategoryFullBody  Category = "Full Body"
	CategoryOther     Category = "Other"
)

// Categories lists every valid workout category.
var Categories = []Category{
	CategoryLegs, CategoryArms, CategoryCardio, CategoryCore, CategoryBack,
	CategoryChest, CategoryShoulders, CategoryFullBody, CategoryOther,
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Field constraints for workouts.
const (
	MaxWorkoutNameLen = 100
	MaxNotesLen       = 500
	MinSets           = 1
	MaxSets           = 50
	MinReps           = 1
	MaxReps           = 1000
)

// Workout is a reusable exercise definition. Workouts are public catalog
// entries: readable by anyone, mutable only by their creator.
type Workout struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Category      Category           `bson:"category" json:"category"`
	Sets          int                `bson:"sets" json:"sets"`
	Reps          int                `bson:"reps" json:"reps"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	ReferenceLink string             `bson:"referenceLink,omitempty" json:"referenceLink,omitempty"`
	CreatedBy     primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
