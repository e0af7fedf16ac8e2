package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grindx/fittrack/internal/domain"
	"grindx/fittrack/internal/repository"
)

type logServiceFixture struct {
	svc         LogService
	workoutRepo *stubWorkoutRepo
	userRepo    *stubUserRepo
	logRepo     *stubLogRepo
	storage     *stubFileStorage

	ownerID   primitive.ObjectID
	otherID   primitive.ObjectID
	workoutID primitive.ObjectID
}

func newLogServiceFixture(t *testing.T) *logServiceFixture {
	t.Helper()
	f := &logServiceFixture{
		workoutRepo: newStubWorkoutRepo(),
		userRepo:    newStubUserRepo(),
		logRepo:     newStubLogRepo(),
		storage:     &stubFileStorage{},
	}
	f.svc = NewLogService(f.logRepo, f.workoutRepo, f.userRepo, newStubAttachmentRepo(), f.storage)

	f.ownerID = seedUser(t, f.userRepo, "Alice", "alice@example.com")
	f.otherID = seedUser(t, f.userRepo, "Bob", "bob@example.com")

	workoutID, err := f.workoutRepo.Create(context.Background(), &domain.Workout{
		Name:      "Bench Press",
		Category:  domain.CategoryChest,
		Sets:      3,
		Reps:      10,
		CreatedBy: f.ownerID,
	})
	require.NoError(t, err)
	f.workoutID = workoutID
	return f
}

func (f *logServiceFixture) validInput() LogInput {
	return LogInput{
		WorkoutID:   f.workoutID,
		CompletedAt: time.Now().UTC(),
		Duration:    45,
	}
}

func (f *logServiceFixture) createLog(t *testing.T, ownerID primitive.ObjectID, shared bool) *LogDetail {
	t.Helper()
	input := f.validInput()
	input.IsShared = shared
	detail, err := f.svc.Create(context.Background(), ownerID, input)
	require.NoError(t, err)
	return detail
}

func TestLogCreateRequiresExistingWorkout(t *testing.T) {
	f := newLogServiceFixture(t)

	input := f.validInput()
	input.WorkoutID = primitive.NewObjectID()

	_, err := f.svc.Create(context.Background(), f.ownerID, input)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestLogCreateValidation(t *testing.T) {
	f := newLogServiceFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*LogInput)
	}{
		{"zero duration", func(in *LogInput) { in.Duration = 0 }},
		{"duration too long", func(in *LogInput) { in.Duration = domain.MaxDurationMinutes + 1 }},
		{"missing completion date", func(in *LogInput) { in.CompletedAt = time.Time{} }},
		{"notes too long", func(in *LogInput) { in.Notes = strings.Repeat("x", domain.MaxNotesLen+1) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := f.validInput()
			tc.mutate(&input)
			_, err := f.svc.Create(ctx, f.ownerID, input)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}
}

func TestLogVisibility(t *testing.T) {
	f := newLogServiceFixture(t)
	ctx := context.Background()

	private := f.createLog(t, f.ownerID, false)
	shared := f.createLog(t, f.ownerID, true)

	// The owner sees both.
	_, err := f.svc.GetByID(ctx, f.ownerID, private.Log.ID)
	require.NoError(t, err)
	_, err = f.svc.GetByID(ctx, f.ownerID, shared.Log.ID)
	require.NoError(t, err)

	// Another user sees the shared one only; the private one exists but is
	// off limits.
	_, err = f.svc.GetByID(ctx, f.otherID, shared.Log.ID)
	require.NoError(t, err)
	_, err = f.svc.GetByID(ctx, f.otherID, private.Log.ID)
	assert.ErrorIs(t, err, ErrLogAccessDenied)

	_, err = f.svc.GetByID(ctx, f.otherID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrLogNotFound)
}

func TestLogListOwnVersusSharedFeed(t *testing.T) {
	f := newLogServiceFixture(t)
	ctx := context.Background()

	f.createLog(t, f.ownerID, false)
	f.createLog(t, f.ownerID, true)

	// Bob's own list is empty, even though Alice has a shared log.
	details, pagination, err := f.svc.List(ctx, f.otherID, false, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, details)
	assert.EqualValues(t, 0, pagination.Total)

	// The shared feed shows everyone's shared logs, never private ones.
	details, pagination, err = f.svc.List(ctx, f.otherID, true, 1, 10)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.True(t, details[0].Log.IsShared)
	assert.EqualValues(t, 1, pagination.Total)

	// Alice's own list holds both of hers.
	details, _, err = f.svc.List(ctx, f.ownerID, false, 1, 10)
	require.NoError(t, err)
	assert.Len(t, details, 2)
}

func TestLogListAttachesSummaries(t *testing.T) {
	f := newLogServiceFixture(t)
	ctx := context.Background()

	f.createLog(t, f.ownerID, true)

	details, _, err := f.svc.List(ctx, f.otherID, true, 1, 10)
	require.NoError(t, err)
	require.Len(t, details, 1)

	require.NotNil(t, details[0].Workout)
	assert.Equal(t, "Bench Press", details[0].Workout.Name)
	require.NotNil(t, details[0].Owner)
	assert.Equal(t, "Alice", details[0].Owner.Name)
	assert.Empty(t, details[0].Owner.PasswordHash)
}

func TestLogUpdateMergeSemantics(t *testing.T) {
	f := newLogServiceFixture(t)
	ctx := context.Background()

	created := f.createLog(t, f.ownerID, true)

	// An explicit isShared=false pulls the log from the feed; the omitted
	// duration stays as it was.
	unshared := false
	updated, err := f.svc.Update(ctx, f.ownerID, created.Log.ID, repository.LogUpdate{IsShared: &unshared})
	require.NoError(t, err)
	assert.False(t, updated.Log.IsShared)
	assert.Equal(t, 45, updated.Log.Duration)

	details, _, err := f.svc.List(ctx, f.otherID, true, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, details, "unshared log must leave the feed")
}

func TestLogUpdateDeniedForNonOwner(t *testing.T) {
	f := newLogServiceFixture(t)
	ctx := context.Background()

	// Even a shared log is only writable by its owner.
	created := f.createLog(t, f.ownerID, true)

	duration := 30
	_, err := f.svc.Update(ctx, f.otherID, created.Log.ID, repository.LogUpdate{Duration: &duration})
	assert.ErrorIs(t, err, ErrLogAccessDenied)
}

func TestLogDeleteRemovesAttachment(t *testing.T) {
	f := newLogServiceFixture(t)
	ctx := context.Background()

	created := f.createLog(t, f.ownerID, false)

	ticket, err := f.svc.RequestAttachmentUpload(ctx, f.ownerID, created.Log.ID, "progress.jpg", "image/jpeg")
	require.NoError(t, err)

	err = f.svc.Delete(ctx, f.ownerID, created.Log.ID)
	require.NoError(t, err)

	assert.Contains(t, f.storage.deleted, ticket.Attachment.ObjectKey)
	_, err = f.svc.GetByID(ctx, f.ownerID, created.Log.ID)
	assert.ErrorIs(t, err, ErrLogNotFound)
}

func TestLogToggleLike(t *testing.T) {
	f := newLogServiceFixture(t)
	ctx := context.Background()

	created := f.createLog(t, f.ownerID, true)

	liked, err := f.svc.ToggleLike(ctx, f.otherID, created.Log.ID)
	require.NoError(t, err)
	require.Len(t, liked.Log.Likes, 1)
	assert.Equal(t, f.otherID, liked.Log.Likes[0])

	unliked, err := f.svc.ToggleLike(ctx, f.otherID, created.Log.ID)
	require.NoError(t, err)
	assert.Empty(t, unliked.Log.Likes)
}

func TestLogToggleLikeDeniedOnPrivateLog(t *testing.T) {
	f := newLogServiceFixture(t)

	created := f.createLog(t, f.ownerID, false)

	_, err := f.svc.ToggleLike(context.Background(), f.otherID, created.Log.ID)
	assert.ErrorIs(t, err, ErrLogAccessDenied)
}

func TestLogAddComment(t *testing.T) {
	f := newLogServiceFixture(t)
	ctx := context.Background()

	created := f.createLog(t, f.ownerID, true)

	detail, err := f.svc.AddComment(ctx, f.otherID, created.Log.ID, "  nice work!  ")
	require.NoError(t, err)
	require.Len(t, detail.Log.Comments, 1)
	assert.Equal(t, "nice work!", detail.Log.Comments[0].Text, "comment text is trimmed")
	assert.Equal(t, f.otherID, detail.Log.Comments[0].UserID)
}

func TestLogAddCommentValidation(t *testing.T) {
	f := newLogServiceFixture(t)
	ctx := context.Background()

	created := f.createLog(t, f.ownerID, true)

	_, err := f.svc.AddComment(ctx, f.otherID, created.Log.ID, "   ")
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.svc.AddComment(ctx, f.otherID, created.Log.ID, strings.Repeat("x", domain.MaxCommentLen+1))
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestAttachmentUploadOwnerOnly(t *testing.T) {
	f := newLogServiceFixture(t)
	ctx := context.Background()

	created := f.createLog(t, f.ownerID, true)

	_, err := f.svc.RequestAttachmentUpload(ctx, f.otherID, created.Log.ID, "progress.jpg", "image/jpeg")
	assert.ErrorIs(t, err, ErrLogAccessDenied)

	ticket, err := f.svc.RequestAttachmentUpload(ctx, f.ownerID, created.Log.ID, "progress.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ticket.Attachment.ObjectKey, "attachments/"+created.Log.ID.Hex()+"/"))
	assert.True(t, strings.HasSuffix(ticket.Attachment.ObjectKey, ".jpg"))
	assert.NotEmpty(t, ticket.URL)
}

func TestAttachmentDownloadFollowsVisibility(t *testing.T) {
	f := newLogServiceFixture(t)
	ctx := context.Background()

	created := f.createLog(t, f.ownerID, false)

	_, err := f.svc.GetAttachmentDownload(ctx, f.ownerID, created.Log.ID)
	assert.ErrorIs(t, err, ErrAttachmentNotFound, "no attachment uploaded yet")

	_, err = f.svc.RequestAttachmentUpload(ctx, f.ownerID, created.Log.ID, "progress.jpg", "image/jpeg")
	require.NoError(t, err)

	ticket, err := f.svc.GetAttachmentDownload(ctx, f.ownerID, created.Log.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.URL)

	// Private log: nobody but the owner may fetch the attachment either.
	_, err = f.svc.GetAttachmentDownload(ctx, f.otherID, created.Log.ID)
	assert.ErrorIs(t, err, ErrLogAccessDenied)
}
