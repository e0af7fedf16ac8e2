package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grindx/fittrack/internal/api/metrics"
	"grindx/fittrack/internal/domain"
	"grindx/fittrack/internal/repository"
	"grindx/fittrack/internal/service"
	"grindx/fittrack/pkg/logger"
)

// LogHandler holds the log service dependency.
type LogHandler struct {
	logService service.LogService
}

// NewLogHandler creates a new LogHandler.
func NewLogHandler(logService service.LogService) *LogHandler {
	return &LogHandler{logService: logService}
}

// --- DTOs ---

type CreateLogRequest struct {
	WorkoutID   string `json:"workoutId" binding:"required"`
	CompletedAt string `json:"completedAt" binding:"required"`
	Duration    int    `json:"duration" binding:"required"`
	Notes       string `json:"notes"`
	IsShared    bool   `json:"isShared"`
}

// UpdateLogRequest uses pointer fields for merge semantics: nil leaves a
// field untouched; an explicit value, including isShared=false or empty
// notes, applies.
type UpdateLogRequest struct {
	CompletedAt *string `json:"completedAt"`
	Duration    *int    `json:"duration"`
	Notes       *string `json:"notes"`
	IsShared    *bool   `json:"isShared"`
}

type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type AttachmentUploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// WorkoutSummary is the denormalized workout reference embedded in log
// responses. Nil when the referenced workout has been deleted.
type WorkoutSummary struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category domain.Category `json:"category"`
	Sets     int             `json:"sets"`
	Reps     int             `json:"reps"`
}

type CommentResponse struct {
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// LogResponse is the DTO for returning log details.
type LogResponse struct {
	ID          string            `json:"id"`
	Workout     *WorkoutSummary   `json:"workout,omitempty"`
	User        *UserSummary      `json:"user,omitempty"`
	CompletedAt time.Time         `json:"completedAt"`
	Duration    int               `json:"duration"`
	Notes       string            `json:"notes,omitempty"`
	IsShared    bool              `json:"isShared"`
	Likes       []string          `json:"likes"`
	Comments    []CommentResponse `json:"comments"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// AttachmentResponse pairs attachment metadata with a presigned URL.
type AttachmentResponse struct {
	FileName         string `json:"fileName"`
	ContentType      string `json:"contentType"`
	URL              string `json:"url"`
	ExpiresInSeconds int    `json:"expiresInSeconds"`
}

// MapLogToResponse converts a service.LogDetail to its DTO.
func MapLogToResponse(detail *service.LogDetail) LogResponse {
	if detail == nil {
		return LogResponse{}
	}

	likes := make([]string, len(detail.Log.Likes))
	for i, id := range detail.Log.Likes {
		likes[i] = id.Hex()
	}

	comments := make([]CommentResponse, len(detail.Log.Comments))
	for i, comment := range detail.Log.Comments {
		comments[i] = CommentResponse{
			UserID:    comment.UserID.Hex(),
			Text:      comment.Text,
			CreatedAt: comment.CreatedAt,
		}
	}

	resp := LogResponse{
		ID:          detail.Log.ID.Hex(),
		CompletedAt: detail.Log.CompletedAt,
		Duration:    detail.Log.Duration,
		Notes:       detail.Log.Notes,
		IsShared:    detail.Log.IsShared,
		Likes:       likes,
		Comments:    comments,
		CreatedAt:   detail.Log.CreatedAt,
		UpdatedAt:   detail.Log.UpdatedAt,
	}
	if detail.Workout != nil {
		resp.Workout = &WorkoutSummary{
			ID:       detail.Workout.ID.Hex(),
			Name:     detail.Workout.Name,
			Category: detail.Workout.Category,
			Sets:     detail.Workout.Sets,
			Reps:     detail.Workout.Reps,
		}
	}
	if detail.Owner != nil {
		resp.User = &UserSummary{
			ID:    detail.Owner.ID.Hex(),
			Name:  detail.Owner.Name,
			Email: detail.Owner.Email,
		}
	}
	return resp
}

// MapLogsToResponse converts a slice of LogDetail to DTOs.
func MapLogsToResponse(details []service.LogDetail) []LogResponse {
	responses := make([]LogResponse, len(details))
	for i := range details {
		responses[i] = MapLogToResponse(&details[i])
	}
	return responses
}

// completedAtLayouts are accepted timestamp formats, most specific first.
// Browser datetime inputs send minute precision without a zone.
var completedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseCompletedAt(raw string) (time.Time, error) {
	for _, layout := range completedAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// --- Handler Methods ---

// List godoc
// @Summary List logs
// @Description Returns the caller's own logs, or the community feed of shared logs when shared=true.
// @Tags Logs
// @Produce json
// @Param shared query bool false "Return the shared feed instead of own logs"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Success 200 {object} gin.H "items + pagination"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /logs [get]
func (h *LogHandler) List(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", repository.DefaultLimit)
	sharedFeed, _ := strconv.ParseBool(c.Query("shared"))

	details, pagination, err := h.logService.List(c.Request.Context(), identity.ID, sharedFeed, page, limit)
	if err != nil {
		logger.Get().Error().Err(err).Msg("log list failed")
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      MapLogsToResponse(details),
		"pagination": pagination,
	})
}

// Create godoc
// @Summary Log a completed workout session
// @Tags Logs
// @Accept json
// @Produce json
// @Param log body CreateLogRequest true "Log details"
// @Success 201 {object} LogResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /logs [post]
func (h *LogHandler) Create(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var req CreateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workoutID, err := primitive.ObjectIDFromHex(req.WorkoutID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID")
		return
	}

	completedAt, err := parseCompletedAt(req.CompletedAt)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid completion date")
		return
	}

	input := service.LogInput{
		WorkoutID:   workoutID,
		CompletedAt: completedAt,
		Duration:    req.Duration,
		Notes:       req.Notes,
		IsShared:    req.IsShared,
	}

	detail, err := h.logService.Create(c.Request.Context(), identity.ID, input)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			logger.Get().Error().Err(err).Msg("log create failed")
			abortWithError(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	metrics.LogsCreatedTotal.WithLabelValues(strconv.FormatBool(req.IsShared)).Inc()
	c.JSON(http.StatusCreated, MapLogToResponse(detail))
}

// Get godoc
// @Summary Get a log by id
// @Description Readable by its owner, or by anyone once shared.
// @Tags Logs
// @Produce json
// @Param id path string true "Log id"
// @Success 200 {object} LogResponse
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Not found"
// @Router /logs/{id} [get]
func (h *LogHandler) Get(c *gin.Context) {
	identity, logID, ok := h.identityAndLogID(c)
	if !ok {
		return
	}

	detail, err := h.logService.GetByID(c.Request.Context(), identity.ID, logID)
	if err != nil {
		h.renderLogError(c, err, "log get failed")
		return
	}

	c.JSON(http.StatusOK, MapLogToResponse(detail))
}

// Update godoc
// @Summary Update a log
// @Description Merge-updates a log; only its owner may do this. Toggling isShared here moves the log in and out of the community feed.
// @Tags Logs
// @Accept json
// @Produce json
// @Param id path string true "Log id"
// @Param log body UpdateLogRequest true "Fields to change"
// @Success 200 {object} LogResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (not the owner)"
// @Failure 404 {object} gin.H "Not found"
// @Router /logs/{id} [put]
func (h *LogHandler) Update(c *gin.Context) {
	identity, logID, ok := h.identityAndLogID(c)
	if !ok {
		return
	}

	var req UpdateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	update := repository.LogUpdate{
		Duration: req.Duration,
		Notes:    req.Notes,
		IsShared: req.IsShared,
	}
	if req.CompletedAt != nil {
		completedAt, err := parseCompletedAt(*req.CompletedAt)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid completion date")
			return
		}
		update.CompletedAt = &completedAt
	}

	detail, err := h.logService.Update(c.Request.Context(), identity.ID, logID, update)
	if err != nil {
		h.renderLogError(c, err, "log update failed")
		return
	}

	c.JSON(http.StatusOK, MapLogToResponse(detail))
}

// Delete godoc
// @Summary Delete a log
// @Tags Logs
// @Produce json
// @Param id path string true "Log id"
// @Success 200 {object} gin.H "Deleted"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (not the owner)"
// @Failure 404 {object} gin.H "Not found"
// @Router /logs/{id} [delete]
func (h *LogHandler) Delete(c *gin.Context) {
	identity, logID, ok := h.identityAndLogID(c)
	if !ok {
		return
	}

	if err := h.logService.Delete(c.Request.Context(), identity.ID, logID); err != nil {
		h.renderLogError(c, err, "log delete failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Log deleted successfully"})
}

// ToggleLike godoc
// @Summary Like or unlike a log
// @Description Adds the caller's like to a visible log, or withdraws it when already present.
// @Tags Logs
// @Produce json
// @Param id path string true "Log id"
// @Success 200 {object} LogResponse
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Not found"
// @Router /logs/{id}/like [post]
func (h *LogHandler) ToggleLike(c *gin.Context) {
	identity, logID, ok := h.identityAndLogID(c)
	if !ok {
		return
	}

	detail, err := h.logService.ToggleLike(c.Request.Context(), identity.ID, logID)
	if err != nil {
		h.renderLogError(c, err, "log like failed")
		return
	}

	c.JSON(http.StatusOK, MapLogToResponse(detail))
}

// AddComment godoc
// @Summary Comment on a log
// @Tags Logs
// @Accept json
// @Produce json
// @Param id path string true "Log id"
// @Param comment body AddCommentRequest true "Comment text"
// @Success 201 {object} LogResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Not found"
// @Router /logs/{id}/comments [post]
func (h *LogHandler) AddComment(c *gin.Context) {
	identity, logID, ok := h.identityAndLogID(c)
	if !ok {
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	detail, err := h.logService.AddComment(c.Request.Context(), identity.ID, logID, req.Text)
	if err != nil {
		h.renderLogError(c, err, "log comment failed")
		return
	}

	c.JSON(http.StatusCreated, MapLogToResponse(detail))
}

// RequestAttachmentUpload godoc
// @Summary Attach a progress photo or video to a log
// @Description Returns a presigned PUT URL; the client uploads the file directly to object storage.
// @Tags Logs
// @Accept json
// @Produce json
// @Param id path string true "Log id"
// @Param attachment body AttachmentUploadRequest true "File metadata"
// @Success 201 {object} AttachmentResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (not the owner)"
// @Failure 404 {object} gin.H "Not found"
// @Router /logs/{id}/attachment [post]
func (h *LogHandler) RequestAttachmentUpload(c *gin.Context) {
	identity, logID, ok := h.identityAndLogID(c)
	if !ok {
		return
	}

	var req AttachmentUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ticket, err := h.logService.RequestAttachmentUpload(c.Request.Context(), identity.ID, logID, req.FileName, req.ContentType)
	if err != nil {
		h.renderLogError(c, err, "attachment upload request failed")
		return
	}

	c.JSON(http.StatusCreated, mapTicketToResponse(ticket))
}

// GetAttachmentDownload godoc
// @Summary Download a log's attachment
// @Description Returns a presigned GET URL for the attachment on a visible log.
// @Tags Logs
// @Produce json
// @Param id path string true "Log id"
// @Success 200 {object} AttachmentResponse
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Not found"
// @Router /logs/{id}/attachment [get]
func (h *LogHandler) GetAttachmentDownload(c *gin.Context) {
	identity, logID, ok := h.identityAndLogID(c)
	if !ok {
		return
	}

	ticket, err := h.logService.GetAttachmentDownload(c.Request.Context(), identity.ID, logID)
	if err != nil {
		h.renderLogError(c, err, "attachment download request failed")
		return
	}

	c.JSON(http.StatusOK, mapTicketToResponse(ticket))
}

func mapTicketToResponse(ticket *service.AttachmentTicket) AttachmentResponse {
	return AttachmentResponse{
		FileName:         ticket.Attachment.FileName,
		ContentType:      ticket.Attachment.ContentType,
		URL:              ticket.URL,
		ExpiresInSeconds: int(ticket.ExpiresIn / time.Second),
	}
}

// identityAndLogID pulls the identity and the :id path parameter, writing
// the error response itself when either is unusable.
func (h *LogHandler) identityAndLogID(c *gin.Context) (*domain.User, primitive.ObjectID, bool) {
	identity, err := identityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
		return nil, primitive.NilObjectID, false
	}

	logID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, "Log not found")
		return nil, primitive.NilObjectID, false
	}

	return identity, logID, true
}

// renderLogError maps log service errors to HTTP status codes.
func (h *LogHandler) renderLogError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrLogNotFound):
		abortWithError(c, http.StatusNotFound, "Log not found")
	case errors.Is(err, service.ErrAttachmentNotFound):
		abortWithError(c, http.StatusNotFound, "Log has no attachment")
	case errors.Is(err, service.ErrLogAccessDenied):
		abortWithError(c, http.StatusForbidden, "Not authorized to access this log")
	default:
		logger.Get().Error().Err(err).Msg(logMsg)
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
