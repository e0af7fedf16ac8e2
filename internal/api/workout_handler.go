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

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- DTOs ---

type CreateWorkoutRequest struct {
	Name          string `json:"name" binding:"required"`
	Category      string `json:"category" binding:"required"`
	Sets          int    `json:"sets" binding:"required"`
	Reps          int    `json:"reps" binding:"required"`
	Notes         string `json:"notes"`
	ReferenceLink string `json:"referenceLink" binding:"omitempty,url"`
}

// UpdateWorkoutRequest uses pointer fields for merge semantics: nil leaves a
// field untouched, an explicit value (including "") applies.
type UpdateWorkoutRequest struct {
	Name          *string `json:"name"`
	Category      *string `json:"category"`
	Sets          *int    `json:"sets"`
	Reps          *int    `json:"reps"`
	Notes         *string `json:"notes"`
	ReferenceLink *string `json:"referenceLink"`
}

// UserSummary is the denormalized owner reference embedded in workout and
// log responses.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// WorkoutResponse is the DTO for returning workout details.
type WorkoutResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      domain.Category `json:"category"`
	Sets          int             `json:"sets"`
	Reps          int             `json:"reps"`
	Notes         string          `json:"notes,omitempty"`
	ReferenceLink string          `json:"referenceLink,omitempty"`
	CreatedBy     *UserSummary    `json:"createdBy,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// MapWorkoutToResponse converts a service.WorkoutDetail to its DTO.
func MapWorkoutToResponse(detail *service.WorkoutDetail) WorkoutResponse {
	if detail == nil {
		return WorkoutResponse{}
	}
	resp := WorkoutResponse{
		ID:            detail.Workout.ID.Hex(),
		Name:          detail.Workout.Name,
		Category:      detail.Workout.Category,
		Sets:          detail.Workout.Sets,
		Reps:          detail.Workout.Reps,
		Notes:         detail.Workout.Notes,
		ReferenceLink: detail.Workout.ReferenceLink,
		CreatedAt:     detail.Workout.CreatedAt,
		UpdatedAt:     detail.Workout.UpdatedAt,
	}
	if detail.Owner != nil {
		resp.CreatedBy = &UserSummary{
			ID:    detail.Owner.ID.Hex(),
			Name:  detail.Owner.Name,
			Email: detail.Owner.Email,
		}
	}
	return resp
}

// MapWorkoutsToResponse converts a slice of WorkoutDetail to DTOs.
func MapWorkoutsToResponse(details []service.WorkoutDetail) []WorkoutResponse {
	responses := make([]WorkoutResponse, len(details))
	for i := range details {
		responses[i] = MapWorkoutToResponse(&details[i])
	}
	return responses
}

// --- Handler Methods ---

// List godoc
// @Summary List the workout catalog
// @Description Paginated catalog listing, optionally filtered by category. Public.
// @Tags Workouts
// @Produce json
// @Param category query string false "Category filter"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Success 200 {object} gin.H "items + pagination"
// @Router /workouts [get]
func (h *WorkoutHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", repository.DefaultLimit)

	var category *domain.Category
	if raw := c.Query("category"); raw != "" {
		cat := domain.Category(raw)
		category = &cat
	}

	details, pagination, err := h.workoutService.List(c.Request.Context(), category, page, limit)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		logger.Get().Error().Err(err).Msg("workout list failed")
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      MapWorkoutsToResponse(details),
		"pagination": pagination,
	})
}

// Create godoc
// @Summary Create a workout
// @Description Adds a workout to the public catalog, owned by the caller.
// @Tags Workouts
// @Accept json
// @Produce json
// @Param workout body CreateWorkoutRequest true "Workout details"
// @Success 201 {object} WorkoutResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /workouts [post]
func (h *WorkoutHandler) Create(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	input := service.WorkoutInput{
		Name:          req.Name,
		Category:      domain.Category(req.Category),
		Sets:          req.Sets,
		Reps:          req.Reps,
		Notes:         req.Notes,
		ReferenceLink: req.ReferenceLink,
	}

	detail, err := h.workoutService.Create(c.Request.Context(), identity.ID, input)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			logger.Get().Error().Err(err).Msg("workout create failed")
			abortWithError(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	metrics.WorkoutsCreatedTotal.Inc()
	c.JSON(http.StatusCreated, MapWorkoutToResponse(detail))
}

// Get godoc
// @Summary Get a workout by id
// @Description Public catalog read; no authentication required.
// @Tags Workouts
// @Produce json
// @Param id path string true "Workout id"
// @Success 200 {object} WorkoutResponse
// @Failure 404 {object} gin.H "Not found"
// @Router /workouts/{id} [get]
func (h *WorkoutHandler) Get(c *gin.Context) {
	workoutID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, "Workout not found")
		return
	}

	detail, err := h.workoutService.GetByID(c.Request.Context(), workoutID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, "Workout not found")
		} else {
			logger.Get().Error().Err(err).Msg("workout get failed")
			abortWithError(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, MapWorkoutToResponse(detail))
}

// Update godoc
// @Summary Update a workout
// @Description Merge-updates a workout; only its creator may do this.
// @Tags Workouts
// @Accept json
// @Produce json
// @Param id path string true "Workout id"
// @Param workout body UpdateWorkoutRequest true "Fields to change"
// @Success 200 {object} WorkoutResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (not the owner)"
// @Failure 404 {object} gin.H "Not found"
// @Router /workouts/{id} [put]
func (h *WorkoutHandler) Update(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	workoutID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, "Workout not found")
		return
	}

	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	update := repository.WorkoutUpdate{
		Name:          req.Name,
		Sets:          req.Sets,
		Reps:          req.Reps,
		Notes:         req.Notes,
		ReferenceLink: req.ReferenceLink,
	}
	if req.Category != nil {
		cat := domain.Category(*req.Category)
		update.Category = &cat
	}

	detail, err := h.workoutService.Update(c.Request.Context(), identity.ID, workoutID, update)
	if err != nil {
		h.renderWorkoutError(c, err, "workout update failed")
		return
	}

	c.JSON(http.StatusOK, MapWorkoutToResponse(detail))
}

// Delete godoc
// @Summary Delete a workout
// @Description Removes a workout from the catalog; only its creator may do this.
// @Tags Workouts
// @Produce json
// @Param id path string true "Workout id"
// @Success 200 {object} gin.H "Deleted"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (not the owner)"
// @Failure 404 {object} gin.H "Not found"
// @Router /workouts/{id} [delete]
func (h *WorkoutHandler) Delete(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	workoutID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, "Workout not found")
		return
	}

	if err := h.workoutService.Delete(c.Request.Context(), identity.ID, workoutID); err != nil {
		h.renderWorkoutError(c, err, "workout delete failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Workout deleted successfully"})
}

// renderWorkoutError maps workout service errors to HTTP status codes.
func (h *WorkoutHandler) renderWorkoutError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrWorkoutNotFound):
		abortWithError(c, http.StatusNotFound, "Workout not found")
	case errors.Is(err, service.ErrWorkoutAccessDenied):
		abortWithError(c, http.StatusForbidden, "Not authorized to modify this workout")
	default:
		logger.Get().Error().Err(err).Msg(logMsg)
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// queryInt parses a positive integer query parameter, falling back to def
// when the parameter is absent or not a number.
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return def
	}
	return value
}
