package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/rea/internal/app/auth"
	"github.com/yigit/rea/internal/app/filters"
	"github.com/yigit/rea/internal/app/models/dto"
	"github.com/yigit/rea/internal/app/services"
	"github.com/yigit/rea/internal/middleware"
	"github.com/yigit/rea/internal/pkg/apperrors"
)

// allowed upload extensions per form field
var exerciseExtensions = map[string][]string{
	"midi": {".mid", ".midi"},
	"svg":  {".svg"},
}

// ExerciseController handles the exercise library
type ExerciseController struct {
	exerciseService services.ExerciseService
	maxUploadBytes  int64
}

// NewExerciseController creates a new ExerciseController
func NewExerciseController(exerciseService services.ExerciseService, maxUploadBytes int64) *ExerciseController {
	return &ExerciseController{
		exerciseService: exerciseService,
		maxUploadBytes:  maxUploadBytes,
	}
}

// formFile returns the upload in field, nil when absent
func (c *ExerciseController) formFile(ctx *gin.Context, field string) (*multipart.FileHeader, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: cannot read %s upload", apperrors.ErrBadRequest, field)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	valid := false
	for _, e := range exerciseExtensions[field] {
		if ext == e {
			valid = true
			break
		}
	}
	if !valid {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s must be one of %s files", field, strings.Join(exerciseExtensions[field], ", ")))
	}
	if c.maxUploadBytes > 0 && fh.Size > c.maxUploadBytes {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s exceeds the %d byte upload limit", field, c.maxUploadBytes))
	}
	return fh, nil
}

// bindUpload reads the multipart form. On failure the error response is written.
func (c *ExerciseController) bindUpload(ctx *gin.Context) (*dto.ExerciseUpload, bool) {
	var upload dto.ExerciseUpload
	if err := ctx.ShouldBind(&upload.ExerciseForm); err != nil {
		middleware.HandleBindError(ctx, err)
		return nil, false
	}

	var err error
	if upload.Midi, err = c.formFile(ctx, "midi"); err != nil {
		middleware.HandleAPIError(ctx, err)
		return nil, false
	}
	if upload.Svg, err = c.formFile(ctx, "svg"); err != nil {
		middleware.HandleAPIError(ctx, err)
		return nil, false
	}
	return &upload, true
}

// ListExercises lists exercises newest first
// @Summary List exercises
// @Tags exercises
// @Produce json
// @Param category query string false "pitch or rhythm"
// @Param polyphonic query bool false "Polyphonic exercises only"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.ExerciseResponse}}
// @Router /exercises/ [get]
func (c *ExerciseController) ListExercises(ctx *gin.Context) {
	resp, err := c.exerciseService.ListExercises(ctx.Request.Context(), middleware.ActorFromContext(ctx),
		filters.ParseExerciseFilter(ctx.Request.URL.Query()), pageRequest(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// GetExercise returns one exercise
// @Summary Get exercise
// @Tags exercises
// @Produce json
// @Param id path int true "Exercise ID"
// @Success 200 {object} dto.APIResponse{data=dto.ExerciseResponse}
// @Router /exercises/{id}/ [get]
func (c *ExerciseController) GetExercise(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.exerciseService.GetExercise(ctx.Request.Context(), middleware.ActorFromContext(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// CreateExercise uploads a new exercise
// @Summary Create exercise
// @Description Multipart form; at least one of midi and svg is required
// @Tags exercises
// @Accept multipart/form-data
// @Produce json
// @Param midi formData file false "MIDI file (.mid, .midi)"
// @Param svg formData file false "Score (.svg)"
// @Param category formData string false "pitch or rhythm (default pitch)"
// @Param polyphonic formData bool false "Polyphonic (default false)"
// @Success 201 {object} dto.APIResponse{data=dto.ExerciseResponse}
// @Failure 400 {object} dto.ErrorResponse "No file uploaded"
// @Security BearerAuth
// @Router /exercises/ [post]
func (c *ExerciseController) CreateExercise(ctx *gin.Context) {
	if !allowed(ctx, c.exerciseService.CheckWrite(middleware.ActorFromContext(ctx), auth.ActionCreate)) {
		return
	}
	upload, ok := c.bindUpload(ctx)
	if !ok {
		return
	}
	resp, err := c.exerciseService.CreateExercise(ctx.Request.Context(), middleware.ActorFromContext(ctx), upload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// UpdateExercise merges an upload into an exercise
// @Summary Update exercise
// @Description New files replace stored ones; clear_midi and clear_svg remove them. One file must remain.
// @Tags exercises
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Exercise ID"
// @Param midi formData file false "MIDI file (.mid, .midi)"
// @Param svg formData file false "Score (.svg)"
// @Param category formData string false "pitch or rhythm"
// @Param polyphonic formData bool false "Polyphonic"
// @Param clear_midi formData bool false "Remove the stored MIDI file"
// @Param clear_svg formData bool false "Remove the stored score"
// @Success 200 {object} dto.APIResponse{data=dto.ExerciseResponse}
// @Security BearerAuth
// @Router /exercises/{id}/ [put]
func (c *ExerciseController) UpdateExercise(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !allowed(ctx, c.exerciseService.CheckWrite(middleware.ActorFromContext(ctx), auth.ActionUpdate)) {
		return
	}
	upload, ok := c.bindUpload(ctx)
	if !ok {
		return
	}
	resp, err := c.exerciseService.UpdateExercise(ctx.Request.Context(), middleware.ActorFromContext(ctx), id, upload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// DeleteExercise removes an exercise and its files
// @Summary Delete exercise
// @Tags exercises
// @Param id path int true "Exercise ID"
// @Success 204
// @Security BearerAuth
// @Router /exercises/{id}/ [delete]
func (c *ExerciseController) DeleteExercise(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.exerciseService.DeleteExercise(ctx.Request.Context(), middleware.ActorFromContext(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetExerciseStats counts exercises per category
// @Summary Exercise statistics
// @Tags exercises
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ExerciseStatsResponse}
// @Router /exercises/stats/ [get]
func (c *ExerciseController) GetExerciseStats(ctx *gin.Context) {
	resp, err := c.exerciseService.GetStats(ctx.Request.Context(), middleware.ActorFromContext(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
