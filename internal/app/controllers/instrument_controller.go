package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/rea/internal/app/auth"
	"github.com/yigit/rea/internal/app/filters"
	"github.com/yigit/rea/internal/app/models/dto"
	"github.com/yigit/rea/internal/app/services"
	"github.com/yigit/rea/internal/middleware"
)

// InstrumentController handles the instrument catalog
type InstrumentController struct {
	instrumentService services.InstrumentService
}

// NewInstrumentController creates a new InstrumentController
func NewInstrumentController(instrumentService services.InstrumentService) *InstrumentController {
	return &InstrumentController{instrumentService: instrumentService}
}

// ListInstruments lists the catalog
// @Summary List instruments
// @Tags instruments
// @Produce json
// @Param search query string false "Matches name or family"
// @Param ordering query string false "name, -name, family or -family"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.InstrumentResponse}}
// @Security BearerAuth
// @Router /instruments/ [get]
func (c *InstrumentController) ListInstruments(ctx *gin.Context) {
	resp, err := c.instrumentService.ListInstruments(ctx.Request.Context(), middleware.ActorFromContext(ctx),
		filters.ParseInstrumentFilter(ctx.Request.URL.Query()), pageRequest(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// GetInstrument returns one instrument
// @Summary Get instrument
// @Tags instruments
// @Produce json
// @Param id path int true "Instrument ID"
// @Success 200 {object} dto.APIResponse{data=dto.InstrumentResponse}
// @Security BearerAuth
// @Router /instruments/{id}/ [get]
func (c *InstrumentController) GetInstrument(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.instrumentService.GetInstrument(ctx.Request.Context(), middleware.ActorFromContext(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// CreateInstrument adds an instrument
// @Summary Create instrument
// @Description Teachers and admins only
// @Tags instruments
// @Accept json
// @Produce json
// @Param request body dto.InstrumentRequest true "Instrument"
// @Success 201 {object} dto.APIResponse{data=dto.InstrumentResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /instruments/ [post]
func (c *InstrumentController) CreateInstrument(ctx *gin.Context) {
	if !allowed(ctx, c.instrumentService.CheckWrite(middleware.ActorFromContext(ctx), auth.ActionCreate)) {
		return
	}
	var req dto.InstrumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	resp, err := c.instrumentService.CreateInstrument(ctx.Request.Context(), middleware.ActorFromContext(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// UpdateInstrument replaces an instrument
// @Summary Update instrument
// @Tags instruments
// @Accept json
// @Produce json
// @Param id path int true "Instrument ID"
// @Param request body dto.InstrumentRequest true "Instrument"
// @Success 200 {object} dto.APIResponse{data=dto.InstrumentResponse}
// @Security BearerAuth
// @Router /instruments/{id}/ [put]
func (c *InstrumentController) UpdateInstrument(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !allowed(ctx, c.instrumentService.CheckWrite(middleware.ActorFromContext(ctx), auth.ActionUpdate)) {
		return
	}
	var req dto.InstrumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	resp, err := c.instrumentService.UpdateInstrument(ctx.Request.Context(), middleware.ActorFromContext(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// PatchInstrument updates some fields of an instrument
// @Summary Partially update instrument
// @Tags instruments
// @Accept json
// @Produce json
// @Param id path int true "Instrument ID"
// @Param request body dto.PatchInstrumentRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.InstrumentResponse}
// @Security BearerAuth
// @Router /instruments/{id}/ [patch]
func (c *InstrumentController) PatchInstrument(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !allowed(ctx, c.instrumentService.CheckWrite(middleware.ActorFromContext(ctx), auth.ActionUpdate)) {
		return
	}
	var req dto.PatchInstrumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	resp, err := c.instrumentService.PatchInstrument(ctx.Request.Context(), middleware.ActorFromContext(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// DeleteInstrument removes an instrument
// @Summary Delete instrument
// @Tags instruments
// @Param id path int true "Instrument ID"
// @Success 204
// @Security BearerAuth
// @Router /instruments/{id}/ [delete]
func (c *InstrumentController) DeleteInstrument(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.instrumentService.DeleteInstrument(ctx.Request.Context(), middleware.ActorFromContext(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
