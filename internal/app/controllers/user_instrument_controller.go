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

// UserInstrumentController handles proficiency records
type UserInstrumentController struct {
	userInstrumentService services.UserInstrumentService
}

// NewUserInstrumentController creates a new UserInstrumentController
func NewUserInstrumentController(userInstrumentService services.UserInstrumentService) *UserInstrumentController {
	return &UserInstrumentController{userInstrumentService: userInstrumentService}
}

// ListUserInstruments lists proficiency records
// @Summary List user instruments
// @Description Without "user" the requester's own records are listed (admins see all). Naming another user needs admin rights.
// @Tags user-instruments
// @Produce json
// @Param user query int false "Owner user ID"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.UserInstrumentResponse}}
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /user-instruments/ [get]
func (c *UserInstrumentController) ListUserInstruments(ctx *gin.Context) {
	actor := middleware.ActorFromContext(ctx)
	resp, err := c.userInstrumentService.ListUserInstruments(ctx.Request.Context(), actor,
		filters.ScopeUserInstruments(actor, ctx.Request.URL.Query()), pageRequest(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// CreateUserInstrument adds a proficiency record
// @Summary Create user instrument
// @Description Binds to the requester, or to the "user" query parameter for teachers and admins
// @Tags user-instruments
// @Accept json
// @Produce json
// @Param user query int false "Owner user ID"
// @Param request body dto.UserInstrumentRequest true "Record"
// @Success 201 {object} dto.APIResponse{data=dto.UserInstrumentResponse}
// @Failure 409 {object} dto.ErrorResponse "Instrument already on the profile"
// @Security BearerAuth
// @Router /user-instruments/ [post]
func (c *UserInstrumentController) CreateUserInstrument(ctx *gin.Context) {
	var target *int64
	if id, ok := filters.ParseTargetUser(ctx.Request.URL.Query()); ok {
		target = &id
	}
	if !allowed(ctx, c.userInstrumentService.CheckCreate(middleware.ActorFromContext(ctx), target)) {
		return
	}

	var req dto.UserInstrumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.userInstrumentService.CreateUserInstrument(ctx.Request.Context(), middleware.ActorFromContext(ctx), target, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// GetUserInstrument returns one record
// @Summary Get user instrument
// @Tags user-instruments
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserInstrumentResponse}
// @Security BearerAuth
// @Router /user-instruments/{id}/ [get]
func (c *UserInstrumentController) GetUserInstrument(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.userInstrumentService.GetUserInstrument(ctx.Request.Context(), middleware.ActorFromContext(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// UpdateUserInstrument replaces a record
// @Summary Update user instrument
// @Tags user-instruments
// @Accept json
// @Produce json
// @Param id path int true "Record ID"
// @Param request body dto.UserInstrumentRequest true "Record"
// @Success 200 {object} dto.APIResponse{data=dto.UserInstrumentResponse}
// @Security BearerAuth
// @Router /user-instruments/{id}/ [put]
func (c *UserInstrumentController) UpdateUserInstrument(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !allowed(ctx, c.userInstrumentService.CheckWrite(ctx.Request.Context(), middleware.ActorFromContext(ctx), id, auth.ActionUpdate)) {
		return
	}
	var req dto.UserInstrumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	resp, err := c.userInstrumentService.UpdateUserInstrument(ctx.Request.Context(), middleware.ActorFromContext(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// PatchUserInstrument updates some fields of a record
// @Summary Partially update user instrument
// @Tags user-instruments
// @Accept json
// @Produce json
// @Param id path int true "Record ID"
// @Param request body dto.PatchUserInstrumentRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.UserInstrumentResponse}
// @Security BearerAuth
// @Router /user-instruments/{id}/ [patch]
func (c *UserInstrumentController) PatchUserInstrument(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !allowed(ctx, c.userInstrumentService.CheckWrite(ctx.Request.Context(), middleware.ActorFromContext(ctx), id, auth.ActionUpdate)) {
		return
	}
	var req dto.PatchUserInstrumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	resp, err := c.userInstrumentService.PatchUserInstrument(ctx.Request.Context(), middleware.ActorFromContext(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// DeleteUserInstrument removes a record
// @Summary Delete user instrument
// @Tags user-instruments
// @Param id path int true "Record ID"
// @Success 204
// @Security BearerAuth
// @Router /user-instruments/{id}/ [delete]
func (c *UserInstrumentController) DeleteUserInstrument(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.userInstrumentService.DeleteUserInstrument(ctx.Request.Context(), middleware.ActorFromContext(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
