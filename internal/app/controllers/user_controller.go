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

// UserController handles user accounts and their directory projections
type UserController struct {
	userService           services.UserService
	userInstrumentService services.UserInstrumentService
}

// NewUserController creates a new UserController
func NewUserController(userService services.UserService, userInstrumentService services.UserInstrumentService) *UserController {
	return &UserController{
		userService:           userService,
		userInstrumentService: userInstrumentService,
	}
}

// ListUsers lists users
// @Summary List users
// @Tags users
// @Produce json
// @Param search query string false "Matches username, email, first or last name"
// @Param ordering query string false "username, date_joined or user_type, optionally prefixed with -"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.UserResponse}}
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/ [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	resp, err := c.userService.ListUsers(ctx.Request.Context(), middleware.ActorFromContext(ctx),
		filters.ParseUserFilter(ctx.Request.URL.Query()), pageRequest(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListTeachers lists teacher accounts
// @Summary List teachers
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.TeacherResponse}}
// @Security BearerAuth
// @Router /users/teachers/ [get]
func (c *UserController) ListTeachers(ctx *gin.Context) {
	resp, err := c.userService.ListTeachers(ctx.Request.Context(), middleware.ActorFromContext(ctx),
		filters.ParseUserFilter(ctx.Request.URL.Query()), pageRequest(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListStudents lists student accounts
// @Summary List students
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.StudentResponse}}
// @Security BearerAuth
// @Router /users/students/ [get]
func (c *UserController) ListStudents(ctx *gin.Context) {
	resp, err := c.userService.ListStudents(ctx.Request.Context(), middleware.ActorFromContext(ctx),
		filters.ParseUserFilter(ctx.Request.URL.Query()), pageRequest(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// GetMe returns the signed-in user
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/me/ [get]
func (c *UserController) GetMe(ctx *gin.Context) {
	resp, err := c.userService.GetMe(ctx.Request.Context(), middleware.ActorFromContext(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// GetUser returns one user
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/ [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.userService.GetUser(ctx.Request.Context(), middleware.ActorFromContext(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// UpdateUser replaces a user's writable fields
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "User fields"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/ [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !allowed(ctx, c.userService.CheckWrite(ctx.Request.Context(), middleware.ActorFromContext(ctx), id, auth.ActionUpdate)) {
		return
	}
	var req dto.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	resp, err := c.userService.UpdateUser(ctx.Request.Context(), middleware.ActorFromContext(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// PatchUser updates some of a user's fields
// @Summary Partially update user
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body dto.PatchUserRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Security BearerAuth
// @Router /users/{id}/ [patch]
func (c *UserController) PatchUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !allowed(ctx, c.userService.CheckWrite(ctx.Request.Context(), middleware.ActorFromContext(ctx), id, auth.ActionUpdate)) {
		return
	}
	var req dto.PatchUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	resp, err := c.userService.PatchUser(ctx.Request.Context(), middleware.ActorFromContext(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// DeleteUser removes a user
// @Summary Delete user
// @Tags users
// @Param id path int true "User ID"
// @Success 204
// @Security BearerAuth
// @Router /users/{id}/ [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.userService.DeleteUser(ctx.Request.Context(), middleware.ActorFromContext(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetUserInstruments lists a user's instrument records
// @Summary List a user's instruments
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.UserInstrumentResponse}
// @Security BearerAuth
// @Router /users/{id}/instruments/ [get]
func (c *UserController) GetUserInstruments(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.userService.GetUserInstruments(ctx.Request.Context(), middleware.ActorFromContext(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// AddUserInstrument adds an instrument to a user's profile
// @Summary Add an instrument to a user
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body dto.UserInstrumentRequest true "Instrument record"
// @Success 201 {object} dto.APIResponse{data=dto.UserInstrumentResponse}
// @Failure 409 {object} dto.ErrorResponse "Instrument already on the profile"
// @Security BearerAuth
// @Router /users/{id}/instruments/ [post]
func (c *UserController) AddUserInstrument(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if !allowed(ctx, c.userInstrumentService.CheckCreate(middleware.ActorFromContext(ctx), &id)) {
		return
	}
	var req dto.UserInstrumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	resp, err := c.userInstrumentService.CreateUserInstrument(ctx.Request.Context(), middleware.ActorFromContext(ctx), &id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}
