// Package controllers handles HTTP request handling
package controllers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/rea/internal/app/services"
	"github.com/yigit/rea/internal/middleware"
	"github.com/yigit/rea/internal/pkg/apperrors"
	"github.com/yigit/rea/internal/pkg/helpers"
)

// parseIDParam reads a positive int64 path parameter. On failure the error
// response is written and ok is false.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, fmt.Errorf("%w: %s must be a positive integer", apperrors.ErrBadRequest, name))
		return 0, false
	}
	return id, true
}

// allowed writes the error response for a failed permission check
func allowed(ctx *gin.Context, err error) bool {
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return false
	}
	return true
}

// pageRequest reads the page and size query parameters
func pageRequest(ctx *gin.Context) services.PageRequest {
	page, size := helpers.ParsePaginationParams(ctx)
	return services.PageRequest{Page: page, Size: size}
}
