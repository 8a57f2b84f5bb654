// Package services holds the business operations. Every operation receives the
// acting identity explicitly, consults the authorizer and then talks to the
// repositories.
package services

import (
	"fmt"

	"github.com/yigit/rea/internal/app/models/dto"
	"github.com/yigit/rea/internal/pkg/apperrors"
	"github.com/yigit/rea/internal/pkg/helpers"
	"github.com/yigit/rea/internal/pkg/logger"
)

// PageRequest is a validated 1-based page request
type PageRequest struct {
	Page int
	Size int
}

// window converts the request into repository offset and limit
func (p PageRequest) window() (uint64, int) {
	return helpers.CalculateOffsetLimit(p.Page, p.Size)
}

// paginate wraps a page of items with its metadata
func paginate(items interface{}, total int64, p PageRequest) *dto.PaginatedResponse {
	_, limit := p.window()
	return &dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, p.Page, limit),
	}
}

// storeError logs failures outside the error taxonomy and wraps the error with the operation
func storeError(err error, op string) error {
	if !apperrors.Is(err, apperrors.ErrResourceNotFound,
		apperrors.ErrConflict,
		apperrors.ErrValidationFailed,
		apperrors.ErrPermissionDenied,
		apperrors.ErrUnauthorized,
	) {
		logger.Error().Err(err).Str("operation", op).Msg("Store operation failed")
	}
	return fmt.Errorf("%s: %w", op, err)
}
