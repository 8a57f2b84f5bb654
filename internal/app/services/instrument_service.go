package services

import (
	"context"

	"github.com/yigit/rea/internal/app/auth"
	"github.com/yigit/rea/internal/app/filters"
	"github.com/yigit/rea/internal/app/models"
	"github.com/yigit/rea/internal/app/models/dto"
	"github.com/yigit/rea/internal/app/repositories"
)

// InstrumentService defines the interface for instrument catalog operations
type InstrumentService interface {
	ListInstruments(ctx context.Context, actor auth.Actor, filter filters.InstrumentFilter, page PageRequest) (*dto.PaginatedResponse, error)
	GetInstrument(ctx context.Context, actor auth.Actor, id int64) (*dto.InstrumentResponse, error)
	CreateInstrument(ctx context.Context, actor auth.Actor, req *dto.InstrumentRequest) (*dto.InstrumentResponse, error)
	UpdateInstrument(ctx context.Context, actor auth.Actor, id int64, req *dto.InstrumentRequest) (*dto.InstrumentResponse, error)
	PatchInstrument(ctx context.Context, actor auth.Actor, id int64, req *dto.PatchInstrumentRequest) (*dto.InstrumentResponse, error)
	DeleteInstrument(ctx context.Context, actor auth.Actor, id int64) error
	// CheckWrite reports whether actor may perform a catalog write, before any input is read
	CheckWrite(actor auth.Actor, action auth.Action) error
}

// instrumentServiceImpl implements InstrumentService
type instrumentServiceImpl struct {
	instrumentRepo repositories.IInstrumentRepository
	authz          auth.Authorizer
}

// NewInstrumentService creates a new InstrumentService
func NewInstrumentService(instrumentRepo repositories.IInstrumentRepository, authz auth.Authorizer) InstrumentService {
	return &instrumentServiceImpl{
		instrumentRepo: instrumentRepo,
		authz:          authz,
	}
}

// CheckWrite authorizes a catalog write
func (s *instrumentServiceImpl) CheckWrite(actor auth.Actor, action auth.Action) error {
	return s.authz.Authorize(actor, auth.ResourceInstrument, action, auth.NoTarget)
}

// ListInstruments returns a page of the catalog
func (s *instrumentServiceImpl) ListInstruments(ctx context.Context, actor auth.Actor, filter filters.InstrumentFilter, page PageRequest) (*dto.PaginatedResponse, error) {
	if err := s.authz.Authorize(actor, auth.ResourceInstrument, auth.ActionList, auth.NoTarget); err != nil {
		return nil, err
	}

	offset, limit := page.window()
	instruments, total, err := s.instrumentRepo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, storeError(err, "list instruments")
	}
	return paginate(dto.NewInstrumentResponses(instruments), total, page), nil
}

// GetInstrument retrieves an instrument by ID
func (s *instrumentServiceImpl) GetInstrument(ctx context.Context, actor auth.Actor, id int64) (*dto.InstrumentResponse, error) {
	if err := s.authz.Authorize(actor, auth.ResourceInstrument, auth.ActionRetrieve, auth.NoTarget); err != nil {
		return nil, err
	}

	instrument, err := s.instrumentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "get instrument")
	}
	resp := dto.NewInstrumentResponse(instrument)
	return &resp, nil
}

// CreateInstrument adds an instrument to the catalog
func (s *instrumentServiceImpl) CreateInstrument(ctx context.Context, actor auth.Actor, req *dto.InstrumentRequest) (*dto.InstrumentResponse, error) {
	if err := s.authz.Authorize(actor, auth.ResourceInstrument, auth.ActionCreate, auth.NoTarget); err != nil {
		return nil, err
	}

	instrument := &models.Instrument{
		Name:        req.Name,
		Family:      req.Family,
		Description: req.Description,
	}
	if err := s.instrumentRepo.Create(ctx, instrument); err != nil {
		return nil, storeError(err, "create instrument")
	}
	resp := dto.NewInstrumentResponse(instrument)
	return &resp, nil
}

func (s *instrumentServiceImpl) loadForWrite(ctx context.Context, actor auth.Actor, id int64, action auth.Action) (*models.Instrument, error) {
	if err := s.authz.Authorize(actor, auth.ResourceInstrument, action, auth.NoTarget); err != nil {
		return nil, err
	}
	instrument, err := s.instrumentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "get instrument")
	}
	return instrument, nil
}

func (s *instrumentServiceImpl) save(ctx context.Context, instrument *models.Instrument) (*dto.InstrumentResponse, error) {
	if err := s.instrumentRepo.Update(ctx, instrument); err != nil {
		return nil, storeError(err, "update instrument")
	}
	resp := dto.NewInstrumentResponse(instrument)
	return &resp, nil
}

// UpdateInstrument replaces every field of an instrument
func (s *instrumentServiceImpl) UpdateInstrument(ctx context.Context, actor auth.Actor, id int64, req *dto.InstrumentRequest) (*dto.InstrumentResponse, error) {
	instrument, err := s.loadForWrite(ctx, actor, id, auth.ActionUpdate)
	if err != nil {
		return nil, err
	}

	instrument.Name = req.Name
	instrument.Family = req.Family
	instrument.Description = req.Description
	return s.save(ctx, instrument)
}

// PatchInstrument applies the fields present in the request
func (s *instrumentServiceImpl) PatchInstrument(ctx context.Context, actor auth.Actor, id int64, req *dto.PatchInstrumentRequest) (*dto.InstrumentResponse, error) {
	instrument, err := s.loadForWrite(ctx, actor, id, auth.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		instrument.Name = *req.Name
	}
	if req.Family != nil {
		instrument.Family = *req.Family
	}
	if req.Description != nil {
		instrument.Description = *req.Description
	}
	return s.save(ctx, instrument)
}

// DeleteInstrument removes an instrument and every record referencing it
func (s *instrumentServiceImpl) DeleteInstrument(ctx context.Context, actor auth.Actor, id int64) error {
	if err := s.authz.Authorize(actor, auth.ResourceInstrument, auth.ActionDelete, auth.NoTarget); err != nil {
		return err
	}
	if err := s.instrumentRepo.Delete(ctx, id); err != nil {
		return storeError(err, "delete instrument")
	}
	return nil
}
