package services

import (
	"context"

	"github.com/yigit/rea/internal/app/auth"
	"github.com/yigit/rea/internal/app/filters"
	"github.com/yigit/rea/internal/app/models"
	"github.com/yigit/rea/internal/app/models/dto"
	"github.com/yigit/rea/internal/app/repositories"
)

// UserInstrumentService defines the interface for proficiency record operations
type UserInstrumentService interface {
	ListUserInstruments(ctx context.Context, actor auth.Actor, scope filters.UserInstrumentFilter, page PageRequest) (*dto.PaginatedResponse, error)
	GetUserInstrument(ctx context.Context, actor auth.Actor, id int64) (*dto.UserInstrumentResponse, error)
	// CreateUserInstrument binds the record to targetUserID when set, otherwise to the actor
	CreateUserInstrument(ctx context.Context, actor auth.Actor, targetUserID *int64, req *dto.UserInstrumentRequest) (*dto.UserInstrumentResponse, error)
	UpdateUserInstrument(ctx context.Context, actor auth.Actor, id int64, req *dto.UserInstrumentRequest) (*dto.UserInstrumentResponse, error)
	PatchUserInstrument(ctx context.Context, actor auth.Actor, id int64, req *dto.PatchUserInstrumentRequest) (*dto.UserInstrumentResponse, error)
	DeleteUserInstrument(ctx context.Context, actor auth.Actor, id int64) error
	// CheckCreate and CheckWrite authorize a write before any input is read
	CheckCreate(actor auth.Actor, targetUserID *int64) error
	CheckWrite(ctx context.Context, actor auth.Actor, id int64, action auth.Action) error
}

// userInstrumentServiceImpl implements UserInstrumentService
type userInstrumentServiceImpl struct {
	userInstrumentRepo repositories.IUserInstrumentRepository
	authz              auth.Authorizer
}

// NewUserInstrumentService creates a new UserInstrumentService
func NewUserInstrumentService(userInstrumentRepo repositories.IUserInstrumentRepository, authz auth.Authorizer) UserInstrumentService {
	return &userInstrumentServiceImpl{
		userInstrumentRepo: userInstrumentRepo,
		authz:              authz,
	}
}

// ListUserInstruments returns the records inside the scope. A scope naming
// another user is only open to admins.
func (s *userInstrumentServiceImpl) ListUserInstruments(ctx context.Context, actor auth.Actor, scope filters.UserInstrumentFilter, page PageRequest) (*dto.PaginatedResponse, error) {
	if err := s.authz.Authorize(actor, auth.ResourceUserInstrument, auth.ActionList, scope.Target()); err != nil {
		return nil, err
	}

	offset, limit := page.window()
	links, total, err := s.userInstrumentRepo.List(ctx, scope, offset, limit)
	if err != nil {
		return nil, storeError(err, "list user instruments")
	}
	return paginate(dto.NewUserInstrumentResponses(links), total, page), nil
}

func (s *userInstrumentServiceImpl) load(ctx context.Context, actor auth.Actor, id int64, action auth.Action) (*models.UserInstrument, error) {
	link, err := s.userInstrumentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "get user instrument")
	}
	if err := s.authz.Authorize(actor, auth.ResourceUserInstrument, action, auth.OwnedBy(link.UserID)); err != nil {
		return nil, err
	}
	return link, nil
}

// createOwner resolves who a new record belongs to and the target to authorize against
func createOwner(actor auth.Actor, targetUserID *int64) (int64, auth.Target) {
	if targetUserID != nil {
		return *targetUserID, auth.OwnedBy(*targetUserID)
	}
	return actor.ID(), auth.NoTarget
}

// CheckCreate authorizes a create for targetUserID, or for the actor when nil
func (s *userInstrumentServiceImpl) CheckCreate(actor auth.Actor, targetUserID *int64) error {
	_, target := createOwner(actor, targetUserID)
	return s.authz.Authorize(actor, auth.ResourceUserInstrument, auth.ActionCreate, target)
}

// CheckWrite authorizes a write on record id
func (s *userInstrumentServiceImpl) CheckWrite(ctx context.Context, actor auth.Actor, id int64, action auth.Action) error {
	_, err := s.load(ctx, actor, id, action)
	return err
}

// reload returns the stored record with its instrument attached
func (s *userInstrumentServiceImpl) reload(ctx context.Context, id int64) (*dto.UserInstrumentResponse, error) {
	link, err := s.userInstrumentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "get user instrument")
	}
	resp := dto.NewUserInstrumentResponse(link)
	return &resp, nil
}

// GetUserInstrument retrieves one record
func (s *userInstrumentServiceImpl) GetUserInstrument(ctx context.Context, actor auth.Actor, id int64) (*dto.UserInstrumentResponse, error) {
	link, err := s.load(ctx, actor, id, auth.ActionRetrieve)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserInstrumentResponse(link)
	return &resp, nil
}

// CreateUserInstrument stores a new record. Duplicates surface as a conflict
// from the store itself.
func (s *userInstrumentServiceImpl) CreateUserInstrument(ctx context.Context, actor auth.Actor, targetUserID *int64, req *dto.UserInstrumentRequest) (*dto.UserInstrumentResponse, error) {
	owner, target := createOwner(actor, targetUserID)
	if err := s.authz.Authorize(actor, auth.ResourceUserInstrument, auth.ActionCreate, target); err != nil {
		return nil, err
	}

	link := &models.UserInstrument{
		UserID:            owner,
		InstrumentID:      req.Instrument,
		Proficiency:       proficiencyOrDefault(req.Proficiency),
		YearsOfExperience: req.YearsOfExperience,
		Notes:             req.Notes,
	}
	if err := s.userInstrumentRepo.Create(ctx, link); err != nil {
		return nil, storeError(err, "create user instrument")
	}
	return s.reload(ctx, link.ID)
}

// UpdateUserInstrument replaces the writable fields of a record
func (s *userInstrumentServiceImpl) UpdateUserInstrument(ctx context.Context, actor auth.Actor, id int64, req *dto.UserInstrumentRequest) (*dto.UserInstrumentResponse, error) {
	link, err := s.load(ctx, actor, id, auth.ActionUpdate)
	if err != nil {
		return nil, err
	}

	link.InstrumentID = req.Instrument
	link.Proficiency = proficiencyOrDefault(req.Proficiency)
	link.YearsOfExperience = req.YearsOfExperience
	link.Notes = req.Notes
	return s.save(ctx, link)
}

// PatchUserInstrument applies the fields present in the request
func (s *userInstrumentServiceImpl) PatchUserInstrument(ctx context.Context, actor auth.Actor, id int64, req *dto.PatchUserInstrumentRequest) (*dto.UserInstrumentResponse, error) {
	link, err := s.load(ctx, actor, id, auth.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if req.Instrument != nil {
		link.InstrumentID = *req.Instrument
	}
	if req.Proficiency != nil {
		link.Proficiency = *req.Proficiency
	}
	if req.YearsOfExperience != nil {
		link.YearsOfExperience = *req.YearsOfExperience
	}
	if req.Notes != nil {
		link.Notes = *req.Notes
	}
	return s.save(ctx, link)
}

func (s *userInstrumentServiceImpl) save(ctx context.Context, link *models.UserInstrument) (*dto.UserInstrumentResponse, error) {
	if err := s.userInstrumentRepo.Update(ctx, link); err != nil {
		return nil, storeError(err, "update user instrument")
	}
	return s.reload(ctx, link.ID)
}

// DeleteUserInstrument removes one record
func (s *userInstrumentServiceImpl) DeleteUserInstrument(ctx context.Context, actor auth.Actor, id int64) error {
	if _, err := s.load(ctx, actor, id, auth.ActionDelete); err != nil {
		return err
	}
	if err := s.userInstrumentRepo.Delete(ctx, id); err != nil {
		return storeError(err, "delete user instrument")
	}
	return nil
}

func proficiencyOrDefault(p models.Proficiency) models.Proficiency {
	if p == "" {
		return models.ProficiencyBeginner
	}
	return p
}
