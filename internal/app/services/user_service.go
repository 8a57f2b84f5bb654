package services

import (
	"context"
	"fmt"

	"github.com/yigit/rea/internal/app/auth"
	"github.com/yigit/rea/internal/app/filters"
	"github.com/yigit/rea/internal/app/models"
	"github.com/yigit/rea/internal/app/models/dto"
	"github.com/yigit/rea/internal/app/repositories"
	"github.com/yigit/rea/internal/pkg/apperrors"
	pkgauth "github.com/yigit/rea/internal/pkg/auth"
)

// UserService defines the interface for user account operations
type UserService interface {
	ListUsers(ctx context.Context, actor auth.Actor, filter filters.UserFilter, page PageRequest) (*dto.PaginatedResponse, error)
	ListTeachers(ctx context.Context, actor auth.Actor, filter filters.UserFilter, page PageRequest) (*dto.PaginatedResponse, error)
	ListStudents(ctx context.Context, actor auth.Actor, filter filters.UserFilter, page PageRequest) (*dto.PaginatedResponse, error)
	GetUser(ctx context.Context, actor auth.Actor, id int64) (*dto.UserResponse, error)
	GetMe(ctx context.Context, actor auth.Actor) (*dto.UserResponse, error)
	GetUserInstruments(ctx context.Context, actor auth.Actor, id int64) ([]dto.UserInstrumentResponse, error)
	UpdateUser(ctx context.Context, actor auth.Actor, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	PatchUser(ctx context.Context, actor auth.Actor, id int64, req *dto.PatchUserRequest) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, actor auth.Actor, id int64) error
	// CheckWrite reports whether actor may modify user id, before any input is read
	CheckWrite(ctx context.Context, actor auth.Actor, id int64, action auth.Action) error
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	userRepo           repositories.IUserRepository
	userInstrumentRepo repositories.IUserInstrumentRepository
	authz              auth.Authorizer
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repositories.IUserRepository,
	userInstrumentRepo repositories.IUserInstrumentRepository,
	authz auth.Authorizer,
) UserService {
	return &userServiceImpl{
		userRepo:           userRepo,
		userInstrumentRepo: userInstrumentRepo,
		authz:              authz,
	}
}

// registerUser stores a new account. Shared by registration and the admin seed.
func registerUser(ctx context.Context, repo repositories.IUserRepository, req *dto.RegisterRequest, isStaff bool) (*models.User, error) {
	dob, err := dto.ParseDate(req.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("%w: date_of_birth must be YYYY-MM-DD", apperrors.ErrValidationFailed)
	}

	hashed, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username:    req.Username,
		Password:    hashed,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		UserType:    req.UserType,
		DateOfBirth: dob,
		IsStaff:     isStaff,
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, storeError(err, "create user")
	}
	return user, nil
}

// withInstruments loads the instrument records of every user in one call
func (s *userServiceImpl) withInstruments(ctx context.Context, users []*models.User) (map[int64][]*models.UserInstrument, error) {
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	grouped, err := s.userInstrumentRepo.ListByUserIDs(ctx, ids)
	if err != nil {
		return nil, storeError(err, "load user instruments")
	}
	return grouped, nil
}

func (s *userServiceImpl) list(ctx context.Context, actor auth.Actor, filter filters.UserFilter, page PageRequest) ([]*models.User, map[int64][]*models.UserInstrument, int64, error) {
	if err := s.authz.Authorize(actor, auth.ResourceUser, auth.ActionList, auth.NoTarget); err != nil {
		return nil, nil, 0, err
	}

	offset, limit := page.window()
	users, total, err := s.userRepo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, nil, 0, storeError(err, "list users")
	}
	grouped, err := s.withInstruments(ctx, users)
	if err != nil {
		return nil, nil, 0, err
	}
	return users, grouped, total, nil
}

// ListUsers returns a page of users matching the filter
func (s *userServiceImpl) ListUsers(ctx context.Context, actor auth.Actor, filter filters.UserFilter, page PageRequest) (*dto.PaginatedResponse, error) {
	users, grouped, total, err := s.list(ctx, actor, filter, page)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, dto.NewUserResponse(u, grouped[u.ID]))
	}
	return paginate(items, total, page), nil
}

// ListTeachers returns the teacher directory
func (s *userServiceImpl) ListTeachers(ctx context.Context, actor auth.Actor, filter filters.UserFilter, page PageRequest) (*dto.PaginatedResponse, error) {
	users, grouped, total, err := s.list(ctx, actor, filter.WithUserType(models.UserTypeTeacher), page)
	if err != nil {
		return nil, err
	}

	items := make([]dto.TeacherResponse, 0, len(users))
	for _, u := range users {
		items = append(items, dto.NewTeacherResponse(u, grouped[u.ID]))
	}
	return paginate(items, total, page), nil
}

// ListStudents returns the student directory
func (s *userServiceImpl) ListStudents(ctx context.Context, actor auth.Actor, filter filters.UserFilter, page PageRequest) (*dto.PaginatedResponse, error) {
	users, grouped, total, err := s.list(ctx, actor, filter.WithUserType(models.UserTypeStudent), page)
	if err != nil {
		return nil, err
	}

	items := make([]dto.StudentResponse, 0, len(users))
	for _, u := range users {
		items = append(items, dto.NewStudentResponse(u, grouped[u.ID]))
	}
	return paginate(items, total, page), nil
}

func (s *userServiceImpl) response(ctx context.Context, user *models.User) (*dto.UserResponse, error) {
	grouped, err := s.withInstruments(ctx, []*models.User{user})
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user, grouped[user.ID]), nil
}

// GetUser retrieves a user by ID
func (s *userServiceImpl) GetUser(ctx context.Context, actor auth.Actor, id int64) (*dto.UserResponse, error) {
	if err := s.authz.Authorize(actor, auth.ResourceUser, auth.ActionRetrieve, auth.NoTarget); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "get user")
	}
	return s.response(ctx, user)
}

// GetMe retrieves the acting user
func (s *userServiceImpl) GetMe(ctx context.Context, actor auth.Actor) (*dto.UserResponse, error) {
	if err := s.authz.Authorize(actor, auth.ResourceUser, auth.ActionRetrieve, auth.NoTarget); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, actor, actor.ID())
}

// GetUserInstruments lists every instrument record of a user
func (s *userServiceImpl) GetUserInstruments(ctx context.Context, actor auth.Actor, id int64) ([]dto.UserInstrumentResponse, error) {
	if err := s.authz.Authorize(actor, auth.ResourceUser, auth.ActionRetrieve, auth.NoTarget); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "get user")
	}
	grouped, err := s.withInstruments(ctx, []*models.User{user})
	if err != nil {
		return nil, err
	}
	return dto.NewUserInstrumentResponses(grouped[user.ID]), nil
}

// loadForWrite fetches a user and checks the actor may modify it
func (s *userServiceImpl) loadForWrite(ctx context.Context, actor auth.Actor, id int64, action auth.Action) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "get user")
	}
	if err := s.authz.Authorize(actor, auth.ResourceUser, action, auth.OwnedBy(user.ID)); err != nil {
		return nil, err
	}
	return user, nil
}

// CheckWrite authorizes a write on user id
func (s *userServiceImpl) CheckWrite(ctx context.Context, actor auth.Actor, id int64, action auth.Action) error {
	_, err := s.loadForWrite(ctx, actor, id, action)
	return err
}

func (s *userServiceImpl) save(ctx context.Context, user *models.User) (*dto.UserResponse, error) {
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, storeError(err, "update user")
	}
	return s.response(ctx, user)
}

// UpdateUser replaces the writable fields of a user
func (s *userServiceImpl) UpdateUser(ctx context.Context, actor auth.Actor, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.loadForWrite(ctx, actor, id, auth.ActionUpdate)
	if err != nil {
		return nil, err
	}

	dob, err := dto.ParseDate(req.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("%w: date_of_birth must be YYYY-MM-DD", apperrors.ErrValidationFailed)
	}

	user.Username = req.Username
	user.Email = req.Email
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.UserType = req.UserType
	user.DateOfBirth = dob
	return s.save(ctx, user)
}

// PatchUser applies the fields present in the request
func (s *userServiceImpl) PatchUser(ctx context.Context, actor auth.Actor, id int64, req *dto.PatchUserRequest) (*dto.UserResponse, error) {
	user, err := s.loadForWrite(ctx, actor, id, auth.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.UserType != nil {
		user.UserType = *req.UserType
	}
	if req.DateOfBirth != nil {
		dob, err := dto.ParseDate(req.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("%w: date_of_birth must be YYYY-MM-DD", apperrors.ErrValidationFailed)
		}
		user.DateOfBirth = dob
	}
	if req.Password != nil {
		hashed, err := pkgauth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		user.Password = hashed
	}
	return s.save(ctx, user)
}

// DeleteUser removes a user together with their instrument records
func (s *userServiceImpl) DeleteUser(ctx context.Context, actor auth.Actor, id int64) error {
	if _, err := s.loadForWrite(ctx, actor, id, auth.ActionDelete); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return storeError(err, "delete user")
	}
	return nil
}
