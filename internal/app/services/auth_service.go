package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/rea/internal/app/auth"
	"github.com/yigit/rea/internal/app/models"
	"github.com/yigit/rea/internal/app/models/dto"
	"github.com/yigit/rea/internal/app/repositories"
	"github.com/yigit/rea/internal/pkg/apperrors"
	pkgauth "github.com/yigit/rea/internal/pkg/auth"
	"github.com/yigit/rea/internal/pkg/metrics"
)

// AuthService handles registration, login and token resolution
type AuthService interface {
	Register(ctx context.Context, actor auth.Actor, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// ResolveActor turns a token into the actor it identifies
	ResolveActor(ctx context.Context, token string) (auth.Actor, error)
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	userRepo   repositories.IUserRepository
	authz      auth.Authorizer
	jwtService *pkgauth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	authz auth.Authorizer,
	jwtService *pkgauth.JWTService,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		authz:      authz,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Register creates an account and signs the new user in
func (s *authServiceImpl) Register(ctx context.Context, actor auth.Actor, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := s.authz.Authorize(actor, auth.ResourceUser, auth.ActionCreate, auth.NoTarget); err != nil {
		return nil, err
	}

	user, err := registerUser(ctx, s.userRepo, req, false)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", user.ID).Str("userType", string(user.UserType)).Msg("User registered")

	return s.session(user)
}

// Login checks the credentials and issues a token
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			metrics.RecordLogin("failure")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, storeError(err, "find user")
	}

	if !pkgauth.CheckPassword(user.Password, req.Password) {
		metrics.RecordLogin("failure")
		s.logger.Debug().Str("username", req.Username).Msg("Login rejected")
		return nil, apperrors.ErrInvalidCredentials
	}

	metrics.RecordLogin("success")
	return s.session(user)
}

func (s *authServiceImpl) session(user *models.User) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to generate access token")
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   expiresIn,
		},
		User: dto.NewUserResponse(user, nil),
	}, nil
}

// ResolveActor validates the token and loads the user it names. Tokens of
// deleted users are rejected.
func (s *authServiceImpl) ResolveActor(ctx context.Context, token string) (auth.Actor, error) {
	claims, err := s.jwtService.ValidateAndExtractClaims(token)
	if err != nil {
		if errors.Is(err, pkgauth.ErrExpiredToken) {
			return auth.Anonymous(), apperrors.ErrTokenExpired
		}
		return auth.Anonymous(), fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return auth.Anonymous(), fmt.Errorf("%w: user no longer exists", apperrors.ErrTokenInvalid)
		}
		return auth.Anonymous(), storeError(err, "load token user")
	}
	return auth.ActorFromUser(user), nil
}
