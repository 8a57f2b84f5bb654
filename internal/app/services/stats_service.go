package services

import (
	"context"

	"github.com/yigit/rea/internal/app/auth"
	"github.com/yigit/rea/internal/app/models"
	"github.com/yigit/rea/internal/app/models/dto"
	"github.com/yigit/rea/internal/app/repositories"
)

// StatsService serves the landing page counters
type StatsService interface {
	GetStats(ctx context.Context, actor auth.Actor) (*dto.StatsResponse, error)
}

type statsServiceImpl struct {
	userRepo       repositories.IUserRepository
	instrumentRepo repositories.IInstrumentRepository
	authz          auth.Authorizer
}

// NewStatsService creates a new StatsService
func NewStatsService(userRepo repositories.IUserRepository, instrumentRepo repositories.IInstrumentRepository, authz auth.Authorizer) StatsService {
	return &statsServiceImpl{userRepo: userRepo, instrumentRepo: instrumentRepo, authz: authz}
}

// GetStats counts instruments, teachers and students
func (s *statsServiceImpl) GetStats(ctx context.Context, actor auth.Actor) (*dto.StatsResponse, error) {
	if err := s.authz.Authorize(actor, auth.ResourceStats, auth.ActionRetrieve, auth.NoTarget); err != nil {
		return nil, err
	}

	instruments, err := s.instrumentRepo.Count(ctx)
	if err != nil {
		return nil, storeError(err, "count instruments")
	}
	teachers, err := s.userRepo.CountByType(ctx, models.UserTypeTeacher)
	if err != nil {
		return nil, storeError(err, "count teachers")
	}
	students, err := s.userRepo.CountByType(ctx, models.UserTypeStudent)
	if err != nil {
		return nil, storeError(err, "count students")
	}

	return &dto.StatsResponse{
		InstrumentsCount: instruments,
		TeachersCount:    teachers,
		StudentsCount:    students,
	}, nil
}
