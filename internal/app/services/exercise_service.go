package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/yigit/rea/internal/app/auth"
	"github.com/yigit/rea/internal/app/filters"
	"github.com/yigit/rea/internal/app/models"
	"github.com/yigit/rea/internal/app/models/dto"
	"github.com/yigit/rea/internal/app/repositories"
	"github.com/yigit/rea/internal/pkg/apperrors"
	"github.com/yigit/rea/internal/pkg/filestorage"
	"github.com/yigit/rea/internal/pkg/logger"
)

// Upload directories inside the storage root
const (
	MidiDir = "exercises/midi"
	SvgDir  = "exercises/svg"
)

// ExerciseService defines the interface for exercise library operations
type ExerciseService interface {
	ListExercises(ctx context.Context, actor auth.Actor, filter filters.ExerciseFilter, page PageRequest) (*dto.PaginatedResponse, error)
	GetExercise(ctx context.Context, actor auth.Actor, id int64) (*dto.ExerciseResponse, error)
	CreateExercise(ctx context.Context, actor auth.Actor, upload *dto.ExerciseUpload) (*dto.ExerciseResponse, error)
	UpdateExercise(ctx context.Context, actor auth.Actor, id int64, upload *dto.ExerciseUpload) (*dto.ExerciseResponse, error)
	DeleteExercise(ctx context.Context, actor auth.Actor, id int64) error
	GetStats(ctx context.Context, actor auth.Actor) (*dto.ExerciseStatsResponse, error)
	// CheckWrite reports whether actor may change the library, before any upload is read
	CheckWrite(actor auth.Actor, action auth.Action) error
}

// exerciseServiceImpl implements ExerciseService
type exerciseServiceImpl struct {
	exerciseRepo repositories.IExerciseRepository
	storage      filestorage.FileStorage
	authz        auth.Authorizer
}

// NewExerciseService creates a new ExerciseService
func NewExerciseService(
	exerciseRepo repositories.IExerciseRepository,
	storage filestorage.FileStorage,
	authz auth.Authorizer,
) ExerciseService {
	return &exerciseServiceImpl{
		exerciseRepo: exerciseRepo,
		storage:      storage,
		authz:        authz,
	}
}

// CheckWrite authorizes a library write
func (s *exerciseServiceImpl) CheckWrite(actor auth.Actor, action auth.Action) error {
	return s.authz.Authorize(actor, auth.ResourceExercise, action, auth.NoTarget)
}

func (s *exerciseServiceImpl) response(exercise *models.Exercise) *dto.ExerciseResponse {
	resp := dto.NewExerciseResponse(exercise, s.storage.URL)
	return &resp
}

// ListExercises returns a page of exercises, newest first
func (s *exerciseServiceImpl) ListExercises(ctx context.Context, actor auth.Actor, filter filters.ExerciseFilter, page PageRequest) (*dto.PaginatedResponse, error) {
	if err := s.authz.Authorize(actor, auth.ResourceExercise, auth.ActionList, auth.NoTarget); err != nil {
		return nil, err
	}

	offset, limit := page.window()
	exercises, total, err := s.exerciseRepo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, storeError(err, "list exercises")
	}

	items := make([]dto.ExerciseResponse, 0, len(exercises))
	for _, e := range exercises {
		items = append(items, *s.response(e))
	}
	return paginate(items, total, page), nil
}

// GetExercise retrieves an exercise by ID
func (s *exerciseServiceImpl) GetExercise(ctx context.Context, actor auth.Actor, id int64) (*dto.ExerciseResponse, error) {
	if err := s.authz.Authorize(actor, auth.ResourceExercise, auth.ActionRetrieve, auth.NoTarget); err != nil {
		return nil, err
	}

	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "get exercise")
	}
	return s.response(exercise), nil
}

// saveUploads stores the uploaded files. On failure nothing stays on disk.
func (s *exerciseServiceImpl) saveUploads(midi, svg *multipart.FileHeader) (midiPath, svgPath string, err error) {
	if midi != nil {
		if midiPath, err = s.storage.SaveFileWithPath(midi, MidiDir); err != nil {
			return "", "", fmt.Errorf("failed to save midi file: %w", err)
		}
	}
	if svg != nil {
		if svgPath, err = s.storage.SaveFileWithPath(svg, SvgDir); err != nil {
			s.removeFiles(midiPath)
			return "", "", fmt.Errorf("failed to save svg file: %w", err)
		}
	}
	return midiPath, svgPath, nil
}

// removeFiles deletes stored files; failures are only logged
func (s *exerciseServiceImpl) removeFiles(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := s.storage.DeleteFile(p); err != nil {
			logger.Warn().Err(err).Str("path", p).Msg("Failed to remove exercise file")
		}
	}
}

// CreateExercise stores the uploaded files and the exercise record
func (s *exerciseServiceImpl) CreateExercise(ctx context.Context, actor auth.Actor, upload *dto.ExerciseUpload) (*dto.ExerciseResponse, error) {
	if err := s.authz.Authorize(actor, auth.ResourceExercise, auth.ActionCreate, auth.NoTarget); err != nil {
		return nil, err
	}
	if upload.Midi == nil && upload.Svg == nil {
		return nil, apperrors.ErrExerciseFileRequired
	}

	exercise := &models.Exercise{Category: models.CategoryPitch}
	if upload.Category != nil {
		exercise.Category = models.ExerciseCategory(*upload.Category)
	}
	if upload.Polyphonic != nil {
		exercise.Polyphonic = *upload.Polyphonic
	}

	midiPath, svgPath, err := s.saveUploads(upload.Midi, upload.Svg)
	if err != nil {
		return nil, err
	}
	exercise.Midi, exercise.Svg = midiPath, svgPath

	if err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		s.removeFiles(midiPath, svgPath)
		return nil, storeError(err, "create exercise")
	}
	logger.Info().Int64("exerciseID", exercise.ID).Str("category", string(exercise.Category)).Msg("Exercise created")
	return s.response(exercise), nil
}

// UpdateExercise merges the upload into the stored exercise. An uploaded file
// replaces the stored one and a clear flag removes it; the result must keep
// at least one file.
func (s *exerciseServiceImpl) UpdateExercise(ctx context.Context, actor auth.Actor, id int64, upload *dto.ExerciseUpload) (*dto.ExerciseResponse, error) {
	if err := s.authz.Authorize(actor, auth.ResourceExercise, auth.ActionUpdate, auth.NoTarget); err != nil {
		return nil, err
	}

	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "get exercise")
	}

	keepMidi := upload.Midi != nil || (exercise.Midi != "" && !upload.ClearMidi)
	keepSvg := upload.Svg != nil || (exercise.Svg != "" && !upload.ClearSvg)
	if !keepMidi && !keepSvg {
		return nil, apperrors.ErrExerciseFileRequired
	}

	newMidi, newSvg, err := s.saveUploads(upload.Midi, upload.Svg)
	if err != nil {
		return nil, err
	}

	var stale []string
	if upload.Midi != nil || upload.ClearMidi {
		stale = append(stale, exercise.Midi)
		exercise.Midi = newMidi
	}
	if upload.Svg != nil || upload.ClearSvg {
		stale = append(stale, exercise.Svg)
		exercise.Svg = newSvg
	}
	if upload.Category != nil {
		exercise.Category = models.ExerciseCategory(*upload.Category)
	}
	if upload.Polyphonic != nil {
		exercise.Polyphonic = *upload.Polyphonic
	}

	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		s.removeFiles(newMidi, newSvg)
		return nil, storeError(err, "update exercise")
	}
	s.removeFiles(stale...)
	return s.response(exercise), nil
}

// DeleteExercise removes the exercise and its files
func (s *exerciseServiceImpl) DeleteExercise(ctx context.Context, actor auth.Actor, id int64) error {
	if err := s.authz.Authorize(actor, auth.ResourceExercise, auth.ActionDelete, auth.NoTarget); err != nil {
		return err
	}

	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		return storeError(err, "get exercise")
	}
	if err := s.exerciseRepo.Delete(ctx, id); err != nil {
		return storeError(err, "delete exercise")
	}
	s.removeFiles(exercise.Midi, exercise.Svg)
	return nil
}

// GetStats counts exercises per category
func (s *exerciseServiceImpl) GetStats(ctx context.Context, actor auth.Actor) (*dto.ExerciseStatsResponse, error) {
	if err := s.authz.Authorize(actor, auth.ResourceExercise, auth.ActionList, auth.NoTarget); err != nil {
		return nil, err
	}

	counts, err := s.exerciseRepo.CountByCategory(ctx)
	if err != nil {
		return nil, storeError(err, "count exercises")
	}

	stats := &dto.ExerciseStatsResponse{ByCategory: counts}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}
