package dto

import (
	"mime/multipart"
	"time"

	"github.com/yigit/rea/internal/app/models"
)

// ExerciseForm carries the non-file multipart fields of exercise create and update
type ExerciseForm struct {
	Category   *string `form:"category" binding:"omitempty,oneof=pitch rhythm"`
	Polyphonic *bool   `form:"polyphonic"`
	ClearMidi  bool    `form:"clear_midi"`
	ClearSvg   bool    `form:"clear_svg"`
}

// ExerciseUpload bundles the form fields with the uploaded files
type ExerciseUpload struct {
	ExerciseForm
	Midi *multipart.FileHeader
	Svg  *multipart.FileHeader
}

// ExerciseResponse represents an exercise with resolved file URLs
type ExerciseResponse struct {
	ID         int64                   `json:"id" example:"1"`
	Midi       *string                 `json:"midi" example:"/media/exercises/midi/3f1c.mid"`
	Svg        *string                 `json:"svg" example:"/media/exercises/svg/3f1c.svg"`
	Category   models.ExerciseCategory `json:"category" example:"pitch"`
	Polyphonic bool                    `json:"polyphonic" example:"false"`
	Created    time.Time               `json:"created"`
	Modified   time.Time               `json:"modified"`
}

// ExerciseStatsResponse counts exercises per category
type ExerciseStatsResponse struct {
	Total      int64                             `json:"total" example:"12"`
	ByCategory map[models.ExerciseCategory]int64 `json:"by_category"`
}

// NewExerciseResponse converts an exercise; url resolves stored paths to public URLs
func NewExerciseResponse(exercise *models.Exercise, url func(string) string) ExerciseResponse {
	resp := ExerciseResponse{
		ID:         exercise.ID,
		Category:   exercise.Category,
		Polyphonic: exercise.Polyphonic,
		Created:    exercise.Created,
		Modified:   exercise.Modified,
	}
	if exercise.Midi != "" {
		u := url(exercise.Midi)
		resp.Midi = &u
	}
	if exercise.Svg != "" {
		u := url(exercise.Svg)
		resp.Svg = &u
	}
	return resp
}
