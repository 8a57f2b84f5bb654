package models

import "time"

// Exercise is a practice content unit stored in the 'exercises' table.
// Midi and Svg hold storage-relative file paths; an empty string means no file.
type Exercise struct {
	ID         int64            `json:"id" db:"id"`
	Midi       string           `json:"midi,omitempty" db:"midi"`
	Svg        string           `json:"svg,omitempty" db:"svg"`
	Category   ExerciseCategory `json:"category" db:"category"`
	Polyphonic bool             `json:"polyphonic" db:"polyphonic"`
	Created    time.Time        `json:"created" db:"created"`
	Modified   time.Time        `json:"modified" db:"modified"`
}

// HasFile reports whether at least one of the file references is set
func (e *Exercise) HasFile() bool {
	return e.Midi != "" || e.Svg != ""
}
