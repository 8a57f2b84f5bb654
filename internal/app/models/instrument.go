package models

// Instrument defines a catalog entry based on the 'instruments' table
type Instrument struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Family      string `json:"family" db:"family"` // e.g. String, Woodwind, Brass, Percussion
	Description string `json:"description" db:"description"`
}

// UserInstrument links a user to an instrument with a proficiency record.
// The (UserID, InstrumentID) pair is unique.
type UserInstrument struct {
	ID                int64       `json:"id" db:"id"`
	UserID            int64       `json:"user" db:"user_id"`
	InstrumentID      int64       `json:"instrument" db:"instrument_id"`
	Proficiency       Proficiency `json:"proficiency" db:"proficiency"`
	YearsOfExperience int         `json:"years_of_experience" db:"years_of_experience"`
	Notes             string      `json:"notes" db:"notes"`
	Instrument        *Instrument `json:"-"` // Relation, no db tag
}
