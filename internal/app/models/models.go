package models

// UserType defines the kind of account a user holds
type UserType string

const (
	UserTypeTeacher UserType = "teacher"
	UserTypeStudent UserType = "student"
)

// Valid reports whether t is a known user type
func (t UserType) Valid() bool {
	return t == UserTypeTeacher || t == UserTypeStudent
}

// Proficiency is the ordinal skill level of a user on an instrument
type Proficiency string

const (
	ProficiencyBeginner     Proficiency = "beginner"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyAdvanced     Proficiency = "advanced"
	ProficiencyExpert       Proficiency = "expert"
)

// Valid reports whether p is a known proficiency level
func (p Proficiency) Valid() bool {
	switch p {
	case ProficiencyBeginner, ProficiencyIntermediate, ProficiencyAdvanced, ProficiencyExpert:
		return true
	}
	return false
}

// ExerciseCategory is the training focus of an exercise
type ExerciseCategory string

const (
	CategoryPitch  ExerciseCategory = "pitch"
	CategoryRhythm ExerciseCategory = "rhythm"
)

// ExerciseCategories lists every category in display order
var ExerciseCategories = []ExerciseCategory{CategoryPitch, CategoryRhythm}

// Valid reports whether c is a known category
func (c ExerciseCategory) Valid() bool {
	return c == CategoryPitch || c == CategoryRhythm
}
