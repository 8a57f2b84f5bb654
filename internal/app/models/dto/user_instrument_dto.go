package dto

import "github.com/yigit/rea/internal/app/models"

// UserInstrumentRequest is the body of user instrument create and full update
type UserInstrumentRequest struct {
	Instrument        int64              `json:"instrument" binding:"required,min=1"`
	Proficiency       models.Proficiency `json:"proficiency" binding:"omitempty,oneof=beginner intermediate advanced expert"`
	YearsOfExperience int                `json:"years_of_experience" binding:"min=0"`
	Notes             string             `json:"notes"`
}

// PatchUserInstrumentRequest is the body of a partial user instrument update
type PatchUserInstrumentRequest struct {
	Instrument        *int64              `json:"instrument" binding:"omitempty,min=1"`
	Proficiency       *models.Proficiency `json:"proficiency" binding:"omitempty,oneof=beginner intermediate advanced expert"`
	YearsOfExperience *int                `json:"years_of_experience" binding:"omitempty,min=0"`
	Notes             *string             `json:"notes"`
}

// UserInstrumentResponse represents one proficiency record
type UserInstrumentResponse struct {
	ID                int64               `json:"id" example:"1"`
	User              int64               `json:"user" example:"5"`
	Instrument        int64               `json:"instrument" example:"3"`
	InstrumentDetails *InstrumentResponse `json:"instrument_details"`
	InstrumentName    string              `json:"instrument_name" example:"Violin"`
	Proficiency       models.Proficiency  `json:"proficiency" example:"beginner"`
	YearsOfExperience int                 `json:"years_of_experience" example:"0"`
	Notes             string              `json:"notes"`
}

// NewUserInstrumentResponse converts a link into its response
func NewUserInstrumentResponse(link *models.UserInstrument) UserInstrumentResponse {
	resp := UserInstrumentResponse{
		ID:                link.ID,
		User:              link.UserID,
		Instrument:        link.InstrumentID,
		Proficiency:       link.Proficiency,
		YearsOfExperience: link.YearsOfExperience,
		Notes:             link.Notes,
	}
	if link.Instrument != nil {
		details := NewInstrumentResponse(link.Instrument)
		resp.InstrumentDetails = &details
		resp.InstrumentName = link.Instrument.Name
	}
	return resp
}

// NewUserInstrumentResponses converts a list of links
func NewUserInstrumentResponses(links []*models.UserInstrument) []UserInstrumentResponse {
	out := make([]UserInstrumentResponse, 0, len(links))
	for _, l := range links {
		out = append(out, NewUserInstrumentResponse(l))
	}
	return out
}
