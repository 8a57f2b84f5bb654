package dto

import "github.com/yigit/rea/internal/app/models"

// InstrumentRequest is the body of instrument create and full update
type InstrumentRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Family      string `json:"family" binding:"required,max=50"`
	Description string `json:"description"`
}

// PatchInstrumentRequest is the body of a partial instrument update
type PatchInstrumentRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Family      *string `json:"family" binding:"omitempty,min=1,max=50"`
	Description *string `json:"description"`
}

// InstrumentResponse represents an instrument
type InstrumentResponse struct {
	ID          int64  `json:"id" example:"1"`
	Name        string `json:"name" example:"Violin"`
	Family      string `json:"family" example:"String"`
	Description string `json:"description" example:"Four-stringed bowed instrument"`
}

// NewInstrumentResponse converts a model into its response
func NewInstrumentResponse(instrument *models.Instrument) InstrumentResponse {
	return InstrumentResponse{
		ID:          instrument.ID,
		Name:        instrument.Name,
		Family:      instrument.Family,
		Description: instrument.Description,
	}
}

// NewInstrumentResponses converts a list of models
func NewInstrumentResponses(instruments []*models.Instrument) []InstrumentResponse {
	out := make([]InstrumentResponse, 0, len(instruments))
	for _, i := range instruments {
		out = append(out, NewInstrumentResponse(i))
	}
	return out
}
