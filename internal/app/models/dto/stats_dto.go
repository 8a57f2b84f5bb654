package dto

// StatsResponse holds the landing page counters
type StatsResponse struct {
	InstrumentsCount int64 `json:"instruments_count" example:"8"`
	TeachersCount    int64 `json:"teachers_count" example:"3"`
	StudentsCount    int64 `json:"students_count" example:"42"`
}
