package models

import "time"

// Shift records a staff clock-in/clock-out cycle. A user has at most one
// active shift.
type Shift struct {
	Model
	UserID     uint       `json:"user_id" gorm:"index"`
	FacilityID string     `json:"facility_id"`
	ClockIn    time.Time  `json:"clock_in"`
	ClockOut   *time.Time `json:"clock_out,omitempty"`
	Notes      string     `json:"notes"`
}

// Active reports whether the shift is still open.
func (s *Shift) Active() bool {
	return s.ClockOut == nil
}

// Elapsed returns the time worked so far.
func (s *Shift) Elapsed(now time.Time) time.Duration {
	if s.ClockOut != nil {
		return s.ClockOut.Sub(s.ClockIn)
	}
	return now.Sub(s.ClockIn)
}

type ClockInRequest struct {
	FacilityID string `json:"facility_id" binding:"required"`
	Notes      string `json:"notes"`
}
