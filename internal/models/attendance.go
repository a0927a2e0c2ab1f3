package models

import "time"

// CheckInMedical is the sentinel check-in value for approved medical leave.
// A teacher with this value, or with no record at all, is absent for the day.
const CheckInMedical = "MEDICAL"

// AttendanceRecord is one teacher's attendance for one date. CheckIn holds
// an HH:MM clock value or the MEDICAL sentinel.
type AttendanceRecord struct {
	ID       string    `db:"id" json:"id"`
	UserID   string    `db:"user_id" json:"user_id"`
	Date     time.Time `db:"date" json:"date"`
	CheckIn  string    `db:"check_in" json:"check_in"`
	CheckOut *string   `db:"check_out" json:"check_out,omitempty"`
}

// Present reports whether the record represents an on-site teacher.
func (r *AttendanceRecord) Present() bool {
	return r != nil && r.CheckIn != "" && r.CheckIn != CheckInMedical
}

// AttendanceKey keys attendance lookups by (user, date).
func AttendanceKey(userID string, date time.Time) string {
	return userID + "|" + DateKey(date)
}
