package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusBooked    AppointmentStatus = "booked"
	StatusChecked   AppointmentStatus = "checked"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusLate      AppointmentStatus = "late"
)

const (
	// LateAfter is how long a booked appointment may stay unattended before it is late.
	LateAfter = 2 * time.Hour
	// AutoCancelAfter is how long any open appointment may stay open before it is cancelled.
	AutoCancelAfter = 12 * time.Hour
	// PatientCancelWindow is the minimum notice a patient must give to cancel.
	PatientCancelWindow = 12 * time.Hour

	AutoCancelNote = "auto-cancelled: late"
)

var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusBooked:  {StatusChecked, StatusCancelled, StatusLate},
	StatusLate:    {StatusChecked, StatusCompleted, StatusCancelled},
	StatusChecked: {StatusCompleted, StatusCancelled},
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusBooked, StatusChecked, StatusCompleted, StatusCancelled, StatusLate:
		return true
	}
	return false
}

func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether from -> to is an edge of the appointment lifecycle.
func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionError is returned for a status change outside the lifecycle edges.
type TransitionError struct {
	From AppointmentStatus
	To   AppointmentStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("không thể chuyển trạng thái lịch hẹn từ %s sang %s", e.From, e.To)
}

type Appointment struct {
	gorm.Model
	PatientID        uint              `json:"patient_id" gorm:"not null;index"`
	Patient          *Patient          `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	DoctorID         uint              `json:"doctor_id" gorm:"not null;index"`
	Doctor           *Doctor           `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	ExaminationFeeID *uint             `json:"examination_fee_id"`
	MedicalRecordID  *uint             `json:"medical_record_id"`
	AppointmentTime  time.Time         `json:"appointment_time" gorm:"not null;index"`
	Status           AppointmentStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	ExaminationFee   float64           `json:"examination_fee"`
	ExaminationType  string            `json:"examination_type"`
	Reason           string            `json:"reason"`
	Notes            string            `json:"notes"`
	BookedBy         *uint             `json:"booked_by"`
	ReceptionistID   *uint             `json:"receptionist_id"`
	PharmacistID     *uint             `json:"pharmacist_id"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = StatusBooked
	}
	return nil
}

// TransitionTo moves the appointment along a lifecycle edge. Re-entering the current
// non-terminal status is a no-op.
func (a *Appointment) TransitionTo(to AppointmentStatus) error {
	if a.Status == to && !to.Terminal() {
		return nil
	}
	if !CanTransition(a.Status, to) {
		return &TransitionError{From: a.Status, To: to}
	}
	a.Status = to
	return nil
}

// DeriveStatus computes the status an appointment must have at now given its stored status
// and scheduled time. The second result is false when the stored status is already current.
func DeriveStatus(status AppointmentStatus, at, now time.Time) (AppointmentStatus, bool) {
	if status.Terminal() {
		return status, false
	}
	if !at.After(now.Add(-AutoCancelAfter)) {
		return StatusCancelled, true
	}
	if status == StatusBooked && !at.After(now.Add(-LateAfter)) {
		return StatusLate, true
	}
	return status, false
}

// ApplyTimeRules brings the stored status up to date with the wall clock and reports
// whether anything changed.
func (a *Appointment) ApplyTimeRules(now time.Time) bool {
	next, changed := DeriveStatus(a.Status, a.AppointmentTime, now)
	if !changed {
		return false
	}
	if next == StatusCancelled {
		a.AppendNote(AutoCancelNote)
	}
	a.Status = next
	return true
}

// AppendNote joins text onto the existing notes as "<existing> - <text>".
func (a *Appointment) AppendNote(text string) {
	if text == "" {
		return
	}
	if a.Notes == "" {
		a.Notes = text
		return
	}
	a.Notes = a.Notes + " - " + text
}

// SnapshotFee copies the fee amount and type onto the appointment.
func (a *Appointment) SnapshotFee(fee *ExaminationFee) {
	id := fee.ID
	a.ExaminationFeeID = &id
	a.ExaminationFee = fee.Fee
	a.ExaminationType = fee.ExaminationType
}
