package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type RecordStatus string

const (
	RecordDraft     RecordStatus = "draft"
	RecordCompleted RecordStatus = "completed"
	RecordDispensed RecordStatus = "dispensed"
)

func (s RecordStatus) Valid() bool {
	return s == RecordDraft || s == RecordCompleted || s == RecordDispensed
}

type PrescribedMedication struct {
	MedicineID   uint   `json:"medicine_id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions"`
}

// Prescription is the ordered medication list of a record, stored as a JSON document.
type Prescription []PrescribedMedication

// Value implements the driver.Valuer interface
func (p Prescription) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (p *Prescription) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal Prescription: unsupported type %T", value)
	}

	return json.Unmarshal(data, p)
}

// Quantities sums the requested quantity per medicine, keeping first-seen order.
func (p Prescription) Quantities() ([]uint, map[uint]int) {
	order := make([]uint, 0, len(p))
	totals := make(map[uint]int, len(p))
	for _, line := range p {
		if _, seen := totals[line.MedicineID]; !seen {
			order = append(order, line.MedicineID)
		}
		totals[line.MedicineID] += line.Quantity
	}
	return order, totals
}

type MedicalRecord struct {
	gorm.Model
	AppointmentID uint         `json:"appointment_id" gorm:"uniqueIndex;not null"`
	PatientID     uint         `json:"patient_id" gorm:"not null;index"`
	Patient       *Patient     `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	DoctorID      uint         `json:"doctor_id" gorm:"not null;index"`
	Doctor        *Doctor      `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	Symptoms      string       `json:"symptoms"`
	Diagnosis     string       `json:"diagnosis" gorm:"not null"`
	Treatment     string       `json:"treatment" gorm:"not null"`
	Notes         string       `json:"notes"`
	Medications   Prescription `json:"medications_prescribed" gorm:"type:jsonb"`
	Status        RecordStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	TotalCost     float64      `json:"total_cost"`
	DispensedAt   *time.Time   `json:"dispensed_at,omitempty"`
}

func (r *MedicalRecord) Validate() error {
	if strings.TrimSpace(r.Diagnosis) == "" {
		return fieldError("diagnosis", "bắt buộc")
	}
	if strings.TrimSpace(r.Treatment) == "" {
		return fieldError("treatment", "bắt buộc")
	}
	if r.Status == "" {
		r.Status = RecordDraft
	}
	if !r.Status.Valid() {
		return fieldError("status", "không hợp lệ")
	}
	for i, line := range r.Medications {
		if line.MedicineID == 0 {
			return fieldError(fmt.Sprintf("medications_prescribed[%d].medicine_id", i), "bắt buộc")
		}
		if line.Quantity < 1 {
			return fieldError(fmt.Sprintf("medications_prescribed[%d].quantity", i), "phải lớn hơn 0")
		}
	}
	return nil
}

func (r *MedicalRecord) BeforeSave(tx *gorm.DB) error {
	return r.Validate()
}
