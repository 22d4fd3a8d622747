package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Specialty struct {
	gorm.Model
	Code        string `json:"code" gorm:"uniqueIndex;not null"`
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

func (s *Specialty) Validate() error {
	s.Code = strings.ToLower(strings.TrimSpace(s.Code))
	if s.Code == "" {
		return fieldError("code", "bắt buộc")
	}
	if strings.TrimSpace(s.Name) == "" {
		return fieldError("name", "bắt buộc")
	}
	return nil
}

func (s *Specialty) BeforeSave(tx *gorm.DB) error {
	return s.Validate()
}

type ExaminationFee struct {
	gorm.Model
	ExaminationType string     `json:"examination_type" gorm:"uniqueIndex;not null"`
	Fee             float64    `json:"fee" gorm:"not null"`
	Description     string     `json:"description"`
	SpecialtyID     *uint      `json:"specialty_id"`
	Specialty       *Specialty `json:"specialty,omitempty" gorm:"foreignKey:SpecialtyID"`
	IsActive        bool       `json:"is_active"`
}

func (f *ExaminationFee) Validate() error {
	if strings.TrimSpace(f.ExaminationType) == "" {
		return fieldError("examination_type", "bắt buộc")
	}
	if f.Fee < 0 {
		return fieldError("fee", "không được âm")
	}
	return nil
}

func (f *ExaminationFee) BeforeSave(tx *gorm.DB) error {
	return f.Validate()
}

type Supplier struct {
	gorm.Model
	Name          string `json:"name" gorm:"uniqueIndex;not null"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	IsActive      bool   `json:"is_active"`
}

func (s *Supplier) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fieldError("name", "bắt buộc")
	}
	return nil
}

func (s *Supplier) BeforeSave(tx *gorm.DB) error {
	return s.Validate()
}

type MedicineUnit string

const (
	UnitTablet  MedicineUnit = "tablet"
	UnitCapsule MedicineUnit = "capsule"
	UnitBlister MedicineUnit = "blister"
	UnitBox     MedicineUnit = "box"
	UnitBottle  MedicineUnit = "bottle"
	UnitVial    MedicineUnit = "vial"
	UnitAmpoule MedicineUnit = "ampoule"
	UnitSachet  MedicineUnit = "sachet"
	UnitTube    MedicineUnit = "tube"
)

func (u MedicineUnit) Valid() bool {
	switch u {
	case UnitTablet, UnitCapsule, UnitBlister, UnitBox, UnitBottle, UnitVial, UnitAmpoule, UnitSachet, UnitTube:
		return true
	}
	return false
}

type Medicine struct {
	gorm.Model
	DrugName        string       `json:"drug_name" gorm:"uniqueIndex;not null"`
	Description     string       `json:"description"`
	Unit            MedicineUnit `json:"unit" gorm:"type:varchar(20);not null"`
	StockQuantity   int          `json:"stock_quantity" gorm:"not null;default:0"`
	InitialQuantity int          `json:"initial_quantity" gorm:"not null;default:0"`
	Price           float64      `json:"price" gorm:"not null"`
	ImportPrice     float64      `json:"import_price"`
	SupplierID      *uint        `json:"supplier_id"`
	Supplier        *Supplier    `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	ExpiryDate      time.Time    `json:"expiry_date" gorm:"not null"`
	IsActive        bool         `json:"is_active"`
	PaymentStatus   bool         `json:"payment_status"`
}

func (m *Medicine) Validate() error {
	if strings.TrimSpace(m.DrugName) == "" {
		return fieldError("drug_name", "bắt buộc")
	}
	if !m.Unit.Valid() {
		return fieldError("unit", "không hợp lệ")
	}
	if m.StockQuantity < 0 {
		return fieldError("stock_quantity", "không được âm")
	}
	if m.InitialQuantity < 0 {
		return fieldError("initial_quantity", "không được âm")
	}
	if m.Price < 0 || m.ImportPrice < 0 {
		return fieldError("price", "không được âm")
	}
	if m.ExpiryDate.IsZero() {
		return fieldError("expiry_date", "bắt buộc")
	}
	return nil
}

// Expired reports whether the expiry date has passed at now.
func (m *Medicine) Expired(now time.Time) bool {
	return !m.ExpiryDate.After(now)
}

// RefreshActive forces the medicine inactive once it has expired or its supplier is inactive.
// It never re-activates a medicine.
func (m *Medicine) RefreshActive(now time.Time, supplierActive bool) {
	if m.Expired(now) || !supplierActive {
		m.IsActive = false
	}
}

func (m *Medicine) BeforeSave(tx *gorm.DB) error {
	if err := m.Validate(); err != nil {
		return err
	}
	m.RefreshActive(time.Now(), true)
	return nil
}
