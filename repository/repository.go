package repository

import (
	"context"
	"errors"
	"time"

	"github.com/meinhoongagan/clinic-app/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

type AppointmentFilter struct {
	From      *time.Time
	To        *time.Time
	DoctorID  uint
	PatientID uint
	Status    models.AppointmentStatus
}

type MedicineFilter struct {
	ActiveOnly bool
	// MaxStock selects medicines whose stock_quantity is at or below the value.
	MaxStock *int
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Save(ctx context.Context, u *models.User) error
}

// PatientRepository creates the linked User together with the patient.
type PatientRepository interface {
	Create(ctx context.Context, p *models.Patient) error
	GetByID(ctx context.Context, id uint) (*models.Patient, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Patient, error)
	List(ctx context.Context) ([]models.Patient, error)
	Save(ctx context.Context, p *models.Patient) error
}

type DoctorRepository interface {
	Create(ctx context.Context, d *models.Doctor) error
	GetByID(ctx context.Context, id uint) (*models.Doctor, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Doctor, error)
	List(ctx context.Context, bookableOnly bool) ([]models.Doctor, error)
	Save(ctx context.Context, d *models.Doctor) error
}

type StaffRepository interface {
	CreateReceptionist(ctx context.Context, r *models.Receptionist) error
	GetReceptionist(ctx context.Context, id uint) (*models.Receptionist, error)
	CreateAdmin(ctx context.Context, a *models.Admin) error
}

type SpecialtyRepository interface {
	Create(ctx context.Context, s *models.Specialty) error
	GetByID(ctx context.Context, id uint) (*models.Specialty, error)
	List(ctx context.Context, activeOnly bool) ([]models.Specialty, error)
	Save(ctx context.Context, s *models.Specialty) error
}

type ExaminationFeeRepository interface {
	Create(ctx context.Context, f *models.ExaminationFee) error
	GetByID(ctx context.Context, id uint) (*models.ExaminationFee, error)
	List(ctx context.Context, activeOnly bool) ([]models.ExaminationFee, error)
	Save(ctx context.Context, f *models.ExaminationFee) error
}

type SupplierRepository interface {
	Create(ctx context.Context, s *models.Supplier) error
	GetByID(ctx context.Context, id uint) (*models.Supplier, error)
	List(ctx context.Context, activeOnly bool) ([]models.Supplier, error)
	Save(ctx context.Context, s *models.Supplier) error
}

type MedicineRepository interface {
	Create(ctx context.Context, m *models.Medicine) error
	GetByID(ctx context.Context, id uint) (*models.Medicine, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.Medicine, error)
	List(ctx context.Context, filter MedicineFilter) ([]models.Medicine, error)
	Save(ctx context.Context, m *models.Medicine) error
	// DecrementStock subtracts qty only if enough stock remains; false means it did not.
	DecrementStock(ctx context.Context, id uint, qty int) (bool, error)
	DeactivateBySupplier(ctx context.Context, supplierID uint) (int64, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *models.Appointment) error
	GetByID(ctx context.Context, id uint) (*models.Appointment, error)
	Save(ctx context.Context, a *models.Appointment) error
	List(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error)
	// HasActiveAt reports a non-cancelled appointment for the doctor at exactly at.
	HasActiveAt(ctx context.Context, doctorID uint, at time.Time, excludeID uint) (bool, error)
	// ListOpenBefore returns booked, late and checked appointments scheduled at or before t.
	ListOpenBefore(ctx context.Context, t time.Time) ([]models.Appointment, error)
}

type MedicalRecordRepository interface {
	Create(ctx context.Context, r *models.MedicalRecord) error
	GetByID(ctx context.Context, id uint) (*models.MedicalRecord, error)
	GetByAppointmentID(ctx context.Context, appointmentID uint) (*models.MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID uint) ([]models.MedicalRecord, error)
	ListDispensedBetween(ctx context.Context, from, to time.Time) ([]models.MedicalRecord, error)
	// ListForAppointments returns records whose id is in recordIDs or whose appointment is in appointmentIDs.
	ListForAppointments(ctx context.Context, appointmentIDs, recordIDs []uint) ([]models.MedicalRecord, error)
	Save(ctx context.Context, r *models.MedicalRecord) error
	// MarkDispensed flips the record to dispensed unless it already is. Reports false when
	// another caller got there first.
	MarkDispensed(ctx context.Context, id uint, at time.Time) (bool, error)
}

type Repositories struct {
	Users        UserRepository
	Patients     PatientRepository
	Doctors      DoctorRepository
	Staff        StaffRepository
	Specialties  SpecialtyRepository
	Fees         ExaminationFeeRepository
	Suppliers    SupplierRepository
	Medicines    MedicineRepository
	Appointments AppointmentRepository
	Records      MedicalRecordRepository
}

// Store hands out repositories and runs multi-document sequences atomically.
type Store interface {
	Repos() *Repositories
	WithinTx(ctx context.Context, fn func(r *Repositories) error) error
}
