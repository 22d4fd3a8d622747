package repository

import (
	"context"
	"errors"
	"time"

	"github.com/meinhoongagan/clinic-app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the postgres-backed Store.
type GormStore struct {
	db    *gorm.DB
	repos *Repositories
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, repos: newGormRepositories(db)}
}

func (s *GormStore) Repos() *Repositories {
	return s.repos
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(r *Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newGormRepositories(tx))
	})
}

func newGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:        &gormUsers{db},
		Patients:     &gormPatients{db},
		Doctors:      &gormDoctors{db},
		Staff:        &gormStaff{db},
		Specialties:  &gormSpecialties{db},
		Fees:         &gormFees{db},
		Suppliers:    &gormSuppliers{db},
		Medicines:    &gormMedicines{db},
		Appointments: &gormAppointments{db},
		Records:      &gormRecords{db},
	}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

type gormUsers struct{ db *gorm.DB }

func (r *gormUsers) Create(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *gormUsers) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *gormUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *gormUsers) Save(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Save(u).Error)
}

type gormPatients struct{ db *gorm.DB }

func (r *gormPatients) Create(ctx context.Context, p *models.Patient) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *gormPatients) GetByID(ctx context.Context, id uint) (*models.Patient, error) {
	var p models.Patient
	if err := r.db.WithContext(ctx).Preload("User").First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *gormPatients) GetByUserID(ctx context.Context, userID uint) (*models.Patient, error) {
	var p models.Patient
	if err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *gormPatients) List(ctx context.Context) ([]models.Patient, error) {
	var patients []models.Patient
	err := r.db.WithContext(ctx).Preload("User").Order("id asc").Find(&patients).Error
	return patients, translate(err)
}

func (r *gormPatients) Save(ctx context.Context, p *models.Patient) error {
	return translate(r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(p).Error)
}

type gormDoctors struct{ db *gorm.DB }

func (r *gormDoctors) Create(ctx context.Context, d *models.Doctor) error {
	return translate(r.db.WithContext(ctx).Omit("Specialty").Create(d).Error)
}

func (r *gormDoctors) GetByID(ctx context.Context, id uint) (*models.Doctor, error) {
	var d models.Doctor
	if err := r.db.WithContext(ctx).Preload("User").Preload("Specialty").First(&d, id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *gormDoctors) GetByUserID(ctx context.Context, userID uint) (*models.Doctor, error) {
	var d models.Doctor
	err := r.db.WithContext(ctx).Preload("User").Preload("Specialty").Where("user_id = ?", userID).First(&d).Error
	if err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *gormDoctors) List(ctx context.Context, bookableOnly bool) ([]models.Doctor, error) {
	var doctors []models.Doctor
	q := r.db.WithContext(ctx).Preload("User").Preload("Specialty")
	if bookableOnly {
		q = q.Joins("JOIN users ON users.id = doctors.user_id").
			Where("doctors.is_active = ? AND users.employment_status = ?", true, true)
	}
	err := q.Order("doctors.id asc").Find(&doctors).Error
	return doctors, translate(err)
}

func (r *gormDoctors) Save(ctx context.Context, d *models.Doctor) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(d).Error; err != nil {
		return translate(err)
	}
	return translate(r.db.WithContext(ctx).Save(&d.User).Error)
}

type gormStaff struct{ db *gorm.DB }

func (r *gormStaff) CreateReceptionist(ctx context.Context, rec *models.Receptionist) error {
	return translate(r.db.WithContext(ctx).Create(rec).Error)
}

func (r *gormStaff) GetReceptionist(ctx context.Context, id uint) (*models.Receptionist, error) {
	var rec models.Receptionist
	if err := r.db.WithContext(ctx).Preload("User").First(&rec, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *gormStaff) CreateAdmin(ctx context.Context, a *models.Admin) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

type gormSpecialties struct{ db *gorm.DB }

func (r *gormSpecialties) Create(ctx context.Context, s *models.Specialty) error {
	return translate(r.db.WithContext(ctx).Create(s).Error)
}

func (r *gormSpecialties) GetByID(ctx context.Context, id uint) (*models.Specialty, error) {
	var s models.Specialty
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *gormSpecialties) List(ctx context.Context, activeOnly bool) ([]models.Specialty, error) {
	var out []models.Specialty
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	return out, translate(q.Order("name asc").Find(&out).Error)
}

func (r *gormSpecialties) Save(ctx context.Context, s *models.Specialty) error {
	return translate(r.db.WithContext(ctx).Save(s).Error)
}

type gormFees struct{ db *gorm.DB }

func (r *gormFees) Create(ctx context.Context, f *models.ExaminationFee) error {
	return translate(r.db.WithContext(ctx).Omit("Specialty").Create(f).Error)
}

func (r *gormFees) GetByID(ctx context.Context, id uint) (*models.ExaminationFee, error) {
	var f models.ExaminationFee
	if err := r.db.WithContext(ctx).Preload("Specialty").First(&f, id).Error; err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

func (r *gormFees) List(ctx context.Context, activeOnly bool) ([]models.ExaminationFee, error) {
	var out []models.ExaminationFee
	q := r.db.WithContext(ctx).Preload("Specialty")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	return out, translate(q.Order("examination_type asc").Find(&out).Error)
}

func (r *gormFees) Save(ctx context.Context, f *models.ExaminationFee) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(f).Error)
}

type gormSuppliers struct{ db *gorm.DB }

func (r *gormSuppliers) Create(ctx context.Context, s *models.Supplier) error {
	return translate(r.db.WithContext(ctx).Create(s).Error)
}

func (r *gormSuppliers) GetByID(ctx context.Context, id uint) (*models.Supplier, error) {
	var s models.Supplier
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *gormSuppliers) List(ctx context.Context, activeOnly bool) ([]models.Supplier, error) {
	var out []models.Supplier
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	return out, translate(q.Order("name asc").Find(&out).Error)
}

func (r *gormSuppliers) Save(ctx context.Context, s *models.Supplier) error {
	return translate(r.db.WithContext(ctx).Save(s).Error)
}

type gormMedicines struct{ db *gorm.DB }

func (r *gormMedicines) Create(ctx context.Context, m *models.Medicine) error {
	return translate(r.db.WithContext(ctx).Omit("Supplier").Create(m).Error)
}

func (r *gormMedicines) GetByID(ctx context.Context, id uint) (*models.Medicine, error) {
	var m models.Medicine
	if err := r.db.WithContext(ctx).Preload("Supplier").First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *gormMedicines) GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.Medicine, error) {
	out := make(map[uint]*models.Medicine, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []models.Medicine
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

func (r *gormMedicines) List(ctx context.Context, filter MedicineFilter) ([]models.Medicine, error) {
	var out []models.Medicine
	q := r.db.WithContext(ctx).Preload("Supplier")
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.MaxStock != nil {
		q = q.Where("stock_quantity <= ?", *filter.MaxStock)
	}
	return out, translate(q.Order("drug_name asc").Find(&out).Error)
}

func (r *gormMedicines) Save(ctx context.Context, m *models.Medicine) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(m).Error)
}

func (r *gormMedicines) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Medicine{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *gormMedicines) DeactivateBySupplier(ctx context.Context, supplierID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Medicine{}).
		Where("supplier_id = ? AND is_active = ?", supplierID, true).
		UpdateColumn("is_active", false)
	return res.RowsAffected, translate(res.Error)
}

func (r *gormMedicines) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Medicine{}).
		Where("expiry_date <= ? AND is_active = ?", now, true).
		UpdateColumn("is_active", false)
	return res.RowsAffected, translate(res.Error)
}

type gormAppointments struct{ db *gorm.DB }

func (r *gormAppointments) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Patient.User").Preload("Doctor.User").Preload("Doctor.Specialty")
}

func (r *gormAppointments) Create(ctx context.Context, a *models.Appointment) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error)
}

func (r *gormAppointments) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var a models.Appointment
	if err := r.preloaded(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *gormAppointments) Save(ctx context.Context, a *models.Appointment) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(a).Error)
}

func (r *gormAppointments) List(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error) {
	var out []models.Appointment
	q := r.preloaded(ctx)
	if filter.From != nil {
		q = q.Where("appointment_time >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("appointment_time <= ?", *filter.To)
	}
	if filter.DoctorID != 0 {
		q = q.Where("doctor_id = ?", filter.DoctorID)
	}
	if filter.PatientID != 0 {
		q = q.Where("patient_id = ?", filter.PatientID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	return out, translate(q.Order("appointment_time asc").Find(&out).Error)
}

func (r *gormAppointments) HasActiveAt(ctx context.Context, doctorID uint, at time.Time, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("doctor_id = ? AND appointment_time = ? AND status <> ?", doctorID, at, models.StatusCancelled)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *gormAppointments) ListOpenBefore(ctx context.Context, t time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	err := r.db.WithContext(ctx).
		Where("status IN ? AND appointment_time <= ?",
			[]models.AppointmentStatus{models.StatusBooked, models.StatusLate, models.StatusChecked}, t).
		Order("appointment_time asc").
		Find(&out).Error
	return out, translate(err)
}

type gormRecords struct{ db *gorm.DB }

func (r *gormRecords) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Patient.User").Preload("Doctor.User")
}

func (r *gormRecords) Create(ctx context.Context, rec *models.MedicalRecord) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error)
}

func (r *gormRecords) GetByID(ctx context.Context, id uint) (*models.MedicalRecord, error) {
	var rec models.MedicalRecord
	if err := r.preloaded(ctx).First(&rec, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *gormRecords) GetByAppointmentID(ctx context.Context, appointmentID uint) (*models.MedicalRecord, error) {
	var rec models.MedicalRecord
	if err := r.preloaded(ctx).Where("appointment_id = ?", appointmentID).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *gormRecords) ListByPatient(ctx context.Context, patientID uint) ([]models.MedicalRecord, error) {
	var out []models.MedicalRecord
	err := r.preloaded(ctx).Where("patient_id = ?", patientID).Order("created_at desc").Find(&out).Error
	return out, translate(err)
}

func (r *gormRecords) ListDispensedBetween(ctx context.Context, from, to time.Time) ([]models.MedicalRecord, error) {
	var out []models.MedicalRecord
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at BETWEEN ? AND ?", models.RecordDispensed, from, to).
		Find(&out).Error
	return out, translate(err)
}

func (r *gormRecords) ListForAppointments(ctx context.Context, appointmentIDs, recordIDs []uint) ([]models.MedicalRecord, error) {
	var out []models.MedicalRecord
	if len(appointmentIDs) == 0 && len(recordIDs) == 0 {
		return out, nil
	}
	q := r.db.WithContext(ctx)
	switch {
	case len(appointmentIDs) > 0 && len(recordIDs) > 0:
		q = q.Where("appointment_id IN ? OR id IN ?", appointmentIDs, recordIDs)
	case len(appointmentIDs) > 0:
		q = q.Where("appointment_id IN ?", appointmentIDs)
	default:
		q = q.Where("id IN ?", recordIDs)
	}
	return out, translate(q.Find(&out).Error)
}

func (r *gormRecords) Save(ctx context.Context, rec *models.MedicalRecord) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(rec).Error)
}

func (r *gormRecords) MarkDispensed(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.MedicalRecord{}).
		Where("id = ? AND status <> ?", id, models.RecordDispensed).
		UpdateColumns(map[string]any{"status": models.RecordDispensed, "dispensed_at": at})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}
