package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/repository"
	"github.com/meinhoongagan/clinic-app/utils"
)

type sentMail struct {
	to, subject string
}

type recordingMailer struct {
	sent []sentMail
}

func (m *recordingMailer) SendEmail(to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to: to, subject: subject})
	return nil
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	now   time.Time
	store *repository.MemoryStore
	svc   *Services
	mail  *recordingMailer

	admin        models.Actor
	receptionist models.Actor
	doctorActor  models.Actor
	patientActor models.Actor

	doctor  *models.Doctor
	patient *models.Patient
	fee     *models.ExaminationFee
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:    t,
		ctx:  context.Background(),
		now:  time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		mail: &recordingMailer{},
	}
	f.store = repository.NewMemoryStore()
	f.store.Now = f.clock
	f.svc = New(f.store, zaptest.NewLogger(t), Options{
		Now:       f.clock,
		Mailer:    f.mail,
		JWTSecret: "test-secret",
		JWTTTL:    time.Hour,
	})

	admin, err := f.svc.Accounts.CreateAdmin(f.ctx, ProfileInput{Username: "admin", Password: "secret123", FullName: "Quản trị"})
	require.NoError(t, err)
	f.admin = models.Actor{UserID: admin.UserID, Role: models.RoleAdmin}

	rec, err := f.svc.Accounts.CreateReceptionist(f.ctx, ProfileInput{Username: "letan", Password: "secret123", FullName: "Lễ tân"})
	require.NoError(t, err)
	f.receptionist = models.Actor{UserID: rec.UserID, Role: models.RoleReceptionist}

	f.doctor, err = f.svc.Accounts.CreateDoctor(f.ctx, DoctorInput{
		ProfileInput: ProfileInput{Username: "bs.minh", Password: "secret123", FullName: "Bác sĩ Minh"},
	})
	require.NoError(t, err)
	f.doctorActor = models.Actor{UserID: f.doctor.UserID, Role: models.RoleDoctor}

	f.patient, err = f.svc.Accounts.Register(f.ctx, ProfileInput{
		Username: "an.nguyen", Password: "secret123", FullName: "Nguyễn An", Email: "an@example.com",
	})
	require.NoError(t, err)
	f.patientActor = models.Actor{UserID: f.patient.UserID, Role: models.RolePatient}

	f.fee, err = f.svc.Catalog.CreateFee(f.ctx, FeeInput{ExaminationType: "general", Fee: 100})
	require.NoError(t, err)
	return f
}

func (f *fixture) clock() time.Time {
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// book creates an appointment for the fixture patient and doctor, at from now.
func (f *fixture) book(at time.Duration) *models.Appointment {
	f.t.Helper()
	a, err := f.svc.Appointments.Create(f.ctx, f.receptionist, CreateAppointmentInput{
		PatientID:       f.patient.ID,
		DoctorID:        f.doctor.ID,
		AppointmentTime: f.now.Add(at),
	})
	require.NoError(f.t, err)
	return a
}

func (f *fixture) medicine(name string, stock int, price float64) *models.Medicine {
	f.t.Helper()
	m, err := f.svc.Inventory.CreateMedicine(f.ctx, MedicineInput{
		DrugName:      name,
		Unit:          models.UnitTablet,
		StockQuantity: stock,
		Price:         price,
		ExpiryDate:    f.now.AddDate(1, 0, 0),
	})
	require.NoError(f.t, err)
	return m
}

// record books an appointment and writes a medical record prescribing lines.
func (f *fixture) record(lines ...models.PrescribedMedication) *models.MedicalRecord {
	f.t.Helper()
	a := f.book(2 * time.Hour)
	rec, err := f.svc.Records.Create(f.ctx, f.doctorActor, CreateRecordInput{
		AppointmentID: a.ID,
		Diagnosis:     "Cảm cúm",
		Treatment:     "Nghỉ ngơi",
		Status:        models.RecordCompleted,
		Medications:   lines,
	})
	require.NoError(f.t, err)
	return rec
}

func (f *fixture) stock(id uint) int {
	f.t.Helper()
	m, err := f.svc.Inventory.GetMedicine(f.ctx, id)
	require.NoError(f.t, err)
	return m.StockQuantity
}

func requireKind(t *testing.T, err error, kind utils.ErrorKind) *utils.AppError {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, kind, appErr.Kind, appErr.Message)
	return appErr
}
