package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/utils"
)

// completedVisit books, checks in and completes an appointment, then dispenses its prescription.
func completedVisit(t *testing.T, f *fixture, at time.Duration, m *models.Medicine, qty int) *models.Appointment {
	t.Helper()
	a, err := f.svc.Appointments.Create(f.ctx, f.receptionist, CreateAppointmentInput{
		PatientID: f.patient.ID, DoctorID: f.doctor.ID, AppointmentTime: f.now.Add(at),
	})
	require.NoError(t, err)
	_, err = f.svc.Appointments.CheckIn(f.ctx, f.receptionist, a.ID, &f.fee.ID)
	require.NoError(t, err)
	_, err = f.svc.Appointments.Complete(f.ctx, f.doctorActor, a.ID, "")
	require.NoError(t, err)

	rec, err := f.svc.Records.Create(f.ctx, f.doctorActor, CreateRecordInput{
		AppointmentID: a.ID,
		Diagnosis:     "Viêm họng",
		Treatment:     "Kháng sinh",
		Medications:   models.Prescription{{MedicineID: m.ID, Quantity: qty}},
	})
	require.NoError(t, err)
	_, err = f.svc.Records.Dispense(f.ctx, f.receptionist, rec.ID)
	require.NoError(t, err)
	return a
}

func TestIncomeReport(t *testing.T) {
	f := newFixture(t)
	m := f.medicine("Amoxicillin", 100, 20)
	completedVisit(t, f, 2*time.Hour, m, 5)
	f.book(3 * time.Hour)
	cancelled := f.book(4 * time.Hour)
	_, err := f.svc.Appointments.Cancel(f.ctx, f.admin, cancelled.ID, "")
	require.NoError(t, err)

	report, err := f.svc.Reports.Income(f.ctx, "2025-03-10", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalAppointments)
	assert.Equal(t, 1, report.StatusCounts[models.StatusCompleted])
	assert.Equal(t, 1, report.StatusCounts[models.StatusBooked])
	assert.Equal(t, 1, report.StatusCounts[models.StatusCancelled])
	assert.Equal(t, 0, report.StatusCounts[models.StatusLate])
	assert.Equal(t, 100.0, report.ExaminationIncome)
	assert.Equal(t, 100.0, report.MedicineIncome)
	assert.Equal(t, 200.0, report.TotalIncome)
	assert.Equal(t, 1, report.DispensedRecords)
}

func TestIncomeReportUsesCurrentMedicinePrice(t *testing.T) {
	f := newFixture(t)
	m := f.medicine("Amoxicillin", 100, 20)
	completedVisit(t, f, 2*time.Hour, m, 5)

	price := 30.0
	_, err := f.svc.Inventory.UpdateMedicine(f.ctx, m.ID, MedicinePatch{Price: &price})
	require.NoError(t, err)

	report, err := f.svc.Reports.Income(f.ctx, "2025-03-10", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 150.0, report.MedicineIncome)
}

func TestIncomeReportDoesNotWrite(t *testing.T) {
	f := newFixture(t)
	a := f.book(time.Hour)
	f.advance(4 * time.Hour)

	report, err := f.svc.Reports.Income(f.ctx, "2025-03-10", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 1, report.StatusCounts[models.StatusLate])

	stored, err := f.store.Repos().Appointments.GetByID(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBooked, stored.Status)
}

func TestIncomeReportDateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Reports.Income(f.ctx, "", "2025-03-10")
	requireKind(t, err, utils.KindValidation)

	_, err = f.svc.Reports.Income(f.ctx, "2025-03-11", "2025-03-10")
	requireKind(t, err, utils.KindValidation)
}

func TestRevenueDetail(t *testing.T) {
	f := newFixture(t)
	m := f.medicine("Amoxicillin", 100, 20)
	done := completedVisit(t, f, 2*time.Hour, m, 2)
	open := f.book(5 * time.Hour)

	report, err := f.svc.Reports.RevenueDetail(f.ctx, RevenueFilter{StartDate: "2025-03-10", EndDate: "2025-03-10"})
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)

	first := report.Rows[0]
	assert.Equal(t, done.ID, first.AppointmentID)
	assert.Equal(t, "Nguyễn An", first.PatientName)
	assert.Equal(t, "Bác sĩ Minh", first.DoctorName)
	assert.Equal(t, 100.0, first.ExaminationFee)
	assert.Equal(t, 40.0, first.MedicineCost)
	assert.Equal(t, 140.0, first.Total)
	assert.Equal(t, models.RecordDispensed, first.RecordStatus)

	second := report.Rows[1]
	assert.Equal(t, open.ID, second.AppointmentID)
	assert.Zero(t, second.Total)
	assert.Nil(t, second.MedicalRecordID)

	assert.Equal(t, 2, report.Summary.TotalAppointments)
	assert.Equal(t, 1, report.Summary.CompletedAppointments)
	assert.Equal(t, 1, report.Summary.DispensedRecords)
	assert.Equal(t, 140.0, report.Summary.TotalRevenue)

	filtered, err := f.svc.Reports.RevenueDetail(f.ctx, RevenueFilter{
		StartDate: "2025-03-10", EndDate: "2025-03-10", Status: models.StatusBooked,
	})
	require.NoError(t, err)
	require.Len(t, filtered.Rows, 1)
	assert.Equal(t, open.ID, filtered.Rows[0].AppointmentID)

	_, err = f.svc.Reports.RevenueDetail(f.ctx, RevenueFilter{StartDate: "2025-03-10", EndDate: "2025-03-10", Status: "paid"})
	requireKind(t, err, utils.KindValidation)
}

func TestRevenueDetailUsesDerivedStatus(t *testing.T) {
	f := newFixture(t)
	overdue := f.book(2 * time.Hour)
	f.advance(15 * time.Hour)

	income, err := f.svc.Reports.Income(f.ctx, "2025-03-10", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 1, income.StatusCounts[models.StatusCancelled])
	assert.Equal(t, 0, income.StatusCounts[models.StatusBooked])

	detail, err := f.svc.Reports.RevenueDetail(f.ctx, RevenueFilter{StartDate: "2025-03-10", EndDate: "2025-03-10"})
	require.NoError(t, err)
	require.Len(t, detail.Rows, 1)
	assert.Equal(t, models.StatusCancelled, detail.Rows[0].Status)

	cancelled, err := f.svc.Reports.RevenueDetail(f.ctx, RevenueFilter{
		StartDate: "2025-03-10", EndDate: "2025-03-10", Status: models.StatusCancelled,
	})
	require.NoError(t, err)
	require.Len(t, cancelled.Rows, 1)
	assert.Equal(t, overdue.ID, cancelled.Rows[0].AppointmentID)

	booked, err := f.svc.Reports.RevenueDetail(f.ctx, RevenueFilter{
		StartDate: "2025-03-10", EndDate: "2025-03-10", Status: models.StatusBooked,
	})
	require.NoError(t, err)
	assert.Empty(t, booked.Rows)

	stored, err := f.store.Repos().Appointments.GetByID(f.ctx, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBooked, stored.Status)
}

func TestRevenueDetailFallsBackToAppointmentReference(t *testing.T) {
	f := newFixture(t)
	m := f.medicine("Amoxicillin", 100, 20)
	a := completedVisit(t, f, 2*time.Hour, m, 1)

	stored, err := f.store.Repos().Appointments.GetByID(f.ctx, a.ID)
	require.NoError(t, err)
	stored.MedicalRecordID = nil
	require.NoError(t, f.store.Repos().Appointments.Save(f.ctx, stored))

	report, err := f.svc.Reports.RevenueDetail(f.ctx, RevenueFilter{StartDate: "2025-03-10", EndDate: "2025-03-10"})
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, 20.0, report.Rows[0].MedicineCost)
}

func TestExportRevenueDetail(t *testing.T) {
	f := newFixture(t)
	m := f.medicine("Amoxicillin", 100, 20)
	completedVisit(t, f, 2*time.Hour, m, 2)

	report, err := f.svc.Reports.RevenueDetail(f.ctx, RevenueFilter{StartDate: "2025-03-10", EndDate: "2025-03-10"})
	require.NoError(t, err)
	data, err := ExportRevenueDetail(report)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Doanh thu")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 2)
	assert.Equal(t, revenueHeaders, rows[0])
	assert.Equal(t, "Nguyễn An", rows[1][2])
	assert.Equal(t, "140", rows[1][9])
}
