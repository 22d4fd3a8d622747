package services

import (
	"context"
	"fmt"
	"time"

	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/repository"
	"github.com/meinhoongagan/clinic-app/utils"
)

type ReportService struct {
	service
}

type IncomeReport struct {
	StartDate         string                           `json:"startDate"`
	EndDate           string                           `json:"endDate"`
	TotalAppointments int                              `json:"totalAppointments"`
	StatusCounts      map[models.AppointmentStatus]int `json:"statusCounts"`
	ExaminationIncome float64                          `json:"examinationIncome"`
	MedicineIncome    float64                          `json:"medicineIncome"`
	TotalIncome       float64                          `json:"totalIncome"`
	DispensedRecords  int                              `json:"dispensedRecords"`
}

type RevenueFilter struct {
	StartDate string
	EndDate   string
	DoctorID  uint
	PatientID uint
	Status    models.AppointmentStatus
}

type RevenueRow struct {
	AppointmentID   uint                     `json:"appointmentId"`
	AppointmentTime time.Time                `json:"appointmentTime"`
	PatientName     string                   `json:"patientName"`
	DoctorName      string                   `json:"doctorName"`
	Status          models.AppointmentStatus `json:"status"`
	ExaminationType string                   `json:"examinationType"`
	ExaminationFee  float64                  `json:"examinationFee"`
	MedicalRecordID *uint                    `json:"medicalRecordId,omitempty"`
	RecordStatus    models.RecordStatus      `json:"recordStatus,omitempty"`
	MedicineCost    float64                  `json:"medicineCost"`
	Total           float64                  `json:"total"`
}

type RevenueSummary struct {
	TotalAppointments     int     `json:"totalAppointments"`
	CompletedAppointments int     `json:"completedAppointments"`
	DispensedRecords      int     `json:"dispensedRecords"`
	ExaminationIncome     float64 `json:"examinationIncome"`
	MedicineIncome        float64 `json:"medicineIncome"`
	TotalRevenue          float64 `json:"totalRevenue"`
}

type RevenueDetailReport struct {
	StartDate string         `json:"startDate"`
	EndDate   string         `json:"endDate"`
	Rows      []RevenueRow   `json:"appointments"`
	Summary   RevenueSummary `json:"summary"`
}

// medicineCost prices the records' prescriptions at the medicines' current prices.
// Lines whose medicine no longer exists contribute nothing.
func medicineCost(ctx context.Context, repos *repository.Repositories, records []models.MedicalRecord) (map[uint]float64, error) {
	seen := map[uint]bool{}
	var ids []uint
	for _, rec := range records {
		for _, line := range rec.Medications {
			if !seen[line.MedicineID] {
				seen[line.MedicineID] = true
				ids = append(ids, line.MedicineID)
			}
		}
	}
	meds, err := repos.Medicines.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load medicines: %w", err)
	}
	costs := make(map[uint]float64, len(records))
	for _, rec := range records {
		var cost float64
		for _, line := range rec.Medications {
			if m, ok := meds[line.MedicineID]; ok {
				cost += m.Price * float64(line.Quantity)
			}
		}
		costs[rec.ID] = cost
	}
	return costs, nil
}

// Income summarises appointments and dispensed prescriptions between two calendar dates.
// Statuses are counted as the time rules would derive them; nothing is written.
func (s *ReportService) Income(ctx context.Context, startDate, endDate string) (*IncomeReport, error) {
	from, to, err := utils.ParseDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	repos := s.repos()
	now := s.now()

	appointments, err := repos.Appointments.List(ctx, repository.AppointmentFilter{From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	report := &IncomeReport{
		StartDate:         startDate,
		EndDate:           endDate,
		TotalAppointments: len(appointments),
		StatusCounts:      map[models.AppointmentStatus]int{},
	}
	for _, status := range []models.AppointmentStatus{
		models.StatusBooked, models.StatusChecked, models.StatusCompleted, models.StatusCancelled, models.StatusLate,
	} {
		report.StatusCounts[status] = 0
	}
	for _, a := range appointments {
		status, _ := models.DeriveStatus(a.Status, a.AppointmentTime, now)
		report.StatusCounts[status]++
		if status == models.StatusCompleted {
			report.ExaminationIncome += a.ExaminationFee
		}
	}

	records, err := repos.Records.ListDispensedBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list dispensed records: %w", err)
	}
	costs, err := medicineCost(ctx, repos, records)
	if err != nil {
		return nil, err
	}
	for _, cost := range costs {
		report.MedicineIncome += cost
	}
	report.DispensedRecords = len(records)
	report.TotalIncome = report.ExaminationIncome + report.MedicineIncome
	return report, nil
}

// RevenueDetail breaks revenue down per appointment in the range.
func (s *ReportService) RevenueDetail(ctx context.Context, f RevenueFilter) (*RevenueDetailReport, error) {
	from, to, err := utils.ParseDateRange(f.StartDate, f.EndDate)
	if err != nil {
		return nil, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, utils.Validation("Trạng thái không hợp lệ: %s", f.Status)
	}
	repos := s.repos()
	now := s.now()

	listed, err := repos.Appointments.List(ctx, repository.AppointmentFilter{
		From:      &from,
		To:        &to,
		DoctorID:  f.DoctorID,
		PatientID: f.PatientID,
	})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	// Status filtering runs on the derived status so overdue rows land in late or cancelled.
	appointments := listed[:0]
	for _, a := range listed {
		a.Status, _ = models.DeriveStatus(a.Status, a.AppointmentTime, now)
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		appointments = append(appointments, a)
	}

	appointmentIDs := make([]uint, 0, len(appointments))
	var recordIDs []uint
	for _, a := range appointments {
		appointmentIDs = append(appointmentIDs, a.ID)
		if a.MedicalRecordID != nil {
			recordIDs = append(recordIDs, *a.MedicalRecordID)
		}
	}
	records, err := repos.Records.ListForAppointments(ctx, appointmentIDs, recordIDs)
	if err != nil {
		return nil, fmt.Errorf("list medical records: %w", err)
	}
	byID := make(map[uint]*models.MedicalRecord, len(records))
	byAppointment := make(map[uint]*models.MedicalRecord, len(records))
	var dispensed []models.MedicalRecord
	for i := range records {
		byID[records[i].ID] = &records[i]
		byAppointment[records[i].AppointmentID] = &records[i]
		if records[i].Status == models.RecordDispensed {
			dispensed = append(dispensed, records[i])
		}
	}
	costs, err := medicineCost(ctx, repos, dispensed)
	if err != nil {
		return nil, err
	}

	report := &RevenueDetailReport{StartDate: f.StartDate, EndDate: f.EndDate, Rows: make([]RevenueRow, 0, len(appointments))}
	for i := range appointments {
		a := &appointments[i]
		name, _ := patientContact(a)
		row := RevenueRow{
			AppointmentID:   a.ID,
			AppointmentTime: a.AppointmentTime,
			PatientName:     name,
			DoctorName:      doctorName(a),
			Status:          a.Status,
			ExaminationType: a.ExaminationType,
		}
		if a.Status == models.StatusCompleted {
			row.ExaminationFee = a.ExaminationFee
			report.Summary.CompletedAppointments++
		}

		var rec *models.MedicalRecord
		if a.MedicalRecordID != nil {
			rec = byID[*a.MedicalRecordID]
		}
		if rec == nil {
			rec = byAppointment[a.ID]
		}
		if rec != nil {
			id := rec.ID
			row.MedicalRecordID = &id
			row.RecordStatus = rec.Status
			if rec.Status == models.RecordDispensed {
				row.MedicineCost = costs[rec.ID]
				report.Summary.DispensedRecords++
			}
		}
		row.Total = row.ExaminationFee + row.MedicineCost

		report.Summary.ExaminationIncome += row.ExaminationFee
		report.Summary.MedicineIncome += row.MedicineCost
		report.Rows = append(report.Rows, row)
	}
	report.Summary.TotalAppointments = len(report.Rows)
	report.Summary.TotalRevenue = report.Summary.ExaminationIncome + report.Summary.MedicineIncome
	return report, nil
}
