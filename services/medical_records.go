package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/repository"
	"github.com/meinhoongagan/clinic-app/utils"
)

const msgAlreadyDispensed = "Đơn thuốc đã được phát"

type MedicalRecordService struct {
	service
}

type CreateRecordInput struct {
	AppointmentID uint                `json:"appointment_id"`
	Symptoms      string              `json:"symptoms"`
	Diagnosis     string              `json:"diagnosis"`
	Treatment     string              `json:"treatment"`
	Notes         string              `json:"notes"`
	Status        models.RecordStatus `json:"status"`
	Medications   models.Prescription `json:"medications_prescribed"`
}

type UpdateRecordInput struct {
	Symptoms    *string              `json:"symptoms"`
	Diagnosis   *string              `json:"diagnosis"`
	Treatment   *string              `json:"treatment"`
	Notes       *string              `json:"notes"`
	Status      *models.RecordStatus `json:"status"`
	Medications *models.Prescription `json:"medications_prescribed"`
}

// price snapshots medicine names onto the prescription and returns its cost at current prices.
func price(ctx context.Context, repos *repository.Repositories, meds models.Prescription) (float64, error) {
	ids, _ := meds.Quantities()
	found, err := repos.Medicines.GetByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("load medicines: %w", err)
	}
	var total float64
	for i := range meds {
		m, ok := found[meds[i].MedicineID]
		if !ok {
			return 0, utils.Validation("Không tìm thấy thuốc có mã %d", meds[i].MedicineID)
		}
		meds[i].Name = m.DrugName
		total += m.Price * float64(meds[i].Quantity)
	}
	return total, nil
}

func (s *MedicalRecordService) Create(ctx context.Context, actor models.Actor, in CreateRecordInput) (*models.MedicalRecord, error) {
	if in.AppointmentID == 0 {
		return nil, utils.Validation("Vui lòng chọn lịch hẹn")
	}
	if in.Status == models.RecordDispensed {
		return nil, utils.Validation("Không thể tạo hồ sơ ở trạng thái đã phát thuốc")
	}

	var created *models.MedicalRecord
	err := s.store.WithinTx(ctx, func(repos *repository.Repositories) error {
		a, err := repos.Appointments.GetByID(ctx, in.AppointmentID)
		if err != nil {
			return lookup(err, "Không tìm thấy lịch hẹn %d", in.AppointmentID)
		}
		if a.Status == models.StatusCancelled {
			return utils.Validation("Lịch hẹn đã bị hủy, không thể lập hồ sơ bệnh án")
		}
		if actor.Role == models.RoleDoctor && (a.Doctor == nil || a.Doctor.UserID != actor.UserID) {
			return utils.Forbidden("Bạn không phải bác sĩ phụ trách lịch hẹn này")
		}
		if _, err := repos.Records.GetByAppointmentID(ctx, a.ID); err == nil {
			return utils.Validation("Lịch hẹn này đã có hồ sơ bệnh án")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("check existing record: %w", err)
		}

		rec := &models.MedicalRecord{
			AppointmentID: a.ID,
			PatientID:     a.PatientID,
			DoctorID:      a.DoctorID,
			Symptoms:      in.Symptoms,
			Diagnosis:     in.Diagnosis,
			Treatment:     in.Treatment,
			Notes:         in.Notes,
			Status:        in.Status,
			Medications:   in.Medications,
		}
		if err := rec.Validate(); err != nil {
			return err
		}
		if rec.TotalCost, err = price(ctx, repos, rec.Medications); err != nil {
			return err
		}
		if err := repos.Records.Create(ctx, rec); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return utils.Validation("Lịch hẹn này đã có hồ sơ bệnh án")
			}
			return fmt.Errorf("create medical record: %w", err)
		}

		recordID := rec.ID
		a.MedicalRecordID = &recordID
		if err := repos.Appointments.Save(ctx, a); err != nil {
			return fmt.Errorf("link record to appointment: %w", err)
		}
		created = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("medical record created",
		zap.Uint("record_id", created.ID),
		zap.Uint("appointment_id", created.AppointmentID))
	return s.repos().Records.GetByID(ctx, created.ID)
}

func (s *MedicalRecordService) Update(ctx context.Context, actor models.Actor, id uint, in UpdateRecordInput) (*models.MedicalRecord, error) {
	repos := s.repos()
	rec, err := repos.Records.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy hồ sơ bệnh án")
	}
	if rec.Status == models.RecordDispensed {
		return nil, utils.Validation("Hồ sơ đã phát thuốc, không thể chỉnh sửa")
	}
	if actor.Role == models.RoleDoctor && (rec.Doctor == nil || rec.Doctor.UserID != actor.UserID) {
		return nil, utils.Forbidden("Bạn không phải bác sĩ phụ trách hồ sơ này")
	}

	if in.Symptoms != nil {
		rec.Symptoms = *in.Symptoms
	}
	if in.Diagnosis != nil {
		rec.Diagnosis = *in.Diagnosis
	}
	if in.Treatment != nil {
		rec.Treatment = *in.Treatment
	}
	if in.Notes != nil {
		rec.Notes = *in.Notes
	}
	if in.Status != nil {
		if *in.Status == models.RecordDispensed {
			return nil, utils.Validation("Dùng chức năng phát thuốc để chuyển hồ sơ sang đã phát thuốc")
		}
		rec.Status = *in.Status
	}
	if in.Medications != nil {
		rec.Medications = *in.Medications
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if in.Medications != nil {
		if rec.TotalCost, err = price(ctx, repos, rec.Medications); err != nil {
			return nil, err
		}
	}
	if err := repos.Records.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save medical record: %w", err)
	}
	return repos.Records.GetByID(ctx, rec.ID)
}

// authorizeRead checks that actor may see records owned by the patient's user.
func authorizeRead(actor models.Actor, patient *models.Patient) error {
	var owner uint
	if patient != nil {
		owner = patient.UserID
	}
	if !models.Can(actor, models.ResourceMedicalRecords, models.ActionRead, owner) {
		return utils.Forbidden("Bạn không có quyền xem hồ sơ bệnh án này")
	}
	return nil
}

func (s *MedicalRecordService) Get(ctx context.Context, actor models.Actor, id uint) (*models.MedicalRecord, error) {
	rec, err := s.repos().Records.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy hồ sơ bệnh án")
	}
	if err := authorizeRead(actor, rec.Patient); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *MedicalRecordService) GetByAppointment(ctx context.Context, actor models.Actor, appointmentID uint) (*models.MedicalRecord, error) {
	rec, err := s.repos().Records.GetByAppointmentID(ctx, appointmentID)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy hồ sơ bệnh án của lịch hẹn %d", appointmentID)
	}
	if err := authorizeRead(actor, rec.Patient); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *MedicalRecordService) ListByPatient(ctx context.Context, actor models.Actor, patientID uint) ([]models.MedicalRecord, error) {
	repos := s.repos()
	patient, err := repos.Patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy bệnh nhân")
	}
	if err := authorizeRead(actor, patient); err != nil {
		return nil, err
	}
	list, err := repos.Records.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list medical records: %w", err)
	}
	return list, nil
}

// Dispense deducts the prescribed quantities from stock and marks the record dispensed.
// Nothing is deducted unless every line can be served. actor.UserID may be 0 when no
// pharmacist should be stamped on the appointment.
func (s *MedicalRecordService) Dispense(ctx context.Context, actor models.Actor, id uint) (*models.MedicalRecord, error) {
	now := s.now()
	err := s.store.WithinTx(ctx, func(repos *repository.Repositories) error {
		rec, err := repos.Records.GetByID(ctx, id)
		if err != nil {
			return lookup(err, "Không tìm thấy hồ sơ bệnh án")
		}
		if rec.Status == models.RecordDispensed {
			return utils.Validation(msgAlreadyDispensed)
		}
		// Claim the record before touching stock; a concurrent dispense blocks on the row
		// and then matches nothing.
		claimed, err := repos.Records.MarkDispensed(ctx, rec.ID, now)
		if err != nil {
			return fmt.Errorf("mark medical record dispensed: %w", err)
		}
		if !claimed {
			return utils.Validation(msgAlreadyDispensed)
		}

		order, need := rec.Medications.Quantities()
		stock, err := repos.Medicines.GetByIDs(ctx, order)
		if err != nil {
			return fmt.Errorf("load medicines: %w", err)
		}
		names := make(map[uint]string, len(order))
		for _, line := range rec.Medications {
			if _, ok := names[line.MedicineID]; !ok {
				names[line.MedicineID] = line.Name
			}
		}

		var shortages []string
		for _, medID := range order {
			m, ok := stock[medID]
			if !ok {
				shortages = append(shortages, fmt.Sprintf("Không tìm thấy thuốc %s (mã %d)", names[medID], medID))
				continue
			}
			if m.StockQuantity < need[medID] {
				shortages = append(shortages, fmt.Sprintf("Thuốc %s không đủ tồn kho: có %d, cần %d",
					m.DrugName, m.StockQuantity, need[medID]))
			}
		}
		if len(shortages) > 0 {
			return &utils.AppError{Kind: utils.KindValidation, Message: "Không đủ thuốc để phát", Details: shortages}
		}

		for _, medID := range order {
			ok, err := repos.Medicines.DecrementStock(ctx, medID, need[medID])
			if err != nil {
				return fmt.Errorf("decrement stock of medicine %d: %w", medID, err)
			}
			if !ok {
				// stock moved between the check and the update
				return &utils.AppError{
					Kind:    utils.KindValidation,
					Message: "Không đủ thuốc để phát",
					Details: []string{fmt.Sprintf("Thuốc %s không đủ tồn kho", stock[medID].DrugName)},
				}
			}
		}

		if actor.UserID != 0 && rec.AppointmentID != 0 {
			a, err := repos.Appointments.GetByID(ctx, rec.AppointmentID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("load appointment: %w", err)
			}
			if a != nil {
				pharmacist := actor.UserID
				a.PharmacistID = &pharmacist
				if err := repos.Appointments.Save(ctx, a); err != nil {
					return fmt.Errorf("stamp pharmacist: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("prescription dispensed", zap.Uint("record_id", id), zap.Uint("pharmacist_id", actor.UserID))
	rec, err := s.repos().Records.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy hồ sơ bệnh án")
	}
	return rec, nil
}
