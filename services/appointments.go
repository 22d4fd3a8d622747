package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/repository"
	"github.com/meinhoongagan/clinic-app/utils"
)

const (
	msgDoctorBooked = "Bác sĩ đã có lịch hẹn vào thời điểm này"
	msgFeeInactive  = "Phí khám không tồn tại hoặc đã ngưng áp dụng"
)

// ReminderLead is how far ahead of an appointment the reminder email goes out.
const ReminderLead = time.Hour

type AppointmentService struct {
	service
	notifier *notifier
}

type CreateAppointmentInput struct {
	PatientID        uint      `json:"patient_id"`
	DoctorID         uint      `json:"doctor_id"`
	AppointmentTime  time.Time `json:"appointment_time"`
	ExaminationFeeID *uint     `json:"examination_fee_id"`
	Reason           string    `json:"reason"`
	Notes            string    `json:"notes"`
}

// UpdateAppointmentInput is a partial update; nil fields are left untouched.
type UpdateAppointmentInput struct {
	DoctorID         *uint                     `json:"doctor_id"`
	AppointmentTime  *time.Time                `json:"appointment_time"`
	ExaminationFeeID *uint                     `json:"examination_fee_id"`
	Reason           *string                   `json:"reason"`
	Notes            *string                   `json:"notes"`
	Status           *models.AppointmentStatus `json:"status"`
	CancelReason     string                    `json:"cancel_reason"`
}

func isFrontDesk(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleReceptionist
}

func ownerOf(a *models.Appointment) uint {
	if a.Patient == nil {
		return 0
	}
	return a.Patient.UserID
}

// refresh applies the time rules to a and persists the result when the status moved.
func (s *AppointmentService) refresh(ctx context.Context, repos *repository.Repositories, a *models.Appointment) error {
	from := a.Status
	if !a.ApplyTimeRules(s.now()) {
		return nil
	}
	if err := repos.Appointments.Save(ctx, a); err != nil {
		return fmt.Errorf("save derived status of appointment %d: %w", a.ID, err)
	}
	s.log.Info("appointment status derived",
		zap.Uint("appointment_id", a.ID),
		zap.String("from", string(from)),
		zap.String("to", string(a.Status)))
	return nil
}

func (s *AppointmentService) refreshAll(ctx context.Context, list []models.Appointment) ([]models.Appointment, error) {
	repos := s.repos()
	for i := range list {
		if err := s.refresh(ctx, repos, &list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (s *AppointmentService) load(ctx context.Context, repos *repository.Repositories, id uint) (*models.Appointment, error) {
	a, err := repos.Appointments.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy lịch hẹn %d", id)
	}
	if err := s.refresh(ctx, repos, a); err != nil {
		return nil, err
	}
	return a, nil
}

// activeFee resolves a fee that may be snapshotted onto an appointment.
func activeFee(ctx context.Context, repos *repository.Repositories, id uint) (*models.ExaminationFee, error) {
	fee, err := repos.Fees.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.Validation(msgFeeInactive)
	}
	if err != nil {
		return nil, fmt.Errorf("load examination fee %d: %w", id, err)
	}
	if !fee.IsActive {
		return nil, utils.Validation(msgFeeInactive)
	}
	return fee, nil
}

// checkSlot verifies the doctor can take an appointment at `at`, ignoring excludeID.
func (s *AppointmentService) checkSlot(ctx context.Context, repos *repository.Repositories, doctorID uint, at time.Time, excludeID uint) error {
	if at.IsZero() {
		return utils.Validation("Vui lòng chọn thời gian hẹn")
	}
	if !at.After(s.now()) {
		return utils.Validation("Thời gian hẹn phải ở tương lai")
	}
	doctor, err := repos.Doctors.GetByID(ctx, doctorID)
	if err != nil {
		return lookup(err, "Không tìm thấy bác sĩ")
	}
	if !doctor.Bookable() {
		return utils.Validation("Bác sĩ hiện không nhận lịch hẹn")
	}
	if doctor.BusyTime != nil && doctor.BusyTime.Equal(at) {
		return utils.Validation("Bác sĩ bận vào thời điểm này")
	}
	taken, err := repos.Appointments.HasActiveAt(ctx, doctorID, at, excludeID)
	if err != nil {
		return fmt.Errorf("check doctor availability: %w", err)
	}
	if taken {
		return utils.Validation(msgDoctorBooked)
	}
	return nil
}

func (s *AppointmentService) Create(ctx context.Context, actor models.Actor, in CreateAppointmentInput) (*models.Appointment, error) {
	repos := s.repos()

	if actor.Role == models.RolePatient {
		self, err := repos.Patients.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, lookup(err, "Không tìm thấy hồ sơ bệnh nhân của tài khoản")
		}
		if in.PatientID == 0 {
			in.PatientID = self.ID
		}
		if in.PatientID != self.ID {
			return nil, utils.Forbidden("Bạn chỉ có thể đặt lịch cho chính mình")
		}
	}
	if in.PatientID == 0 {
		return nil, utils.Validation("Vui lòng chọn bệnh nhân")
	}
	if in.DoctorID == 0 {
		return nil, utils.Validation("Vui lòng chọn bác sĩ")
	}
	if _, err := repos.Patients.GetByID(ctx, in.PatientID); err != nil {
		return nil, lookup(err, "Không tìm thấy bệnh nhân")
	}
	if err := s.checkSlot(ctx, repos, in.DoctorID, in.AppointmentTime, 0); err != nil {
		return nil, err
	}

	a := &models.Appointment{
		PatientID:       in.PatientID,
		DoctorID:        in.DoctorID,
		AppointmentTime: in.AppointmentTime,
		Status:          models.StatusBooked,
		Reason:          in.Reason,
		Notes:           in.Notes,
	}
	if in.ExaminationFeeID != nil {
		fee, err := activeFee(ctx, repos, *in.ExaminationFeeID)
		if err != nil {
			return nil, err
		}
		a.SnapshotFee(fee)
	}
	if isFrontDesk(actor.Role) {
		by := actor.UserID
		a.BookedBy = &by
	}

	if err := repos.Appointments.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.Validation(msgDoctorBooked)
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	s.log.Info("appointment booked",
		zap.Uint("appointment_id", a.ID),
		zap.Uint("doctor_id", a.DoctorID),
		zap.Time("appointment_time", a.AppointmentTime))

	created, err := repos.Appointments.GetByID(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("reload appointment: %w", err)
	}
	s.notifier.booked(created)
	return created, nil
}

// Get fetches one appointment with its status brought up to date.
func (s *AppointmentService) Get(ctx context.Context, id uint) (*models.Appointment, error) {
	return s.load(ctx, s.repos(), id)
}

func (s *AppointmentService) List(ctx context.Context) ([]models.Appointment, error) {
	list, err := s.repos().Appointments.List(ctx, repository.AppointmentFilter{})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return s.refreshAll(ctx, list)
}

// ListByDate lists appointments on a clinic calendar day given as YYYY-MM-DD.
func (s *AppointmentService) ListByDate(ctx context.Context, date string) ([]models.Appointment, error) {
	day, err := time.ParseInLocation(utils.DateLayout, date, utils.ClinicLocation)
	if err != nil {
		return nil, utils.Validation("Ngày không hợp lệ: %s", date)
	}
	from, to := utils.DayBounds(day)
	list, err := s.repos().Appointments.List(ctx, repository.AppointmentFilter{From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("list appointments by date: %w", err)
	}
	return s.refreshAll(ctx, list)
}

func (s *AppointmentService) ListByPatient(ctx context.Context, actor models.Actor, patientID uint) ([]models.Appointment, error) {
	repos := s.repos()
	patient, err := repos.Patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy bệnh nhân")
	}
	if actor.Role == models.RolePatient && patient.UserID != actor.UserID {
		return nil, utils.Forbidden("Bạn không có quyền xem lịch hẹn của bệnh nhân này")
	}
	list, err := repos.Appointments.List(ctx, repository.AppointmentFilter{PatientID: patientID})
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return s.refreshAll(ctx, list)
}

// ListForDoctor lists the appointments of the doctor signed in as actor.
func (s *AppointmentService) ListForDoctor(ctx context.Context, actor models.Actor) ([]models.Appointment, error) {
	repos := s.repos()
	doctor, err := repos.Doctors.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy hồ sơ bác sĩ của tài khoản")
	}
	list, err := repos.Appointments.List(ctx, repository.AppointmentFilter{DoctorID: doctor.ID})
	if err != nil {
		return nil, fmt.Errorf("list doctor appointments: %w", err)
	}
	return s.refreshAll(ctx, list)
}

// Reconcile applies the time rules to open appointments nobody has read. It returns how many changed.
func (s *AppointmentService) Reconcile(ctx context.Context) (int, error) {
	now := s.now()
	changed := 0
	err := s.store.WithinTx(ctx, func(repos *repository.Repositories) error {
		open, err := repos.Appointments.ListOpenBefore(ctx, now.Add(-models.LateAfter))
		if err != nil {
			return fmt.Errorf("list open appointments: %w", err)
		}
		for i := range open {
			if !open[i].ApplyTimeRules(now) {
				continue
			}
			if err := repos.Appointments.Save(ctx, &open[i]); err != nil {
				return fmt.Errorf("save appointment %d: %w", open[i].ID, err)
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		s.log.Info("appointments reconciled", zap.Int("changed", changed))
	}
	return changed, nil
}

// SendReminders emails patients whose booked appointment starts within the next window.
func (s *AppointmentService) SendReminders(ctx context.Context, window time.Duration) (int, error) {
	from := s.now().Add(ReminderLead - window/2)
	to := from.Add(window)
	list, err := s.repos().Appointments.List(ctx, repository.AppointmentFilter{
		From:   &from,
		To:     &to,
		Status: models.StatusBooked,
	})
	if err != nil {
		return 0, fmt.Errorf("list upcoming appointments: %w", err)
	}
	for i := range list {
		s.notifier.reminder(&list[i])
	}
	return len(list), nil
}

// markChecked moves a to checked, snapshotting the fee and stamping the receptionist.
func (s *AppointmentService) markChecked(ctx context.Context, repos *repository.Repositories, actor models.Actor, a *models.Appointment, feeID *uint) error {
	if feeID == nil {
		feeID = a.ExaminationFeeID
	}
	if feeID == nil {
		return utils.Validation("Vui lòng chọn loại phí khám khi tiếp nhận")
	}
	fee, err := activeFee(ctx, repos, *feeID)
	if err != nil {
		return err
	}
	if err := a.TransitionTo(models.StatusChecked); err != nil {
		return err
	}
	a.SnapshotFee(fee)
	by := actor.UserID
	a.ReceptionistID = &by
	return nil
}

func (s *AppointmentService) CheckIn(ctx context.Context, actor models.Actor, id uint, feeID *uint) (*models.Appointment, error) {
	if !models.Can(actor, models.ResourceAppointments, models.ActionCheckIn, 0) {
		return nil, utils.Forbidden("Chỉ lễ tân hoặc quản trị viên mới có thể tiếp nhận lịch hẹn")
	}
	repos := s.repos()
	a, err := s.load(ctx, repos, id)
	if err != nil {
		return nil, err
	}
	if err := s.markChecked(ctx, repos, actor, a, feeID); err != nil {
		return nil, err
	}
	if err := repos.Appointments.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("save appointment: %w", err)
	}
	s.log.Info("appointment checked in", zap.Uint("appointment_id", a.ID), zap.Uint("receptionist_id", actor.UserID))
	return a, nil
}

func (s *AppointmentService) Complete(ctx context.Context, actor models.Actor, id uint, notes string) (*models.Appointment, error) {
	if actor.Role != models.RoleDoctor {
		return nil, utils.Forbidden("Chỉ bác sĩ mới có thể hoàn thành lịch hẹn")
	}
	repos := s.repos()
	a, err := s.load(ctx, repos, id)
	if err != nil {
		return nil, err
	}
	if err := a.TransitionTo(models.StatusCompleted); err != nil {
		return nil, err
	}
	a.AppendNote(notes)
	if err := repos.Appointments.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("save appointment: %w", err)
	}
	s.log.Info("appointment completed", zap.Uint("appointment_id", a.ID))
	return a, nil
}

// cancel applies the cancellation rules for actor without saving.
func (s *AppointmentService) cancel(actor models.Actor, a *models.Appointment, reason string) error {
	if !models.Can(actor, models.ResourceAppointments, models.ActionCancel, ownerOf(a)) {
		return utils.Forbidden("Bạn không có quyền hủy lịch hẹn này")
	}
	if actor.Role == models.RolePatient && a.AppointmentTime.Sub(s.now()) < models.PatientCancelWindow {
		return utils.Validation("Chỉ có thể hủy lịch hẹn trước ít nhất 12 giờ")
	}
	if err := a.TransitionTo(models.StatusCancelled); err != nil {
		return err
	}
	a.AppendNote(reason)
	return nil
}

func (s *AppointmentService) Cancel(ctx context.Context, actor models.Actor, id uint, reason string) (*models.Appointment, error) {
	repos := s.repos()
	a, err := s.load(ctx, repos, id)
	if err != nil {
		return nil, err
	}
	if err := s.cancel(actor, a, reason); err != nil {
		return nil, err
	}
	if err := repos.Appointments.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("save appointment: %w", err)
	}
	s.log.Info("appointment cancelled", zap.Uint("appointment_id", a.ID), zap.String("by_role", string(actor.Role)))
	s.notifier.cancelled(a)
	return a, nil
}

// Update patches an appointment. Status changes follow the same rules as the dedicated endpoints.
func (s *AppointmentService) Update(ctx context.Context, actor models.Actor, id uint, in UpdateAppointmentInput) (*models.Appointment, error) {
	repos := s.repos()
	a, err := s.load(ctx, repos, id)
	if err != nil {
		return nil, err
	}
	if !models.Can(actor, models.ResourceAppointments, models.ActionUpdate, ownerOf(a)) {
		return nil, utils.Forbidden("Bạn không có quyền sửa lịch hẹn này")
	}

	if in.DoctorID != nil || in.AppointmentTime != nil {
		if a.Status.Terminal() {
			return nil, utils.Validation("Không thể đổi lịch của lịch hẹn đã kết thúc")
		}
		doctorID, at := a.DoctorID, a.AppointmentTime
		if in.DoctorID != nil {
			doctorID = *in.DoctorID
		}
		if in.AppointmentTime != nil {
			at = *in.AppointmentTime
		}
		if doctorID != a.DoctorID || !at.Equal(a.AppointmentTime) {
			if err := s.checkSlot(ctx, repos, doctorID, at, a.ID); err != nil {
				return nil, err
			}
			a.DoctorID, a.AppointmentTime = doctorID, at
			a.Doctor = nil
		}
	}
	if in.Reason != nil {
		a.Reason = *in.Reason
	}
	if in.Notes != nil {
		a.Notes = *in.Notes
	}

	feeHandled := false
	if in.Status != nil && *in.Status != a.Status {
		switch *in.Status {
		case models.StatusCompleted:
			if actor.Role != models.RoleDoctor {
				return nil, utils.Forbidden("Chỉ bác sĩ mới có thể hoàn thành lịch hẹn")
			}
			if err := a.TransitionTo(models.StatusCompleted); err != nil {
				return nil, err
			}
		case models.StatusChecked:
			if !models.Can(actor, models.ResourceAppointments, models.ActionCheckIn, 0) {
				return nil, utils.Forbidden("Chỉ lễ tân hoặc quản trị viên mới có thể tiếp nhận lịch hẹn")
			}
			if err := s.markChecked(ctx, repos, actor, a, in.ExaminationFeeID); err != nil {
				return nil, err
			}
			feeHandled = true
		case models.StatusCancelled:
			if err := s.cancel(actor, a, in.CancelReason); err != nil {
				return nil, err
			}
		default:
			if !in.Status.Valid() {
				return nil, utils.Validation("Trạng thái không hợp lệ: %s", *in.Status)
			}
			if err := a.TransitionTo(*in.Status); err != nil {
				return nil, err
			}
		}
	}
	if in.ExaminationFeeID != nil && !feeHandled {
		if actor.Role == models.RolePatient {
			return nil, utils.Forbidden("Bệnh nhân không thể thay đổi loại khám")
		}
		if a.Status.Terminal() {
			return nil, utils.Validation("Không thể thay đổi phí khám của lịch hẹn đã kết thúc")
		}
		fee, err := activeFee(ctx, repos, *in.ExaminationFeeID)
		if err != nil {
			return nil, err
		}
		a.SnapshotFee(fee)
	}

	if err := repos.Appointments.Save(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.Validation(msgDoctorBooked)
		}
		return nil, fmt.Errorf("save appointment: %w", err)
	}
	saved, err := repos.Appointments.GetByID(ctx, a.ID)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy lịch hẹn %d", a.ID)
	}
	return saved, nil
}
