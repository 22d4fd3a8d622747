package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/utils"
)

const timeFormat = "2006-01-02 15:04"

type notifier struct {
	mailer utils.Mailer
	log    *zap.Logger
}

func patientContact(a *models.Appointment) (name, email string) {
	if a.Patient == nil {
		return "", ""
	}
	return a.Patient.User.FullName, a.Patient.User.Email
}

func doctorName(a *models.Appointment) string {
	if a.Doctor == nil {
		return ""
	}
	return a.Doctor.User.FullName
}

// send delivers a notice to the appointment's patient. Delivery failures are logged, never returned.
func (n *notifier) send(a *models.Appointment, subject, intro string) {
	name, email := patientContact(a)
	if email == "" {
		return
	}
	body := fmt.Sprintf(`
		<p>Kính gửi %s,</p>
		<p>%s</p>
		<ul>
			<li><strong>Bác sĩ:</strong> %s</li>
			<li><strong>Thời gian:</strong> %s</li>
			<li><strong>Trạng thái:</strong> %s</li>
		</ul>
		<p>Trân trọng,</p>
		<p>Phòng khám</p>
	`, name, intro, doctorName(a), a.AppointmentTime.In(utils.ClinicLocation).Format(timeFormat), a.Status)

	if err := n.mailer.SendEmail(email, subject, body); err != nil {
		n.log.Error("send email failed",
			zap.Uint("appointment_id", a.ID),
			zap.String("subject", subject),
			zap.Error(err))
		return
	}
	n.log.Info("email sent", zap.Uint("appointment_id", a.ID), zap.String("subject", subject))
}

func (n *notifier) booked(a *models.Appointment) {
	n.send(a, "Xác nhận lịch hẹn", "Lịch hẹn của bạn đã được đặt thành công.")
}

func (n *notifier) cancelled(a *models.Appointment) {
	n.send(a, "Lịch hẹn đã bị hủy", "Lịch hẹn của bạn đã bị hủy.")
}

func (n *notifier) reminder(a *models.Appointment) {
	n.send(a, "Nhắc lịch hẹn", "Bạn có lịch hẹn trong khoảng một giờ tới.")
}
