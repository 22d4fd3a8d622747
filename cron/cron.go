package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/meinhoongagan/clinic-app/services"
	"github.com/meinhoongagan/clinic-app/utils"
)

// ReminderWindow is the slice of time each reminder run covers; it matches the default schedule.
const ReminderWindow = 5 * time.Minute

const jobTimeout = time.Minute

type Schedules struct {
	Reconcile string
	Expiry    string
	Reminder  string
}

type Scheduler struct {
	appointments *services.AppointmentService
	inventory    *services.InventoryService
	log          *zap.Logger
}

func NewScheduler(svc *services.Services, log *zap.Logger) *Scheduler {
	return &Scheduler{
		appointments: svc.Appointments,
		inventory:    svc.Inventory,
		log:          log.Named("cron"),
	}
}

// Start registers every job and starts the cron scheduler. Stop the returned cron on shutdown.
func (s *Scheduler) Start(schedules Schedules) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(utils.ClinicLocation))

	jobs := []struct {
		name string
		spec string
		fn   func()
	}{
		{"reconcile_appointments", schedules.Reconcile, s.ReconcileAppointments},
		{"deactivate_expired_medicines", schedules.Expiry, s.DeactivateExpiredMedicines},
		{"appointment_reminders", schedules.Reminder, s.SendAppointmentReminders},
	}
	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		if _, err := c.AddFunc(job.spec, job.fn); err != nil {
			return nil, fmt.Errorf("add cron job %s: %w", job.name, err)
		}
		s.log.Info("cron job registered", zap.String("job", job.name), zap.String("schedule", job.spec))
	}
	c.Start()
	return c, nil
}

// ReconcileAppointments marks overdue appointments late or cancelled.
func (s *Scheduler) ReconcileAppointments() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.appointments.Reconcile(ctx)
	if err != nil {
		s.log.Error("reconcile appointments failed", zap.Error(err))
		return
	}
	s.log.Debug("reconcile appointments done", zap.Int("changed", n))
}

// DeactivateExpiredMedicines switches off medicines past their expiry date.
func (s *Scheduler) DeactivateExpiredMedicines() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.inventory.SweepExpired(ctx)
	if err != nil {
		s.log.Error("deactivate expired medicines failed", zap.Error(err))
		return
	}
	s.log.Debug("expiry sweep done", zap.Int64("deactivated", n))
}

// SendAppointmentReminders emails patients whose appointment starts in about an hour.
func (s *Scheduler) SendAppointmentReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.appointments.SendReminders(ctx, ReminderWindow)
	if err != nil {
		s.log.Error("send appointment reminders failed", zap.Error(err))
		return
	}
	s.log.Debug("appointment reminders sent", zap.Int("count", n))
}
