package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/meinhoongagan/clinic-app/models"
)

// activeSlotIndex keeps one live appointment per doctor and time; cancelled rows free the slot.
const activeSlotIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_active_slot
	ON appointments (doctor_id, appointment_time)
	WHERE status <> 'cancelled' AND deleted_at IS NULL`

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Patient{},
		&models.Specialty{},
		&models.Doctor{},
		&models.Receptionist{},
		&models.Admin{},
		&models.ExaminationFee{},
		&models.Supplier{},
		&models.Medicine{},
		&models.Appointment{},
		&models.MedicalRecord{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(activeSlotIndex).Error; err != nil {
		return fmt.Errorf("create appointment slot index: %w", err)
	}
	return nil
}
