package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	Username         string     `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash     string     `json:"-" gorm:"not null"`
	FullName         string     `json:"full_name" gorm:"not null"`
	Phone            string     `json:"phone"`
	Email            string     `json:"email"`
	DOB              *time.Time `json:"dob,omitempty"`
	Gender           string     `json:"gender"`
	Address          string     `json:"address"`
	AvatarURL        string     `json:"avatar_url,omitempty"`
	Role             Role       `json:"role" gorm:"type:varchar(20);not null;index"`
	EmploymentStatus bool       `json:"employment_status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (u *User) Validate() error {
	if u.Username == "" {
		return fieldError("username", "bắt buộc")
	}
	if u.FullName == "" {
		return fieldError("full_name", "bắt buộc")
	}
	if !u.Role.Valid() {
		return fieldError("role", "không hợp lệ")
	}
	switch u.Gender {
	case "", "male", "female", "other":
	default:
		return fieldError("gender", "không hợp lệ")
	}
	return nil
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	return u.Validate()
}

type Patient struct {
	gorm.Model
	UserID uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	User   User   `json:"user" gorm:"foreignKey:UserID"`
	Notes  string `json:"notes"`
}

type Doctor struct {
	gorm.Model
	UserID      uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	User        User       `json:"user" gorm:"foreignKey:UserID"`
	SpecialtyID *uint      `json:"specialty_id"`
	Specialty   *Specialty `json:"specialty,omitempty" gorm:"foreignKey:SpecialtyID"`
	IsActive    bool       `json:"is_active"`
	BusyTime    *time.Time `json:"busy_time,omitempty"`
}

// Bookable reports whether new appointments may be scheduled with the doctor.
func (d *Doctor) Bookable() bool {
	return d.IsActive && d.User.EmploymentStatus
}

type Receptionist struct {
	gorm.Model
	UserID uint `json:"user_id" gorm:"uniqueIndex;not null"`
	User   User `json:"user" gorm:"foreignKey:UserID"`
}

type Admin struct {
	gorm.Model
	UserID uint `json:"user_id" gorm:"uniqueIndex;not null"`
	User   User `json:"user" gorm:"foreignKey:UserID"`
}
