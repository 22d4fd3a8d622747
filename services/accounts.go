package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/meinhoongagan/clinic-app/models"
	"github.com/meinhoongagan/clinic-app/repository"
	"github.com/meinhoongagan/clinic-app/utils"
)

const minPasswordLength = 6

type AccountService struct {
	service
	uploader  utils.Uploader
	blacklist TokenBlacklist
	secret    []byte
	ttl       time.Duration
}

// ProfileInput carries the user fields shared by registration and staff provisioning.
type ProfileInput struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	FullName string     `json:"full_name"`
	Phone    string     `json:"phone"`
	Email    string     `json:"email"`
	DOB      *time.Time `json:"dob"`
	Gender   string     `json:"gender"`
	Address  string     `json:"address"`
}

type DoctorInput struct {
	ProfileInput
	SpecialtyID *uint `json:"specialty_id"`
}

type DoctorPatch struct {
	SpecialtyID *uint      `json:"specialty_id"`
	IsActive    *bool      `json:"is_active"`
	BusyTime    *time.Time `json:"busy_time"`
	ClearBusy   bool       `json:"clear_busy_time"`
}

type PatientPatch struct {
	FullName *string    `json:"full_name"`
	Phone    *string    `json:"phone"`
	Email    *string    `json:"email"`
	DOB      *time.Time `json:"dob"`
	Gender   *string    `json:"gender"`
	Address  *string    `json:"address"`
	Notes    *string    `json:"notes"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", utils.Validation("Mật khẩu phải có ít nhất %d ký tự", minPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *AccountService) newUser(in ProfileInput, role models.Role) (models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return models.User{}, utils.Validation("Vui lòng nhập tên đăng nhập")
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		Username:         username,
		PasswordHash:     hash,
		FullName:         strings.TrimSpace(in.FullName),
		Phone:            in.Phone,
		Email:            in.Email,
		DOB:              in.DOB,
		Gender:           in.Gender,
		Address:          in.Address,
		Role:             role,
		EmploymentStatus: role.IsStaff(),
	}
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func usernameTaken(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return utils.Validation("Tên đăng nhập đã tồn tại")
	}
	return err
}

// Register creates a patient account.
func (s *AccountService) Register(ctx context.Context, in ProfileInput) (*models.Patient, error) {
	u, err := s.newUser(in, models.RolePatient)
	if err != nil {
		return nil, err
	}
	p := &models.Patient{User: u}
	if err := s.repos().Patients.Create(ctx, p); err != nil {
		return nil, usernameTaken(err)
	}
	s.log.Info("patient registered", zap.Uint("user_id", p.UserID))
	return p, nil
}

func (s *AccountService) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.repos().Users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.Unauthorized("Sai tên đăng nhập hoặc mật khẩu")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, utils.Unauthorized("Sai tên đăng nhập hoặc mật khẩu")
	}
	if u.Role.IsStaff() && !u.EmploymentStatus {
		return nil, utils.Forbidden("Tài khoản đã ngừng hoạt động")
	}

	expires := s.now().Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   u.ID,
		"role": string(u.Role),
		"jti":  uuid.NewString(),
		"exp":  expires.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: signed, ExpiresAt: expires, User: u}, nil
}

// Logout revokes the token identified by jti until it would have expired anyway.
func (s *AccountService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, jti, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsActive reports whether userID still exists and, for staff, is still employed.
func (s *AccountService) IsActive(ctx context.Context, userID uint) (bool, error) {
	u, err := s.repos().Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load user: %w", err)
	}
	return !u.Role.IsStaff() || u.EmploymentStatus, nil
}

func (s *AccountService) Me(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.repos().Users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy người dùng")
	}
	return u, nil
}

// UploadAvatar stores file as the user's profile picture.
func (s *AccountService) UploadAvatar(ctx context.Context, userID uint, file io.Reader) (*models.User, error) {
	if s.uploader == nil {
		return nil, utils.Validation("Chức năng tải ảnh chưa được cấu hình")
	}
	repos := s.repos()
	u, err := repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy người dùng")
	}
	url, err := s.uploader.Upload(ctx, file, fmt.Sprintf("user_%d", u.ID), "clinic/avatars")
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}
	u.AvatarURL = url
	if err := repos.Users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

func (s *AccountService) CreateDoctor(ctx context.Context, in DoctorInput) (*models.Doctor, error) {
	u, err := s.newUser(in.ProfileInput, models.RoleDoctor)
	if err != nil {
		return nil, err
	}
	repos := s.repos()
	if in.SpecialtyID != nil {
		if _, err := repos.Specialties.GetByID(ctx, *in.SpecialtyID); err != nil {
			return nil, lookup(err, "Không tìm thấy chuyên khoa %d", *in.SpecialtyID)
		}
	}
	d := &models.Doctor{User: u, SpecialtyID: in.SpecialtyID, IsActive: true}
	if err := repos.Doctors.Create(ctx, d); err != nil {
		return nil, usernameTaken(err)
	}
	s.log.Info("doctor provisioned", zap.Uint("doctor_id", d.ID))
	return repos.Doctors.GetByID(ctx, d.ID)
}

func (s *AccountService) CreateReceptionist(ctx context.Context, in ProfileInput) (*models.Receptionist, error) {
	u, err := s.newUser(in, models.RoleReceptionist)
	if err != nil {
		return nil, err
	}
	r := &models.Receptionist{User: u}
	if err := s.repos().Staff.CreateReceptionist(ctx, r); err != nil {
		return nil, usernameTaken(err)
	}
	s.log.Info("receptionist provisioned", zap.Uint("receptionist_id", r.ID))
	return r, nil
}

func (s *AccountService) CreateAdmin(ctx context.Context, in ProfileInput) (*models.Admin, error) {
	u, err := s.newUser(in, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	a := &models.Admin{User: u}
	if err := s.repos().Staff.CreateAdmin(ctx, a); err != nil {
		return nil, usernameTaken(err)
	}
	s.log.Info("admin provisioned", zap.Uint("admin_id", a.ID))
	return a, nil
}

func (s *AccountService) ListDoctors(ctx context.Context, bookableOnly bool) ([]models.Doctor, error) {
	return s.repos().Doctors.List(ctx, bookableOnly)
}

func (s *AccountService) GetDoctor(ctx context.Context, id uint) (*models.Doctor, error) {
	d, err := s.repos().Doctors.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy bác sĩ")
	}
	return d, nil
}

func (s *AccountService) UpdateDoctor(ctx context.Context, id uint, in DoctorPatch) (*models.Doctor, error) {
	repos := s.repos()
	d, err := repos.Doctors.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy bác sĩ")
	}
	if in.SpecialtyID != nil {
		if _, err := repos.Specialties.GetByID(ctx, *in.SpecialtyID); err != nil {
			return nil, lookup(err, "Không tìm thấy chuyên khoa %d", *in.SpecialtyID)
		}
		d.SpecialtyID = in.SpecialtyID
	}
	if in.IsActive != nil {
		d.IsActive = *in.IsActive
	}
	if in.ClearBusy {
		d.BusyTime = nil
	} else if in.BusyTime != nil {
		d.BusyTime = in.BusyTime
	}
	if err := repos.Doctors.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("save doctor: %w", err)
	}
	return repos.Doctors.GetByID(ctx, d.ID)
}

// SetDoctorEmployment soft-disables or re-enables a doctor through the linked user.
func (s *AccountService) SetDoctorEmployment(ctx context.Context, id uint, employed bool) (*models.Doctor, error) {
	repos := s.repos()
	d, err := repos.Doctors.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy bác sĩ")
	}
	d.User.EmploymentStatus = employed
	if err := repos.Users.Save(ctx, &d.User); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	s.log.Info("doctor employment changed", zap.Uint("doctor_id", id), zap.Bool("employed", employed))
	return d, nil
}

func (s *AccountService) SetReceptionistEmployment(ctx context.Context, id uint, employed bool) (*models.Receptionist, error) {
	repos := s.repos()
	r, err := repos.Staff.GetReceptionist(ctx, id)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy lễ tân")
	}
	r.User.EmploymentStatus = employed
	if err := repos.Users.Save(ctx, &r.User); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	s.log.Info("receptionist employment changed", zap.Uint("receptionist_id", id), zap.Bool("employed", employed))
	return r, nil
}

func (s *AccountService) ListPatients(ctx context.Context) ([]models.Patient, error) {
	return s.repos().Patients.List(ctx)
}

func (s *AccountService) GetPatient(ctx context.Context, actor models.Actor, id uint) (*models.Patient, error) {
	p, err := s.repos().Patients.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy bệnh nhân")
	}
	if !models.Can(actor, models.ResourcePatients, models.ActionRead, p.UserID) {
		return nil, utils.Forbidden("Bạn không có quyền xem hồ sơ bệnh nhân này")
	}
	return p, nil
}

func (s *AccountService) UpdatePatient(ctx context.Context, actor models.Actor, id uint, in PatientPatch) (*models.Patient, error) {
	repos := s.repos()
	p, err := repos.Patients.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "Không tìm thấy bệnh nhân")
	}
	if !models.Can(actor, models.ResourcePatients, models.ActionUpdate, p.UserID) {
		return nil, utils.Forbidden("Bạn không có quyền sửa hồ sơ bệnh nhân này")
	}
	if in.FullName != nil {
		p.User.FullName = *in.FullName
	}
	if in.Phone != nil {
		p.User.Phone = *in.Phone
	}
	if in.Email != nil {
		p.User.Email = *in.Email
	}
	if in.DOB != nil {
		p.User.DOB = in.DOB
	}
	if in.Gender != nil {
		p.User.Gender = *in.Gender
	}
	if in.Address != nil {
		p.User.Address = *in.Address
	}
	if in.Notes != nil {
		p.Notes = *in.Notes
	}
	if err := p.User.Validate(); err != nil {
		return nil, err
	}
	if err := repos.Patients.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save patient: %w", err)
	}
	return p, nil
}
