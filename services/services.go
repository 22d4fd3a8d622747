package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/meinhoongagan/clinic-app/repository"
	"github.com/meinhoongagan/clinic-app/utils"
)

// TokenBlacklist revokes issued tokens by jti until they expire.
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type Options struct {
	Now       func() time.Time
	Mailer    utils.Mailer
	Uploader  utils.Uploader
	Blacklist TokenBlacklist
	JWTSecret string
	JWTTTL    time.Duration
}

type Services struct {
	Accounts     *AccountService
	Catalog      *CatalogService
	Inventory    *InventoryService
	Appointments *AppointmentService
	Records      *MedicalRecordService
	Reports      *ReportService
}

func New(store repository.Store, log *zap.Logger, opts Options) *Services {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Mailer == nil {
		opts.Mailer = utils.NopMailer{}
	}
	if opts.JWTTTL <= 0 {
		opts.JWTTTL = 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}

	base := service{store: store, log: log, now: opts.Now}
	notifier := &notifier{mailer: opts.Mailer, log: log.Named("mail")}

	return &Services{
		Accounts: &AccountService{
			service:   base.named(log, "accounts"),
			uploader:  opts.Uploader,
			blacklist: opts.Blacklist,
			secret:    []byte(opts.JWTSecret),
			ttl:       opts.JWTTTL,
		},
		Catalog:      &CatalogService{service: base.named(log, "catalog")},
		Inventory:    &InventoryService{service: base.named(log, "inventory")},
		Appointments: &AppointmentService{service: base.named(log, "appointments"), notifier: notifier},
		Records:      &MedicalRecordService{service: base.named(log, "medical_records")},
		Reports:      &ReportService{service: base.named(log, "reports")},
	}
}

// service carries what every domain service needs.
type service struct {
	store repository.Store
	log   *zap.Logger
	now   func() time.Time
}

func (s service) named(log *zap.Logger, name string) service {
	s.log = log.Named(name)
	return s
}

func (s service) repos() *repository.Repositories {
	return s.store.Repos()
}

// lookup turns repository.ErrNotFound into a not-found AppError and wraps anything else.
func lookup(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return utils.NotFound(format, args...)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
