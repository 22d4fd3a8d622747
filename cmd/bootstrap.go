package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/meinhoongagan/clinic-app/config"
	"github.com/meinhoongagan/clinic-app/db"
	"github.com/meinhoongagan/clinic-app/logger"
	redisstore "github.com/meinhoongagan/clinic-app/redis"
	"github.com/meinhoongagan/clinic-app/repository"
	"github.com/meinhoongagan/clinic-app/services"
	"github.com/meinhoongagan/clinic-app/utils"
)

// setup loads config and builds the logger shared by every command.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	if err := utils.SetClinicTimezone(cfg.ClinicTimezone); err != nil {
		log.Warn("clinic timezone not loaded, using UTC", zap.String("timezone", cfg.ClinicTimezone), zap.Error(err))
	}
	return cfg, log, nil
}

func openStore(cfg *config.Config, log *zap.Logger, memory bool) (repository.Store, error) {
	if memory {
		log.Warn("using in-memory store, data is lost on exit")
		return repository.NewMemoryStore(), nil
	}
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	gdb, err := db.Open(cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	return repository.NewGormStore(gdb), nil
}

// buildServices wires the optional integrations. Each one is skipped when unconfigured.
func buildServices(ctx context.Context, cfg *config.Config, log *zap.Logger, store repository.Store) (*services.Services, services.TokenBlacklist, error) {
	opts := services.Options{
		JWTSecret: cfg.JWTSecret,
		JWTTTL:    cfg.JWTTTL,
	}

	if cfg.RedisAddr != "" {
		client, err := redisstore.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, nil, err
		}
		opts.Blacklist = redisstore.NewTokenBlacklist(client)
		log.Info("token revocation enabled", zap.String("redis_addr", cfg.RedisAddr))
	} else {
		log.Warn("REDIS_ADDR not set, logout will not revoke tokens")
	}

	if cfg.EmailEnabled() {
		opts.Mailer = utils.NewSMTPMailer(utils.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.EmailUser,
			Password: cfg.EmailPass,
		})
	}

	if cfg.UploadsEnabled() {
		uploader, err := utils.NewCloudinaryUploader(utils.CloudinaryConfig{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("configure cloudinary: %w", err)
		}
		opts.Uploader = uploader
	}

	return services.New(store, log, opts), opts.Blacklist, nil
}
