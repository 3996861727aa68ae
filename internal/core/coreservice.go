package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jo-hoe/muralfolio/internal/backend/commands"
	"github.com/jo-hoe/muralfolio/internal/backend/commandstructure"
	"github.com/jo-hoe/muralfolio/internal/backend/database"
	"github.com/jo-hoe/muralfolio/internal/backend/email"
	"github.com/jo-hoe/muralfolio/internal/backend/storage"
)

// CoreService owns the clients for persistence, media storage and email and
// implements the mural, submission and contact operations on top of them.
type CoreService struct {
	config          *ServiceConfig
	databaseService database.DatabaseService
	mediaStore      storage.MediaStore
	emailSender     email.Sender
	pipeline        *commandstructure.CommandInvoker
	thumbnail       commandstructure.Command
	now             func() time.Time
}

// NewCoreService wires already constructed clients. The media pipeline is built from config.
func NewCoreService(config *ServiceConfig, databaseService database.DatabaseService, mediaStore storage.MediaStore, emailSender email.Sender) (*CoreService, error) {
	pipeline, err := commandstructure.NewCommandInvokerFromConfigs(commandstructure.DefaultRegistry, config.Media.Commands)
	if err != nil {
		return nil, fmt.Errorf("failed to build media pipeline: %w", err)
	}

	service := &CoreService{
		config:          config,
		databaseService: databaseService,
		mediaStore:      mediaStore,
		emailSender:     emailSender,
		pipeline:        pipeline,
		now:             time.Now,
	}
	if config.Media.ThumbnailWidth > 0 {
		thumbnail, err := commands.NewThumbnailCommand(config.Media.ThumbnailWidth)
		if err != nil {
			return nil, err
		}
		service.thumbnail = thumbnail
	}
	return service, nil
}

// NewCoreServiceFromConfig constructs every client from config. Clients built before a failure are closed.
func NewCoreServiceFromConfig(ctx context.Context, config *ServiceConfig) (*CoreService, error) {
	databaseService, err := database.NewDatabase(ctx, config.Database.Type, config.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)

	mediaStore, err := storage.NewMediaStore(ctx, storage.Options{
		Type:          config.Storage.Type,
		Bucket:        config.Storage.Bucket,
		Region:        config.Storage.Region,
		Endpoint:      config.Storage.Endpoint,
		AccessKey:     config.Storage.AccessKey,
		SecretKey:     config.Storage.SecretKey,
		PublicBaseURL: config.Storage.PublicBaseURL,
		LocalDir:      config.Storage.LocalDir,
	})
	if err != nil {
		_ = databaseService.Close()
		return nil, fmt.Errorf("failed to initialize media storage: %w", err)
	}
	slog.Info("media storage initialized successfully", "type", config.Storage.Type)

	emailSender, err := email.NewSender(email.Options{Type: config.Email.Type, APIKey: config.Email.APIKey})
	if err != nil {
		_ = databaseService.Close()
		return nil, fmt.Errorf("failed to initialize email sender: %w", err)
	}
	slog.Info("email sender initialized successfully", "type", config.Email.Type)

	service, err := NewCoreService(config, databaseService, mediaStore, emailSender)
	if err != nil {
		_ = databaseService.Close()
		return nil, err
	}
	return service, nil
}

func (service *CoreService) Config() *ServiceConfig {
	return service.config
}

// MediaStore exposes the store so the server can serve local media.
func (service *CoreService) MediaStore() storage.MediaStore {
	return service.mediaStore
}

func (service *CoreService) Close() error {
	if service.databaseService == nil {
		return nil
	}
	return service.databaseService.Close()
}

// sendBestEffort logs delivery failures instead of returning them
func (service *CoreService) sendBestEffort(ctx context.Context, kind string, build func() (email.Message, error)) {
	message, err := build()
	if err == nil {
		_, err = service.emailSender.Send(ctx, message)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("best effort email failed", "kind", kind, "error", err)
	}
}
