package core

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/jo-hoe/muralfolio/internal/backend/commandstructure"
	"github.com/jo-hoe/muralfolio/internal/backend/database"
	"github.com/jo-hoe/muralfolio/internal/backend/email"
	"github.com/jo-hoe/muralfolio/internal/backend/storage"
	"github.com/jo-hoe/muralfolio/internal/card"
	"github.com/jo-hoe/muralfolio/internal/mapview"

	// registers the media commands in the default registry
	_ "github.com/jo-hoe/muralfolio/internal/backend/commands"
)

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

type Database struct {
	Type             string `yaml:"type" env:"DATABASE_TYPE" env-default:"sqlite"`
	ConnectionString string `yaml:"connectionString" env:"DATABASE_URL" env-default:":memory:"`
}

type Storage struct {
	Type          string `yaml:"type" env:"STORAGE_TYPE" env-default:"local"`
	Bucket        string `yaml:"bucket" env:"STORAGE_BUCKET"`
	Region        string `yaml:"region" env:"STORAGE_REGION" env-default:"us-east-1"`
	Endpoint      string `yaml:"endpoint" env:"STORAGE_ENDPOINT"`
	AccessKey     string `yaml:"accessKey" env:"STORAGE_ACCESS_KEY"`
	SecretKey     string `yaml:"secretKey" env:"STORAGE_SECRET_KEY"`
	PublicBaseURL string `yaml:"publicBaseURL" env:"STORAGE_PUBLIC_BASE_URL"`
	LocalDir      string `yaml:"localDir" env:"STORAGE_LOCAL_DIR" env-default:"./data/media"`
}

type Email struct {
	Type      string `yaml:"type" env:"EMAIL_TYPE" env-default:"log"`
	APIKey    string `yaml:"apiKey" env:"RESEND_API_KEY"`
	From      string `yaml:"from" env:"RESEND_FROM_EMAIL" env-default:"onboarding@resend.dev"`
	ContactTo string `yaml:"contactTo" env:"CONTACT_EMAIL"`
	Site      string `yaml:"site" env:"EMAIL_SITE_NAME"`
}

type Auth struct {
	JWTSecret string `yaml:"jwtSecret" env:"AUTH_JWT_SECRET"`
	Issuer    string `yaml:"issuer" env:"AUTH_ISSUER"`
	AdminRole string `yaml:"adminRole" env:"AUTH_ADMIN_ROLE" env-default:"admin"`
}

// RateLimit is disabled when RedisAddr is empty.
type RateLimit struct {
	RedisAddr string        `yaml:"redisAddr" env:"RATE_LIMIT_REDIS_ADDR"`
	Requests  int           `yaml:"requests" env:"RATE_LIMIT_REQUESTS" env-default:"5"`
	Window    time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" env-default:"1m"`
}

type Map struct {
	CenterLat        float64 `yaml:"centerLat" env:"MAP_CENTER_LAT" env-default:"27.7"`
	CenterLng        float64 `yaml:"centerLng" env:"MAP_CENTER_LNG" env-default:"-97.3"`
	Zoom             float64 `yaml:"zoom" env:"MAP_ZOOM" env-default:"10"`
	Pitch            float64 `yaml:"pitch" env:"MAP_PITCH" env-default:"45"`
	FocusZoom        float64 `yaml:"focusZoom" env:"MAP_FOCUS_ZOOM" env-default:"15"`
	NarrowBreakpoint int     `yaml:"narrowBreakpoint" env:"MAP_NARROW_BREAKPOINT" env-default:"1024"`
	FitMarkers       bool    `yaml:"fitMarkers" env:"MAP_FIT_MARKERS"`
}

// Options converts the map section for a mapview.View.
func (m Map) Options() mapview.Options {
	return mapview.Options{
		Center:           orb.Point{m.CenterLng, m.CenterLat},
		Zoom:             m.Zoom,
		Pitch:            m.Pitch,
		FocusZoom:        m.FocusZoom,
		NarrowBreakpoint: m.NarrowBreakpoint,
		FitMarkers:       m.FitMarkers,
	}
}

type Card struct {
	FullName     string `yaml:"fullName" env:"CARD_FULL_NAME"`
	Title        string `yaml:"title" env:"CARD_TITLE"`
	Organization string `yaml:"organization" env:"CARD_ORGANIZATION"`
	Email        string `yaml:"email" env:"CARD_EMAIL"`
	Phone        string `yaml:"phone" env:"CARD_PHONE"`
	City         string `yaml:"city" env:"CARD_CITY"`
	Region       string `yaml:"region" env:"CARD_REGION"`
	SiteURL      string `yaml:"siteURL" env:"CARD_SITE_URL"`
	Instagram    string `yaml:"instagram" env:"CARD_INSTAGRAM"`
	ResumeURL    string `yaml:"resumeURL" env:"CARD_RESUME_URL"`
}

func (c Card) Owner() card.Owner {
	return card.Owner{
		FullName:     c.FullName,
		Title:        c.Title,
		Organization: c.Organization,
		Email:        c.Email,
		Phone:        c.Phone,
		City:         c.City,
		Region:       c.Region,
		SiteURL:      c.SiteURL,
		Instagram:    c.Instagram,
		ResumeURL:    c.ResumeURL,
	}
}

type Media struct {
	MaxUploadBytes int64                            `yaml:"maxUploadBytes" env:"MEDIA_MAX_UPLOAD_BYTES" env-default:"26214400"`
	ThumbnailWidth int                              `yaml:"thumbnailWidth" env:"MEDIA_THUMBNAIL_WIDTH" env-default:"480"`
	Commands       []commandstructure.CommandConfig `yaml:"commands"`
}

type ServiceConfig struct {
	Port      int       `yaml:"port" env:"PORT" env-default:"8080"`
	Log       Log       `yaml:"log"`
	Database  Database  `yaml:"database"`
	Storage   Storage   `yaml:"storage"`
	Email     Email     `yaml:"email"`
	Auth      Auth      `yaml:"auth"`
	RateLimit RateLimit `yaml:"rateLimit"`
	Map       Map       `yaml:"map"`
	Card      Card      `yaml:"card"`
	Media     Media     `yaml:"media"`
}

// LoadConfig reads the YAML file, applies environment overrides and defaults, and validates the result
func LoadConfig(configPath string) (*ServiceConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var config ServiceConfig
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	if err = cleanenv.ReadEnv(&config); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func validateConfig(config *ServiceConfig) error {
	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("port %d out of range", config.Port)
	}
	switch config.Database.Type {
	case database.TypeSQLite, database.TypePostgres:
	default:
		return fmt.Errorf("unsupported database type: %s", config.Database.Type)
	}
	switch config.Storage.Type {
	case storage.TypeLocal, storage.TypeS3:
	default:
		return fmt.Errorf("unsupported storage type: %s", config.Storage.Type)
	}
	switch config.Email.Type {
	case email.TypeLog:
	case email.TypeResend:
		if config.Email.ContactTo == "" {
			return fmt.Errorf("email.contactTo is required for the resend sender")
		}
	default:
		return fmt.Errorf("unsupported email type: %s", config.Email.Type)
	}
	if config.Media.MaxUploadBytes <= 0 {
		return fmt.Errorf("media.maxUploadBytes must be positive")
	}
	if config.RateLimit.RedisAddr != "" && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("rateLimit.requests and rateLimit.window must be positive")
	}
	if err := commandstructure.ValidateCommandConfigs(commandstructure.DefaultRegistry, config.Media.Commands); err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}
	return nil
}
