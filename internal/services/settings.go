package services

import (
	"context"
	"os"
	"strconv"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/readwave/readwave-backend/internal/logger"
)

// Settings are the per-user reader toggles. EnableAudio gates narration at
// session construction time; changing it takes effect on the next session.
type Settings struct {
	EnableAudio        bool `json:"enable_audio" yaml:"enable_audio"`
	EnableHighlighting bool `json:"enable_highlighting" yaml:"enable_highlighting"`
	EnableDarkMode     bool `json:"enable_dark_mode" yaml:"enable_dark_mode"`
}

// SettingsService stores per-user settings as a redis hash over a
// defaults baseline. Get never fails: missing redis, missing keys, and
// corrupt values all fall back to the defaults.
type SettingsService interface {
	Defaults() Settings
	Get(ctx context.Context, userID uuid.UUID) Settings
	Update(ctx context.Context, userID uuid.UUID, updates map[string]bool) Settings
}

type settingsService struct {
	log      *logger.Logger
	rdb      *goredis.Client
	defaults Settings
}

// NewSettingsService loads the defaults baseline: compiled-in values,
// then the optional yaml file named by SETTINGS_PATH layered on top.
func NewSettingsService(baseLog *logger.Logger, rdb *goredis.Client) SettingsService {
	log := baseLog.With("service", "SettingsService")
	defaults := Settings{
		EnableAudio:        true,
		EnableHighlighting: true,
		EnableDarkMode:     false,
	}
	if path := os.Getenv("SETTINGS_PATH"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Warn("Could not read settings defaults file", "path", path, "error", err)
		} else if err := yaml.Unmarshal(raw, &defaults); err != nil {
			log.Warn("Could not parse settings defaults file", "path", path, "error", err)
		}
	}
	return &settingsService{log: log, rdb: rdb, defaults: defaults}
}

func settingsKey(userID uuid.UUID) string {
	return "settings:user:" + userID.String()
}

func (s *settingsService) Defaults() Settings { return s.defaults }

func (s *settingsService) Get(ctx context.Context, userID uuid.UUID) Settings {
	out := s.defaults
	if s.rdb == nil || userID == uuid.Nil {
		return out
	}
	stored, err := s.rdb.HGetAll(ctx, settingsKey(userID)).Result()
	if err != nil {
		s.log.Debug("Settings read failed, serving defaults", "user_id", userID, "error", err)
		return out
	}
	applyField(stored, "enable_audio", &out.EnableAudio)
	applyField(stored, "enable_highlighting", &out.EnableHighlighting)
	applyField(stored, "enable_dark_mode", &out.EnableDarkMode)
	return out
}

// Update applies the recognized keys from updates and ignores the rest,
// so older clients sending stale keys keep working.
func (s *settingsService) Update(ctx context.Context, userID uuid.UUID, updates map[string]bool) Settings {
	if s.rdb != nil && userID != uuid.Nil && len(updates) > 0 {
		fields := make(map[string]any, len(updates))
		for key, value := range updates {
			switch key {
			case "enable_audio", "enable_highlighting", "enable_dark_mode":
				fields[key] = strconv.FormatBool(value)
			default:
				s.log.Debug("Ignoring unrecognized settings key", "key", key)
			}
		}
		if len(fields) > 0 {
			if err := s.rdb.HSet(ctx, settingsKey(userID), fields).Err(); err != nil {
				s.log.Warn("Settings write failed", "user_id", userID, "error", err)
			}
		}
	}
	return s.Get(ctx, userID)
}

func applyField(stored map[string]string, key string, dst *bool) {
	raw, ok := stored[key]
	if !ok {
		return
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return
	}
	*dst = parsed
}
