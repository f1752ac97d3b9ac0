package service

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/vbonduro/labinv/internal/apperrors"
)

const (
	maxSettingKeyLen   = 64
	maxSettingValueLen = 1000
)

// SettingService stores free-form user preferences such as the default zone
// or list page size. Keys are opaque to the server.
type SettingService struct {
	settings settingRepository
	logger   *zap.Logger
}

func NewSettingService(settings settingRepository, logger *zap.Logger) *SettingService {
	return &SettingService{settings: settings, logger: logger}
}

func (s *SettingService) AllSettings(ctx context.Context) (map[string]string, error) {
	return s.settings.All(ctx)
}

// GetSetting returns the value of key, or nil when it was never set.
func (s *SettingService) GetSetting(ctx context.Context, key string) (*string, error) {
	if err := validateSettingKey(key); err != nil {
		return nil, err
	}
	value, ok, err := s.settings.Get(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	return &value, nil
}

// UpdateSettings upserts every pair in values. Either all are saved or none.
func (s *SettingService) UpdateSettings(ctx context.Context, values map[string]string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, apperrors.Invalid("settings", "at least one setting is required")
	}
	for key, value := range values {
		if err := validateSettingKey(key); err != nil {
			return nil, err
		}
		if len(value) > maxSettingValueLen {
			return nil, apperrors.Invalid(key, "value must be at most %d characters", maxSettingValueLen)
		}
	}
	if err := s.settings.SetMany(ctx, values); err != nil {
		return nil, err
	}
	s.logger.Info("settings updated", zap.Int("count", len(values)))
	return s.settings.All(ctx)
}

func validateSettingKey(key string) error {
	if key == "" {
		return apperrors.Invalid("key", "is required")
	}
	if len(key) > maxSettingKeyLen {
		return apperrors.Invalid("key", "must be at most %d characters", maxSettingKeyLen)
	}
	if strings.IndexFunc(key, unicode.IsSpace) >= 0 {
		return apperrors.Invalid("key", "%q must not contain whitespace", key)
	}
	return nil
}
