package mock

import (
	"context"

	xclipper "github.com/ochanuco/x-clipper"
)

var _ xclipper.SettingsService = (*SettingsService)(nil)

// SettingsService is a mock implementation of xclipper.SettingsService.
type SettingsService struct {
	SettingsFn func(ctx context.Context) (*xclipper.Settings, error)
}

func (s *SettingsService) Settings(ctx context.Context) (*xclipper.Settings, error) {
	return s.SettingsFn(ctx)
}
