package push

import (
	"context"
	"fmt"

	"rentals/internal/config"
)

// New returns the dispatcher selected by PUSH_PROVIDER.
func New(ctx context.Context, cfg config.PushConfig) (Dispatcher, error) {
	switch cfg.Provider {
	case "fcm":
		return NewFCMDispatcher(ctx, cfg.FCMCredentialsFile)
	case "apns":
		return NewAPNsDispatcher(APNsConfig{
			KeyFile:    cfg.APNsKeyFile,
			KeyID:      cfg.APNsKeyID,
			TeamID:     cfg.APNsTeamID,
			Topic:      cfg.APNsTopic,
			Production: cfg.APNsProduction,
		})
	case "log", "":
		return NewLogDispatcher(), nil
	default:
		return nil, fmt.Errorf("unknown push provider %q", cfg.Provider)
	}
}
