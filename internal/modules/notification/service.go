package notification

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentals/internal/pkg/push"
	"rentals/internal/repository"

	"github.com/rs/zerolog/log"
)

type Service struct {
	users      DeviceTokenStore
	dispatcher push.Dispatcher
	now        func() time.Time
}

func NewService(users DeviceTokenStore, dispatcher push.Dispatcher) *Service {
	return &Service{users: users, dispatcher: dispatcher, now: time.Now}
}

func (s *Service) RegisterDeviceToken(ctx context.Context, userID int64, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrNoDeviceToken
	}
	if err := s.users.SetDeviceToken(ctx, userID, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	log.Info().Int64("user_id", userID).Str("token", push.MaskToken(token)).Msg("device token registered")
	return nil
}

func (s *Service) RemoveDeviceToken(ctx context.Context, userID int64) error {
	if err := s.users.SetDeviceToken(ctx, userID, ""); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// SendTest pushes a fixed message to the caller's own device. A token the
// provider rejects as invalid is cleared.
func (s *Service) SendTest(ctx context.Context, userID int64) (*TestResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.HasDeviceToken() {
		return nil, ErrNoDeviceToken
	}

	token := user.Token()
	logger := log.With().Int64("user_id", userID).Str("token", push.MaskToken(token)).Logger()
	logger.Info().Msg("sending test notification")

	id, err := s.dispatcher.Send(ctx, push.Message{
		Token: token,
		Title: testTitle,
		Body:  testBody,
		Data: map[string]any{
			"type":      testMessage,
			"message":   "This is a test notification!",
			"timestamp": s.now(),
		},
	})
	if err != nil {
		if errors.Is(err, push.ErrInvalidToken) {
			if clearErr := s.users.ClearDeviceToken(ctx, userID, token); clearErr != nil {
				logger.Error().Err(clearErr).Msg("clear rejected device token")
			}
			logger.Warn().Err(err).Msg("test notification rejected")
			return nil, ErrTokenRejected
		}
		logger.Error().Err(err).Msg("test notification failed")
		return nil, ErrDeliveryFailed
	}

	return &TestResult{UserID: userID, MessageID: id, TokenLength: len(token)}, nil
}
