package push

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LogDispatcher only logs messages. Used in development.
type LogDispatcher struct{}

func NewLogDispatcher() *LogDispatcher { return &LogDispatcher{} }

func (LogDispatcher) Send(_ context.Context, msg Message) (string, error) {
	if msg.Token == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	id := uuid.NewString()
	log.Info().
		Str("provider", "log").
		Str("token", MaskToken(msg.Token)).
		Str("title", msg.Title).
		Str("body", msg.Body).
		Interface("data", StringifyData(msg.Data)).
		Str("message_id", id).
		Msg("push sent")
	return id, nil
}
