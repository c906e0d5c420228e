package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

type fcmSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMDispatcher sends through Firebase Cloud Messaging.
type FCMDispatcher struct {
	client fcmSender
}

// NewFCMDispatcher builds a Firebase app from a service account file.
func NewFCMDispatcher(ctx context.Context, credentialsFile string) (*FCMDispatcher, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return &FCMDispatcher{client: client}, nil
}

func (d *FCMDispatcher) Send(ctx context.Context, msg Message) (string, error) {
	if msg.Token == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	id, err := d.client.Send(ctx, buildFCMMessage(msg))
	if err != nil {
		err = classifyFCMError(err)
		log.Warn().Err(err).Str("provider", "fcm").Str("token", MaskToken(msg.Token)).Msg("push failed")
		return "", err
	}

	log.Info().Str("provider", "fcm").Str("token", MaskToken(msg.Token)).Str("message_id", id).Msg("push sent")
	return id, nil
}

func buildFCMMessage(msg Message) *messaging.Message {
	return &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: StringifyData(msg.Data),
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: msg.Title,
				Body:  msg.Body,
			},
		},
	}
}

func classifyFCMError(err error) error {
	switch {
	case messaging.IsUnregistered(err), messaging.IsSenderIDMismatch(err), messaging.IsInvalidArgument(err):
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	default:
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
}
