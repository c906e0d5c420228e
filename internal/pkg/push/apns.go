package push

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

type apnsPusher interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

type APNsConfig struct {
	KeyFile    string
	KeyID      string
	TeamID     string
	Topic      string
	Production bool
}

// APNsDispatcher sends directly to Apple Push Notification service using
// token based authentication.
type APNsDispatcher struct {
	client apnsPusher
	topic  string
}

func NewAPNsDispatcher(cfg APNsConfig) (*APNsDispatcher, error) {
	key, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load apns key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: key,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}
	return &APNsDispatcher{client: client, topic: cfg.Topic}, nil
}

func (d *APNsDispatcher) Send(ctx context.Context, msg Message) (string, error) {
	if msg.Token == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	p := payload.NewPayload().AlertTitle(msg.Title).AlertBody(msg.Body).Sound("default")
	for k, v := range StringifyData(msg.Data) {
		p = p.Custom(k, v)
	}

	res, err := d.client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: msg.Token,
		Topic:       d.topic,
		Payload:     p,
		PushType:    apns2.PushTypeAlert,
		Priority:    apns2.PriorityHigh,
	})
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrTransient, err)
		log.Warn().Err(err).Str("provider", "apns").Str("token", MaskToken(msg.Token)).Msg("push failed")
		return "", err
	}

	if err := classifyAPNsResponse(res); err != nil {
		log.Warn().Err(err).Str("provider", "apns").Str("token", MaskToken(msg.Token)).Msg("push rejected")
		return "", err
	}

	log.Info().Str("provider", "apns").Str("token", MaskToken(msg.Token)).Str("message_id", res.ApnsID).Msg("push sent")
	return res.ApnsID, nil
}

// classifyAPNsResponse returns nil for an accepted push.
func classifyAPNsResponse(res *apns2.Response) error {
	if res == nil {
		return fmt.Errorf("%w: empty apns response", ErrTransient)
	}
	if res.Sent() {
		return nil
	}

	switch res.Reason {
	case apns2.ReasonBadDeviceToken, apns2.ReasonUnregistered, apns2.ReasonDeviceTokenNotForTopic:
		return fmt.Errorf("%w: apns %d %s", ErrInvalidToken, res.StatusCode, res.Reason)
	}
	if res.StatusCode == http.StatusGone {
		return fmt.Errorf("%w: apns %d %s", ErrInvalidToken, res.StatusCode, res.Reason)
	}
	return fmt.Errorf("%w: apns %d %s", ErrTransient, res.StatusCode, res.Reason)
}
