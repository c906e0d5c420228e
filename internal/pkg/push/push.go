// Package push delivers notifications to mobile devices.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrInvalidToken means the device token is permanently unusable.
	ErrInvalidToken = errors.New("invalid device token")
	// ErrTransient means delivery failed but may succeed later.
	ErrTransient = errors.New("transient push failure")
)

type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]any
}

// Dispatcher sends one message and returns the provider message id. Errors
// wrap ErrInvalidToken or ErrTransient.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// StringifyData converts arbitrary values to the string map push providers
// require. It never fails.
func StringifyData(data map[string]any) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		out[k] = stringify(v)
	}
	return out
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		// Sprint recovers a panicking String, e.g. on a typed nil pointer.
		return fmt.Sprint(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// MaskToken keeps the first 10 characters of a device token for logs.
// Shorter tokens keep only half, so the full value never reaches a log.
func MaskToken(token string) string {
	if len(token) <= 10 {
		return token[:len(token)/2] + "..."
	}
	return token[:10] + "..."
}
