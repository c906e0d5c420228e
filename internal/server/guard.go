package server

import (
	"context"
	"time"

	"rentals/internal/pkg/guard"

	"github.com/rs/zerolog/log"
)

// OpenGuard returns a Redis backed guard when redisURL is set and an
// in-process one otherwise. The returned func releases the connection.
func OpenGuard(ctx context.Context, redisURL string) (*guard.Guard, func(), error) {
	if redisURL == "" {
		log.Warn().Msg("REDIS_URL not set, reminder guard is process local")
		return guard.New(guard.NewMemoryStore()), func() {}, nil
	}

	client, err := guard.NewRedisClient(redisURL)
	if err != nil {
		return nil, nil, err
	}
	store := guard.NewRedisStore(client)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		// runs degrade to unguarded sends until Redis comes back
		log.Warn().Err(err).Msg("redis not reachable at startup")
	}

	return guard.New(store), func() { _ = client.Close() }, nil
}
