package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tunequiz/internal/game"
)

// TrackCache handles Redis caching of track search results, keyed by the
// normalized search title. Provider lookups are slow and titles repeat
// across rooms, so hits skip the upstream API entirely.
type TrackCache interface {
	Get(ctx context.Context, title string) ([]game.Track, error)
	Set(ctx context.Context, title string, tracks []game.Track) error
}

type trackCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTrackCache creates a new track cache.
func NewTrackCache(client *redis.Client) TrackCache {
	return &trackCache{
		client: client,
		ttl:    6 * time.Hour, // Preview URLs expire upstream, keep it short
	}
}

func (c *trackCache) key(title string) string {
	return fmt.Sprintf("tracks:%s", game.NormalizeAnswer(title))
}

func (c *trackCache) Get(ctx context.Context, title string) ([]game.Track, error) {
	data, err := c.client.Get(ctx, c.key(title)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var tracks []game.Track
	if err := json.Unmarshal([]byte(data), &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

func (c *trackCache) Set(ctx context.Context, title string, tracks []game.Track) error {
	if len(tracks) == 0 {
		return nil
	}
	data, err := json.Marshal(tracks)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(title), data, c.ttl).Err()
}
