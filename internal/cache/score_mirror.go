package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tunequiz/internal/game"
)

// ScoreMirror pushes a finished game's standings into a Redis ZSET so the
// REST leaderboard endpoint can serve them after the room is gone. Writes
// are best-effort and run off the room's goroutine; the authoritative scores
// always live in the room itself.
type ScoreMirror interface {
	game.ScoreMirror
	Top(ctx context.Context, roomCode string, limit int) ([]game.Standing, error)
}

type scoreMirror struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewScoreMirror creates a new score mirror.
func NewScoreMirror(client *redis.Client, logger zerolog.Logger) ScoreMirror {
	return &scoreMirror{
		client: client,
		ttl:    24 * time.Hour,
		log:    logger.With().Str("component", "score_mirror").Logger(),
	}
}

func (c *scoreMirror) key(roomCode string) string {
	return fmt.Sprintf("room:%s:final", roomCode)
}

func (c *scoreMirror) Record(roomCode string, standings []game.Standing) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		members := make([]redis.Z, 0, len(standings))
		for _, s := range standings {
			members = append(members, redis.Z{
				Score:  float64(s.Score),
				Member: fmt.Sprintf("%d:%s", s.PlayerID, s.Name),
			})
		}
		if len(members) == 0 {
			return
		}

		pipe := c.client.Pipeline()
		pipe.Del(ctx, c.key(roomCode))
		pipe.ZAdd(ctx, c.key(roomCode), members...)
		pipe.Expire(ctx, c.key(roomCode), c.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			c.log.Warn().Err(err).Str("room", roomCode).Msg("failed to mirror final scores")
		}
	}()
}

func (c *scoreMirror) Top(ctx context.Context, roomCode string, limit int) ([]game.Standing, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(roomCode), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	standings := make([]game.Standing, 0, len(results))
	for _, z := range results {
		member, _ := z.Member.(string)
		var id int
		var name string
		if _, err := fmt.Sscanf(member, "%d:", &id); err == nil {
			for i := 0; i < len(member); i++ {
				if member[i] == ':' {
					name = member[i+1:]
					break
				}
			}
		}
		standings = append(standings, game.Standing{
			PlayerID: id,
			Name:     name,
			Score:    int(z.Score),
		})
	}
	return standings, nil
}
