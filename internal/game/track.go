package game

import "context"

// Track is one playable quiz clip. Answer is the canonical title players must
// guess; it is never broadcast before the reveal phase.
type Track struct {
	Title      string `json:"title"`
	Answer     string `json:"answer"`
	PreviewURL string `json:"preview_url"`
	ImageURL   string `json:"image"`
}

// TrackProvider supplies one clip per round. A failed fetch is retried once
// by the room before the round is skipped.
type TrackProvider interface {
	QuizTrack(ctx context.Context) (Track, error)
}

// SuggestionIndex returns ranked title candidates for an autocomplete query.
type SuggestionIndex interface {
	Suggest(ctx context.Context, query string) ([]string, error)
}

// Standing is one row of a room's score table, ordered by rank.
type Standing struct {
	PlayerID int    `json:"player_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

// ScoreMirror receives final standings when a game finishes. Implementations
// must not block the caller; the room invokes it from its serialized section.
type ScoreMirror interface {
	Record(roomCode string, standings []Standing)
}

// NopScoreMirror discards standings.
type NopScoreMirror struct{}

func (NopScoreMirror) Record(string, []Standing) {}
