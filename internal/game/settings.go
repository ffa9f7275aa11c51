package game

import "fmt"

// Settings bounds. Rounds and clip duration outside these ranges are
// rejected without touching room state.
const (
	MinRounds        = 5
	MaxRounds        = 20
	MinMusicDuration = 15
	MaxMusicDuration = 60
)

// Settings is the host-tunable game configuration. Immutable once the room
// leaves the lobby.
type Settings struct {
	TotalRounds   int  `json:"total_rounds"`
	MusicDuration int  `json:"music_duration"`
	GameType      Mode `json:"game_type"`
}

// DefaultSettings returns the lobby defaults.
func DefaultSettings() Settings {
	return Settings{TotalRounds: 10, MusicDuration: 30, GameType: ModeRegular}
}

// Validate checks range and mode constraints.
func (s Settings) Validate() error {
	if s.TotalRounds < MinRounds || s.TotalRounds > MaxRounds {
		return fmt.Errorf("total rounds must be between %d and %d", MinRounds, MaxRounds)
	}
	if s.MusicDuration < MinMusicDuration || s.MusicDuration > MaxMusicDuration {
		return fmt.Errorf("music duration must be between %d and %d seconds", MinMusicDuration, MaxMusicDuration)
	}
	if s.GameType != ModeRegular && s.GameType != ModeSpeed {
		return fmt.Errorf("game type must be %q or %q", ModeRegular, ModeSpeed)
	}
	return nil
}
