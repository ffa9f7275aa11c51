package game

import "encoding/json"

// Outbound message types. Every server-to-client message is a flat JSON
// object with an "action" discriminator; one constructor per message keeps
// the wire shapes in a single place.

// PlayerView is a player entry in a state snapshot.
type PlayerView struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	IsReady   bool   `json:"is_ready"`
	Connected bool   `json:"connected"`
}

// TrackView is the track metadata exposed to clients. During an active round
// only the preview URL is populated; title, artwork and answer appear only
// once the reveal phase has started so the correct title can never leak early.
type TrackView struct {
	PreviewURL string `json:"preview_url"`
	Image      string `json:"image,omitempty"`
	Title      string `json:"title,omitempty"`
	Answer     string `json:"answer,omitempty"`
}

// StateSnapshot is the full room state broadcast as update_state.
type StateSnapshot struct {
	RoomID        string      `json:"room_id"`
	HostID        int         `json:"host_id"`
	Players       []PlayerView `json:"players"`
	IsGameActive  bool        `json:"is_game_active"`
	IsRoundActive bool        `json:"is_round_active"`
	IsRevealPhase bool        `json:"is_reveal_phase"`
	CurrentRound  int         `json:"current_round"`
	TotalRounds   int         `json:"total_rounds"`
	MusicDuration int         `json:"music_duration"`
	GameType      Mode        `json:"game_type"`
	CurrentTrack  *TrackView  `json:"current_track"`
	Scores        map[int]int `json:"scores"`
	HasPassword   bool        `json:"has_password"`
}

func mustMarshal(v any) []byte {
	data, _ := json.Marshal(v)
	return data
}

func stateMessage(s StateSnapshot) []byte {
	return mustMarshal(struct {
		Action string        `json:"action"`
		State  StateSnapshot `json:"state"`
	}{"update_state", s})
}

func chatMessage(playerName, text string) []byte {
	return mustMarshal(struct {
		Action     string `json:"action"`
		PlayerName string `json:"player_name"`
		Text       string `json:"text"`
	}{"chat_message", playerName, text})
}

func notification(kind, message string, correctPlayers []string) []byte {
	return mustMarshal(struct {
		Action         string   `json:"action"`
		Type           string   `json:"type"`
		Message        string   `json:"message"`
		CorrectPlayers []string `json:"correct_players,omitempty"`
	}{"game_notification", kind, message, correctPlayers})
}

// SuggestionsMessage is unicast to the requesting connection only.
func SuggestionsMessage(suggestions []string) []byte {
	if suggestions == nil {
		suggestions = []string{}
	}
	return mustMarshal(struct {
		Action      string   `json:"action"`
		Suggestions []string `json:"suggestions"`
	}{"suggestions", suggestions})
}

func guessResultMessage(correct bool, points int) []byte {
	return mustMarshal(struct {
		Action       string `json:"action"`
		Correct      bool   `json:"correct"`
		PointsEarned int    `json:"points_earned"`
	}{"guess_result", correct, points})
}

func roundStartMessage() []byte {
	return mustMarshal(struct {
		Action string `json:"action"`
	}{"round_start"})
}

func roundEndMessage(t Track, scores map[int]int) []byte {
	return mustMarshal(struct {
		Action        string      `json:"action"`
		AlbumImage    string      `json:"album_image"`
		SongTitle     string      `json:"song_title"`
		CorrectAnswer string      `json:"correct_answer"`
		Scores        map[int]int `json:"scores"`
	}{"round_end", t.ImageURL, t.Title, t.Answer, scores})
}

func gameOverMessage(leaderboard map[int]int) []byte {
	return mustMarshal(struct {
		Action      string      `json:"action"`
		Leaderboard map[int]int `json:"leaderboard"`
	}{"game_over", leaderboard})
}

func settingsUpdatedMessage(s Settings) []byte {
	return mustMarshal(struct {
		Action   string   `json:"action"`
		Settings Settings `json:"settings"`
	}{"settings_updated", s})
}

// JoinedMessage tells a freshly attached connection its player id and the
// resume token it can present to reclaim the seat after a disconnect.
func JoinedMessage(playerID int, resumeToken string) []byte {
	return mustMarshal(struct {
		Action      string `json:"action"`
		PlayerID    int    `json:"player_id"`
		ResumeToken string `json:"resume_token,omitempty"`
	}{"joined", playerID, resumeToken})
}

// ErrorMessage is unicast before closing a session on a fatal error, or as a
// soft rejection of an action.
func ErrorMessage(message string) []byte {
	return mustMarshal(struct {
		Action  string `json:"action"`
		Message string `json:"message"`
	}{"error", message})
}
