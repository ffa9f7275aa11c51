package game

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Client actions are modeled as one type per action so the room's dispatch is
// an exhaustive type switch instead of string matching spread through the
// engine. The wire format stays a flat JSON object with an "action"
// discriminator.

// Action is a validated inbound client action. The sender's player id is
// attached by the connection handler, never taken from the payload.
type Action interface {
	isAction()
}

type GuessAction struct {
	Text string `json:"text"`
}

type SuggestAction struct {
	Query string `json:"query"`
}

type SetReadyAction struct {
	Ready bool `json:"is_ready"`
}

type StartGameAction struct{}

type UpdateSettingsAction struct {
	Settings Settings `json:"settings"`
}

type KickPlayerAction struct {
	PlayerID int `json:"player_id"`
}

type ChatAction struct {
	Text string `json:"text"`
}

func (GuessAction) isAction()          {}
func (SuggestAction) isAction()        {}
func (SetReadyAction) isAction()       {}
func (StartGameAction) isAction()      {}
func (UpdateSettingsAction) isAction() {}
func (KickPlayerAction) isAction()     {}
func (ChatAction) isAction()           {}

var (
	ErrMalformedAction = errors.New("malformed action payload")
	ErrUnknownAction   = errors.New("unknown action")
)

// DecodeAction parses a raw client message into its typed action. Unknown
// discriminators and malformed payloads are protocol errors: the caller logs
// and drops them without closing the connection.
func DecodeAction(data []byte) (Action, error) {
	var env struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, ErrMalformedAction
	}

	var (
		action Action
		err    error
	)
	switch env.Action {
	case "guess":
		var a GuessAction
		err = json.Unmarshal(data, &a)
		action = a
	case "get_suggestions":
		var a SuggestAction
		err = json.Unmarshal(data, &a)
		action = a
	case "set_ready":
		var a SetReadyAction
		err = json.Unmarshal(data, &a)
		action = a
	case "start_game":
		action = StartGameAction{}
	case "update_settings":
		var a UpdateSettingsAction
		err = json.Unmarshal(data, &a)
		action = a
	case "kick_player":
		var a KickPlayerAction
		err = json.Unmarshal(data, &a)
		action = a
	case "chat":
		var a ChatAction
		err = json.Unmarshal(data, &a)
		action = a
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Action)
	}
	if err != nil {
		return nil, ErrMalformedAction
	}
	return action, nil
}
