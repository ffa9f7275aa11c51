package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// SeatClaims ties a token to one seat in one room. Presenting it over the
// websocket reclaims the seat: the room creator uses it to take the host
// seat, and any player uses it to reconnect with score and role intact.
type SeatClaims struct {
	RoomCode string `json:"room_code"`
	PlayerID int    `json:"player_id"`
	jwt.RegisteredClaims
}

// TokenService issues and validates room-scoped seat tokens. There are no
// accounts behind these; a token is just proof that this client was handed
// this seat.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a new token service.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// IssueSeatToken creates a room-scoped token for a seat.
func (s *TokenService) IssueSeatToken(roomCode string, playerID int) (string, error) {
	claims := &SeatClaims{
		RoomCode: roomCode,
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateSeatToken validates a seat token and returns its claims.
func (s *TokenService) ValidateSeatToken(tokenString string) (*SeatClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SeatClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SeatClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
