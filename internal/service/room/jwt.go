package room

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotHost = errors.New("sender is not the room host")

func (s *Service) generateHostToken(roomID string, hostName string) (string, error) {
	claims := jwt.MapClaims{
		"room_id":   roomID,
		"host_name": hostName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(s.secret))
}

// VerifyHostToken checks that the token was minted for this room's host.
func (s *Service) VerifyHostToken(tokenString string, roomID string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return fmt.Errorf("failed to parse host token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return errors.New("invalid host token")
	}

	if claims["room_id"] != roomID {
		return ErrNotHost
	}

	return nil
}
