package share

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/linguloop/backend/internal/models"
)

// Minter issues the opaque share tokens handed to quiz runners. A token pins
// one (session, difficulty) question set; consumers never query by session
// directly.
type Minter struct {
	secret []byte
}

func NewMinterFromEnv() *Minter {
	secret := os.Getenv("SHARE_TOKEN_SECRET")
	if secret == "" {
		secret = "linguloop-staging-share-signing-key"
	}
	return &Minter{secret: []byte(secret)}
}

func NewMinter(secret []byte) *Minter {
	return &Minter{secret: secret}
}

func (m *Minter) Mint(sessionID string, difficulty models.Difficulty) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionID,
		"dif": string(difficulty),
		"jti": uuid.NewString(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign share token: %w", err)
	}
	return signed, nil
}

// Parse verifies a share token and returns the (session, difficulty) it
// references.
func (m *Minter) Parse(tokenString string) (string, models.Difficulty, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("parse share token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("invalid share token")
	}

	sessionID, _ := claims["sid"].(string)
	diff, _ := claims["dif"].(string)
	if sessionID == "" || !models.ValidDifficulties[models.Difficulty(diff)] {
		return "", "", fmt.Errorf("share token missing session or difficulty")
	}

	return sessionID, models.Difficulty(diff), nil
}
