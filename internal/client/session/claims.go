package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the client can read from an access token without the
// signing key. It is informational only; the backend decides validity.
type TokenInfo struct {
	UserID    int64
	ExpiresAt time.Time
}

func (i TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// ParseTokenInfo decodes the claims of a JWT access token without verifying
// its signature.
func ParseTokenInfo(token string) (TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, fmt.Errorf("parse token: %w", err)
	}

	var info TokenInfo
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return TokenInfo{}, fmt.Errorf("parse token: %w", err)
	}
	if exp != nil {
		info.ExpiresAt = exp.Time
	}

	switch v := claims["user_id"].(type) {
	case float64:
		info.UserID = int64(v)
	case string:
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			info.UserID = id
		}
	}
	return info, nil
}
