// Package auth turns bearer tokens into engine actors. Tokens are minted by the
// identity layer; Issue exists for the admin CLI and tests.
package auth

import (
	"modflow/backend/internal/models"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const Issuer = "modflow-service"

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the actor id in sub and its role.
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a token for actor that expires after ttl.
func Issue(secret []byte, actor models.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Parse verifies raw and returns the actor it names. Expired, foreign or
// role-less tokens are rejected with ErrInvalidToken.
func Parse(secret []byte, raw string) (models.Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.Actor{}, errors.Wrap(ErrInvalidToken, err.Error())
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return models.Actor{}, errors.Wrap(ErrInvalidToken, "missing subject or role")
	}
	return models.Actor{ID: claims.Subject, Role: claims.Role}, nil
}
