package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mzagorenko/clinic/internal/apperr"
)

// Issuer mints and decodes short-lived signed access tokens. Validity is
// fully determined by signature and expiry, nothing is persisted.
type Issuer struct {
	Secret    []byte
	Algorithm string
	TTL       time.Duration
}

func (i Issuer) Issue(userID uuid.UUID) (string, time.Time, error) {
	method := jwt.GetSigningMethod(i.Algorithm)
	if method == nil {
		return "", time.Time{}, errors.New("tokens: unknown signing algorithm " + i.Algorithm)
	}

	exp := time.Now().Add(i.TTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	signed, err := jwt.NewWithClaims(method, claims).SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (i Issuer) Decode(tokenStr string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != i.Algorithm {
			return nil, errors.New("unexpected sign method")
		}
		return i.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, apperr.ErrTokenExpired
		}
		return uuid.Nil, apperr.ErrInvalidToken
	}
	if !tkn.Valid {
		return uuid.Nil, apperr.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperr.ErrInvalidToken
	}
	return userID, nil
}
