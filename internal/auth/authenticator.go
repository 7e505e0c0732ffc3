// Package auth checks the optional signed token that clients may attach to
// the relay authenticate event.
package auth

import (
	"errors"
	"time"

	"github.com/goevery/orderrelay/internal/ierr"
	"github.com/goevery/orderrelay/internal/presence"
	"github.com/golang-jwt/jwt/v5"
)

const Audience = "orderrelay"

type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type Verifier struct {
	secret    []byte
	jwtParser *jwt.Parser
}

func NewVerifier(secret string) *Verifier {
	jwtParser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30*time.Second),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithAudience(Audience),
	)

	return &Verifier{
		secret:    []byte(secret),
		jwtParser: jwtParser,
	}
}

func (v *Verifier) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ierr.New(ierr.ErrorCodeUnauthenticated, errors.New("unexpected signing method"))
	}
	return v.secret, nil
}

// Verify checks that tokenString was issued for userId acting as role.
func (v *Verifier) Verify(tokenString string, userId string, role presence.Role) error {
	if tokenString == "" {
		return ierr.New(ierr.ErrorCodeUnauthenticated, errors.New("missing token"))
	}

	claims := Claims{}

	_, err := v.jwtParser.ParseWithClaims(tokenString, &claims, v.keyFunc)
	if err != nil {
		return ierr.New(ierr.ErrorCodeUnauthenticated, err)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid subject claim"))
	}

	if subject != userId {
		return ierr.New(ierr.ErrorCodePermissionDenied, errors.New("token subject does not match userId"))
	}

	if presence.Role(claims.Role) != role {
		return ierr.New(ierr.ErrorCodePermissionDenied, errors.New("token role does not match role"))
	}

	return nil
}
