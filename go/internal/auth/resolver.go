package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrUnauthenticated is returned when no user identity can be resolved.
var ErrUnauthenticated = errors.New("unauthenticated")

// UserIDHeader carries the user identity in development mode.
const UserIDHeader = "X-User-ID"

// Resolver resolves the authenticated user of a request.
type Resolver interface {
	Resolve(ctx context.Context, header http.Header) (uuid.UUID, error)
}

// JWTResolver validates HS256 bearer tokens whose subject is the user ID.
type JWTResolver struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTResolver(secret, issuer string) *JWTResolver {
	return &JWTResolver{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

func (r *JWTResolver) Resolve(ctx context.Context, header http.Header) (uuid.UUID, error) {
	raw, ok := bearerToken(header)
	if !ok {
		return uuid.Nil, ErrUnauthenticated
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(r.now),
	}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, opts...); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid subject", ErrUnauthenticated)
	}
	return userID, nil
}

// IssueToken signs a token for userID valid for ttl.
func (r *JWTResolver) IssueToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := r.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    r.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(r.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// HeaderResolver trusts the X-User-ID header. Development only.
type HeaderResolver struct{}

func (HeaderResolver) Resolve(ctx context.Context, header http.Header) (uuid.UUID, error) {
	raw := strings.TrimSpace(header.Get(UserIDHeader))
	if raw == "" {
		return uuid.Nil, ErrUnauthenticated
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid user id", ErrUnauthenticated)
	}
	return userID, nil
}

// WithQueryToken copies an access_token query parameter into the Authorization
// header. Browser EventSource and WebSocket clients cannot set headers.
func WithQueryToken(r *http.Request) http.Header {
	header := r.Header.Clone()
	if header.Get("Authorization") != "" {
		return header
	}
	if token := r.URL.Query().Get("access_token"); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return header
}

func bearerToken(header http.Header) (string, bool) {
	value := header.Get("Authorization")
	scheme, token, ok := strings.Cut(value, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
