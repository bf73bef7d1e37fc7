package invites

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an invite token stays resolvable.
const DefaultTTL = 72 * time.Hour

var ErrTokenNotFound = errors.New("invite token not found or expired")

// Claim is what a resolved invite token reveals.
type Claim struct {
	MeetingID uuid.UUID `json:"meeting_id"`
	Email     string    `json:"email,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Issuer mints and resolves opaque join tokens backed by Redis. A token lets
// an email invitee reach the join page without an account; it expires with
// the configured TTL.
type Issuer struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIssuer(client *redis.Client, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{client: client, ttl: ttl}
}

// TTL is the lifetime stamped on newly issued tokens.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Connect dials Redis and verifies the connection with one ping.
func Connect(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// Issue stores a claim under a fresh token and returns the token.
func (i *Issuer) Issue(ctx context.Context, meetingID uuid.UUID, email string) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	claim := Claim{MeetingID: meetingID, Email: email, IssuedAt: time.Now().UTC()}
	data, err := json.Marshal(claim)
	if err != nil {
		return "", err
	}
	if err := i.client.Set(ctx, tokenKey(token), data, i.ttl).Err(); err != nil {
		return "", fmt.Errorf("store invite token: %w", err)
	}
	return token, nil
}

// Resolve returns the claim behind a token, or ErrTokenNotFound when the
// token is unknown or already expired.
func (i *Issuer) Resolve(ctx context.Context, token string) (*Claim, error) {
	data, err := i.client.Get(ctx, tokenKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load invite token: %w", err)
	}
	var claim Claim
	if err := json.Unmarshal(data, &claim); err != nil {
		return nil, fmt.Errorf("decode invite token: %w", err)
	}
	return &claim, nil
}

// Revoke drops a token before its TTL runs out.
func (i *Issuer) Revoke(ctx context.Context, token string) error {
	return i.client.Del(ctx, tokenKey(token)).Err()
}

// NewToken returns a fresh URL-safe random token.
func NewToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func tokenKey(token string) string {
	return "invite:" + token
}
