package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var (
	ErrCodeMismatch = errors.New("otp code does not match")
	ErrCodeExpired  = errors.New("otp code expired or not issued")
)

// Store keeps password-reset OTPs in Redis under a TTL so expiry works across
// multiple server instances, instead of an in-process map.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates an OTP store. A zero ttl defaults to 10 minutes.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Store{client: client, ttl: ttl}
}

// GenerateCode returns a random 6-digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Issue generates and stores a code for the email, replacing any previous one.
func (s *Store) Issue(ctx context.Context, email string) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, otpKey(email), code, s.ttl).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks the code for the email. On success the code is consumed and a
// single-use reset-session token is returned; the caller exchanges it for a
// password update.
func (s *Store) Verify(ctx context.Context, email, code string) (string, error) {
	stored, err := s.client.Get(ctx, otpKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCodeExpired
		}
		return "", err
	}
	if stored != code {
		return "", ErrCodeMismatch
	}

	token := uuid.NewString()
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, otpKey(email))
	pipe.Set(ctx, resetKey(token), email, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeResetToken returns the email bound to a reset-session token and
// deletes it. A missing token means it expired or was already used.
func (s *Store) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	email, err := s.client.Get(ctx, resetKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCodeExpired
		}
		return "", err
	}
	if err := s.client.Del(ctx, resetKey(token)).Err(); err != nil {
		return "", err
	}
	return email, nil
}

func otpKey(email string) string   { return "otp:" + email }
func resetKey(token string) string { return "pwreset:" + token }
