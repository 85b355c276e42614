package captcha

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTTL = 5 * time.Minute
	codeLength = 4
)

var ErrMismatch = errors.New("captcha mismatch")

// Store keeps answers server-side. Take must delete the entry it returns so a
// challenge can be checked only once.
type Store interface {
	Save(ctx context.Context, id, answer string, ttl time.Duration) error
	Take(ctx context.Context, id string) (answer string, ok bool, err error)
}

type Challenge struct {
	ID        string    `json:"captchaId"`
	Image     string    `json:"image"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Service struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	rand  io.Reader
}

func NewService(store Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		store: store,
		ttl:   ttl,
		now:   time.Now,
		rand:  rand.Reader,
	}
}

// WithRand swaps the entropy source; tests use it to get a known code.
func (s *Service) WithRand(r io.Reader) *Service {
	s.rand = r
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) New(ctx context.Context) (Challenge, error) {
	code, err := randomDigits(s.rand, codeLength)
	if err != nil {
		return Challenge{}, fmt.Errorf("captcha code: %w", err)
	}

	id := uuid.NewString()
	if err := s.store.Save(ctx, id, code, s.ttl); err != nil {
		return Challenge{}, fmt.Errorf("captcha save: %w", err)
	}

	svg := Render(code)

	return Challenge{
		ID:        id,
		Image:     "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg)),
		ExpiresAt: s.now().UTC().Add(s.ttl),
	}, nil
}

// Verify consumes the challenge whatever the outcome.
// Unknown, expired and wrong answers all report ErrMismatch.
func (s *Service) Verify(ctx context.Context, id, answer string) error {
	if id == "" {
		return ErrMismatch
	}

	want, ok, err := s.store.Take(ctx, id)
	if err != nil {
		return fmt.Errorf("captcha take: %w", err)
	}
	if !ok {
		return ErrMismatch
	}

	if subtle.ConstantTimeCompare([]byte(want), []byte(answer)) != 1 {
		return ErrMismatch
	}
	return nil
}

func randomDigits(r io.Reader, n int) (string, error) {
	buf := make([]byte, n)
	out := make([]byte, n)

	for i := 0; i < n; {
		if _, err := io.ReadFull(r, buf[:1]); err != nil {
			return "", err
		}
		// reject 250..255 so every digit is equally likely
		if buf[0] >= 250 {
			continue
		}
		out[i] = '0' + buf[0]%10
		i++
	}
	return string(out), nil
}
