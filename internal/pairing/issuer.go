package pairing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/pairing-core/internal/infrastructure/cache"
)

// Cache is the subset of the shared cache the issuer depends on.
// *cache.Client satisfies it; a miss must be reported as cache.ErrKeyNotFound.
type Cache interface {
	SetIfNotExistsWithExpiration(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	GetDelete(ctx context.Context, key string) (string, error)
}

// Logger defines the logging interface used by the Issuer.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// IssuedFunc is called after a session has been stored. attempts counts the
// conditional sets performed, so attempts-1 is the number of collisions.
type IssuedFunc func(s *Session, attempts int)

// ConsumedFunc is called after a session has been redeemed and removed.
type ConsumedFunc func(s *Session)

// Issuer mints pairing codes and stores their sessions in the cache.
//
// The issuer holds no per-request state. Uniqueness across concurrent
// callers, in this process or others, rests entirely on the cache's
// conditional set.
type Issuer struct {
	cache       Cache
	logger      Logger
	maxAttempts int
	onIssued    IssuedFunc
	onConsumed  ConsumedFunc
	stats       counters

	// Overridable in tests.
	newCode  func() (string, error)
	newToken func() string
}

// NewIssuer creates an Issuer backed by c. A nil logger discards output.
func NewIssuer(c Cache, logger Logger) *Issuer {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Issuer{
		cache:       c,
		logger:      logger,
		maxAttempts: DefaultMaxAttempts,
		newCode:     GenerateCode,
		newToken:    GenerateToken,
	}
}

// SetMaxAttempts caps the collision retry loop. n <= 0 removes the cap.
// Must be called before the issuer is shared.
func (i *Issuer) SetMaxAttempts(n int) {
	i.maxAttempts = n
}

// SetOnIssued registers a callback invoked after each successful issuance.
// Must be called before the issuer is shared.
func (i *Issuer) SetOnIssued(fn IssuedFunc) {
	i.onIssued = fn
}

// SetOnConsumed registers a callback invoked after each successful Consume.
// Must be called before the issuer is shared.
func (i *Issuer) SetOnConsumed(fn ConsumedFunc) {
	i.onConsumed = fn
}

// Issue creates a pairing session for state and returns it.
//
// The token is generated once; on a code collision only the code is redrawn.
// packagingType is recorded only when non-empty.
func (i *Issuer) Issue(ctx context.Context, state, packagingType string) (*Session, error) {
	if state == "" {
		return nil, ErrStateRequired
	}

	session := &Session{
		State:         state,
		Token:         i.newToken(),
		Expiration:    ExpirationSeconds,
		PackagingType: packagingType,
	}

	for attempt := 1; i.maxAttempts <= 0 || attempt <= i.maxAttempts; attempt++ {
		code, err := i.newCode()
		if err != nil {
			return nil, fmt.Errorf("generating code: %w", err)
		}
		session.Code = code

		payload, err := json.Marshal(session)
		if err != nil {
			return nil, fmt.Errorf("encoding session: %w", err)
		}

		stored, err := i.cache.SetIfNotExistsWithExpiration(ctx, Key(code), string(payload), CodeTTL)
		if err != nil {
			i.stats.cacheErrors.Add(1)
			i.logger.Error("pairing code store failed", "attempt", attempt, "error", err)
			return nil, fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
		}
		if !stored {
			i.stats.collisions.Add(1)
			i.logger.Debug("pairing code collision, retrying", "code", code, "attempt", attempt)
			continue
		}

		i.stats.issued.Add(1)
		i.logger.Info("pairing code issued",
			"packaging_type", packagingType,
			"attempts", attempt,
		)
		if i.onIssued != nil {
			i.onIssued(session, attempt)
		}
		return session, nil
	}

	i.stats.exhausted.Add(1)
	i.logger.Warn("pairing code space exhausted", "max_attempts", i.maxAttempts)
	return nil, fmt.Errorf("%w: %d attempts", ErrCodeSpaceExhausted, i.maxAttempts)
}

// Lookup returns the live session for code without consuming it.
func (i *Issuer) Lookup(ctx context.Context, code string) (*Session, error) {
	return i.read(ctx, code, i.cache.Get)
}

// Consume returns the live session for code and removes it, so each code
// can be redeemed exactly once.
func (i *Issuer) Consume(ctx context.Context, code string) (*Session, error) {
	s, err := i.read(ctx, code, i.cache.GetDelete)
	if err == nil {
		i.stats.consumed.Add(1)
		i.logger.Info("pairing code consumed", "packaging_type", s.PackagingType)
		if i.onConsumed != nil {
			i.onConsumed(s)
		}
	}
	return s, err
}

func (i *Issuer) read(ctx context.Context, raw string, get func(context.Context, string) (string, error)) (*Session, error) {
	code, err := NormalizeCode(raw)
	if err != nil {
		return nil, err
	}

	val, err := get(ctx, Key(code))
	if errors.Is(err, cache.ErrKeyNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		i.stats.cacheErrors.Add(1)
		return nil, fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}

	var s Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", code, err)
	}
	return &s, nil
}
