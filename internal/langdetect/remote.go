package langdetect

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/language"
)

// Identifier is a backend-hosted detection API. It returns the backend's
// own language code.
type Identifier interface {
	Name() backend.ID
	IdentifyLanguage(ctx context.Context, text string) (string, error)
}

// RemoteDetector adapts an Identifier and memoizes its answers, so a user
// retyping the same text does not spend rate-limited quota again.
type RemoteDetector struct {
	identifier Identifier
	registry   *language.Registry
	cache      *cache.Cache
}

func NewRemoteDetector(identifier Identifier, registry *language.Registry, ttl time.Duration) *RemoteDetector {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RemoteDetector{
		identifier: identifier,
		registry:   registry,
		cache:      cache.New(ttl, 2*ttl),
	}
}

func (d *RemoteDetector) Name() backend.ID {
	return d.identifier.Name()
}

func (d *RemoteDetector) Detect(ctx context.Context, text string) (Signal, error) {
	key := textKey(text)
	raw, found := d.cache.Get(key)
	if !found {
		code, err := d.identifier.IdentifyLanguage(ctx, text)
		if err != nil {
			return Signal{}, fmt.Errorf("%s detect: %w", d.identifier.Name(), err)
		}
		if code == "" {
			return Signal{}, ErrUndetermined
		}
		d.cache.Set(key, code, cache.DefaultExpiration)
		raw = code
	}

	code := raw.(string)
	sig := Signal{RawCode: code}
	sig.Language, _ = d.registry.CanonicalFor(d.identifier.Name(), code)
	return sig, nil
}

func textKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
