package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/safad/worklog/internal/core/domain"
	"github.com/safad/worklog/internal/core/ports"
	"github.com/safad/worklog/internal/metrics"
)

// loadDocument decodes the document under key into dst. It reports false
// when the document is absent or malformed so the caller can substitute its
// default; only backend failures are returned as errors.
func loadDocument(ctx context.Context, kv ports.KVStore, key string, dst any, log zerolog.Logger) (bool, error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		metrics.StateRecoveriesTotal.WithLabelValues(key, "absent").Inc()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		metrics.StateRecoveriesTotal.WithLabelValues(key, "malformed").Inc()
		log.Debug().Err(fmt.Errorf("%w: %v", domain.ErrMalformedState, err)).Str("key", key).Msg("using default")
		return false, nil
	}
	return true, nil
}

// saveDocument serializes v and replaces the document under key.
func saveDocument(ctx context.Context, kv ports.KVStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	start := time.Now()
	if err := kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	metrics.StoreWriteDuration.WithLabelValues(key).Observe(time.Since(start).Seconds())
	return nil
}

// wait blocks for d or until ctx is done. It emulates the network round trip
// of sign-up and login.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
