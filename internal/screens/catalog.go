package screens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// catalog serves reference data through the cache.
type catalog struct {
	cache     ports.Cache
	directory ports.DirectoryStore
	operators ports.OperatorStore
	ttl       time.Duration
	logger    *slog.Logger
}

func cached[T any](ctx context.Context, c *catalog, key string, load func(context.Context) (T, error)) (T, error) {
	if c.cache == nil {
		return load(ctx)
	}
	raw, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		c.logger.Warn("discarding undecodable cache entry", "key", key)
	case !errors.Is(err, ports.ErrCacheMiss):
		c.logger.Warn("cache read failed", "key", key, "err", err)
	}

	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if raw, err := json.Marshal(v); err == nil {
		if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
			c.logger.Warn("cache write failed", "key", key, "err", err)
		}
	}
	return v, nil
}

func (c *catalog) workshops(ctx context.Context) ([]domain.Workshop, error) {
	return cached(ctx, c, "ref:workshops", c.directory.ListWorkshops)
}

func (c *catalog) workshop(ctx context.Context, id int64) (domain.Workshop, bool, error) {
	all, err := c.workshops(ctx)
	if err != nil {
		return domain.Workshop{}, false, err
	}
	for _, w := range all {
		if w.ID == id {
			return w, true, nil
		}
	}
	return domain.Workshop{}, false, nil
}

func (c *catalog) contactMethods(ctx context.Context) ([]domain.ContactMethod, error) {
	return cached(ctx, c, "ref:contacts", c.directory.ListContactMethods)
}

func (c *catalog) operatorsOf(ctx context.Context, workshopID int64, role string) ([]domain.OperatorProfile, error) {
	key := fmt.Sprintf("ref:ops:%d:%s", workshopID, role)
	return cached(ctx, c, key, func(ctx context.Context) ([]domain.OperatorProfile, error) {
		return c.operators.ListOperators(ctx, workshopID, role)
	})
}

// shortName turns "Surname Given Middle" into "Surname G. M.".
func shortName(full string) string {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return full
	}
	out := parts[0]
	for _, p := range parts[1:] {
		r := []rune(p)
		out += " " + string(r[0]) + "."
	}
	return out
}
