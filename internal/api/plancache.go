package api

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultPlanCacheTTL is how long a cached plan counts as fresh.
	DefaultPlanCacheTTL = 24 * time.Hour
	planSuffix          = ".json"
	partialSuffix       = ".part"
)

// PlanCache keeps planner responses on disk keyed by request. Stale entries
// are still returned, flagged, so an offline caller can fall back to them.
type PlanCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

type cachedPlan struct {
	Request  PlanRequest `json:"request"`
	Plan     Plan        `json:"plan"`
	CachedAt time.Time   `json:"cachedAt"`
}

// NewPlanCache creates dir when needed.
func NewPlanCache(dir string, ttl time.Duration) (*PlanCache, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("plan cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultPlanCacheTTL
	}
	return &PlanCache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Get returns the cached plan for req. fresh is false once the entry is
// older than the TTL.
func (c *PlanCache) Get(req PlanRequest) (plan Plan, fresh bool, ok bool) {
	data, err := os.ReadFile(c.pathFor(req))
	if err != nil {
		return Plan{}, false, false
	}
	var entry cachedPlan
	if err := json.Unmarshal(data, &entry); err != nil {
		return Plan{}, false, false
	}
	return entry.Plan, c.now().Sub(entry.CachedAt) < c.ttl, true
}

// Put stores plan for req. Mock plans are never cached.
func (c *PlanCache) Put(req PlanRequest, plan Plan) error {
	if plan.Mock {
		return nil
	}
	data, err := json.MarshalIndent(cachedPlan{Request: req, Plan: plan, CachedAt: c.now().UTC()}, "", "  ")
	if err != nil {
		return err
	}
	path := c.pathFor(req)
	partial := path + partialSuffix
	if err := os.WriteFile(partial, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(partial, path); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("store plan: %w", err)
	}
	return nil
}

func (c *PlanCache) pathFor(req PlanRequest) string {
	return filepath.Join(c.dir, planCacheKey(req)+planSuffix)
}

// planCacheKey hashes the fields that change planner results. Case and
// surrounding whitespace in place names do not.
func planCacheKey(req PlanRequest) string {
	parts := []string{
		strings.ToLower(strings.TrimSpace(req.Origin)),
		strings.ToLower(strings.TrimSpace(req.Destination)),
		strings.TrimSpace(req.DepartureDate),
		strings.TrimSpace(req.ReturnDate),
		fmt.Sprint(req.Budget),
		fmt.Sprint(req.Adults),
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
