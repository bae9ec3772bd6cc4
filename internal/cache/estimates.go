package cache

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/carvalue/internal/domain/report"
	"github.com/geocoder89/carvalue/internal/domain/user"
	"github.com/geocoder89/carvalue/internal/repo"
)

var _ repo.ReportStore = (*EstimateCache)(nil)

// EstimateCache memoises estimates in front of a report store. Any approval
// change empties it, since that is the only write that moves an estimate.
// Other instances sharing the database may still serve a value up to ttl old.
type EstimateCache struct {
	next    repo.ReportStore
	entries *Cache[*float64]
}

func NewEstimateCache(next repo.ReportStore, ttl time.Duration) *EstimateCache {
	return &EstimateCache{next: next, entries: New[*float64](ttl)}
}

// Create does not invalidate: new reports start unapproved.
func (c *EstimateCache) Create(ctx context.Context, req report.CreateReportRequest, owner user.User) (report.Report, error) {
	return c.next.Create(ctx, req, owner)
}

func (c *EstimateCache) ChangeApproval(ctx context.Context, id int64, approved bool) (report.Report, error) {
	r, err := c.next.ChangeApproval(ctx, id, approved)
	if err == nil {
		c.entries.Clear()
	}
	return r, err
}

func (c *EstimateCache) Estimate(ctx context.Context, p report.EstimateParams) (*float64, error) {
	key := estimateKey(p)

	if price, ok := c.entries.Get(key); ok {
		return price, nil
	}

	gen := c.entries.Generation()

	price, err := c.next.Estimate(ctx, p)
	if err != nil {
		return nil, err
	}

	// An approval change during the read may have made price stale.
	c.entries.SetIfGeneration(key, price, gen)

	return price, nil
}

func estimateKey(p report.EstimateParams) string {
	return strings.Join([]string{
		strconv.Quote(p.Make),
		strconv.Quote(p.Model),
		strconv.Itoa(p.Year),
		strconv.FormatFloat(p.Kilometers, 'g', -1, 64),
		strconv.FormatFloat(p.Longitude, 'g', -1, 64),
		strconv.FormatFloat(p.Latitude, 'g', -1, 64),
	}, "|")
}
