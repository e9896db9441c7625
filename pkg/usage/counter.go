// Package usage counts metered feature use per user and billing period.
package usage

import (
	"context"
	"fmt"
	"time"

	"ai-jobassist-be/internal/entity"
	"ai-jobassist-be/internal/repository/contract"
	"ai-jobassist-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type AnchorMode string

const (
	AnchorCalendar AnchorMode = "calendar"
	AnchorAccount  AnchorMode = "account"
)

func ParseAnchorMode(s string) (AnchorMode, error) {
	switch AnchorMode(s) {
	case AnchorCalendar, "":
		return AnchorCalendar, nil
	case AnchorAccount:
		return AnchorAccount, nil
	}
	return "", fmt.Errorf("unknown usage period anchor %q", s)
}

type Counter struct {
	uowFactory unitofwork.RepositoryFactory
	anchor     AnchorMode
	now        func() time.Time
}

type Option func(*Counter)

func WithClock(now func() time.Time) Option {
	return func(c *Counter) {
		c.now = now
	}
}

func NewCounter(uowFactory unitofwork.RepositoryFactory, anchor AnchorMode, opts ...Option) *Counter {
	c := &Counter{
		uowFactory: uowFactory,
		anchor:     anchor,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Period returns the user's current billing period. Users unknown to the store
// fall back to calendar months.
func (c *Counter) Period(ctx context.Context, userId uuid.UUID) (Period, error) {
	now := c.now()
	if c.anchor != AnchorAccount {
		return PeriodContaining(time.Time{}, now), nil
	}

	user, err := c.uowFactory.NewUnitOfWork(ctx).UserRepository().FindById(ctx, userId)
	if err != nil {
		return Period{}, err
	}
	if user == nil {
		return PeriodContaining(time.Time{}, now), nil
	}
	return PeriodContaining(user.CreatedAt, now), nil
}

func (c *Counter) GetUsage(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey) (int, error) {
	period, err := c.Period(ctx, userId)
	if err != nil {
		return 0, err
	}
	return c.CountIn(ctx, userId, feature, period)
}

// Increment records one use with no ceiling and returns the new count.
func (c *Counter) Increment(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey) (int, error) {
	count, _, err := c.IncrementWithin(ctx, userId, feature, contract.Unlimited)
	return count, err
}

// IncrementWithin records one use only if the period count is below limit.
// Check and record happen in one store operation.
func (c *Counter) IncrementWithin(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey, limit int) (int, bool, error) {
	period, err := c.Period(ctx, userId)
	if err != nil {
		return 0, false, err
	}
	return c.IncrementIn(ctx, userId, feature, period, limit)
}

// CountIn reads the count for an already resolved period.
func (c *Counter) CountIn(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey, period Period) (int, error) {
	rec, err := c.uowFactory.NewUnitOfWork(ctx).UsageRepository().FindOne(ctx, userId, feature, period.Start)
	if err != nil {
		return 0, err
	}
	if rec == nil {
		return 0, nil
	}
	return rec.Count, nil
}

// IncrementIn is IncrementWithin for an already resolved period.
func (c *Counter) IncrementIn(ctx context.Context, userId uuid.UUID, feature entity.FeatureKey, period Period, limit int) (int, bool, error) {
	return c.uowFactory.NewUnitOfWork(ctx).UsageRepository().IncrementAtomic(ctx, userId, feature, period.Start, limit)
}

// Snapshot returns every feature's count for the current period. Features
// without a record are reported as zero.
func (c *Counter) Snapshot(ctx context.Context, userId uuid.UUID) (Period, map[entity.FeatureKey]int, error) {
	period, err := c.Period(ctx, userId)
	if err != nil {
		return Period{}, nil, err
	}
	records, err := c.uowFactory.NewUnitOfWork(ctx).UsageRepository().FindAllByPeriod(ctx, userId, period.Start)
	if err != nil {
		return Period{}, nil, err
	}

	counts := make(map[entity.FeatureKey]int, len(entity.MeteredFeatures))
	for _, f := range entity.MeteredFeatures {
		counts[f] = 0
	}
	for _, rec := range records {
		counts[rec.FeatureKey] = rec.Count
	}
	return period, counts, nil
}
