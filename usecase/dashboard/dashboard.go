package dashboard

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/internal/metrics"
	"github.com/fastygo/dispatch/repository"
	"github.com/fastygo/dispatch/usecase"
)

const (
	dateLayout = "2006-01-02"
	// maxCustomDays bounds custom ranges so the daily series stays small.
	maxCustomDays = 366
)

type Deps struct {
	Repo     repository.DashboardRepository
	Cache    repository.DashboardCache
	Metrics  *metrics.Metrics
	Location *time.Location
}

type UseCase struct {
	repo     repository.DashboardRepository
	cache    repository.DashboardCache
	metrics  *metrics.Metrics
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

func New(deps Deps, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return &UseCase{
		repo:     deps.Repo,
		cache:    deps.Cache,
		metrics:  deps.Metrics,
		location: deps.Location,
		logger:   logger,
		now:      time.Now,
	}
}

// Query selects the dashboard period. From and To are only read for the
// custom period; both are inclusive calendar dates (YYYY-MM-DD).
type Query struct {
	Period string
	From   string
	To     string
}

// Range is a half-open [From, To) interval aligned to local midnights.
type Range struct {
	Period string
	From   time.Time
	To     time.Time
}

// ResolveRange turns q into a concrete range in the dashboard timezone.
func (uc *UseCase) ResolveRange(q Query) (Range, error) {
	now := uc.now().In(uc.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.location)
	tomorrow := today.AddDate(0, 0, 1)

	period := strings.ToLower(strings.TrimSpace(q.Period))
	switch period {
	case "", domain.PeriodToday:
		return Range{Period: domain.PeriodToday, From: today, To: tomorrow}, nil
	case domain.PeriodYesterday:
		return Range{Period: period, From: today.AddDate(0, 0, -1), To: today}, nil
	case domain.PeriodLast7:
		return Range{Period: period, From: today.AddDate(0, 0, -6), To: tomorrow}, nil
	case domain.PeriodLast30:
		return Range{Period: period, From: today.AddDate(0, 0, -29), To: tomorrow}, nil
	case domain.PeriodCustom:
		return uc.customRange(q)
	}
	return Range{}, domain.NewValidationError("invalid period", map[string]string{
		"period": "must be today, yesterday, last7, last30 or custom",
	})
}

func (uc *UseCase) customRange(q Query) (Range, error) {
	problems := make(map[string]string)
	from, err := time.ParseInLocation(dateLayout, strings.TrimSpace(q.From), uc.location)
	if err != nil {
		problems["from"] = "must be a YYYY-MM-DD date"
	}
	to, err := time.ParseInLocation(dateLayout, strings.TrimSpace(q.To), uc.location)
	if err != nil {
		problems["to"] = "must be a YYYY-MM-DD date"
	}
	if len(problems) == 0 {
		switch {
		case to.Before(from):
			problems["to"] = "must not precede from"
		case to.Sub(from) > maxCustomDays*24*time.Hour:
			problems["to"] = "range is too long"
		}
	}
	if verr := domain.NewValidationError("invalid custom range", problems); verr != nil {
		return Range{}, verr
	}
	return Range{Period: domain.PeriodCustom, From: from, To: to.AddDate(0, 0, 1)}, nil
}

func (r Range) cacheKey() string {
	return r.Period + ":" + r.From.Format(time.RFC3339) + ":" + r.To.Format(time.RFC3339)
}

// Summary returns the KPIs of q, served from Redis when a fresh copy exists.
func (uc *UseCase) Summary(ctx context.Context, q Query) (*domain.DashboardSummary, error) {
	rng, err := uc.ResolveRange(q)
	if err != nil {
		return nil, err
	}

	key := rng.cacheKey()
	if cached := uc.cached(ctx, key); cached != nil {
		return cached, nil
	}

	summary, err := uc.compute(ctx, rng)
	if err != nil {
		if usecase.IsInfrastructureError(err) {
			return nil, domain.WrapError(domain.ErrCodeUnavailable, "dashboard data unavailable", err)
		}
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, summary); err != nil {
			uc.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}

func (uc *UseCase) cached(ctx context.Context, key string) *domain.DashboardSummary {
	if uc.cache == nil {
		return nil
	}
	summary, err := uc.cache.Get(ctx, key)
	switch {
	case err == nil:
		uc.metrics.IncCache("dashboard", "hit")
		return summary
	case errors.Is(err, domain.ErrCacheMiss):
		uc.metrics.IncCache("dashboard", "miss")
	default:
		uc.metrics.IncCache("dashboard", "error")
		uc.logger.Warn("dashboard cache read failed", zap.Error(err))
	}
	return nil
}

func (uc *UseCase) compute(ctx context.Context, rng Range) (*domain.DashboardSummary, error) {
	asOf := uc.now()
	if rng.To.Before(asOf) {
		asOf = rng.To
	}

	var (
		created, completed, overdue, onTime int
		daily                               []repository.DailyCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		created, err = uc.repo.CountCreated(gctx, rng.From, rng.To)
		return err
	})
	g.Go(func() (err error) {
		completed, err = uc.repo.CountCompleted(gctx, rng.From, rng.To)
		return err
	})
	g.Go(func() (err error) {
		overdue, err = uc.repo.CountOverdue(gctx, asOf)
		return err
	})
	g.Go(func() (err error) {
		onTime, err = uc.repo.CountOnTime(gctx, rng.From, rng.To)
		return err
	})
	g.Go(func() (err error) {
		daily, err = uc.repo.DailyCounts(gctx, rng.From, rng.To, uc.location.String())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.DashboardSummary{
		Period:     rng.Period,
		From:       rng.From,
		To:         rng.To,
		Created:    created,
		Completed:  completed,
		Overdue:    overdue,
		OnTimeRate: OnTimeRate(onTime, completed),
		Series:     series(rng, daily),
	}, nil
}

// OnTimeRate is the rounded percentage of completed tasks that finished no
// later than their estimated end. Tasks without an estimated end count as late.
func OnTimeRate(onTime, completed int) int {
	if completed <= 0 {
		return 0
	}
	return int(math.Round(float64(onTime) * 100 / float64(completed)))
}

// series lists every day of rng, filling in the days the database reported.
func series(rng Range, daily []repository.DailyCount) []domain.DailyPoint {
	points := make([]domain.DailyPoint, 0)
	index := make(map[string]int)
	for day := rng.From; day.Before(rng.To); day = day.AddDate(0, 0, 1) {
		date := day.Format(dateLayout)
		index[date] = len(points)
		points = append(points, domain.DailyPoint{Date: date})
	}
	for _, d := range daily {
		if i, ok := index[d.Date]; ok {
			points[i].Created = d.Created
			points[i].Completed = d.Completed
		}
	}
	return points
}
