package effectiveness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qmpulse/qmpulse/internal/utils"
	"github.com/qmpulse/qmpulse/pkg/action"
	"github.com/qmpulse/qmpulse/pkg/production"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// MetricScrapQty is the metric every closure-anchored computation runs on.
	MetricScrapQty = "scrap_qty"
	// anchorWindowDays is the calendar span on each side of a closure date.
	anchorWindowDays = 14
	// recomputeConcurrency bounds the fan-out of bulk recomputation.
	recomputeConcurrency = 8
)

var ErrActionNotFound = errors.New("action not found")
var ErrActionNotClosed = errors.New("action has no closure date")

type Service interface {
	ComputeForAction(ctx context.Context, actionID string) (Result, error)
	RecomputeAll(ctx context.Context) (int, error)
	LatestForAction(ctx context.Context, actionID string) (*Result, error)
	ProjectWindows(ctx context.Context, workCenters []string, opts WindowsOptions) (WindowsReport, error)
	RangeOutcome(ctx context.Context, workCenters []string, from, to time.Time, removeSat, removeSun bool) (RangeOutcome, error)
}

type ServiceImpl struct {
	actionRepo     action.Repository
	productionRepo production.Repository
	resultRepo     Repository
	clock          utils.Clock
}

func NewServiceImpl(actionRepo action.Repository, productionRepo production.Repository, resultRepo Repository) *ServiceImpl {
	return &ServiceImpl{
		actionRepo:     actionRepo,
		productionRepo: productionRepo,
		resultRepo:     resultRepo,
		clock:          &utils.SystemClock{},
	}
}

// ComputeForAction anchors a baseline/after comparison to the action's
// closure date: 14 calendar days before and after, the closure day itself
// excluded from both sides. The result is persisted as a fresh row.
func (s *ServiceImpl) ComputeForAction(ctx context.Context, actionID string) (Result, error) {
	act, err := s.actionRepo.Get(ctx, actionID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load action: %w", err)
	}
	if act == nil {
		return Result{}, ErrActionNotFound
	}
	if act.Closed == nil {
		return Result{}, ErrActionNotClosed
	}

	closed := production.Day(*act.Closed)
	result := Result{
		Metric:       MetricScrapQty,
		BaselineFrom: closed.AddDate(0, 0, -anchorWindowDays),
		BaselineTo:   closed.AddDate(0, 0, -1),
		AfterFrom:    closed.AddDate(0, 0, 1),
		AfterTo:      closed.AddDate(0, 0, anchorWindowDays),
		Class:        Unknown,
		ComputedAt:   s.clock.Now().UTC(),
	}

	workCenters := act.WorkCenters()
	if len(workCenters) == 0 {
		log.Debugf("action %s has no work centers, effectiveness unknown", actionID)
		if err := s.resultRepo.Store(ctx, actionID, result); err != nil {
			return Result{}, err
		}
		return result, nil
	}

	scrapRows, err := s.productionRepo.ListScrapDaily(ctx, workCenters, result.BaselineFrom, result.AfterTo, "")
	if err != nil {
		return Result{}, fmt.Errorf("failed to load scrap telemetry: %w", err)
	}
	daily := production.AggregateScrapDaily(scrapRows, production.DefaultCurrency)

	result.BaselineAvg, result.BaselineDays = windowStats(daily.Qty, result.BaselineFrom, result.BaselineTo)
	result.AfterAvg, result.AfterDays = windowStats(daily.Qty, result.AfterFrom, result.AfterTo)
	if result.BaselineAvg != nil && result.AfterAvg != nil {
		delta := *result.AfterAvg - *result.BaselineAvg
		result.Delta = &delta
	}
	result.Class, result.PctChange = ClassifyScrap(
		result.BaselineAvg, result.AfterAvg, result.BaselineDays, result.AfterDays)

	if err := s.resultRepo.Store(ctx, actionID, result); err != nil {
		return Result{}, err
	}
	log.Debugf("action %s classified %s (baseline %d days, after %d days)",
		actionID, result.Class, result.BaselineDays, result.AfterDays)
	return result, nil
}

// RecomputeAll recomputes effectiveness for every closed action. The
// computations are independent, so they fan out across a bounded worker
// group and only the results are collected.
func (s *ServiceImpl) RecomputeAll(ctx context.Context) (int, error) {
	closed, err := s.actionRepo.ListClosed(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list closed actions: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(recomputeConcurrency)
	for _, act := range closed {
		group.Go(func() error {
			if _, err := s.ComputeForAction(groupCtx, act.ID); err != nil {
				return fmt.Errorf("failed to recompute action %s: %w", act.ID, err)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return 0, err
	}
	log.Infof("recomputed effectiveness for %d closed actions", len(closed))
	return len(closed), nil
}

func (s *ServiceImpl) LatestForAction(ctx context.Context, actionID string) (*Result, error) {
	return s.resultRepo.Latest(ctx, actionID, MetricScrapQty)
}

func windowStats(series production.DailySeries, from, to time.Time) (*float64, int) {
	return production.MeanBetween(series, from, to)
}
