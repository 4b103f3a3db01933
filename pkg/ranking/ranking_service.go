package ranking

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/qmpulse/qmpulse/internal/utils"
	"github.com/qmpulse/qmpulse/pkg/action"
	"github.com/qmpulse/qmpulse/pkg/champion"
)

// Query selects the leaderboard slice to compute.
type Query struct {
	Timeframe         Timeframe
	ProjectID         *string
	Category          *string
	IncludeUnassigned bool
}

type Service interface {
	Leaderboard(ctx context.Context, query Query) (Report, error)
}

type ServiceImpl struct {
	actionRepo      action.Repository
	championService champion.Service
	cfg             Config
	clock           utils.Clock
}

func NewServiceImpl(actionRepo action.Repository, championService champion.Service, cfg Config) (*ServiceImpl, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	return &ServiceImpl{
		actionRepo:      actionRepo,
		championService: championService,
		cfg:             cfg,
		clock:           &utils.SystemClock{},
	}, nil
}

// Leaderboard recomputes the full ranking from the action list. Nothing is
// cached or persisted: the scores change whenever the underlying actions do.
func (s *ServiceImpl) Leaderboard(ctx context.Context, query Query) (Report, error) {
	today := midnight(s.clock.Now().UTC())
	from, to := query.Timeframe.Bounds(today)

	actions, err := s.actionRepo.ListForRanking(ctx, action.RankingFilter{
		ProjectID: query.ProjectID,
		Category:  query.Category,
		DateFrom:  from,
		DateTo:    to,
	})
	if err != nil {
		return Report{}, fmt.Errorf("failed to list actions for ranking: %w", err)
	}
	ruleRows, err := s.actionRepo.ListCategoryRules(ctx, true)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load category rules: %w", err)
	}
	names, err := s.championService.Names(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load champion names: %w", err)
	}

	stats := Accumulate(actions, action.NewRuleSet(ruleRows), from, to, today, query.IncludeUnassigned)
	rows := BuildLeaderboard(stats, names, s.cfg)
	log.Debugf("ranking computed for %d actions, %d champions on leaderboard", len(actions), len(rows))

	return Report{
		Timeframe: query.Timeframe,
		From:      from,
		To:        to,
		Rows:      rows,
		Summary:   Summarize(stats),
	}, nil
}
