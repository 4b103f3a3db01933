package app

import (
	"context"
	"database/sql"

	"github.com/qmpulse/qmpulse/internal/config"
	"github.com/qmpulse/qmpulse/internal/utils"
	"github.com/qmpulse/qmpulse/pkg/action"
	"github.com/qmpulse/qmpulse/pkg/champion"
	"github.com/qmpulse/qmpulse/pkg/effectiveness"
	"github.com/qmpulse/qmpulse/pkg/production"
	"github.com/qmpulse/qmpulse/pkg/ranking"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	ProductionRepo    production.Repository
	ProductionService production.Service
	ProductionHandler *production.Handler

	ActionRepo    action.Repository
	ActionService action.Service
	ActionHandler *action.Handler

	ChampionRepo    champion.Repository
	ChampionService champion.Service
	ChampionHandler *champion.Handler

	EffectivenessRepo    effectiveness.Repository
	EffectivenessService effectiveness.Service
	EffectivenessHandler *effectiveness.Handler

	RankingService   ranking.Service
	CsvRankingRender *ranking.CsvRendererImpl
	RankingHandler   *ranking.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}

	deps.ProductionRepo = production.NewRepository(db)
	deps.ProductionService = production.NewServiceImpl(deps.ProductionRepo)
	deps.ProductionHandler = production.NewHandler(deps.ProductionService)

	deps.ActionRepo = action.NewRepository(db)
	deps.ActionService = action.NewServiceImpl(deps.ActionRepo)
	deps.ActionHandler = action.NewHandler(deps.ActionService, func(ctx context.Context) ([]string, error) {
		list, err := deps.ProductionService.WorkCenters(ctx, nil)
		if err != nil {
			return nil, err
		}
		return list.WorkCenters, nil
	})

	deps.ChampionRepo = champion.NewRepository(db)
	deps.ChampionService = champion.NewServiceImpl(deps.ChampionRepo)
	deps.ChampionHandler = champion.NewHandler(deps.ChampionService)

	deps.EffectivenessRepo = effectiveness.NewRepository(db)
	deps.EffectivenessService = effectiveness.NewServiceImpl(deps.ActionRepo, deps.ProductionRepo, deps.EffectivenessRepo)
	deps.EffectivenessHandler = effectiveness.NewHandler(deps.EffectivenessService, effectiveness.WindowsOptions{
		CurrentTarget:  cfg.Report.CurrentTargetDays,
		BaselineCap:    cfg.Report.BaselineCapDays,
		SearchbackDays: cfg.Report.SearchbackDays,
		Currency:       cfg.Report.Currency,
	})

	rankingCfg := ranking.DefaultConfig()
	if cfg.Scoring.DeliveryWeight > 0 {
		rankingCfg.DeliveryWeight = cfg.Scoring.DeliveryWeight
	}
	if cfg.Scoring.ImpactWeight > 0 {
		rankingCfg.ImpactWeight = cfg.Scoring.ImpactWeight
	}
	rankingService, err := ranking.NewServiceImpl(deps.ActionRepo, deps.ChampionService, rankingCfg)
	if err != nil {
		return nil, err
	}
	deps.RankingService = rankingService
	deps.CsvRankingRender = ranking.NewCsvRenderer()
	deps.RankingHandler = ranking.NewHandler(deps.RankingService, deps.CsvRankingRender)

	return deps, nil
}
