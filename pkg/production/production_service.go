package production

import (
	"context"
	"fmt"
	"time"

	"github.com/qmpulse/qmpulse/pkg/workcenter"
	log "github.com/sirupsen/logrus"
)

// DailyReport is the aggregated daily view of all telemetry for a selection
// of work centers.
type DailyReport struct {
	Scrap       ScrapDaily
	KPI         KpiDaily
	Fingerprint string
}

// WorkCenterList is the drill-down selection payload: every known work
// center, optionally restricted to an area, plus the injection machines
// found among them.
type WorkCenterList struct {
	WorkCenters       []string
	InjectionMachines []string
}

type Service interface {
	DailyReport(ctx context.Context, workCenters []string, from, to time.Time, removeSat, removeSun bool) (DailyReport, error)
	WorkCenters(ctx context.Context, areas map[workcenter.Area]bool) (WorkCenterList, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewServiceImpl(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) DailyReport(ctx context.Context, workCenters []string, from, to time.Time, removeSat, removeSun bool) (DailyReport, error) {
	scrapRows, err := s.repo.ListScrapDaily(ctx, workCenters, from, to, "")
	if err != nil {
		return DailyReport{}, fmt.Errorf("failed to load scrap telemetry: %w", err)
	}
	kpiRows, err := s.repo.ListKPIDaily(ctx, workCenters, from, to)
	if err != nil {
		return DailyReport{}, fmt.Errorf("failed to load KPI telemetry: %w", err)
	}
	log.Debugf("aggregating %d scrap rows and %d KPI rows for %d work centers",
		len(scrapRows), len(kpiRows), len(workCenters))

	scrapRows = FilterScrapWeekends(scrapRows, removeSat, removeSun)
	kpiRows = FilterKPIWeekends(kpiRows, removeSat, removeSun)

	report := DailyReport{
		Scrap:       AggregateScrapDaily(scrapRows, DefaultCurrency),
		KPI:         AggregateKPIDaily(kpiRows),
		Fingerprint: Fingerprint(workCenters, from, to, removeSat, removeSun),
	}
	if report.KPI.Scale.Corrected > 0 {
		log.Debugf("auto-corrected %d fraction-encoded KPI values", report.KPI.Scale.Corrected)
	}
	return report, nil
}

func (s *ServiceImpl) WorkCenters(ctx context.Context, areas map[workcenter.Area]bool) (WorkCenterList, error) {
	workCenters, err := s.repo.ListWorkCenters(ctx)
	if err != nil {
		return WorkCenterList{}, fmt.Errorf("failed to list work centers: %w", err)
	}
	workCenters = workcenter.FilterByAreas(workCenters, areas)
	return WorkCenterList{
		WorkCenters:       workCenters,
		InjectionMachines: workcenter.InjectionMachines(workCenters),
	}, nil
}
