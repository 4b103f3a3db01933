package production

import (
	"context"
	"sort"
	"time"
)

type StubRepository struct {
	Scrap []ScrapRecord
	KPI   []KpiRecord
}

func NewStubRepository() *StubRepository {
	return &StubRepository{}
}

func (s *StubRepository) ListScrapDaily(ctx context.Context, workCenters []string, from, to time.Time, currency string) ([]ScrapRecord, error) {
	var records []ScrapRecord
	for _, record := range s.Scrap {
		if !matchesWorkCenter(record.WorkCenter, workCenters) || !inRange(record.Date, from, to) {
			continue
		}
		if currency != "" && record.Currency != currency {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *StubRepository) ListKPIDaily(ctx context.Context, workCenters []string, from, to time.Time) ([]KpiRecord, error) {
	var records []KpiRecord
	for _, record := range s.KPI {
		if matchesWorkCenter(record.WorkCenter, workCenters) && inRange(record.Date, from, to) {
			records = append(records, record)
		}
	}
	return records, nil
}

func (s *StubRepository) ListWorkCenters(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	for _, record := range s.Scrap {
		seen[record.WorkCenter] = true
	}
	for _, record := range s.KPI {
		seen[record.WorkCenter] = true
	}
	workCenters := make([]string, 0, len(seen))
	for workCenter := range seen {
		workCenters = append(workCenters, workCenter)
	}
	sort.Strings(workCenters)
	return workCenters, nil
}

func (s *StubRepository) UpsertScrapDaily(ctx context.Context, rows []ScrapRecord) error {
	s.Scrap = append(s.Scrap, rows...)
	return nil
}

func (s *StubRepository) UpsertKPIDaily(ctx context.Context, rows []KpiRecord) error {
	s.KPI = append(s.KPI, rows...)
	return nil
}

func matchesWorkCenter(workCenter string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, candidate := range filter {
		if candidate == workCenter {
			return true
		}
	}
	return false
}

func inRange(day, from, to time.Time) bool {
	if !from.IsZero() && day.Before(from) {
		return false
	}
	if !to.IsZero() && day.After(to) {
		return false
	}
	return true
}
