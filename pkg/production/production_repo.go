package production

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	ListScrapDaily(ctx context.Context, workCenters []string, from, to time.Time, currency string) ([]ScrapRecord, error)
	ListKPIDaily(ctx context.Context, workCenters []string, from, to time.Time) ([]KpiRecord, error)
	ListWorkCenters(ctx context.Context) ([]string, error)
	UpsertScrapDaily(ctx context.Context, rows []ScrapRecord) error
	UpsertKPIDaily(ctx context.Context, rows []KpiRecord) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) ListScrapDaily(ctx context.Context, workCenters []string, from, to time.Time, currency string) ([]ScrapRecord, error) {
	query := `SELECT metric_date, work_center, scrap_qty, scrap_cost_amount, scrap_cost_currency
		FROM scrap_daily`
	clauses, params := rangeFilters(workCenters, from, to)
	if currency != "" {
		clauses = append(clauses, "scrap_cost_currency = ?")
		params = append(params, currency)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY metric_date ASC, work_center ASC"

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		err := fmt.Errorf("could not list scrap telemetry: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var records []ScrapRecord
	for rows.Next() {
		var record ScrapRecord
		var metricDate string
		var currencyCol sql.NullString
		if err := rows.Scan(&metricDate, &record.WorkCenter, &record.ScrapQty, &record.ScrapCost, &currencyCol); err != nil {
			return nil, fmt.Errorf("could not scan scrap row: %w", err)
		}
		date, err := time.Parse("2006-01-02", metricDate)
		if err != nil {
			log.Warnf("skipping scrap row with invalid metric_date %q", metricDate)
			continue
		}
		record.Date = date
		if currencyCol.Valid {
			record.Currency = currencyCol.String
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *RepositoryImpl) ListKPIDaily(ctx context.Context, workCenters []string, from, to time.Time) ([]KpiRecord, error) {
	query := `SELECT metric_date, work_center, worktime_min, oee_pct, performance_pct, availability_pct, quality_pct
		FROM production_kpi_daily`
	clauses, params := rangeFilters(workCenters, from, to)
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY metric_date ASC, work_center ASC"

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		err := fmt.Errorf("could not list KPI telemetry: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var records []KpiRecord
	for rows.Next() {
		var record KpiRecord
		var metricDate string
		if err := rows.Scan(&metricDate, &record.WorkCenter, &record.WorktimeMin,
			&record.OeePct, &record.PerformancePct, &record.AvailabilityPct, &record.QualityPct); err != nil {
			return nil, fmt.Errorf("could not scan KPI row: %w", err)
		}
		date, err := time.Parse("2006-01-02", metricDate)
		if err != nil {
			log.Warnf("skipping KPI row with invalid metric_date %q", metricDate)
			continue
		}
		record.Date = date
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *RepositoryImpl) ListWorkCenters(ctx context.Context) ([]string, error) {
	query := `SELECT work_center FROM scrap_daily
		UNION SELECT work_center FROM production_kpi_daily
		ORDER BY work_center ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not list work centers: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var workCenters []string
	for rows.Next() {
		var workCenter string
		if err := rows.Scan(&workCenter); err != nil {
			return nil, fmt.Errorf("could not scan work center: %w", err)
		}
		workCenters = append(workCenters, workCenter)
	}
	return workCenters, rows.Err()
}

// UpsertScrapDaily stores pre-aggregated import rows, one per
// (day, work center, currency). Conflicts replace the stored values; the
// import is the source of truth for its day.
func (r *RepositoryImpl) UpsertScrapDaily(ctx context.Context, rows []ScrapRecord) error {
	if len(rows) == 0 {
		return nil
	}
	query := `INSERT INTO scrap_daily (id, metric_date, work_center, scrap_qty, scrap_cost_amount, scrap_cost_currency, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(metric_date, work_center, scrap_cost_currency) DO UPDATE SET
			scrap_qty = excluded.scrap_qty,
			scrap_cost_amount = excluded.scrap_cost_amount`
	now := time.Now().UTC().Format(time.RFC3339)
	for _, row := range rows {
		currency := row.Currency
		if currency == "" {
			currency = DefaultCurrency
		}
		_, err := r.db.ExecContext(ctx, query,
			uuid.NewString(),
			row.Date.Format("2006-01-02"),
			row.WorkCenter,
			row.ScrapQty,
			row.ScrapCost,
			currency,
			now,
		)
		if err != nil {
			err := fmt.Errorf("could not upsert scrap row: %w", err)
			log.Error(err)
			return err
		}
	}
	return nil
}

// UpsertKPIDaily stores pre-aggregated KPI import rows, one per (day, work center).
func (r *RepositoryImpl) UpsertKPIDaily(ctx context.Context, rows []KpiRecord) error {
	if len(rows) == 0 {
		return nil
	}
	query := `INSERT INTO production_kpi_daily (id, metric_date, work_center, worktime_min, oee_pct, performance_pct, availability_pct, quality_pct, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(metric_date, work_center) DO UPDATE SET
			worktime_min = excluded.worktime_min,
			oee_pct = excluded.oee_pct,
			performance_pct = excluded.performance_pct,
			availability_pct = excluded.availability_pct,
			quality_pct = excluded.quality_pct`
	now := time.Now().UTC().Format(time.RFC3339)
	for _, row := range rows {
		_, err := r.db.ExecContext(ctx, query,
			uuid.NewString(),
			row.Date.Format("2006-01-02"),
			row.WorkCenter,
			row.WorktimeMin,
			row.OeePct,
			row.PerformancePct,
			row.AvailabilityPct,
			row.QualityPct,
			now,
		)
		if err != nil {
			err := fmt.Errorf("could not upsert KPI row: %w", err)
			log.Error(err)
			return err
		}
	}
	return nil
}

func rangeFilters(workCenters []string, from, to time.Time) ([]string, []any) {
	var clauses []string
	var params []any
	if len(workCenters) > 0 {
		placeholders := strings.Repeat("?, ", len(workCenters))
		clauses = append(clauses, "work_center IN ("+placeholders[:len(placeholders)-2]+")")
		for _, workCenter := range workCenters {
			params = append(params, workCenter)
		}
	}
	if !from.IsZero() {
		clauses = append(clauses, "metric_date >= ?")
		params = append(params, from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		clauses = append(clauses, "metric_date <= ?")
		params = append(params, to.Format("2006-01-02"))
	}
	return clauses, params
}
