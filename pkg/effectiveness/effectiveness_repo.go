package effectiveness

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// Store inserts a fresh result row. Results are append-only: a
	// recomputation never updates an earlier row.
	Store(ctx context.Context, actionID string, result Result) error
	// Latest returns the most recently computed result for an action and
	// metric, or nil when none exists.
	Latest(ctx context.Context, actionID string, metric string) (*Result, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, actionID string, result Result) error {
	query := `INSERT INTO action_effectiveness (
			id, action_id, metric, baseline_from, baseline_to, after_from, after_to,
			baseline_days, after_days, baseline_avg, after_avg, delta, pct_change, delta_pp,
			classification, computed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		uuid.NewString(),
		actionID,
		result.Metric,
		result.BaselineFrom.Format("2006-01-02"),
		result.BaselineTo.Format("2006-01-02"),
		result.AfterFrom.Format("2006-01-02"),
		result.AfterTo.Format("2006-01-02"),
		result.BaselineDays,
		result.AfterDays,
		result.BaselineAvg,
		result.AfterAvg,
		result.Delta,
		result.PctChange,
		result.DeltaPP,
		string(result.Class),
		result.ComputedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		err := fmt.Errorf("could not store effectiveness result: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) Latest(ctx context.Context, actionID string, metric string) (*Result, error) {
	query := `SELECT metric, baseline_from, baseline_to, after_from, after_to,
			baseline_days, after_days, baseline_avg, after_avg, delta, pct_change, delta_pp,
			classification, computed_at
		FROM action_effectiveness
		WHERE action_id = ? AND metric = ?
		ORDER BY computed_at DESC LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, actionID, metric)

	var result Result
	var baselineFrom, baselineTo, afterFrom, afterTo, classification, computedAt string
	err := row.Scan(
		&result.Metric,
		&baselineFrom,
		&baselineTo,
		&afterFrom,
		&afterTo,
		&result.BaselineDays,
		&result.AfterDays,
		&result.BaselineAvg,
		&result.AfterAvg,
		&result.Delta,
		&result.PctChange,
		&result.DeltaPP,
		&classification,
		&computedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not load effectiveness result: %w", err)
	}
	if result.BaselineFrom, err = time.Parse("2006-01-02", baselineFrom); err != nil {
		return nil, fmt.Errorf("invalid baseline_from %q: %w", baselineFrom, err)
	}
	if result.BaselineTo, err = time.Parse("2006-01-02", baselineTo); err != nil {
		return nil, fmt.Errorf("invalid baseline_to %q: %w", baselineTo, err)
	}
	if result.AfterFrom, err = time.Parse("2006-01-02", afterFrom); err != nil {
		return nil, fmt.Errorf("invalid after_from %q: %w", afterFrom, err)
	}
	if result.AfterTo, err = time.Parse("2006-01-02", afterTo); err != nil {
		return nil, fmt.Errorf("invalid after_to %q: %w", afterTo, err)
	}
	result.Class = Classification(classification)
	if result.ComputedAt, err = time.Parse(time.RFC3339, computedAt); err != nil {
		return nil, fmt.Errorf("invalid computed_at %q: %w", computedAt, err)
	}
	return &result, nil
}

// StubRepository is an in-memory Repository for tests.
type StubRepository struct {
	Results map[string][]Result
}

func NewStubRepository() *StubRepository {
	return &StubRepository{Results: map[string][]Result{}}
}

func (s *StubRepository) Store(ctx context.Context, actionID string, result Result) error {
	s.Results[actionID] = append(s.Results[actionID], result)
	return nil
}

func (s *StubRepository) Latest(ctx context.Context, actionID string, metric string) (*Result, error) {
	results := s.Results[actionID]
	for i := len(results) - 1; i >= 0; i-- {
		if results[i].Metric == metric {
			return &results[i], nil
		}
	}
	return nil, nil
}
