package action

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// RankingFilter narrows the action list handed to the scoring engine.
type RankingFilter struct {
	ProjectID *string
	Category  *string
	DateFrom  *time.Time
	DateTo    *time.Time
}

type Repository interface {
	Store(ctx context.Context, action Action) (Action, error)
	Get(ctx context.Context, id string) (*Action, error)
	ListForRanking(ctx context.Context, filter RankingFilter) ([]Action, error)
	ListClosed(ctx context.Context) ([]Action, error)
	Close(ctx context.Context, id string, closedAt time.Time) (bool, error)
	ListCategoryRules(ctx context.Context, onlyActive bool) ([]CategoryRule, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const actionColumns = `id, title, project_id, project_name, champion_id, category, status,
	work_center, related_work_centers, impact_aspects, created_at, closed_at, due_date,
	manual_savings_amount, manual_savings_currency, effectiveness_metric, effectiveness_delta`

func (r *RepositoryImpl) Store(ctx context.Context, action Action) (Action, error) {
	if action.ID == "" {
		action.ID = uuid.NewString()
	}
	if action.Created.IsZero() {
		action.Created = time.Now().UTC()
	}
	query := `INSERT INTO action (` + actionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		action.ID,
		action.Title,
		action.ProjectID,
		action.ProjectName,
		action.ChampionID,
		action.Category,
		action.Status,
		action.WorkCenter,
		action.RelatedWorkCenters,
		action.ImpactAspects,
		formatDate(action.Created),
		formatDatePtr(action.Closed),
		formatDatePtr(action.Due),
		action.ManualSavingsAmount,
		action.ManualSavingsCurrency,
		action.EffectivenessMetric,
		action.EffectivenessDelta,
	)
	if err != nil {
		err := fmt.Errorf("could not store action: %w", err)
		log.Error(err)
		return Action{}, err
	}
	return action, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, id string) (*Action, error) {
	query := `SELECT ` + actionColumns + ` FROM action WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	action, err := scanAction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not get action %s: %w", id, err)
	}
	return &action, nil
}

func (r *RepositoryImpl) ListForRanking(ctx context.Context, filter RankingFilter) ([]Action, error) {
	query := `SELECT ` + actionColumns + ` FROM action`
	var clauses []string
	var params []any
	if filter.ProjectID != nil {
		clauses = append(clauses, "project_id = ?")
		params = append(params, *filter.ProjectID)
	}
	if filter.Category != nil {
		clauses = append(clauses, "category = ?")
		params = append(params, *filter.Category)
	}
	// The window filter is permissive on purpose: an action matches when it
	// was either created or closed inside the window. Exact open/closed
	// semantics are applied by the scoring engine.
	if filter.DateFrom != nil {
		clauses = append(clauses, "(created_at >= ? OR (closed_at IS NOT NULL AND closed_at >= ?))")
		params = append(params, formatDate(*filter.DateFrom), formatDate(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		clauses = append(clauses, "created_at <= ?")
		params = append(params, formatDate(*filter.DateTo))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		err := fmt.Errorf("could not list actions for ranking: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()
	return scanActions(rows)
}

func (r *RepositoryImpl) ListClosed(ctx context.Context) ([]Action, error) {
	query := `SELECT ` + actionColumns + ` FROM action
		WHERE closed_at IS NOT NULL AND status != ?
		ORDER BY closed_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, StatusCancelled)
	if err != nil {
		err := fmt.Errorf("could not list closed actions: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()
	return scanActions(rows)
}

func (r *RepositoryImpl) Close(ctx context.Context, id string, closedAt time.Time) (bool, error) {
	query := `UPDATE action SET status = ?, closed_at = ? WHERE id = ? AND closed_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, StatusDone, formatDate(closedAt), id)
	if err != nil {
		err := fmt.Errorf("could not close action %s: %w", id, err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *RepositoryImpl) ListCategoryRules(ctx context.Context, onlyActive bool) ([]CategoryRule, error) {
	query := `SELECT category_label, savings_model, requires_scope_link, active FROM category_rule`
	if onlyActive {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY category_label ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not list category rules: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var rules []CategoryRule
	for rows.Next() {
		var rule CategoryRule
		var model string
		if err := rows.Scan(&rule.Category, &model, &rule.RequiresScopeLink, &rule.Active); err != nil {
			return nil, fmt.Errorf("could not scan category rule: %w", err)
		}
		rule.SavingsModel = SavingsModel(model)
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAction(scanner rowScanner) (Action, error) {
	var action Action
	var created string
	var closed, due sql.NullString
	err := scanner.Scan(
		&action.ID,
		&action.Title,
		&action.ProjectID,
		&action.ProjectName,
		&action.ChampionID,
		&action.Category,
		&action.Status,
		&action.WorkCenter,
		&action.RelatedWorkCenters,
		&action.ImpactAspects,
		&created,
		&closed,
		&due,
		&action.ManualSavingsAmount,
		&action.ManualSavingsCurrency,
		&action.EffectivenessMetric,
		&action.EffectivenessDelta,
	)
	if err != nil {
		return Action{}, err
	}
	createdAt, err := parseDate(created)
	if err != nil {
		return Action{}, fmt.Errorf("invalid created_at %q: %w", created, err)
	}
	action.Created = createdAt
	if action.Closed, err = parseDatePtr(closed); err != nil {
		return Action{}, fmt.Errorf("invalid closed_at %q: %w", closed.String, err)
	}
	if action.Due, err = parseDatePtr(due); err != nil {
		return Action{}, fmt.Errorf("invalid due_date %q: %w", due.String, err)
	}
	return action, nil
}

func scanActions(rows *sql.Rows) ([]Action, error) {
	var actions []Action
	for rows.Next() {
		action, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan action: %w", err)
		}
		actions = append(actions, action)
	}
	return actions, rows.Err()
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func formatDatePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatDate(*t)
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func parseDatePtr(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := parseDate(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
