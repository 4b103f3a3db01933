package champion

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("champion not found")

type Repository interface {
	Create(ctx context.Context, champion Champion) (Champion, error)
	Get(ctx context.Context, id string) (Champion, error)
	List(ctx context.Context, activeOnly bool) ([]Champion, error)
	Update(ctx context.Context, champion Champion) (Champion, error)
	Deactivate(ctx context.Context, id string) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, champion Champion) (Champion, error) {
	if champion.ID == "" {
		champion.ID = uuid.NewString()
	}
	query := `INSERT INTO champion (id, name, email, team, position, active) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		champion.ID,
		champion.Name,
		champion.Email,
		champion.Team,
		champion.Position,
		champion.Active,
	)
	if err != nil {
		log.Errorf("failed to create champion: %v", err)
		return Champion{}, fmt.Errorf("could not create champion: %w", err)
	}
	return champion, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, id string) (Champion, error) {
	query := `SELECT id, name, email, team, position, active FROM champion WHERE id = ?`
	champion, err := scanChampion(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Champion{}, ErrNotFound
	}
	if err != nil {
		log.Errorf("failed to get champion %s: %v", id, err)
		return Champion{}, err
	}
	return champion, nil
}

func (r *RepositoryImpl) List(ctx context.Context, activeOnly bool) ([]Champion, error) {
	query := `SELECT id, name, email, team, position, active FROM champion`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		log.Errorf("failed to list champions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var champions []Champion
	for rows.Next() {
		champion, err := scanChampion(rows)
		if err != nil {
			log.Errorf("failed to scan champion: %v", err)
			return nil, err
		}
		champions = append(champions, champion)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("error iterating over champions: %v", err)
		return nil, err
	}
	return champions, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, champion Champion) (Champion, error) {
	query := `UPDATE champion SET name = ?, email = ?, team = ?, position = ?, active = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		champion.Name,
		champion.Email,
		champion.Team,
		champion.Position,
		champion.Active,
		champion.ID,
	)
	if err != nil {
		log.Errorf("failed to update champion %s: %v", champion.ID, err)
		return Champion{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Champion{}, err
	}
	if affected == 0 {
		return Champion{}, ErrNotFound
	}
	return champion, nil
}

func (r *RepositoryImpl) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE champion SET active = FALSE WHERE id = ?`, id)
	if err != nil {
		log.Errorf("failed to deactivate champion %s: %v", id, err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChampion(row rowScanner) (Champion, error) {
	var champion Champion
	err := row.Scan(
		&champion.ID,
		&champion.Name,
		&champion.Email,
		&champion.Team,
		&champion.Position,
		&champion.Active,
	)
	return champion, err
}
