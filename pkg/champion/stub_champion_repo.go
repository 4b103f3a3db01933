package champion

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

// StubRepository is an in-memory Repository for tests.
type StubRepository struct {
	champions map[string]Champion
}

func NewStubRepository() *StubRepository {
	return &StubRepository{champions: map[string]Champion{}}
}

func (s *StubRepository) Create(ctx context.Context, champion Champion) (Champion, error) {
	if champion.ID == "" {
		champion.ID = uuid.NewString()
	}
	s.champions[champion.ID] = champion
	return champion, nil
}

func (s *StubRepository) Get(ctx context.Context, id string) (Champion, error) {
	if champion, ok := s.champions[id]; ok {
		return champion, nil
	}
	return Champion{}, ErrNotFound
}

func (s *StubRepository) List(ctx context.Context, activeOnly bool) ([]Champion, error) {
	var champions []Champion
	for _, champion := range s.champions {
		if activeOnly && !champion.Active {
			continue
		}
		champions = append(champions, champion)
	}
	sort.Slice(champions, func(i, j int) bool {
		if champions[i].Name != champions[j].Name {
			return champions[i].Name < champions[j].Name
		}
		return champions[i].ID < champions[j].ID
	})
	return champions, nil
}

func (s *StubRepository) Update(ctx context.Context, champion Champion) (Champion, error) {
	if _, ok := s.champions[champion.ID]; !ok {
		return Champion{}, ErrNotFound
	}
	s.champions[champion.ID] = champion
	return champion, nil
}

func (s *StubRepository) Deactivate(ctx context.Context, id string) error {
	champion, ok := s.champions[id]
	if !ok {
		return ErrNotFound
	}
	champion.Active = false
	s.champions[id] = champion
	return nil
}
