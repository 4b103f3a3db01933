package action

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

type StubRepository struct {
	actions map[string]Action
	rules   []CategoryRule
}

func NewStubRepository() *StubRepository {
	return &StubRepository{actions: map[string]Action{}}
}

func (s *StubRepository) SetRules(rules []CategoryRule) {
	s.rules = rules
}

func (s *StubRepository) Store(ctx context.Context, action Action) (Action, error) {
	if action.ID == "" {
		action.ID = uuid.NewString()
	}
	if action.Created.IsZero() {
		action.Created = time.Now().UTC()
	}
	s.actions[action.ID] = action
	return action, nil
}

func (s *StubRepository) Get(ctx context.Context, id string) (*Action, error) {
	if action, ok := s.actions[id]; ok {
		return &action, nil
	}
	return nil, nil
}

func (s *StubRepository) ListForRanking(ctx context.Context, filter RankingFilter) ([]Action, error) {
	var actions []Action
	for _, action := range s.actions {
		if filter.ProjectID != nil && (action.ProjectID == nil || *action.ProjectID != *filter.ProjectID) {
			continue
		}
		if filter.Category != nil && action.Category != *filter.Category {
			continue
		}
		if filter.DateFrom != nil {
			closedInWindow := action.Closed != nil && !action.Closed.Before(*filter.DateFrom)
			if action.Created.Before(*filter.DateFrom) && !closedInWindow {
				continue
			}
		}
		if filter.DateTo != nil && action.Created.After(*filter.DateTo) {
			continue
		}
		actions = append(actions, action)
	}
	sort.Slice(actions, func(i, j int) bool {
		if !actions[i].Created.Equal(actions[j].Created) {
			return actions[i].Created.Before(actions[j].Created)
		}
		return actions[i].ID < actions[j].ID
	})
	return actions, nil
}

func (s *StubRepository) ListClosed(ctx context.Context) ([]Action, error) {
	var actions []Action
	for _, action := range s.actions {
		if action.Closed != nil && action.Status != StatusCancelled {
			actions = append(actions, action)
		}
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i].ID < actions[j].ID })
	return actions, nil
}

func (s *StubRepository) Close(ctx context.Context, id string, closedAt time.Time) (bool, error) {
	action, ok := s.actions[id]
	if !ok || action.Closed != nil {
		return false, nil
	}
	action.Status = StatusDone
	action.Closed = &closedAt
	s.actions[id] = action
	return true, nil
}

func (s *StubRepository) ListCategoryRules(ctx context.Context, onlyActive bool) ([]CategoryRule, error) {
	if !onlyActive {
		return s.rules, nil
	}
	var active []CategoryRule
	for _, rule := range s.rules {
		if rule.Active {
			active = append(active, rule)
		}
	}
	return active, nil
}
