package champion

import (
	"context"
	"errors"
	"strings"
)

var ErrNameRequired = errors.New("champion name is required")

type Service interface {
	Create(ctx context.Context, champion Champion) (Champion, error)
	Get(ctx context.Context, id string) (Champion, error)
	List(ctx context.Context, activeOnly bool) ([]Champion, error)
	Update(ctx context.Context, champion Champion) (Champion, error)
	Deactivate(ctx context.Context, id string) error
	// Names maps champion IDs to display names for leaderboard labelling.
	Names(ctx context.Context) (map[string]string, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewServiceImpl(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) Create(ctx context.Context, champion Champion) (Champion, error) {
	champion.Name = strings.TrimSpace(champion.Name)
	if champion.Name == "" {
		return Champion{}, ErrNameRequired
	}
	champion.Active = true
	return s.repo.Create(ctx, champion)
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (Champion, error) {
	return s.repo.Get(ctx, id)
}

func (s *ServiceImpl) List(ctx context.Context, activeOnly bool) ([]Champion, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *ServiceImpl) Update(ctx context.Context, champion Champion) (Champion, error) {
	champion.Name = strings.TrimSpace(champion.Name)
	if champion.Name == "" {
		return Champion{}, ErrNameRequired
	}
	return s.repo.Update(ctx, champion)
}

func (s *ServiceImpl) Deactivate(ctx context.Context, id string) error {
	return s.repo.Deactivate(ctx, id)
}

func (s *ServiceImpl) Names(ctx context.Context) (map[string]string, error) {
	champions, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(champions))
	for _, champion := range champions {
		names[champion.ID] = champion.Name
	}
	return names, nil
}
