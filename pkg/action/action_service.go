package action

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/qmpulse/qmpulse/internal/utils"
)

var (
	ErrTitleRequired = errors.New("action title is required")
	ErrInvalidStatus = errors.New("invalid action status")
	ErrNotFound      = errors.New("action not found")
	ErrAlreadyClosed = errors.New("action is already closed")
)

type Service interface {
	Create(ctx context.Context, action Action) (Action, error)
	Get(ctx context.Context, id string) (Action, error)
	List(ctx context.Context, filter RankingFilter) ([]Action, error)
	// Close stamps the closure date and marks the action done. Closing twice
	// is rejected so the first closure date stays authoritative.
	Close(ctx context.Context, id string) (Action, error)
}

type ServiceImpl struct {
	repo  Repository
	clock utils.Clock
}

func NewServiceImpl(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: &utils.SystemClock{}}
}

func (s *ServiceImpl) Create(ctx context.Context, action Action) (Action, error) {
	action.Title = strings.TrimSpace(action.Title)
	if action.Title == "" {
		return Action{}, ErrTitleRequired
	}
	if action.Status == "" {
		action.Status = StatusOpen
	}
	switch action.Status {
	case StatusOpen, StatusInProgress, StatusDone, StatusCancelled:
	default:
		return Action{}, ErrInvalidStatus
	}
	action.WorkCenter = NormalizeWorkCenter(action.WorkCenter)
	action.ImpactAspects = strings.Join(NormalizeImpactAspects(action.ImpactAspects), ",")
	return s.repo.Store(ctx, action)
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (Action, error) {
	found, err := s.repo.Get(ctx, id)
	if err != nil {
		return Action{}, err
	}
	if found == nil {
		return Action{}, ErrNotFound
	}
	return *found, nil
}

func (s *ServiceImpl) List(ctx context.Context, filter RankingFilter) ([]Action, error) {
	return s.repo.ListForRanking(ctx, filter)
}

func (s *ServiceImpl) Close(ctx context.Context, id string) (Action, error) {
	found, err := s.repo.Get(ctx, id)
	if err != nil {
		return Action{}, err
	}
	if found == nil {
		return Action{}, ErrNotFound
	}
	if found.Closed != nil {
		return Action{}, ErrAlreadyClosed
	}

	closed, err := s.repo.Close(ctx, id, s.clock.Now().UTC())
	if err != nil {
		return Action{}, err
	}
	if !closed {
		return Action{}, ErrAlreadyClosed
	}
	log.Infof("action %s closed", id)
	return s.Get(ctx, id)
}
