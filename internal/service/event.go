package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ticketeria/ticketeria/internal/cache"
	"github.com/ticketeria/ticketeria/internal/domain"
	"github.com/ticketeria/ticketeria/internal/repository"
)

var (
	ErrEventNotFound      = repository.ErrEventNotFound
	ErrTicketTypeNotFound = repository.ErrTicketTypeNotFound
	ErrEventDateInPast    = errors.New("event date must be in the future")
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	FindAll(ctx context.Context) ([]domain.Event, error)
	Update(ctx context.Context, id uint, event domain.Event, replaceTypes bool) (domain.Event, error)
	Delete(ctx context.Context, id uint) error
}

type EventService struct {
	repo  EventRepository
	cache *cache.EventCache
}

func NewEventService(repo EventRepository, eventCache *cache.EventCache) *EventService {
	return &EventService{
		repo:  repo,
		cache: eventCache,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	if !event.Date.After(time.Now()) {
		return domain.Event{}, ErrEventDateInPast
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.cache.Invalidate(ctx)

	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return event, nil
}

// ListEvents serves the catalog read-through from redis when configured.
func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	if cached, err := s.cache.GetEvents(ctx); err == nil {
		return cached, nil
	}

	events, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	s.cache.SetEvents(ctx, events)

	return events, nil
}

// UpdateEvent applies the scalar changes and, when the request carried a
// ticket type set, reconciles it atomically against the stored types.
func (s *EventService) UpdateEvent(ctx context.Context, id uint, event domain.Event, replaceTypes bool) (domain.Event, error) {
	updated, err := s.repo.Update(ctx, id, event, replaceTypes)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	s.cache.Invalidate(ctx)

	return updated, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	s.cache.Invalidate(ctx)

	return nil
}
