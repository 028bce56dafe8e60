package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_cart/eventhub/internal/cache"
	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/fjod/go_cart/eventhub/internal/logger"
	"github.com/fjod/go_cart/eventhub/internal/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidEvent = errors.New("invalid event")
	ErrForbidden    = errors.New("not allowed to modify this event")
)

// EventInput is the vendor-supplied form of an event. Price and Date are
// kept as text and parsed on save.
type EventInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Price       string `json:"price"`
}

const eventDateLayout = "2006-01-02"

func (in EventInput) parse() (*domain.Event, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidEvent)
	}
	if strings.TrimSpace(in.Date) == "" {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidEvent)
	}
	date, err := time.Parse(eventDateLayout, strings.TrimSpace(in.Date))
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidEvent)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil {
		return nil, fmt.Errorf("%w: price must be a number", ErrInvalidEvent)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidEvent)
	}
	return &domain.Event{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Date:        date,
		Price:       price.Round(2),
	}, nil
}

type EventService struct {
	repo  repository.EventRepository
	cache cache.EventCache
	sfg   singleflight.Group
	log   *slog.Logger

	// generation is bumped on every invalidation. A cache fill only lands
	// if no invalidation happened since its repository read began.
	mu         sync.Mutex
	generation uint64
}

func NewEventService(repo repository.EventRepository, c cache.EventCache, log *slog.Logger) *EventService {
	if c == nil {
		c = cache.NopCache{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &EventService{repo: repo, cache: c, log: log.With("component", "events")}
}

// ListEvents returns the catalogue ordered by date, served from cache when
// possible. Concurrent misses share one repository read.
func (s *EventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	v, err, _ := s.sfg.Do("catalogue", func() (interface{}, error) {
		events, err := s.cache.Get(ctx)
		if err == nil {
			return events, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WarnContext(ctx, "cache get error", "error", err)
		}

		gen := s.currentGeneration()
		events, err = s.repo.ListEvents(ctx)
		if err != nil {
			return nil, err
		}

		go s.fill(gen, events)
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Event), nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return s.repo.GetEvent(ctx, id)
}

func (s *EventService) ListVendorEvents(ctx context.Context, vendorID string) ([]*domain.Event, error) {
	return s.repo.ListEventsByVendor(ctx, vendorID)
}

func (s *EventService) CreateEvent(ctx context.Context, vendor *domain.Profile, in EventInput) (*domain.Event, error) {
	if vendor == nil || (vendor.Role != domain.RoleVendor && vendor.Role != domain.RoleAdmin) {
		return nil, ErrForbidden
	}
	event, err := in.parse()
	if err != nil {
		return nil, err
	}
	event.VendorID = vendor.ID

	created, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, editor *domain.Profile, id string, in EventInput) (*domain.Event, error) {
	existing, err := s.ownedEvent(ctx, editor, id)
	if err != nil {
		return nil, err
	}
	event, err := in.parse()
	if err != nil {
		return nil, err
	}
	event.ID = existing.ID
	event.VendorID = existing.VendorID

	updated, err := s.repo.UpdateEvent(ctx, event)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, editor *domain.Profile, id string) error {
	if _, err := s.ownedEvent(ctx, editor, id); err != nil {
		return err
	}
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ownedEvent loads id and checks that editor is its vendor or an admin.
func (s *EventService) ownedEvent(ctx context.Context, editor *domain.Profile, id string) (*domain.Event, error) {
	if editor == nil {
		return nil, ErrForbidden
	}
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if editor.Role != domain.RoleAdmin && event.VendorID != editor.ID {
		return nil, ErrForbidden
	}
	return event, nil
}

func (s *EventService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *EventService) fill(gen uint64, events []*domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.log.Debug("stale catalogue not cached", "generation", gen, "current", s.generation)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Set(ctx, events); err != nil {
		s.log.Warn("cache set error", "error", err)
	}
}

func (s *EventService) invalidate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if err := s.cache.Delete(ctx); err != nil {
		s.log.WarnContext(ctx, "cache invalidate error", "error", err)
	}
}
