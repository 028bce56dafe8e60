package service

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/fjod/go_cart/eventhub/internal/repository"
	"golang.org/x/sync/errgroup"
)

type AdminDashboard struct {
	Stats    domain.PlatformStats   `json:"stats"`
	Profiles []*domain.Profile      `json:"profiles"`
	Events   []*domain.Event        `json:"events"`
	Orders   []*domain.OrderSummary `json:"orders"`
}

type DashboardService struct {
	dashboards repository.DashboardRepository
	profiles   repository.ProfileRepository
	events     repository.EventRepository
	orders     repository.OrderReader
}

func NewDashboardService(
	dashboards repository.DashboardRepository,
	profiles repository.ProfileRepository,
	events repository.EventRepository,
	orders repository.OrderReader,
) *DashboardService {
	return &DashboardService{dashboards: dashboards, profiles: profiles, events: events, orders: orders}
}

// CustomerOrders lists the actor's own orders, newest first.
func (s *DashboardService) CustomerOrders(ctx context.Context, actorID string) ([]*domain.Order, error) {
	return s.orders.ListOrdersByActor(ctx, actorID)
}

func (s *DashboardService) VendorOrders(ctx context.Context, vendorID string) ([]*domain.VendorOrderLine, error) {
	return s.dashboards.ListVendorOrders(ctx, vendorID)
}

// Admin loads the four admin panels concurrently.
func (s *DashboardService) Admin(ctx context.Context) (*AdminDashboard, error) {
	var d AdminDashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := s.dashboards.PlatformStats(ctx)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		d.Stats = stats
		return nil
	})
	g.Go(func() error {
		profiles, err := s.profiles.ListProfiles(ctx)
		if err != nil {
			return fmt.Errorf("profiles: %w", err)
		}
		d.Profiles = profiles
		return nil
	})
	g.Go(func() error {
		events, err := s.events.ListEvents(ctx)
		if err != nil {
			return fmt.Errorf("events: %w", err)
		}
		d.Events = events
		return nil
	})
	g.Go(func() error {
		orders, err := s.dashboards.ListOrderSummaries(ctx)
		if err != nil {
			return fmt.Errorf("orders: %w", err)
		}
		d.Orders = orders
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
