package services

import (
	"context"
	"errors"
	"sync"

	"github.com/saydalia/saydalia/app/models"
	"github.com/saydalia/saydalia/app/repositories"
	"github.com/saydalia/saydalia/pkg/apperr"
	"github.com/saydalia/saydalia/pkg/workerpool"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dashboard is the aggregate view an admin sees for their pharmacy.
type Dashboard struct {
	Pharmacy       models.Pharmacy  `json:"pharmacy"`
	OrderCounts    map[string]int64 `json:"orderCounts"`
	TotalOrders    int64            `json:"totalOrders"`
	MedicineCount  int              `json:"medicineCount"`
	OutOfStock     int              `json:"outOfStock"`
	UnreadMessages int64            `json:"unreadNotifications"`
	RecentOrders   []models.Order   `json:"recentOrders"`
}

const recentOrdersLimit = 10

// DashboardService assembles the admin dashboard. The independent store
// queries run concurrently on a shared worker pool.
type DashboardService struct {
	pharmacies    repositories.PharmacyRepository
	orders        repositories.OrderRepository
	notifications repositories.NotificationRepository
	pool          *workerpool.Pool
}

func NewDashboardService(
	pharmacies repositories.PharmacyRepository,
	orders repositories.OrderRepository,
	notifications repositories.NotificationRepository,
	pool *workerpool.Pool,
) *DashboardService {
	return &DashboardService{pharmacies: pharmacies, orders: orders, notifications: notifications, pool: pool}
}

// For builds the dashboard for one admin. The pharmacy lookup runs first;
// the counts and the recent-order list then fan out in parallel.
func (s *DashboardService) For(ctx context.Context, adminID primitive.ObjectID) (Dashboard, error) {
	pharmacy, err := s.pharmacies.FindByAdmin(ctx, adminID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Dashboard{}, apperr.NewNotFound(msgNoPharmacy)
		}
		return Dashboard{}, apperr.NewInternal(err)
	}

	d := Dashboard{Pharmacy: pharmacy, OrderCounts: map[string]int64{}}
	d.MedicineCount = len(pharmacy.Medicines)
	for _, m := range pharmacy.Medicines {
		if !m.InStock {
			d.OutOfStock++
		}
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	run := func(task func()) {
		wg.Add(1)
		job := func() {
			defer wg.Done()
			task()
		}
		// Fall back inline when the pool is saturated or closed.
		if err := s.pool.Submit(job); err != nil {
			job()
		}
	}

	run(func() {
		counts, err := s.orders.CountByStatus(ctx, pharmacy.ID)
		if err != nil {
			fail(err)
			return
		}
		mu.Lock()
		d.OrderCounts = counts
		for _, c := range counts {
			d.TotalOrders += c
		}
		mu.Unlock()
	})

	run(func() {
		orders, err := s.orders.ListByPharmacy(ctx, pharmacy.ID)
		if err != nil {
			fail(err)
			return
		}
		if len(orders) > recentOrdersLimit {
			orders = orders[:recentOrdersLimit]
		}
		mu.Lock()
		d.RecentOrders = orders
		mu.Unlock()
	})

	run(func() {
		unread, err := s.notifications.CountUnread(ctx, adminID)
		if err != nil {
			fail(err)
			return
		}
		mu.Lock()
		d.UnreadMessages = unread
		mu.Unlock()
	})

	wg.Wait()
	if firstErr != nil {
		return Dashboard{}, apperr.NewInternal(firstErr)
	}
	if d.RecentOrders == nil {
		d.RecentOrders = []models.Order{}
	}
	return d, nil
}
