package services

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"vacationRentalWebsite/internal/models"
)

// RecentBookingsLimit is how many bookings the dashboard shows and sums
const RecentBookingsLimit = 5

// DashboardAPI is the slice of the booking API the admin dashboard reads
type DashboardAPI interface {
	ListProperties(ctx context.Context, q models.ListQuery) ([]models.Property, *models.Pagination, error)
	AllBookings(ctx context.Context, token string, q models.ListQuery) ([]models.Booking, *models.Pagination, error)
	ListEnquiries(ctx context.Context, token string, q models.ListQuery) ([]models.Enquiry, *models.Pagination, error)
}

// DashboardStats are the admin overview figures. Revenue is the sum over the
// recent bookings only.
type DashboardStats struct {
	TotalProperties int
	TotalBookings   int
	TotalEnquiries  int
	TotalRevenue    float64
	RecentBookings  []models.Booking
	// Failed maps a resource name to its read error. A failed resource
	// contributes zeros.
	Failed map[string]error
}

// LoadDashboard reads properties, bookings and enquiries concurrently. One
// failed read never hides the others.
func LoadDashboard(ctx context.Context, api DashboardAPI, token string) DashboardStats {
	var (
		stats DashboardStats
		mu    sync.Mutex
	)
	stats.Failed = make(map[string]error)
	fail := func(resource string, err error) {
		mu.Lock()
		stats.Failed[resource] = err
		mu.Unlock()
	}

	var g errgroup.Group

	g.Go(func() error {
		_, pg, err := api.ListProperties(ctx, models.ListQuery{Limit: 1})
		if err != nil {
			fail("properties", err)
			return nil
		}
		if pg != nil {
			stats.TotalProperties = pg.Total
		}
		return nil
	})

	g.Go(func() error {
		list, pg, err := api.AllBookings(ctx, token, models.ListQuery{Limit: RecentBookingsLimit, Sort: "-createdAt"})
		if err != nil {
			fail("bookings", err)
			return nil
		}
		if pg != nil {
			stats.TotalBookings = pg.Total
		}
		if len(list) > RecentBookingsLimit {
			list = list[:RecentBookingsLimit]
		}
		stats.RecentBookings = list
		for _, b := range list {
			stats.TotalRevenue += b.TotalPrice
		}
		return nil
	})

	g.Go(func() error {
		_, pg, err := api.ListEnquiries(ctx, token, models.ListQuery{Limit: 1})
		if err != nil {
			fail("enquiries", err)
			return nil
		}
		if pg != nil {
			stats.TotalEnquiries = pg.Total
		}
		return nil
	})

	_ = g.Wait()
	return stats
}
