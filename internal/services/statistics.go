package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/example/yemak/internal/models"
	"github.com/example/yemak/internal/store"
)

// dateWindows maps the fbd query values onto lookback durations. "today"
// is handled separately because it anchors at local midnight.
var dateWindows = map[string]time.Duration{
	"weekly":  7 * 24 * time.Hour,
	"monthly": 30 * 24 * time.Hour,
	"yearly":  365 * 24 * time.Hour,
}

var branchStatusFilters = map[string]models.OrderStatus{
	"delivered": models.StatusDelivered,
	"confirmed": models.StatusConfirmedRestaurant,
	"pending":   models.StatusPendingRestaurant,
	"canceled":  models.StatusCancelled,
}

var restaurantStatusFilters = map[string]models.OrderStatus{
	"delivered": models.StatusDelivered,
	"canceled":  models.StatusCancelled,
}

var sortFilters = map[string]store.SortKey{
	"price_high_to_low":    store.SortPriceHighToLow,
	"price_low_to_high":    store.SortPriceLowToHigh,
	"quantity_low_to_high": store.SortQuantityLowToHigh,
	"quantity_high_to_low": store.SortQuantityHighToLow,
}

// windowStart resolves fbd into the inclusive lower bound of the date
// window. Unknown values leave the window unbounded.
func windowStart(now time.Time, fbd string) *time.Time {
	if fbd == "today" {
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return &start
	}
	if lookback, ok := dateWindows[fbd]; ok {
		start := now.Add(-lookback)
		return &start
	}
	return nil
}

// StatisticsQuery carries the raw fbd/fbt/fbm/page parameters of a
// statistics request. Unknown filter values are ignored, not rejected.
type StatisticsQuery struct {
	DateFilter   string
	StatusFilter string
	SortFilter   string
	Page         int
}

// BranchStatistics is one page of a branch's orders plus whole-window
// aggregate counts. The counts always describe the date-filtered scope,
// regardless of the status narrowing applied to the list.
type BranchStatistics struct {
	Orders          []models.Order `json:"data"`
	Count           int64          `json:"count"`
	Delivered       int64          `json:"delivered"`
	ConfirmedOrders int64          `json:"confirmed_orders"`
	PendingToAccept int64          `json:"pending_to_accept"`
	Canceled        int64          `json:"canceled"`
	TotalOrders     int64          `json:"total_orders"`
}

// RestaurantStatistics is the restaurant-wide variant of BranchStatistics.
type RestaurantStatistics struct {
	Orders      []models.Order `json:"data"`
	Count       int64          `json:"count"`
	Delivered   int64          `json:"delivered"`
	Canceled    int64          `json:"canceled"`
	TotalOrders int64          `json:"total_orders"`
}

// CourierStatistics summarizes a courier's assigned orders, earnings over
// delivered ones and the next order waiting for acceptance.
type CourierStatistics struct {
	Orders                     []models.Order `json:"data"`
	Count                      int64          `json:"count"`
	TotalAssignedOrders        int64          `json:"total_assigned_orders"`
	TotalDeliveredOrders       int64          `json:"total_delivered_orders"`
	TotalCanceledOrders        int64          `json:"total_canceled_orders"`
	TotalSum                   int64          `json:"total_sum"`
	AverageDeliveredOrderPrice float64        `json:"average_delivered_order_price"`
	PendingOrder               *models.Order  `json:"pending_order"`
}

// StatisticsService computes filtered, sorted, paginated order views with
// aggregate counts for branch, restaurant and courier actors.
type StatisticsService struct {
	orders   store.OrderStore
	pageSize int
	now      func() time.Time
}

// NewStatisticsService constructs a StatisticsService with a fixed page size.
func NewStatisticsService(orders store.OrderStore, pageSize int) *StatisticsService {
	return &StatisticsService{orders: orders, pageSize: pageSize, now: time.Now}
}

// listFilter applies the status and sort narrowing onto the base scope.
func listFilter(base store.OrderFilter, q StatisticsQuery, statuses map[string]models.OrderStatus) store.OrderFilter {
	out := base
	if status, ok := statuses[q.StatusFilter]; ok {
		out.Status = status
	}
	if key, ok := sortFilters[q.SortFilter]; ok {
		out.Sort = key
	}
	return out
}

func sumCounts(counts map[models.OrderStatus]int64) int64 {
	var total int64
	for _, n := range counts {
		total += n
	}
	return total
}

// BranchStatistics computes the statistics view for one branch.
func (s *StatisticsService) BranchStatistics(ctx context.Context, branchID uuid.UUID, q StatisticsQuery) (*BranchStatistics, error) {
	base := store.OrderFilter{
		BranchID:     branchID,
		CreatedAfter: windowStart(s.now(), q.DateFilter),
	}

	orders, count, err := s.orders.Find(ctx, listFilter(base, q, branchStatusFilters), q.Page, s.pageSize)
	if err != nil {
		return nil, err
	}
	counts, err := s.orders.CountByStatus(ctx, base)
	if err != nil {
		return nil, err
	}

	return &BranchStatistics{
		Orders:          orders,
		Count:           count,
		Delivered:       counts[models.StatusDelivered],
		ConfirmedOrders: counts[models.StatusConfirmedRestaurant],
		PendingToAccept: counts[models.StatusPendingRestaurant],
		Canceled:        counts[models.StatusCancelled],
		TotalOrders:     sumCounts(counts),
	}, nil
}

// RestaurantStatistics computes the statistics view for one restaurant.
func (s *StatisticsService) RestaurantStatistics(ctx context.Context, restaurantID uuid.UUID, q StatisticsQuery) (*RestaurantStatistics, error) {
	base := store.OrderFilter{
		RestaurantID: restaurantID,
		CreatedAfter: windowStart(s.now(), q.DateFilter),
	}

	orders, count, err := s.orders.Find(ctx, listFilter(base, q, restaurantStatusFilters), q.Page, s.pageSize)
	if err != nil {
		return nil, err
	}
	counts, err := s.orders.CountByStatus(ctx, base)
	if err != nil {
		return nil, err
	}

	return &RestaurantStatistics{
		Orders:      orders,
		Count:       count,
		Delivered:   counts[models.StatusDelivered],
		Canceled:    counts[models.StatusCancelled],
		TotalOrders: sumCounts(counts),
	}, nil
}

// CourierStatistics computes the statistics view for one courier. No status
// filter is exposed; the date window applies to every figure including the
// pending-order hint.
func (s *StatisticsService) CourierStatistics(ctx context.Context, courierID uuid.UUID, q StatisticsQuery) (*CourierStatistics, error) {
	base := store.OrderFilter{
		CourierID:    courierID,
		CreatedAfter: windowStart(s.now(), q.DateFilter),
	}

	orders, count, err := s.orders.Find(ctx, base, q.Page, s.pageSize)
	if err != nil {
		return nil, err
	}
	counts, err := s.orders.CountByStatus(ctx, base)
	if err != nil {
		return nil, err
	}

	deliveredFilter := base
	deliveredFilter.Status = models.StatusDelivered
	totalSum, err := s.orders.SumTotalPrice(ctx, deliveredFilter)
	if err != nil {
		return nil, err
	}

	delivered := counts[models.StatusDelivered]
	average := 0.0
	if delivered > 0 {
		average = math.Round(float64(totalSum)/float64(delivered)*100) / 100
	}

	pendingFilter := base
	pendingFilter.Status = models.StatusPendingCourier
	pending, err := s.orders.First(ctx, pendingFilter)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	return &CourierStatistics{
		Orders:                     orders,
		Count:                      count,
		TotalAssignedOrders:        sumCounts(counts),
		TotalDeliveredOrders:       delivered,
		TotalCanceledOrders:        counts[models.StatusCancelled],
		TotalSum:                   totalSum,
		AverageDeliveredOrderPrice: average,
		PendingOrder:               pending,
	}, nil
}
