package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/yemak/internal/models"
	"github.com/example/yemak/internal/store"
)

func newStatsService(s store.OrderStore, pageSize int, now time.Time) *StatisticsService {
	svc := NewStatisticsService(s, pageSize)
	svc.now = func() time.Time { return now }
	return svc
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2025, time.March, 15, 14, 30, 0, 0, time.UTC)

	today := windowStart(now, "today")
	require.NotNil(t, today)
	assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), *today)

	weekly := windowStart(now, "weekly")
	require.NotNil(t, weekly)
	assert.Equal(t, now.Add(-7*24*time.Hour), *weekly)

	monthly := windowStart(now, "monthly")
	require.NotNil(t, monthly)
	assert.Equal(t, now.Add(-30*24*time.Hour), *monthly)

	yearly := windowStart(now, "yearly")
	require.NotNil(t, yearly)
	assert.Equal(t, now.Add(-365*24*time.Hour), *yearly)

	assert.Nil(t, windowStart(now, ""))
	assert.Nil(t, windowStart(now, "fortnightly"))
}

func TestBranchStatisticsTodayBoundary(t *testing.T) {
	s := store.NewMemory()
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	svc := newStatsService(s, 10, now)
	ctx := context.Background()

	branchID := uuid.New()
	setBranch := func(o *models.Order) {
		id := branchID
		o.BranchID = &id
	}

	// One second past midnight is in; one second before is out.
	in := newOrder(t, s, models.StatusDelivered,
		time.Date(2025, time.March, 15, 0, 0, 1, 0, time.UTC), setBranch)
	newOrder(t, s, models.StatusDelivered,
		time.Date(2025, time.March, 14, 23, 59, 59, 0, time.UTC), setBranch)

	result, err := svc.BranchStatistics(ctx, branchID, StatisticsQuery{DateFilter: "today", Page: 1})
	require.NoError(t, err)

	require.Len(t, result.Orders, 1)
	assert.Equal(t, in.ID, result.Orders[0].ID)
	assert.EqualValues(t, 1, result.Count)
	assert.EqualValues(t, 1, result.Delivered)
	assert.EqualValues(t, 1, result.TotalOrders)
}

func TestBranchStatisticsCountsIgnoreStatusFilter(t *testing.T) {
	s := store.NewMemory()
	now := time.Now()
	svc := newStatsService(s, 10, now)
	ctx := context.Background()

	branchID := uuid.New()
	setBranch := func(o *models.Order) {
		id := branchID
		o.BranchID = &id
	}
	newOrder(t, s, models.StatusDelivered, now.Add(-time.Hour), setBranch)
	newOrder(t, s, models.StatusDelivered, now.Add(-time.Hour), setBranch)
	newOrder(t, s, models.StatusCancelled, now.Add(-time.Hour), setBranch)
	newOrder(t, s, models.StatusPendingRestaurant, now.Add(-time.Hour), setBranch)
	newOrder(t, s, models.StatusConfirmedRestaurant, now.Add(-time.Hour), setBranch)

	result, err := svc.BranchStatistics(ctx, branchID, StatisticsQuery{StatusFilter: "delivered", Page: 1})
	require.NoError(t, err)

	// The list narrows to delivered, the aggregates do not.
	assert.Len(t, result.Orders, 2)
	assert.EqualValues(t, 2, result.Count)
	assert.EqualValues(t, 2, result.Delivered)
	assert.EqualValues(t, 1, result.Canceled)
	assert.EqualValues(t, 1, result.PendingToAccept)
	assert.EqualValues(t, 1, result.ConfirmedOrders)
	assert.EqualValues(t, 5, result.TotalOrders)
}

func TestBranchStatisticsUnknownFiltersIgnored(t *testing.T) {
	s := store.NewMemory()
	now := time.Now()
	svc := newStatsService(s, 10, now)

	branchID := uuid.New()
	newOrder(t, s, models.StatusDelivered, now.Add(-time.Hour), func(o *models.Order) {
		id := branchID
		o.BranchID = &id
	})

	result, err := svc.BranchStatistics(context.Background(), branchID,
		StatisticsQuery{DateFilter: "decade", StatusFilter: "shipped", SortFilter: "alphabetical", Page: 1})
	require.NoError(t, err)
	assert.Len(t, result.Orders, 1)
	assert.EqualValues(t, 1, result.TotalOrders)
}

func TestRestaurantStatisticsStatusFilterVocabulary(t *testing.T) {
	s := store.NewMemory()
	now := time.Now()
	svc := newStatsService(s, 10, now)
	ctx := context.Background()

	restaurantID := uuid.New()
	setRestaurant := func(o *models.Order) {
		id := restaurantID
		o.RestaurantID = &id
	}
	newOrder(t, s, models.StatusDelivered, now.Add(-time.Hour), setRestaurant)
	newOrder(t, s, models.StatusCancelled, now.Add(-time.Hour), setRestaurant)
	newOrder(t, s, models.StatusPendingRestaurant, now.Add(-time.Hour), setRestaurant)

	// "pending" is a branch-only vocabulary word; restaurants ignore it.
	result, err := svc.RestaurantStatistics(ctx, restaurantID, StatisticsQuery{StatusFilter: "pending", Page: 1})
	require.NoError(t, err)
	assert.Len(t, result.Orders, 3)

	result, err = svc.RestaurantStatistics(ctx, restaurantID, StatisticsQuery{StatusFilter: "canceled", Page: 1})
	require.NoError(t, err)
	assert.Len(t, result.Orders, 1)
	assert.EqualValues(t, 1, result.Delivered)
	assert.EqualValues(t, 1, result.Canceled)
	assert.EqualValues(t, 3, result.TotalOrders)
}

func TestStatisticsSortByDerivedPrice(t *testing.T) {
	s := store.NewMemory()
	now := time.Now()
	svc := newStatsService(s, 10, now)

	branchID := uuid.New()
	cheap := newOrder(t, s, models.StatusDelivered, now.Add(-2*time.Hour), func(o *models.Order) {
		id := branchID
		o.BranchID = &id
		o.Items = []models.OrderItem{{Quantity: 1, PricePerItem: 10, TotalPrice: 10}}
	})
	pricey := newOrder(t, s, models.StatusDelivered, now.Add(-time.Hour), func(o *models.Order) {
		id := branchID
		o.BranchID = &id
		o.Items = []models.OrderItem{{Quantity: 2, PricePerItem: 100, TotalPrice: 200}}
	})

	result, err := svc.BranchStatistics(context.Background(), branchID,
		StatisticsQuery{SortFilter: "price_high_to_low", Page: 1})
	require.NoError(t, err)
	require.Len(t, result.Orders, 2)
	assert.Equal(t, pricey.ID, result.Orders[0].ID)
	assert.Equal(t, cheap.ID, result.Orders[1].ID)
}

func TestStatisticsPageBeyondEndIsEmpty(t *testing.T) {
	s := store.NewMemory()
	now := time.Now()
	svc := newStatsService(s, 10, now)

	branchID := uuid.New()
	newOrder(t, s, models.StatusDelivered, now.Add(-time.Hour), func(o *models.Order) {
		id := branchID
		o.BranchID = &id
	})

	result, err := svc.BranchStatistics(context.Background(), branchID, StatisticsQuery{Page: 7})
	require.NoError(t, err)
	assert.Empty(t, result.Orders)
	assert.EqualValues(t, 1, result.Count)
	assert.EqualValues(t, 1, result.TotalOrders)
}

func TestCourierStatistics(t *testing.T) {
	s := store.NewMemory()
	now := time.Now()
	svc := newStatsService(s, 10, now)
	ctx := context.Background()

	courierID := uuid.New()
	assign := withCourier(courierID)

	newOrder(t, s, models.StatusDelivered, now.Add(-3*time.Hour), func(o *models.Order) {
		assign(o)
		o.Items = []models.OrderItem{{Quantity: 1, PricePerItem: 60, TotalPrice: 60}}
	})
	newOrder(t, s, models.StatusDelivered, now.Add(-2*time.Hour), func(o *models.Order) {
		assign(o)
		o.Items = []models.OrderItem{{Quantity: 1, PricePerItem: 45, TotalPrice: 45}}
	})
	newOrder(t, s, models.StatusCancelled, now.Add(-time.Hour), func(o *models.Order) {
		assign(o)
		o.Items = []models.OrderItem{{Quantity: 1, PricePerItem: 500, TotalPrice: 500}}
	})
	pending := newOrder(t, s, models.StatusPendingCourier, now.Add(-time.Minute), assign)

	result, err := svc.CourierStatistics(ctx, courierID, StatisticsQuery{Page: 1})
	require.NoError(t, err)

	assert.Len(t, result.Orders, 4)
	assert.EqualValues(t, 4, result.TotalAssignedOrders)
	assert.EqualValues(t, 2, result.TotalDeliveredOrders)
	assert.EqualValues(t, 1, result.TotalCanceledOrders)
	assert.EqualValues(t, 105, result.TotalSum)
	assert.InDelta(t, 52.5, result.AverageDeliveredOrderPrice, 0.001)
	require.NotNil(t, result.PendingOrder)
	assert.Equal(t, pending.ID, result.PendingOrder.ID)
}

func TestCourierStatisticsNoDeliveredOrders(t *testing.T) {
	s := store.NewMemory()
	now := time.Now()
	svc := newStatsService(s, 10, now)

	courierID := uuid.New()
	newOrder(t, s, models.StatusCancelled, now.Add(-time.Hour), withCourier(courierID))

	result, err := svc.CourierStatistics(context.Background(), courierID, StatisticsQuery{Page: 1})
	require.NoError(t, err)

	assert.Zero(t, result.TotalDeliveredOrders)
	assert.Zero(t, result.TotalSum)
	assert.Zero(t, result.AverageDeliveredOrderPrice)
	assert.Nil(t, result.PendingOrder)
}

func TestCourierStatisticsDateWindowAppliesEverywhere(t *testing.T) {
	s := store.NewMemory()
	now := time.Now()
	svc := newStatsService(s, 10, now)

	courierID := uuid.New()
	assign := withCourier(courierID)

	// Inside the weekly window.
	newOrder(t, s, models.StatusDelivered, now.Add(-24*time.Hour), func(o *models.Order) {
		assign(o)
		o.Items = []models.OrderItem{{Quantity: 1, PricePerItem: 50, TotalPrice: 50}}
	})
	// Outside it.
	newOrder(t, s, models.StatusDelivered, now.Add(-10*24*time.Hour), func(o *models.Order) {
		assign(o)
		o.Items = []models.OrderItem{{Quantity: 1, PricePerItem: 999, TotalPrice: 999}}
	})
	newOrder(t, s, models.StatusPendingCourier, now.Add(-10*24*time.Hour), assign)

	result, err := svc.CourierStatistics(context.Background(), courierID,
		StatisticsQuery{DateFilter: "weekly", Page: 1})
	require.NoError(t, err)

	assert.Len(t, result.Orders, 1)
	assert.EqualValues(t, 1, result.TotalAssignedOrders)
	assert.EqualValues(t, 50, result.TotalSum)
	assert.Nil(t, result.PendingOrder)
}
