// Package store holds the persistence contract for orders and its
// gorm/postgres and in-memory implementations. Callers describe the order
// set they want with an OrderFilter value instead of building queries.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/example/yemak/internal/models"
)

// ErrNotFound is returned when no order matches a filter. It covers true
// absence, wrong ownership and wrong source state alike; callers cannot
// distinguish the three.
var ErrNotFound = errors.New("no matching order")

// SortKey selects the ordering applied to a filtered order set. Sorting is
// computed over the derived totals, not stored columns.
type SortKey string

const (
	SortDefault           SortKey = ""
	SortPriceHighToLow    SortKey = "price_high_to_low"
	SortPriceLowToHigh    SortKey = "price_low_to_high"
	SortQuantityLowToHigh SortKey = "quantity_low_to_high"
	SortQuantityHighToLow SortKey = "quantity_high_to_low"
)

// OrderFilter narrows the order set. Zero-valued fields are ignored, so an
// empty filter matches every non-deleted order.
type OrderFilter struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	CourierID    uuid.UUID
	BranchID     uuid.UUID
	RestaurantID uuid.UUID
	Status       models.OrderStatus
	CreatedAfter *time.Time
	Sort         SortKey
}

// OrderStore is the persistence contract for orders. A status update made
// through Transition is immediately visible to subsequent reads, and the
// derived totals are recomputed from current items on every read.
type OrderStore interface {
	// Create persists a new order together with its items.
	Create(ctx context.Context, order *models.Order) error

	// Get returns one order by id with items loaded and totals computed.
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)

	// Find returns one page of matching orders plus the whole-set count.
	// Pages start at 1; a page past the end yields an empty slice.
	Find(ctx context.Context, filter OrderFilter, page, pageSize int) ([]models.Order, int64, error)

	// First returns the oldest matching order.
	First(ctx context.Context, filter OrderFilter) (*models.Order, error)

	// Transition moves the oldest order matching filter from one status to
	// another. The read-check-mutate sequence is serialized per order: the
	// status column is only updated where it still equals from, and a lost
	// race surfaces as ErrNotFound.
	Transition(ctx context.Context, filter OrderFilter, from, to models.OrderStatus) (*models.Order, error)

	// AssignCourier sets the courier on an order still pending a courier.
	AssignCourier(ctx context.Context, id, courierID uuid.UUID) (*models.Order, error)

	// CountByStatus counts matching orders per status in a single grouped
	// pass. The filter's own Status field is ignored so every count is
	// visible regardless of the list narrowing in effect.
	CountByStatus(ctx context.Context, filter OrderFilter) (map[models.OrderStatus]int64, error)

	// SumTotalPrice sums the derived total price over matching orders.
	SumTotalPrice(ctx context.Context, filter OrderFilter) (int64, error)
}
