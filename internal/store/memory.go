package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/yemak/internal/models"
)

// Memory is an in-process OrderStore. It backs unit tests and mirrors the
// gorm implementation's semantics, including serialized transitions.
type Memory struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*models.Order
	seq    []uuid.UUID
}

// NewMemory constructs an empty in-memory order store.
func NewMemory() *Memory {
	return &Memory{orders: make(map[uuid.UUID]*models.Order)}
}

func clone(order *models.Order) *models.Order {
	out := *order
	out.Items = make([]models.OrderItem, len(order.Items))
	copy(out.Items, order.Items)
	out.ComputeTotals()
	return &out
}

func matches(order *models.Order, filter OrderFilter) bool {
	if order.IsDeleted {
		return false
	}
	if filter.ID != uuid.Nil && order.ID != filter.ID {
		return false
	}
	if filter.UserID != uuid.Nil && order.UserID != filter.UserID {
		return false
	}
	if filter.CourierID != uuid.Nil && (order.CourierID == nil || *order.CourierID != filter.CourierID) {
		return false
	}
	if filter.BranchID != uuid.Nil && (order.BranchID == nil || *order.BranchID != filter.BranchID) {
		return false
	}
	if filter.RestaurantID != uuid.Nil && (order.RestaurantID == nil || *order.RestaurantID != filter.RestaurantID) {
		return false
	}
	if filter.Status != "" && order.Status != filter.Status {
		return false
	}
	if filter.CreatedAfter != nil && order.CreatedAt.Before(*filter.CreatedAfter) {
		return false
	}
	return true
}

// collect returns clones of matching orders in insertion order, oldest first.
// Callers must hold the lock.
func (s *Memory) collect(filter OrderFilter) []*models.Order {
	var out []*models.Order
	for _, id := range s.seq {
		if order := s.orders[id]; matches(order, filter) {
			out = append(out, clone(order))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	applySort(out, filter.Sort)
	return out
}

func applySort(orders []*models.Order, key SortKey) {
	switch key {
	case SortPriceHighToLow:
		sort.SliceStable(orders, func(i, j int) bool { return orders[i].TotalPrice > orders[j].TotalPrice })
	case SortPriceLowToHigh:
		sort.SliceStable(orders, func(i, j int) bool { return orders[i].TotalPrice < orders[j].TotalPrice })
	case SortQuantityHighToLow:
		sort.SliceStable(orders, func(i, j int) bool { return orders[i].TotalItems > orders[j].TotalItems })
	case SortQuantityLowToHigh:
		sort.SliceStable(orders, func(i, j int) bool { return orders[i].TotalItems < orders[j].TotalItems })
	}
}

// Create persists a new order together with its items.
func (s *Memory) Create(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.ComputeTotals()

	s.orders[order.ID] = clone(order)
	s.seq = append(s.seq, order.ID)
	return nil
}

// Get returns one order by id.
func (s *Memory) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok || order.IsDeleted {
		return nil, ErrNotFound
	}
	return clone(order), nil
}

// Find returns one page of matching orders plus the whole-set count.
func (s *Memory) Find(ctx context.Context, filter OrderFilter, page, pageSize int) ([]models.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.collect(filter)
	total := int64(len(matched))

	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]models.Order, 0, end-start)
	for _, order := range matched[start:end] {
		out = append(out, *order)
	}
	return out, total, nil
}

// First returns the oldest matching order.
func (s *Memory) First(ctx context.Context, filter OrderFilter) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.collect(filter)
	if len(matched) == 0 {
		return nil, ErrNotFound
	}
	return matched[0], nil
}

// Transition moves the oldest matching order from one status to another.
// The lock serializes the read-check-mutate sequence, so concurrent callers
// racing on the same order see exactly one winner.
func (s *Memory) Transition(ctx context.Context, filter OrderFilter, from, to models.OrderStatus) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filter.Status = from
	matched := s.collect(filter)
	if len(matched) == 0 {
		return nil, ErrNotFound
	}

	order := s.orders[matched[0].ID]
	if order.Status != from {
		return nil, ErrNotFound
	}
	order.Status = to
	order.UpdatedAt = time.Now()
	return clone(order), nil
}

// AssignCourier sets the courier on an order still pending a courier.
func (s *Memory) AssignCourier(ctx context.Context, id, courierID uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok || order.IsDeleted || order.Status != models.StatusPendingCourier {
		return nil, ErrNotFound
	}
	cid := courierID
	order.CourierID = &cid
	order.UpdatedAt = time.Now()
	return clone(order), nil
}

// CountByStatus counts matching orders per status, ignoring the filter's
// own status narrowing.
func (s *Memory) CountByStatus(ctx context.Context, filter OrderFilter) (map[models.OrderStatus]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filter.Status = ""
	counts := make(map[models.OrderStatus]int64)
	for _, order := range s.collect(filter) {
		counts[order.Status]++
	}
	return counts, nil
}

// SumTotalPrice sums the derived total price over matching orders.
func (s *Memory) SumTotalPrice(ctx context.Context, filter OrderFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, order := range s.collect(filter) {
		total += int64(order.TotalPrice)
	}
	return total, nil
}
