package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/yemak/internal/models"
)

// Correlated subqueries used for sorting and earnings; totals live on the
// items, never on the orders table.
const (
	sumPriceExpr = "(SELECT COALESCE(SUM(oi.total_price), 0) FROM order_items oi WHERE oi.order_id = orders.id)"
	sumItemsExpr = "(SELECT COALESCE(SUM(oi.quantity), 0) FROM order_items oi WHERE oi.order_id = orders.id)"
)

// Gorm implements OrderStore on a gorm/postgres database.
type Gorm struct {
	db *gorm.DB
}

// NewGorm constructs a Gorm order store.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) scope(ctx context.Context, filter OrderFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Order{}).Where("orders.is_deleted = ?", false)
	if filter.ID != uuid.Nil {
		q = q.Where("orders.id = ?", filter.ID)
	}
	if filter.UserID != uuid.Nil {
		q = q.Where("orders.user_id = ?", filter.UserID)
	}
	if filter.CourierID != uuid.Nil {
		q = q.Where("orders.courier_id = ?", filter.CourierID)
	}
	if filter.BranchID != uuid.Nil {
		q = q.Where("orders.branch_id = ?", filter.BranchID)
	}
	if filter.RestaurantID != uuid.Nil {
		q = q.Where("orders.restaurant_id = ?", filter.RestaurantID)
	}
	if filter.Status != "" {
		q = q.Where("orders.order_status = ?", filter.Status)
	}
	if filter.CreatedAfter != nil {
		q = q.Where("orders.created_at >= ?", *filter.CreatedAfter)
	}
	return q
}

func orderClause(sort SortKey) string {
	switch sort {
	case SortPriceHighToLow:
		return sumPriceExpr + " DESC"
	case SortPriceLowToHigh:
		return sumPriceExpr + " ASC"
	case SortQuantityHighToLow:
		return sumItemsExpr + " DESC"
	case SortQuantityLowToHigh:
		return sumItemsExpr + " ASC"
	default:
		return "orders.created_at ASC"
	}
}

// Create persists a new order together with its items.
func (s *Gorm) Create(ctx context.Context, order *models.Order) error {
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return err
	}
	order.ComputeTotals()
	return nil
}

// Get returns one order by id with items loaded and totals computed.
func (s *Gorm) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items").
		First(&order, "id = ? AND is_deleted = ?", id, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	order.ComputeTotals()
	return &order, nil
}

// Find returns one page of matching orders plus the whole-set count.
func (s *Gorm) Find(ctx context.Context, filter OrderFilter, page, pageSize int) ([]models.Order, int64, error) {
	var total int64
	if err := s.scope(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}

	var orders []models.Order
	err := s.scope(ctx, filter).Preload("Items").
		Order(orderClause(filter.Sort)).
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	for i := range orders {
		orders[i].ComputeTotals()
	}
	return orders, total, nil
}

// First returns the oldest matching order.
func (s *Gorm) First(ctx context.Context, filter OrderFilter) (*models.Order, error) {
	var order models.Order
	err := s.scope(ctx, filter).Preload("Items").
		Order("orders.created_at ASC").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	order.ComputeTotals()
	return &order, nil
}

// Transition moves the oldest order matching filter from one status to
// another with a per-row conditional update.
func (s *Gorm) Transition(ctx context.Context, filter OrderFilter, from, to models.OrderStatus) (*models.Order, error) {
	filter.Status = from
	candidate, err := s.First(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Conditional update: a concurrent winner already moved the row away
	// from the source status, so the loser updates zero rows.
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND order_status = ?", candidate.ID, from).
		Update("order_status", to)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.Get(ctx, candidate.ID)
}

// AssignCourier sets the courier on an order still pending a courier.
func (s *Gorm) AssignCourier(ctx context.Context, id, courierID uuid.UUID) (*models.Order, error) {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND order_status = ? AND is_deleted = ?", id, models.StatusPendingCourier, false).
		Update("courier_id", courierID)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// CountByStatus counts matching orders per status in a single grouped pass.
func (s *Gorm) CountByStatus(ctx context.Context, filter OrderFilter) (map[models.OrderStatus]int64, error) {
	filter.Status = ""
	filter.Sort = SortDefault

	var rows []struct {
		OrderStatus models.OrderStatus
		Count       int64
	}
	err := s.scope(ctx, filter).
		Select("order_status, COUNT(*) AS count").
		Group("order_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.OrderStatus] = row.Count
	}
	return counts, nil
}

// SumTotalPrice sums the derived total price over matching orders.
func (s *Gorm) SumTotalPrice(ctx context.Context, filter OrderFilter) (int64, error) {
	filter.Sort = SortDefault
	sub := s.scope(ctx, filter).Select("orders.id")

	var total int64
	err := s.db.WithContext(ctx).Model(&models.OrderItem{}).
		Where("order_id IN (?)", sub).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&total).Error
	return total, err
}
