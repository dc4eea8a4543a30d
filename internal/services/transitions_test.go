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

func newOrder(t *testing.T, s *store.Memory, status models.OrderStatus, createdAt time.Time, mutate func(*models.Order)) *models.Order {
	t.Helper()

	order := &models.Order{UserID: uuid.New(), Status: status}
	order.CreatedAt = createdAt
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, s.Create(context.Background(), order))
	return order
}

func withCourier(courierID uuid.UUID) func(*models.Order) {
	return func(o *models.Order) {
		id := courierID
		o.CourierID = &id
	}
}

func TestApplyRejectsWrongRole(t *testing.T) {
	s := store.NewMemory()
	svc := NewTransitionService(s)
	ctx := context.Background()

	cases := []struct {
		name   string
		role   models.Role
		action Action
	}{
		{"user cannot accept deliveries", models.RoleUser, ActionCourierAccept},
		{"courier cannot confirm orders", models.RoleCourier, ActionConfirmOrder},
		{"branch cannot mark delivering", models.RoleBranch, ActionMarkDelivering},
		{"admin cannot mark delivered", models.RoleAdmin, ActionMarkDelivered},
		{"courier cannot cancel", models.RoleCourier, ActionCancelOrder},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			actor := Actor{ID: uuid.New(), Role: tc.role}
			_, err := svc.Apply(ctx, actor, tc.action, store.OrderFilter{})
			assert.ErrorIs(t, err, ErrForbidden)
		})
	}
}

func TestApplyUnknownAction(t *testing.T) {
	svc := NewTransitionService(store.NewMemory())
	actor := Actor{ID: uuid.New(), Role: models.RoleAdmin}

	_, err := svc.Apply(context.Background(), actor, Action("teleport"), store.OrderFilter{})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestCourierAcceptMovesOldestPendingOrder(t *testing.T) {
	s := store.NewMemory()
	svc := NewTransitionService(s)
	ctx := context.Background()

	courier := Actor{ID: uuid.New(), Role: models.RoleCourier}
	base := time.Now()

	newer := newOrder(t, s, models.StatusPendingCourier, base.Add(time.Minute), withCourier(courier.ID))
	older := newOrder(t, s, models.StatusPendingCourier, base, withCourier(courier.ID))

	order, err := svc.CourierAccept(ctx, courier)
	require.NoError(t, err)
	assert.Equal(t, older.ID, order.ID)
	assert.Equal(t, models.StatusPendingRestaurant, order.Status)

	got, err := s.Get(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingCourier, got.Status)
}

func TestCourierAcceptIgnoresOtherCouriersOrders(t *testing.T) {
	s := store.NewMemory()
	svc := NewTransitionService(s)

	courier := Actor{ID: uuid.New(), Role: models.RoleCourier}
	newOrder(t, s, models.StatusPendingCourier, time.Now(), withCourier(uuid.New()))

	_, err := svc.CourierAccept(context.Background(), courier)
	assert.ErrorIs(t, err, ErrNoMatchingOrder)
}

func TestMarkDeliveringRequiresConfirmedState(t *testing.T) {
	s := store.NewMemory()
	svc := NewTransitionService(s)
	ctx := context.Background()

	courier := Actor{ID: uuid.New(), Role: models.RoleCourier}
	order := newOrder(t, s, models.StatusPendingCourier, time.Now(), withCourier(courier.ID))

	_, err := svc.MarkDelivering(ctx, courier)
	assert.ErrorIs(t, err, ErrNoMatchingOrder)

	// The failed attempt leaves the order where it was.
	got, err := s.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingCourier, got.Status)
}

func TestConfirmOrderScopedToBranch(t *testing.T) {
	s := store.NewMemory()
	svc := NewTransitionService(s)
	ctx := context.Background()

	branchID := uuid.New()
	manager := Actor{ID: uuid.New(), Role: models.RoleBranch}
	order := newOrder(t, s, models.StatusPendingRestaurant, time.Now(), func(o *models.Order) {
		id := branchID
		o.BranchID = &id
	})

	// Another branch cannot confirm it.
	_, err := svc.ConfirmOrder(ctx, manager, uuid.New(), order.ID)
	assert.ErrorIs(t, err, ErrNoMatchingOrder)

	confirmed, err := svc.ConfirmOrder(ctx, manager, branchID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmedRestaurant, confirmed.Status)
}

func TestCancelOrderOnlyOwnPendingOrder(t *testing.T) {
	s := store.NewMemory()
	svc := NewTransitionService(s)
	ctx := context.Background()

	owner := Actor{ID: uuid.New(), Role: models.RoleUser}
	order := newOrder(t, s, models.StatusPendingCourier, time.Now(), func(o *models.Order) {
		o.UserID = owner.ID
	})

	stranger := Actor{ID: uuid.New(), Role: models.RoleUser}
	_, err := svc.CancelOrder(ctx, stranger, order.ID)
	assert.ErrorIs(t, err, ErrNoMatchingOrder)

	cancelled, err := svc.CancelOrder(ctx, owner, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	// A cancelled order cannot be cancelled again.
	_, err = svc.CancelOrder(ctx, owner, order.ID)
	assert.ErrorIs(t, err, ErrNoMatchingOrder)
}

func TestCancelOrderRejectedAfterCourierAccepted(t *testing.T) {
	s := store.NewMemory()
	svc := NewTransitionService(s)
	ctx := context.Background()

	owner := Actor{ID: uuid.New(), Role: models.RoleUser}
	newOrder(t, s, models.StatusPendingRestaurant, time.Now(), func(o *models.Order) {
		o.UserID = owner.ID
	})

	orders, _, err := s.Find(ctx, store.OrderFilter{UserID: owner.ID}, 1, 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	_, err = svc.CancelOrder(ctx, owner, orders[0].ID)
	assert.ErrorIs(t, err, ErrNoMatchingOrder)
}

func TestFullLifecycle(t *testing.T) {
	s := store.NewMemory()
	svc := NewTransitionService(s)
	ctx := context.Background()

	branchID := uuid.New()
	courier := Actor{ID: uuid.New(), Role: models.RoleCourier}
	manager := Actor{ID: uuid.New(), Role: models.RoleBranch}

	order := newOrder(t, s, models.StatusPendingCourier, time.Now(), func(o *models.Order) {
		id := branchID
		o.BranchID = &id
		cid := courier.ID
		o.CourierID = &cid
	})

	accepted, err := svc.CourierAccept(ctx, courier)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingRestaurant, accepted.Status)

	confirmed, err := svc.ConfirmOrder(ctx, manager, branchID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmedRestaurant, confirmed.Status)

	delivering, err := svc.MarkDelivering(ctx, courier)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivering, delivering.Status)

	delivered, err := svc.MarkDelivered(ctx, courier)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, delivered.Status)

	// Delivered is a sink; nothing further matches.
	_, err = svc.MarkDelivered(ctx, courier)
	assert.ErrorIs(t, err, ErrNoMatchingOrder)
}
