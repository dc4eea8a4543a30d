// Package services carries the order lifecycle engine and the statistics
// aggregator. Both work against the store.OrderStore contract and stay free
// of persistence and transport concerns.
package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/example/yemak/internal/models"
	"github.com/example/yemak/internal/store"
)

var (
	// ErrForbidden means the actor's role may never perform the action.
	ErrForbidden = errors.New("role is not allowed to perform this action")

	// ErrNoMatchingOrder means no order satisfied the source-state and
	// ownership constraints. Absence, wrong owner and wrong state are
	// indistinguishable on purpose.
	ErrNoMatchingOrder = errors.New("no matching order for this actor")

	// ErrUnknownAction means the action is not in the policy table.
	ErrUnknownAction = errors.New("unknown action")
)

// Actor is the authenticated identity a request is evaluated against. The
// auth layer is trusted; no credentials are re-verified here.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

// Action identifies a lifecycle operation an actor can request.
type Action string

const (
	ActionCourierAccept  Action = "courier_accept"
	ActionConfirmOrder   Action = "confirm_order"
	ActionMarkDelivering Action = "mark_delivering"
	ActionMarkDelivered  Action = "mark_delivered"
	ActionCancelOrder    Action = "cancel_order"
)

// transitionRule is one row of the policy table: the legal move through the
// status graph and the roles that may request it.
type transitionRule struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Roles []models.Role
}

func (r transitionRule) allows(role models.Role) bool {
	for _, allowed := range r.Roles {
		if role == allowed {
			return true
		}
	}
	return false
}

// transitionRules is the single policy table consulted for every status
// change; there are no per-endpoint role checks anywhere else.
var transitionRules = map[Action]transitionRule{
	ActionCourierAccept: {
		From:  models.StatusPendingCourier,
		To:    models.StatusPendingRestaurant,
		Roles: []models.Role{models.RoleCourier},
	},
	ActionConfirmOrder: {
		From:  models.StatusPendingRestaurant,
		To:    models.StatusConfirmedRestaurant,
		Roles: []models.Role{models.RoleBranch, models.RoleRestaurant},
	},
	ActionMarkDelivering: {
		From:  models.StatusConfirmedRestaurant,
		To:    models.StatusDelivering,
		Roles: []models.Role{models.RoleCourier},
	},
	ActionMarkDelivered: {
		From:  models.StatusDelivering,
		To:    models.StatusDelivered,
		Roles: []models.Role{models.RoleCourier},
	},
	ActionCancelOrder: {
		From:  models.StatusPendingCourier,
		To:    models.StatusCancelled,
		Roles: []models.Role{models.RoleUser},
	},
}

// TransitionService validates and applies order status changes.
type TransitionService struct {
	orders store.OrderStore
}

// NewTransitionService constructs a TransitionService.
func NewTransitionService(orders store.OrderStore) *TransitionService {
	return &TransitionService{orders: orders}
}

// Apply runs action for actor against the orders selected by scope. The
// scope carries only ownership constraints; Apply adds the source state
// from the policy table and mutates the oldest matching order.
func (s *TransitionService) Apply(ctx context.Context, actor Actor, action Action, scope store.OrderFilter) (*models.Order, error) {
	rule, ok := transitionRules[action]
	if !ok {
		return nil, ErrUnknownAction
	}
	if !rule.allows(actor.Role) {
		return nil, ErrForbidden
	}

	order, err := s.orders.Transition(ctx, scope, rule.From, rule.To)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoMatchingOrder
	}
	return order, err
}

// CourierAccept moves the courier's oldest pending order on to the
// restaurant queue.
func (s *TransitionService) CourierAccept(ctx context.Context, actor Actor) (*models.Order, error) {
	return s.Apply(ctx, actor, ActionCourierAccept, store.OrderFilter{CourierID: actor.ID})
}

// ConfirmOrder confirms a specific order visible to the given branch.
func (s *TransitionService) ConfirmOrder(ctx context.Context, actor Actor, branchID, orderID uuid.UUID) (*models.Order, error) {
	return s.Apply(ctx, actor, ActionConfirmOrder, store.OrderFilter{ID: orderID, BranchID: branchID})
}

// MarkDelivering moves the courier's oldest confirmed order into delivery.
func (s *TransitionService) MarkDelivering(ctx context.Context, actor Actor) (*models.Order, error) {
	return s.Apply(ctx, actor, ActionMarkDelivering, store.OrderFilter{CourierID: actor.ID})
}

// MarkDelivered completes the courier's order currently being delivered.
func (s *TransitionService) MarkDelivered(ctx context.Context, actor Actor) (*models.Order, error) {
	return s.Apply(ctx, actor, ActionMarkDelivered, store.OrderFilter{CourierID: actor.ID})
}

// CancelOrder cancels the actor's own order while no courier has accepted
// it yet.
func (s *TransitionService) CancelOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	return s.Apply(ctx, actor, ActionCancelOrder, store.OrderFilter{ID: orderID, UserID: actor.ID})
}
