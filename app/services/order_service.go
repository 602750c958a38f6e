package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/saydalia/saydalia/app/models"
	"github.com/saydalia/saydalia/app/repositories"
	"github.com/saydalia/saydalia/pkg/apperr"
	"github.com/saydalia/saydalia/pkg/event"
	"github.com/saydalia/saydalia/pkg/logger"
	"github.com/saydalia/saydalia/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgOrderNotFound = "لم يتم العثور على الطلب"
	msgInvalidStatus = "حالة الطلب غير صالحة"
	msgForbidden     = "غير مصرح لك بهذا الإجراء"
)

// statusMessages maps an order status to the Arabic message pushed to the
// person who placed the order.
var statusMessages = map[string]string{
	models.OrderPending:   "طلبك قيد الانتظار",
	models.OrderAccepted:  "تم قبول طلبك",
	models.OrderRejected:  "تم رفض طلبك",
	models.OrderCompleted: "تم إكمال طلبك",
}

type OrderService struct {
	orders        repositories.OrderRepository
	pharmacies    repositories.PharmacyRepository
	notifications *NotificationService
}

func NewOrderService(orders repositories.OrderRepository, pharmacies repositories.PharmacyRepository, notifications *NotificationService) *OrderService {
	return &OrderService{orders: orders, pharmacies: pharmacies, notifications: notifications}
}

// OrderInput carries the order placement payload.
type OrderInput struct {
	Pharmacy     string `json:"pharmacyId" validate:"required"`
	MedicineName string `json:"medicineName" validate:"required"`
	Quantity     int    `json:"quantity" validate:"nullable,gte=1"`
	Address      string `json:"address" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	Notes        string `json:"notes"`
}

// Create places an order against an existing pharmacy. The order starts
// pending; the pharmacy admin gets a notification. The notification is
// best effort: a failed write is logged, never rolled into the response.
func (s *OrderService) Create(ctx context.Context, userID primitive.ObjectID, in OrderInput) (models.Order, error) {
	if in.MedicineName == "" || in.Pharmacy == "" ||
		strings.TrimSpace(in.Address) == "" || strings.TrimSpace(in.Phone) == "" {
		return models.Order{}, apperr.NewValidation(msgMissingFields)
	}
	pharmacyID, err := primitive.ObjectIDFromHex(in.Pharmacy)
	if err != nil {
		return models.Order{}, apperr.NewNotFound(msgPharmacyNotFound)
	}

	pharmacy, err := s.pharmacies.FindByID(ctx, pharmacyID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Order{}, apperr.NewNotFound(msgPharmacyNotFound)
		}
		return models.Order{}, apperr.NewInternal(err)
	}

	if in.Quantity <= 0 {
		in.Quantity = 1
	}

	order := models.Order{
		User:         userID,
		Pharmacy:     pharmacy.ID,
		MedicineName: in.MedicineName,
		Quantity:     in.Quantity,
		Status:       models.OrderPending,
		Address:      in.Address,
		Phone:        in.Phone,
		Notes:        in.Notes,
	}
	if err := s.orders.Create(ctx, &order); err != nil {
		return models.Order{}, apperr.NewInternal(err)
	}
	metrics.OrderCreated()

	if err := s.notifications.Notify(ctx, pharmacy.Admin, &order.ID,
		models.NotificationNewOrder,
		"طلب جديد",
		fmt.Sprintf("لديك طلب جديد: %s (الكمية %d)", order.MedicineName, order.Quantity),
	); err != nil {
		logger.Error("order create: admin notification failed", "order", order.ID.Hex(), "error", err)
	}
	event.FireAsync(event.OrderCreated, order)

	return order, nil
}

// UpdateStatus changes an order's status. Only the admin who owns the
// pharmacy the order targets may change it; any valid status can follow
// any other, so an admin can correct a wrong click.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, actor models.User, status string) (models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return models.Order{}, apperr.NewValidation(msgInvalidStatus)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Order{}, apperr.NewNotFound(msgOrderNotFound)
		}
		return models.Order{}, apperr.NewInternal(err)
	}

	if !s.ownsOrderPharmacy(ctx, actor, order.Pharmacy) {
		return models.Order{}, apperr.NewForbidden(msgForbidden)
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Order{}, apperr.NewNotFound(msgOrderNotFound)
		}
		return models.Order{}, apperr.NewInternal(err)
	}
	metrics.OrderStatusChanged(status)

	if err := s.notifications.Notify(ctx, updated.User, &updated.ID,
		models.NotificationStatusChange,
		"تحديث حالة الطلب",
		statusMessages[status],
	); err != nil {
		logger.Error("order status: user notification failed", "order", updated.ID.Hex(), "error", err)
	}
	event.FireAsync(event.OrderStatusChanged, updated)

	return updated, nil
}

// Get returns one order. The person who placed it may read it, and so may
// any admin; everyone else gets 403.
func (s *OrderService) Get(ctx context.Context, orderID primitive.ObjectID, actor models.User) (models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Order{}, apperr.NewNotFound(msgOrderNotFound)
		}
		return models.Order{}, apperr.NewInternal(err)
	}

	if order.User != actor.ID && !actor.IsAdmin() {
		return models.Order{}, apperr.NewForbidden(msgForbidden)
	}
	return order, nil
}

// ListForActor returns the actor's order history: own orders for a
// customer, the pharmacy's incoming orders for an admin. Newest first.
func (s *OrderService) ListForActor(ctx context.Context, actor models.User) ([]models.Order, error) {
	if actor.IsAdmin() {
		pharmacy, err := s.pharmacies.FindByAdmin(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return []models.Order{}, nil
			}
			return nil, apperr.NewInternal(err)
		}
		out, err := s.orders.ListByPharmacy(ctx, pharmacy.ID)
		if err != nil {
			return nil, apperr.NewInternal(err)
		}
		return out, nil
	}

	out, err := s.orders.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, apperr.NewInternal(err)
	}
	return out, nil
}

// ListForPharmacy returns one pharmacy's orders for its owner admin.
func (s *OrderService) ListForPharmacy(ctx context.Context, pharmacyID primitive.ObjectID, actor models.User) ([]models.Order, error) {
	if !s.ownsOrderPharmacy(ctx, actor, pharmacyID) {
		return nil, apperr.NewForbidden(msgForbidden)
	}
	out, err := s.orders.ListByPharmacy(ctx, pharmacyID)
	if err != nil {
		return nil, apperr.NewInternal(err)
	}
	return out, nil
}

func (s *OrderService) ownsOrderPharmacy(ctx context.Context, actor models.User, pharmacyID primitive.ObjectID) bool {
	if !actor.IsAdmin() {
		return false
	}
	pharmacy, err := s.pharmacies.FindByID(ctx, pharmacyID)
	if err != nil {
		return false
	}
	return pharmacy.OwnedBy(actor.ID)
}
