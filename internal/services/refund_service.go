package services

import (
	"errors"
	"log"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/mailer"
	"storefront/pkg/payment"
)

// RefundService reverses a settled order: one local transaction flips the
// order to cancelled/refund_started, restores inventory and records a
// Refund row, then the external refund is issued outside any transaction.
// If the gateway call fails the order stays in refund_started, an
// observable inconsistency left for reconciliation.
type RefundService struct {
	store   repositories.CheckoutStore
	gateway payment.Gateway
	mailer  mailer.Mailer
}

// NewRefundService creates a new RefundService.
func NewRefundService(store repositories.CheckoutStore, gateway payment.Gateway, m mailer.Mailer) *RefundService {
	return &RefundService{
		store:   store,
		gateway: gateway,
		mailer:  m,
	}
}

// CancelResult is the successful cancellation response.
type CancelResult struct {
	CancellationEmailSent bool `json:"cancellation_email_sent"`
}

// Cancel cancels a received, successfully-paid order belonging to the user.
func (s *RefundService) Cancel(userID, orderID string) (*CancelResult, error) {
	order, err := s.store.OrderByID(orderID)
	if err != nil {
		return nil, apperrors.NotFound("order not found")
	}
	if order.UserID != userID {
		return nil, apperrors.Forbidden("order does not belong to user")
	}
	if order.OrderStatus != models.OrderReceived || order.PaymentStatus != models.PaymentSuccessful {
		return nil, apperrors.Forbidden("order cannot be cancelled in its current state")
	}

	refund := &models.Refund{
		TransactionID: order.TransactionID,
		OrderID:       order.ID,
		UserID:        order.UserID,
	}
	err = s.store.Transaction(func(tx repositories.CheckoutStore) error {
		if err := tx.MarkOrderCancelled(order.ID); err != nil {
			return err
		}
		items, err := tx.CartItems(order.CartID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := tx.IncrementQuantity(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return tx.CreateRefund(refund)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotCancellable) {
			// Lost a race with another cancel or a status change.
			return nil, apperrors.Forbidden("order cannot be cancelled in its current state")
		}
		return nil, apperrors.Internal("could not cancel order", err)
	}

	// External refund, outside the transaction. Refund issuance is
	// idempotent per transaction id, so reconciliation may retry it.
	gwRefund, err := s.gateway.Refund(order.TransactionID, map[string]string{"order_id": order.ID})
	if err != nil {
		log.Printf("RECONCILE: refund failed for order %s (transaction %s): %v", order.ID, order.TransactionID, err)
		return nil, apperrors.Internal("refund could not be issued", err)
	}

	// Backfilling the gateway's refund reference is best-effort metadata.
	if err := s.store.SetRefundID(refund.ID, gwRefund.ID); err != nil {
		log.Printf("Warning: could not record refund id %s for order %s: %v", gwRefund.ID, order.ID, err)
	}

	emailSent := true
	user, err := s.store.UserByID(order.UserID)
	if err != nil {
		emailSent = false
	} else if err := s.mailer.Send(user.Email, mailer.TemplateOrderCancelled, map[string]string{
		"order_id": order.ID,
	}); err != nil {
		log.Printf("Warning: cancellation mail failed for order %s: %v", order.ID, err)
		emailSent = false
	}

	return &CancelResult{CancellationEmailSent: emailSent}, nil
}
