package services

import (
	"errors"
	"log"
	"math"
	"time"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/mailer"
	"storefront/pkg/payment"

	"github.com/google/uuid"
)

// CheckoutService converts a user's open cart into a paid order. The flow is
// a saga with two local transactions straddling the external charge:
//
//	Phase 1: one transaction that prices the cart, detaches it from the
//	         user, verifies stock and creates a pending order.
//	Phase 2: the external charge, which no transaction can cover.
//	Phase 3: a second transaction that decrements stock, appends
//	         sold-product entries, finalizes the order and closes the cart.
//
// A failure between phases leaves the pending order visible for
// reconciliation instead of guessing at the charge's outcome.
type CheckoutService struct {
	store    repositories.CheckoutStore
	gateway  payment.Gateway
	mailer   mailer.Mailer
	currency string
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(store repositories.CheckoutStore, gateway payment.Gateway, m mailer.Mailer, currency string) *CheckoutService {
	return &CheckoutService{
		store:    store,
		gateway:  gateway,
		mailer:   m,
		currency: currency,
	}
}

// CheckoutRequest is the client's checkout input.
type CheckoutRequest struct {
	Address      models.Address `json:"address" validate:"required"`
	Tel          string         `json:"tel" validate:"required"`
	PaymentToken string         `json:"payment_token" validate:"required"`
}

// CheckoutResult is the successful checkout response.
type CheckoutResult struct {
	Order         *models.Order `json:"order"`
	ReceiptMailed bool          `json:"receipt_mailed"`
}

// Checkout runs the full checkout saga for the user's open cart.
func (s *CheckoutService) Checkout(userID string, req CheckoutRequest) (*CheckoutResult, error) {
	if req.PaymentToken == "" {
		return nil, apperrors.InvalidRequest("payment token not found")
	}

	var (
		order     *models.Order
		cartItems []models.CartItem
		userEmail string
	)

	// Phase 1: price and reserve. Detaching the cart inside this
	// transaction is what makes a second checkout of the same cart fail
	// with an empty cart.
	err := s.store.Transaction(func(tx repositories.CheckoutStore) error {
		user, err := tx.UserByID(userID)
		if err != nil {
			return apperrors.NotFound("user not found")
		}
		userEmail = user.Email
		if user.CartID == "" {
			return apperrors.InvalidRequest("cart empty")
		}
		cartID := user.CartID

		cartItems, err = tx.OpenCartItems(cartID)
		if err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return apperrors.InvalidRequest("cart empty")
		}

		if err := tx.DetachCart(userID); err != nil {
			return err
		}

		productIDs := make([]string, 0, len(cartItems))
		for _, item := range cartItems {
			productIDs = append(productIDs, item.ProductID)
		}
		products, err := tx.ProductsForUpdate(productIDs)
		if err != nil {
			return err
		}
		available := make(map[string]int, len(products))
		for _, p := range products {
			available[p.ID] = p.Quantity
		}

		var total float64
		for _, item := range cartItems {
			quantity, ok := available[item.ProductID]
			if !ok || quantity-item.Quantity < 0 {
				return apperrors.Conflict("item no longer available")
			}
			// The price snapshot taken at add-to-cart time is what
			// the user is charged, not the current product price.
			total += item.Price * float64(item.Quantity)
		}
		totalMinor := int64(math.Round(total * 100))

		order = &models.Order{
			ID:            uuid.New().String(),
			UserID:        userID,
			Address:       req.Address,
			Tel:           req.Tel,
			CartID:        cartID,
			TotalPrice:    totalMinor,
			TransactionID: models.TransactionIDSentinel,
			PaymentStatus: models.PaymentPending,
			OrderStatus:   models.OrderCreated,
			OrderedAt:     time.Now(),
		}
		return tx.CreateOrder(order)
	})
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindUnknown {
			return nil, err
		}
		return nil, apperrors.Internal("could not reserve cart for checkout", err)
	}

	// Phase 2: the external charge. A fresh idempotency key plus the
	// order id in metadata ties a retried charge to this order without
	// ever charging it twice. A failure here leaves the order pending:
	// the charge's true outcome may be unknown, so nothing is rolled
	// back and nothing is retried.
	charge, err := s.gateway.Charge(
		order.TotalPrice,
		s.currency,
		req.PaymentToken,
		uuid.New().String(),
		map[string]string{"order_id": order.ID},
	)
	if err != nil {
		log.Printf("Charge failed for order %s: %v", order.ID, err)
		return nil, apperrors.PaymentRequired("payment failed", err)
	}
	if !charge.Paid {
		log.Printf("Charge not paid for order %s (charge %s)", order.ID, charge.ID)
		return nil, apperrors.PaymentRequired("payment was declined", nil)
	}

	// Phase 3: settle. The charge succeeded, so any failure past this
	// point must keep the order visible for reconciliation; it is never
	// dropped and the charge is never re-attempted.
	err = s.store.Transaction(func(tx repositories.CheckoutStore) error {
		for _, item := range cartItems {
			if err := tx.DecrementQuantity(item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, repositories.ErrInsufficientStock) {
					// Phase 1 verified this stock under lock. Reaching
					// here means the stores disagree with the
					// reservation; operators have to reconcile the
					// paid order by hand.
					log.Printf("RECONCILE: reserved stock missing at settlement, order %s product %s", order.ID, item.ProductID)
				}
				return err
			}
			if err := tx.AppendSoldProduct(&models.SoldProduct{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				OrderedAt: order.OrderedAt,
			}); err != nil {
				return err
			}
		}
		if err := tx.SettleOrder(order.ID, charge.ID, charge.ReceiptURL); err != nil {
			return err
		}
		return tx.CloseCart(order.CartID)
	})
	if err != nil {
		log.Printf("RECONCILE: settlement failed after successful charge %s for order %s: %v", charge.ID, order.ID, err)
		return nil, apperrors.Internal("order settlement failed", err)
	}

	settled, err := s.store.OrderByID(order.ID)
	if err != nil {
		return nil, apperrors.Internal("could not reload settled order", err)
	}

	receiptMailed := true
	if err := s.mailer.Send(userEmail, mailer.TemplateOrderReceipt, map[string]string{
		"order_id":    settled.ID,
		"receipt_url": settled.ReceiptURL,
	}); err != nil {
		log.Printf("Warning: receipt mail failed for order %s: %v", settled.ID, err)
		receiptMailed = false
	}

	return &CheckoutResult{Order: settled, ReceiptMailed: receiptMailed}, nil
}
