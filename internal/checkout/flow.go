package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nukesul/boody/internal/cart"
	"github.com/nukesul/boody/internal/catalog"
	"github.com/nukesul/boody/internal/domain"
	"github.com/nukesul/boody/internal/pricing"
	"github.com/nukesul/boody/pkg/common"
	"github.com/nukesul/boody/pkg/metrics"
)

// TopicOrderPlaced is published on the app bus after a successful
// checkout, with the local *domain.Order as payload.
const TopicOrderPlaced = "order.placed"

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidDelivery   = errors.New("unknown delivery option")
	ErrInvalidTransition = errors.New("invalid checkout state transition")
)

// State is the checkout UI position for one session.
type State string

const (
	StateBrowsing     State = "browsing"
	StateCartOpen     State = "cart_open"
	StateCheckoutOpen State = "checkout_open"
	StateOrderPlaced  State = "order_placed"
)

// PromoChecker validates promo codes against the upstream API.
type PromoChecker interface {
	CheckPromoCode(ctx context.Context, code string) (*domain.PromoInfo, error)
}

// OrderSubmitter posts a finished order to the upstream API.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, order *catalog.OrderRequest) error
}

type sessionState struct {
	state          State
	promo          *domain.PromoInfo
	deliveryOption string
	touched        time.Time
}

// Totals is the aggregate view shown on the checkout screen.
type Totals struct {
	Subtotal     decimal.Decimal
	PromoCode    string
	PromoPercent float64
	DeliveryCost decimal.Decimal
	Total        decimal.Decimal
}

// Flow drives the checkout of one storefront: delivery selection,
// promo validation and order submission.
//
// Discount policy: catalog discounts are already inside each cart
// line's snapshot; the promo percentage is applied exactly once here,
// to the subtotal, before the delivery fee is added. The delivery fee
// is never discounted.
type Flow struct {
	cart      *cart.Store
	checker   PromoChecker
	submitter OrderSubmitter
	orders    OrderRepository
	bus       EventBus.Bus

	deliveryCost decimal.Decimal

	mu       sync.Mutex
	sessions map[string]*sessionState
}

func NewFlow(cartStore *cart.Store, checker PromoChecker, submitter OrderSubmitter,
	orders OrderRepository, bus EventBus.Bus, deliveryCost float64) *Flow {
	return &Flow{
		cart:         cartStore,
		checker:      checker,
		submitter:    submitter,
		orders:       orders,
		bus:          bus,
		deliveryCost: decimal.NewFromFloat(deliveryCost),
		sessions:     make(map[string]*sessionState),
	}
}

func (f *Flow) session(sessionID string) *sessionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.sessions[sessionID]
	if !ok {
		st = &sessionState{state: StateBrowsing, deliveryOption: domain.DeliveryOptionPickup}
		f.sessions[sessionID] = st
	}
	st.touched = time.Now()
	return st
}

func (f *Flow) SessionState(sessionID string) State {
	st := f.session(sessionID)
	f.mu.Lock()
	defer f.mu.Unlock()
	return st.state
}

// EvictSessions drops session state not touched since the cutoff and
// returns how many were removed. An evicted session restarts at
// Browsing on its next request; the cart rows themselves are swept
// separately.
func (f *Flow) EvictSessions(olderThan time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for sid, st := range f.sessions {
		if st.touched.Before(olderThan) {
			delete(f.sessions, sid)
			n++
		}
	}
	return n
}

// OpenCart moves to CartOpen. The cart can be opened from any state,
// including right after an order was placed.
func (f *Flow) OpenCart(sessionID string) error {
	st := f.session(sessionID)
	f.mu.Lock()
	defer f.mu.Unlock()
	st.state = StateCartOpen
	return nil
}

// OpenCheckout moves CartOpen -> CheckoutOpen.
func (f *Flow) OpenCheckout(sessionID string) error {
	st := f.session(sessionID)
	f.mu.Lock()
	defer f.mu.Unlock()
	if st.state != StateCartOpen {
		return ErrInvalidTransition
	}
	st.state = StateCheckoutOpen
	return nil
}

// Back navigates CheckoutOpen -> CartOpen. Cart contents and any
// entered promo code survive.
func (f *Flow) Back(sessionID string) error {
	st := f.session(sessionID)
	f.mu.Lock()
	defer f.mu.Unlock()
	if st.state != StateCheckoutOpen {
		return ErrInvalidTransition
	}
	st.state = StateCartOpen
	return nil
}

// ApplyPromoCode validates code upstream. On success the session's
// promo is replaced; on failure the prior promo and the cart are left
// exactly as they were and the error identifies the code as invalid.
func (f *Flow) ApplyPromoCode(ctx context.Context, sessionID, code string) (*domain.PromoInfo, error) {
	info, err := f.checker.CheckPromoCode(ctx, code)
	if err != nil {
		return nil, err
	}

	st := f.session(sessionID)
	f.mu.Lock()
	st.promo = info
	f.mu.Unlock()

	zap.L().Info("promo code applied",
		zap.String("session", sessionID),
		zap.String("code", info.Code),
		zap.Float64("percent", info.DiscountPercent))
	return info, nil
}

// Promo returns the currently applied promo, or nil.
func (f *Flow) Promo(sessionID string) *domain.PromoInfo {
	st := f.session(sessionID)
	f.mu.Lock()
	defer f.mu.Unlock()
	return st.promo
}

// SetDeliveryOption toggles pickup/delivery. The delivery cost is a
// configuration value, not computed.
func (f *Flow) SetDeliveryOption(sessionID, option string) error {
	if option != domain.DeliveryOptionPickup && option != domain.DeliveryOptionDelivery {
		return ErrInvalidDelivery
	}
	st := f.session(sessionID)
	f.mu.Lock()
	st.deliveryOption = option
	f.mu.Unlock()
	return nil
}

func (f *Flow) DeliveryOption(sessionID string) string {
	st := f.session(sessionID)
	f.mu.Lock()
	defer f.mu.Unlock()
	return st.deliveryOption
}

// Totals recomputes the aggregate from the snapshotted line prices.
func (f *Flow) Totals(ctx context.Context, sessionID string) (*Totals, error) {
	subtotal, err := f.cart.Subtotal(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	st := f.session(sessionID)
	f.mu.Lock()
	promo := st.promo
	option := st.deliveryOption
	f.mu.Unlock()

	t := &Totals{Subtotal: subtotal, DeliveryCost: decimal.Zero}

	discounted := subtotal
	if promo != nil {
		t.PromoCode = promo.Code
		t.PromoPercent = promo.DiscountPercent
		discounted = subtotal.
			Mul(decimal.NewFromInt(100).Sub(pricing.ClampPercent(promo.DiscountPercent))).
			Div(decimal.NewFromInt(100))
	}
	if option == domain.DeliveryOptionDelivery {
		t.DeliveryCost = f.deliveryCost
	}
	t.Total = discounted.Add(t.DeliveryCost)
	if t.Total.IsNegative() {
		t.Total = decimal.Zero
	}
	return t, nil
}

// PlaceOrder submits the cart as an order. An empty cart is rejected
// before any upstream call. On success the cart is cleared and the
// session's promo and delivery selections reset; on failure everything
// stays intact so the user can retry.
func (f *Flow) PlaceOrder(ctx context.Context, sessionID string) (*domain.Order, error) {
	lines, err := f.cart.Lines(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	totals, err := f.Totals(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	req := &catalog.OrderRequest{
		DeliveryOption: f.DeliveryOption(sessionID),
		PromoCode:      totals.PromoCode,
	}
	req.DeliveryCost, _ = totals.DeliveryCost.Float64()
	req.Total, _ = totals.Total.Float64()
	for _, line := range lines {
		unit, _ := line.FinalPrice.Float64()
		req.Items = append(req.Items, catalog.OrderRequestItem{
			ProductID: line.ProductID,
			Size:      string(line.Size),
			Quantity:  line.Quantity,
			UnitPrice: unit,
		})
	}

	if err := f.submitter.SubmitOrder(ctx, req); err != nil {
		metrics.IncrCounter("checkout_order_errors", 1)
		return nil, err
	}

	order := &domain.Order{
		ID:             common.UUIDint64(),
		SessionID:      sessionID,
		Status:         domain.OrderStatusSubmitted,
		DeliveryOption: req.DeliveryOption,
		DeliveryCost:   totals.DeliveryCost,
		PromoCode:      totals.PromoCode,
		PromoPercent:   totals.PromoPercent,
		Subtotal:       totals.Subtotal,
		Total:          totals.Total,
	}
	for _, line := range lines {
		order.Items = append(order.Items, domain.OrderItem{
			ID:          common.UUIDint64(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Size:        line.Size,
			Quantity:    line.Quantity,
			UnitPrice:   line.FinalPrice,
		})
	}
	if f.orders != nil {
		if err := f.orders.Save(ctx, order); err != nil {
			// the upstream accepted the order, keep going
			zap.L().Error("failed to persist local order copy", zap.Error(err))
		}
	}

	if err := f.cart.Clear(ctx, sessionID); err != nil {
		zap.L().Error("failed to clear cart after checkout", zap.Error(err))
	}

	st := f.session(sessionID)
	f.mu.Lock()
	st.promo = nil
	st.deliveryOption = domain.DeliveryOptionPickup
	st.state = StateOrderPlaced
	f.mu.Unlock()

	metrics.IncrCounter("checkout_orders", 1)
	if f.bus != nil {
		f.bus.Publish(TopicOrderPlaced, order)
	}

	zap.L().Info("order placed",
		zap.String("session", sessionID),
		zap.Int64("order_id", order.ID),
		zap.String("total", order.Total.StringFixed(2)))
	return order, nil
}
