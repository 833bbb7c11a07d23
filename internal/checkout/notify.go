package checkout

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/nukesul/boody/config"
	"github.com/nukesul/boody/internal/domain"
	"github.com/nukesul/boody/internal/pricing"
)

// Mailer sends an order confirmation to the shop mailbox. It is a bus
// subscriber; checkout never blocks on it.
type Mailer struct {
	cfg config.SmtpConfig
}

func NewMailer(cfg config.SmtpConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// OnOrderPlaced is subscribed to TopicOrderPlaced.
func (m *Mailer) OnOrderPlaced(order *domain.Order) {
	if !m.cfg.Enabled {
		return
	}
	go func() {
		if err := m.send(order); err != nil {
			zap.L().Error("order confirmation mail failed",
				zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}()
}

func (m *Mailer) send(order *domain.Order) error {
	var body strings.Builder
	fmt.Fprintf(&body, "Order %d (%s)\n\n", order.ID, order.DeliveryOption)
	for _, item := range order.Items {
		name := item.ProductName
		if item.Size != domain.SizeNone {
			name = fmt.Sprintf("%s (%s)", name, item.Size)
		}
		fmt.Fprintf(&body, "%d x %s @ %s\n", item.Quantity, name,
			pricing.FormatPrice(item.UnitPrice))
	}
	fmt.Fprintf(&body, "\nSubtotal: %s\n", pricing.FormatPrice(order.Subtotal))
	if order.PromoCode != "" {
		fmt.Fprintf(&body, "Promo %s: -%.0f%%\n", order.PromoCode, order.PromoPercent)
	}
	if !order.DeliveryCost.IsZero() {
		fmt.Fprintf(&body, "Delivery: %s\n", pricing.FormatPrice(order.DeliveryCost))
	}
	fmt.Fprintf(&body, "Total: %s\n", pricing.FormatPrice(order.Total))

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.From)
	msg.SetHeader("Subject", fmt.Sprintf("New order %d", order.ID))
	msg.SetBody("text/plain", body.String())

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	return dialer.DialAndSend(msg)
}
