// Package notify composes and dispatches order notification emails.
package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"backend/internal/mailer"
	"backend/internal/models"
)

// Config holds the delivery settings for order notifications.
type Config struct {
	// To is the operator address every order summary goes to.
	To   string
	From string
	// CustomerCopy also sends the summary to the customer's own address.
	CustomerCopy bool
	// Timeout bounds one delivery attempt.
	Timeout time.Duration
}

// OrderNotifier sends a human-readable summary of a freshly persisted order.
// Construct one at startup and share it; Dispatch is best-effort and its
// failure never reaches the request path.
type OrderNotifier struct {
	sender  mailer.Sender
	cfg     Config
	onError func(error)
}

func NewOrderNotifier(sender mailer.Sender, cfg Config) *OrderNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &OrderNotifier{
		sender: sender,
		cfg:    cfg,
		onError: func(err error) {
			log.Println("[NOTIFY] [ERROR] order notification failed:", err)
		},
	}
}

// OnError replaces the failure hook. Dispatch failures are reported there and
// nowhere else.
func (n *OrderNotifier) OnError(hook func(error)) {
	n.onError = hook
}

// Dispatch sends the summary on a background goroutine with its own deadline.
// The caller gets no completion signal.
func (n *OrderNotifier) Dispatch(order models.Order, user models.User) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.cfg.Timeout)
		defer cancel()

		if err := n.Notify(ctx, order, user); err != nil {
			n.onError(err)
		}
	}()
}

// Notify renders the summary and blocks until it is delivered or fails.
func (n *OrderNotifier) Notify(ctx context.Context, order models.Order, user models.User) error {
	if n.cfg.To == "" {
		return fmt.Errorf("notify: no operator recipient configured")
	}

	text, html, err := renderSummary(order, user)
	if err != nil {
		return err
	}

	to := []string{n.cfg.To}
	if n.cfg.CustomerCopy && user.Email != "" {
		to = append(to, user.Email)
	}

	return n.sender.Send(ctx, mailer.Message{
		To:      to,
		From:    n.cfg.From,
		Subject: "New Order Received",
		Text:    text,
		HTML:    html,
	})
}
