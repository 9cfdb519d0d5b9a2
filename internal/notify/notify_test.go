package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"backend/internal/mailer"
	"backend/internal/models"
)

func sampleOrder() (models.Order, models.User) {
	user := models.User{Name: "Jane", Email: "jane@example.com"}
	order := models.Order{
		Customer: models.OrderCustomer{
			Name:    user.Name,
			Email:   user.Email,
			Phone:   "555-0100",
			Address: "12 Main St",
		},
		Items: []models.OrderItem{
			{Name: "Mug", Price: 10, Qty: 2, Image: "https://cdn.example.com/mug.png"},
		},
		Total:  20,
		Status: models.OrderStatusPending,
	}
	return order, user
}

func TestNotify_RendersSummary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	order, user := sampleOrder()

	var sent mailer.Message
	sender := mailer.NewMockSender(ctrl)
	sender.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg mailer.Message) error {
			sent = msg
			return nil
		})

	n := NewOrderNotifier(sender, Config{To: "owner@example.com", From: "shop@example.com"})
	if err := n.Notify(context.Background(), order, user); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}

	if len(sent.To) != 1 || sent.To[0] != "owner@example.com" {
		t.Fatalf("expected one operator recipient, got %v", sent.To)
	}
	if sent.Subject != "New Order Received" {
		t.Fatalf("unexpected subject %q", sent.Subject)
	}
	for _, want := range []string{"Jane", "jane@example.com", "Mug x2", "$20.00"} {
		if !strings.Contains(sent.Text, want) {
			t.Errorf("text body missing %q:\n%s", want, sent.Text)
		}
	}
	if !strings.Contains(sent.HTML, "<h2>New Order</h2>") {
		t.Errorf("html body missing heading:\n%s", sent.HTML)
	}
}

func TestNotify_CustomerCopyAddsRecipient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	order, user := sampleOrder()

	var sent mailer.Message
	sender := mailer.NewMockSender(ctrl)
	sender.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg mailer.Message) error {
			sent = msg
			return nil
		})

	n := NewOrderNotifier(sender, Config{To: "owner@example.com", From: "shop@example.com", CustomerCopy: true})
	if err := n.Notify(context.Background(), order, user); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}

	if len(sent.To) != 2 || sent.To[1] != "jane@example.com" {
		t.Fatalf("expected customer copy recipient, got %v", sent.To)
	}
}

func TestNotify_RequiresOperatorRecipient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	order, user := sampleOrder()
	sender := mailer.NewMockSender(ctrl)

	n := NewOrderNotifier(sender, Config{From: "shop@example.com"})
	if err := n.Notify(context.Background(), order, user); err == nil {
		t.Fatal("expected error with no operator recipient configured")
	}
}

func TestDispatch_ReportsFailureThroughHook(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	order, user := sampleOrder()

	sender := mailer.NewMockSender(ctrl)
	sender.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		Return(errors.New("smtp down"))

	n := NewOrderNotifier(sender, Config{To: "owner@example.com", From: "shop@example.com"})

	failures := make(chan error, 1)
	n.OnError(func(err error) { failures <- err })

	n.Dispatch(order, user)

	select {
	case err := <-failures:
		if !strings.Contains(err.Error(), "smtp down") {
			t.Fatalf("unexpected failure: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("failure hook was never called")
	}
}
