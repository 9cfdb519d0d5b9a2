package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"backend/internal/models"
)

func TestCreateOrderValidation_ReportsFieldDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := `{"phone":"1","address":"x","items":[],"total":0}`

	req := httptest.NewRequest("POST", "/api/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	var parsed createOrderRequest
	err := c.ShouldBindJSON(&parsed)
	if err == nil {
		t.Fatal("expected a binding error")
	}
	respondValidationError(c, err)

	if w.Code != 400 {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	for _, want := range []string{
		"phone is too short (min 5)",
		"address is too short (min 5)",
		"items must not be empty",
	} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("response missing %q: %s", want, w.Body.String())
		}
	}
}

func TestNormalizeOrderItems_DefaultsQtyToOne(t *testing.T) {
	items, err := normalizeOrderItems([]createOrderItemRequest{
		{Name: "  Mug  ", Price: 10},
		{Name: "Poster", Price: 5, Qty: 3},
	})
	if err != nil {
		t.Fatalf("normalizeOrderItems returned error: %v", err)
	}
	if items[0].Name != "Mug" || items[0].Qty != 1 {
		t.Fatalf("expected trimmed name and qty 1, got %+v", items[0])
	}
	if items[1].Qty != 3 {
		t.Fatalf("expected qty 3, got %+v", items[1])
	}
}

func TestNormalizeOrderItems_RejectsBlankName(t *testing.T) {
	_, err := normalizeOrderItems([]createOrderItemRequest{{Name: "   ", Price: 1}})
	if err == nil {
		t.Fatal("expected error for blank item name")
	}
}

func TestValidateDeclaredTotal(t *testing.T) {
	if err := validateDeclaredTotal(0, 42.50); err != nil {
		t.Fatalf("zero declared total should pass: %v", err)
	}
	if err := validateDeclaredTotal(42.50, 42.50); err != nil {
		t.Fatalf("matching total should pass: %v", err)
	}
	if err := validateDeclaredTotal(40, 42.50); err == nil {
		t.Fatal("mismatched total should be rejected")
	}
}

func TestBuildOrder_BindsIdentityAndRecomputesTotal(t *testing.T) {
	user := models.User{Name: "Jane", Email: "jane@example.com"}
	req := createOrderRequest{
		Phone:   " 555-0100 ",
		Address: "12 Main St",
		Notes:   "leave at door",
	}
	items := []models.OrderItem{{Name: "Mug", Price: 10, Qty: 2}}

	order := buildOrder(user, req, items)

	if order.Customer.Name != "Jane" || order.Customer.Email != "jane@example.com" {
		t.Fatalf("customer identity must come from the user record, got %+v", order.Customer)
	}
	if order.Customer.Phone != "555-0100" {
		t.Fatalf("expected trimmed phone, got %q", order.Customer.Phone)
	}
	if order.Total != 20 {
		t.Fatalf("expected total 20, got %v", order.Total)
	}
	if order.Status != models.OrderStatusPending {
		t.Fatalf("expected pending status, got %q", order.Status)
	}
}

func TestAllowedOrderUpdate_FiltersUnknownFields(t *testing.T) {
	update, err := allowedOrderUpdate(map[string]interface{}{
		"status": "shipped",
		"price":  999,
		"total":  1,
	})
	if err != nil {
		t.Fatalf("allowedOrderUpdate returned error: %v", err)
	}
	if update["status"] != "shipped" {
		t.Fatalf("expected status shipped, got %+v", update)
	}
	if _, ok := update["price"]; ok {
		t.Fatal("price must not be updatable")
	}
	if _, ok := update["total"]; ok {
		t.Fatal("total must not be updatable")
	}
}

func TestAllowedOrderUpdate_MapsNotesToCustomer(t *testing.T) {
	update, err := allowedOrderUpdate(map[string]interface{}{"notes": " call first "})
	if err != nil {
		t.Fatalf("allowedOrderUpdate returned error: %v", err)
	}
	if update["customer.notes"] != "call first" {
		t.Fatalf("expected trimmed notes, got %+v", update)
	}
}

func TestAllowedOrderUpdate_RejectsInvalidStatus(t *testing.T) {
	if _, err := allowedOrderUpdate(map[string]interface{}{"status": "teleported"}); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestAllowedOrderUpdate_RejectsEmptyBody(t *testing.T) {
	if _, err := allowedOrderUpdate(map[string]interface{}{"foo": "bar"}); err == nil {
		t.Fatal("expected error when no updatable fields are present")
	}
}
