package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/images"
	"backend/internal/models"
	"backend/internal/notify"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderItemRequest struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name" binding:"required"`
	Price     float64 `json:"price" binding:"gte=0"`
	Qty       int     `json:"qty" binding:"omitempty,gte=1"`
	Image     string  `json:"image"`
}

type createOrderRequest struct {
	Phone   string                   `json:"phone" binding:"required,min=5"`
	Address string                   `json:"address" binding:"required,min=5"`
	Notes   string                   `json:"notes"`
	Items   []createOrderItemRequest `json:"items" binding:"min=1,dive"`
	Total   float64                  `json:"total" binding:"gte=0"`
}

/* =========================
   CREATE ORDER
========================= */

// CreateOrder runs the order workflow: validate, resolve item images, bind
// the order to the authenticated user, persist, then notify. Notification is
// best-effort and never affects the response.
func CreateOrder(db *mongo.Database, uploads images.Uploader, notifier *notify.OrderNotifier, uploadFolder string, uploadTimeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		items, err := normalizeOrderItems(req.Items)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		if err := validateDeclaredTotal(req.Total, orderTotal(items)); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		user, ok := userFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not found"})
			return
		}

		// No side effects before this point; uploads only start once the
		// caller's identity is resolved.
		if uploads != nil {
			images.Resolve(c.Request.Context(), uploads, items, uploadFolder, uploadTimeout)
		}

		order := buildOrder(user, req, items)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			log.Println("[ORDER] [ERROR] insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "server error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			order.ID = id
		}

		log.Println("[ORDER] [INFO] order created for user:", user.Email)
		notifier.Dispatch(order, user)

		c.JSON(http.StatusCreated, gin.H{"success": true, "data": order})
	}
}

func userFromContext(c *gin.Context) (models.User, bool) {
	value, ok := c.Get("user")
	if !ok {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	if !ok || user.ID.IsZero() {
		return models.User{}, false
	}
	return user, true
}

// normalizeOrderItems trims names and applies the qty default of 1.
func normalizeOrderItems(reqItems []createOrderItemRequest) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(reqItems))
	for _, item := range reqItems {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, errors.New("item name is required")
		}

		qty := item.Qty
		if qty == 0 {
			qty = 1
		}

		items = append(items, models.OrderItem{
			ProductID: strings.TrimSpace(item.ProductID),
			Name:      name,
			Price:     item.Price,
			Qty:       qty,
			Image:     strings.TrimSpace(item.Image),
		})
	}
	return items, nil
}

// orderTotal sums price times qty across items.
func orderTotal(items []models.OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Qty)
	}
	return total
}

// validateDeclaredTotal rejects a submitted total that disagrees with the
// recomputed one; the stored total is always the server-computed value. A
// zero declared total is treated as not declared.
func validateDeclaredTotal(declared, computed float64) error {
	if declared == 0 {
		return nil
	}
	if math.Abs(declared-computed) > 0.009 {
		return fmt.Errorf("total %.2f does not match item total %.2f", declared, computed)
	}
	return nil
}

// buildOrder assembles the persisted document. Customer name and email come
// from the authenticated user record, never from the request body.
func buildOrder(user models.User, req createOrderRequest, items []models.OrderItem) models.Order {
	now := time.Now()
	return models.Order{
		UserID: user.ID,
		Customer: models.OrderCustomer{
			Name:    user.Name,
			Email:   user.Email,
			Phone:   strings.TrimSpace(req.Phone),
			Address: strings.TrimSpace(req.Address),
			Notes:   strings.TrimSpace(req.Notes),
		},
		Items:     items,
		Total:     orderTotal(items),
		Status:    models.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

/* =========================
   LIST & READ
========================= */

// GetMyOrders returns the caller's orders, newest first.
func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := userFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": user.ID}, opts)
		if err != nil {
			log.Println("[ORDER] [ERROR] my orders query failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch orders"})
			return
		}
		defer cursor.Close(ctx)

		var orders []models.Order
		if err := cursor.All(ctx, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to parse orders"})
			return
		}

		if len(orders) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "no orders found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": orders})
	}
}

// GetAllOrders returns every order, newest first, paginated. Admin only.
func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid pagination params"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("orders").Find(ctx, bson.M{}, opts)
		if err != nil {
			log.Println("[ORDER] [ERROR] order listing failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch orders"})
			return
		}
		defer cursor.Close(ctx)

		var orders []models.Order
		if err := cursor.All(ctx, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to parse orders"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": orders, "page": page, "limit": limit})
	}
}

// GetOrderByID fetches a single order. Admin only.
func GetOrderByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch order"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
	}
}

/* =========================
   ADMIN UPDATE & DELETE
========================= */

// allowedOrderUpdate filters an update payload down to the fields that stay
// mutable after creation: status and notes. Everything else is ignored.
func allowedOrderUpdate(payload map[string]interface{}) (bson.M, error) {
	update := bson.M{}

	if value, ok := payload["status"]; ok {
		status, ok := value.(string)
		if !ok || !models.ValidOrderStatus(status) {
			return nil, errors.New("invalid status")
		}
		update["status"] = status
	}

	if value, ok := payload["notes"]; ok {
		notes, ok := value.(string)
		if !ok {
			return nil, errors.New("invalid notes")
		}
		update["customer.notes"] = strings.TrimSpace(notes)
	}

	if len(update) == 0 {
		return nil, errors.New("no updatable fields in body")
	}
	return update, nil
}

// UpdateOrder applies a restricted administrative update.
func UpdateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
			return
		}

		var payload map[string]interface{}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body"})
			return
		}

		update, err := allowedOrderUpdate(payload)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		update["updatedAt"] = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var order models.Order
		err = db.Collection("orders").FindOneAndUpdate(ctx, bson.M{"_id": orderID}, bson.M{"$set": update}, opts).Decode(&order)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "order not found"})
				return
			}
			log.Println("[ORDER] [ERROR] update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to update order"})
			return
		}

		log.Println("[ORDER] [INFO] order updated:", orderID.Hex())
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "order updated", "data": order})
	}
}

// DeleteOrder removes an order. Admin only.
func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("orders").DeleteOne(ctx, bson.M{"_id": orderID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "db error"})
			return
		}

		if result.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "order not found"})
			return
		}

		log.Println("[ORDER] [INFO] order deleted:", orderID.Hex())
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "order deleted"})
	}
}
