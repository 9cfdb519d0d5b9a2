package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/images"
	"backend/internal/models"
)

/* =========================
   MULTIPART INPUT
========================= */

const maxProductImages = 5

type productFormInput struct {
	Name           string
	NameSet        bool
	Description    string
	DescriptionSet bool
	Price          float64
	PriceSet       bool
	Stock          int
	StockSet       bool
	Category       string
	CategorySet    bool
	Images         []string
	ImagesSet      bool
}

// parseProductForm reads the multipart product payload and pushes any
// attached image files to the asset host, collecting their hosted URLs.
func parseProductForm(c *gin.Context, uploads images.Uploader, folder string, timeout time.Duration) (productFormInput, error) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		log.Println("[PRODUCT] [ERROR] multipart parse failed:", err)
		return productFormInput{}, err
	}

	input := productFormInput{}

	if value, ok := c.GetPostForm("name"); ok {
		input.Name = strings.TrimSpace(value)
		input.NameSet = true
	}

	if value, ok := c.GetPostForm("description"); ok {
		input.Description = strings.TrimSpace(value)
		input.DescriptionSet = true
	}

	if value, ok := c.GetPostForm("category"); ok {
		input.Category = strings.TrimSpace(value)
		input.CategorySet = true
	}

	if value, ok := c.GetPostForm("price"); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return productFormInput{}, err
		}
		if parsed < 0 {
			return productFormInput{}, errors.New("price cannot be negative")
		}
		input.Price = parsed
		input.PriceSet = true
	}

	if value, ok := c.GetPostForm("stock"); ok {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return productFormInput{}, err
		}
		if parsed < 0 {
			return productFormInput{}, errors.New("stock cannot be negative")
		}
		input.Stock = parsed
		input.StockSet = true
	}

	form := c.Request.MultipartForm
	if form == nil {
		return input, nil
	}

	files := form.File["images"]
	if len(files) == 0 {
		return input, nil
	}
	if len(files) > maxProductImages {
		return productFormInput{}, fmt.Errorf("too many images (max %d)", maxProductImages)
	}
	if uploads == nil {
		return productFormInput{}, errors.New("image hosting is not configured")
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		if err := validateImageFile(file.Filename, file.Size); err != nil {
			return productFormInput{}, err
		}

		src, err := file.Open()
		if err != nil {
			return productFormInput{}, err
		}

		uploadCtx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		url, err := uploads.Upload(uploadCtx, src, folder)
		cancel()
		src.Close()
		if err != nil {
			log.Println("[PRODUCT] [ERROR] image upload failed:", err)
			return productFormInput{}, errors.New("image upload failed")
		}
		urls = append(urls, url)
	}

	input.Images = urls
	input.ImagesSet = true
	return input, nil
}

func validateImageFile(filename string, size int64) error {
	dot := strings.LastIndex(filename, ".")
	if dot < 0 {
		return errors.New("image file extension is required")
	}
	extension := strings.ToLower(filename[dot:])

	allowedExtensions := map[string]struct{}{
		".jpg":  {},
		".jpeg": {},
		".png":  {},
		".webp": {},
	}
	if _, ok := allowedExtensions[extension]; !ok {
		return fmt.Errorf("unsupported image type: %s", extension)
	}

	const maxImageSize = 5 << 20
	if size > maxImageSize {
		return errors.New("image file too large (max 5MB)")
	}
	return nil
}

/* =========================
   HANDLERS
========================= */

// CreateProduct inserts a catalog entry. Admin only; multipart body with up
// to five image files.
func CreateProduct(db *mongo.Database, uploads images.Uploader, folder string, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		input, err := parseProductForm(c, uploads, folder, timeout)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		if !input.NameSet || input.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "name is required"})
			return
		}
		if !input.PriceSet {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "price is required"})
			return
		}

		now := time.Now()
		product := models.Product{
			Name:        input.Name,
			Description: input.Description,
			Price:       input.Price,
			Images:      models.StringList(input.Images),
			Stock:       input.Stock,
			Category:    input.Category,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if product.Images == nil {
			product.Images = models.StringList{}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			log.Println("[PRODUCT] [ERROR] insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create product"})
			return
		}
		product.ID, _ = res.InsertedID.(primitive.ObjectID)

		log.Println("[PRODUCT] [INFO] product created:", product.Name)
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": product})
	}
}

// GetProducts lists the catalog, newest first, paginated.
func GetProducts(db *mongo.Database) gin.HandlerFunc {
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

		cursor, err := db.Collection("products").Find(ctx, bson.M{}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch products"})
			return
		}
		defer cursor.Close(ctx)

		var products []models.Product
		if err := cursor.All(ctx, &products); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to parse products"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": products, "page": page, "limit": limit})
	}
}

// GetProduct fetches one catalog entry.
func GetProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch product"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
	}
}

// UpdateProduct applies a partial update; new image files replace the stored
// image list. Admin only.
func UpdateProduct(db *mongo.Database, uploads images.Uploader, folder string, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
			return
		}

		input, err := parseProductForm(c, uploads, folder, timeout)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		update := bson.M{"updatedAt": time.Now()}
		if input.NameSet {
			if input.Name == "" {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "name cannot be empty"})
				return
			}
			update["name"] = input.Name
		}
		if input.DescriptionSet {
			update["description"] = input.Description
		}
		if input.PriceSet {
			update["price"] = input.Price
		}
		if input.StockSet {
			update["stock"] = input.Stock
		}
		if input.CategorySet {
			update["category"] = input.Category
		}
		if input.ImagesSet {
			update["images"] = models.StringList(input.Images)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var product models.Product
		err = db.Collection("products").FindOneAndUpdate(ctx, bson.M{"_id": productID}, bson.M{"$set": update}, opts).Decode(&product)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "product not found"})
				return
			}
			log.Println("[PRODUCT] [ERROR] update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to update product"})
			return
		}

		log.Println("[PRODUCT] [INFO] product updated:", productID.Hex())
		c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
	}
}

// DeleteProduct removes a catalog entry. Admin only.
func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": productID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "db error"})
			return
		}
		if result.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "product not found"})
			return
		}

		log.Println("[PRODUCT] [INFO] product deleted:", productID.Hex())
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "product deleted"})
	}
}
