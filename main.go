package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/images"
	"backend/internal/mailer"
	"backend/internal/middleware"
	"backend/internal/notify"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Println("⚠️ user index warning:", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Println("⚠️ order index warning:", err)
	}
	if err := database.EnsureProductIndexes(db); err != nil {
		log.Println("⚠️ product index warning:", err)
	}

	var uploads images.Uploader
	if config.AppEnv.CloudinaryURL == "" {
		log.Println("⚠️ CLOUDINARY_URL not set, image uploads disabled")
	} else {
		cld, err := images.NewCloudinary(config.AppEnv.CloudinaryURL)
		if err != nil {
			log.Fatal("cloudinary init:", err)
		}
		uploads = cld
	}

	sender := mailer.NewSMTP(
		config.AppEnv.SMTPHost,
		config.AppEnv.SMTPPort,
		config.AppEnv.SMTPUser,
		config.AppEnv.SMTPPass,
		config.AppEnv.SMTPSecure,
	)
	notifier := notify.NewOrderNotifier(sender, notify.Config{
		To:           config.AppEnv.EmailTo,
		From:         config.AppEnv.EmailFrom,
		CustomerCopy: config.AppEnv.EmailCustomerCopy,
		Timeout:      config.AppEnv.ExternalTimeout,
	})

	r := gin.Default()
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.AppEnv.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", handlers.Register(
			db,
			config.AppEnv.JWTSecret,
			config.AppEnv.AccessTokenTTL,
			config.AppEnv.RefreshTokenTTL,
			config.AppEnv.OwnerEmail,
		))
		auth.POST("/login", handlers.Login(
			db,
			config.AppEnv.JWTSecret,
			config.AppEnv.AccessTokenTTL,
			config.AppEnv.RefreshTokenTTL,
			config.AppEnv.OwnerEmail,
		))
		auth.POST("/refresh", handlers.Refresh(
			db,
			config.AppEnv.JWTSecret,
			config.AppEnv.AccessTokenTTL,
			config.AppEnv.RefreshTokenTTL,
		))
		auth.POST("/logout", handlers.Logout(db))
		auth.GET("/profile", middleware.Protect(db, config.AppEnv.JWTSecret), handlers.Profile())
	}

	r.GET("/api/products", handlers.GetProducts(db))
	r.GET("/api/products/:id", handlers.GetProduct(db))

	adminProducts := r.Group("/api/products")
	adminProducts.Use(middleware.Protect(db, config.AppEnv.JWTSecret), middleware.AdminOnly())
	{
		adminProducts.POST("", handlers.CreateProduct(db, uploads, config.AppEnv.UploadFolder, config.AppEnv.ExternalTimeout))
		adminProducts.PUT("/:id", handlers.UpdateProduct(db, uploads, config.AppEnv.UploadFolder, config.AppEnv.ExternalTimeout))
		adminProducts.DELETE("/:id", handlers.DeleteProduct(db))
	}

	orders := r.Group("/api/orders")
	orders.Use(middleware.RateLimit(30), middleware.Protect(db, config.AppEnv.JWTSecret))
	{
		orders.POST("", handlers.CreateOrder(db, uploads, notifier, config.AppEnv.UploadFolder, config.AppEnv.ExternalTimeout))
		orders.GET("/my", handlers.GetMyOrders(db))

		adminOrders := orders.Group("")
		adminOrders.Use(middleware.AdminOnly())
		{
			adminOrders.GET("", handlers.GetAllOrders(db))
			adminOrders.GET("/:id", handlers.GetOrderByID(db))
			adminOrders.PUT("/:id", handlers.UpdateOrder(db))
			adminOrders.DELETE("/:id", handlers.DeleteOrder(db))
		}
	}

	r.POST("/api/upload", middleware.Protect(db, config.AppEnv.JWTSecret), handlers.UploadImage(
		uploads,
		config.AppEnv.UploadFolder,
		config.AppEnv.ExternalTimeout,
	))

	r.Run(":" + config.AppEnv.Port)
}
