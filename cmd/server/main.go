package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"annapurna-pos/config"
	"annapurna-pos/internal/database"
	"annapurna-pos/internal/gateway/handlers"
	"annapurna-pos/internal/gateway/middleware"
	"annapurna-pos/internal/scheduler"
	"annapurna-pos/internal/services/billing"
	"annapurna-pos/internal/services/menu"
	"annapurna-pos/internal/services/orders"
	"annapurna-pos/internal/services/printing"
	"annapurna-pos/internal/storage"
)

func main() {
	cfg := config.LoadConfig()

	rdb := config.NewRedisClient(cfg.Redis)

	var remote storage.Store
	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Printf("Database unavailable, running on local store only: %v", err)
	} else if err := database.Migrate(db); err != nil {
		log.Printf("Database migration failed, running on local store only: %v", err)
	} else {
		remote = storage.NewRemoteStore(db)
	}
	store := storage.NewResilientStore(remote, storage.NewLocalStore())

	sched := scheduler.New()
	billingSvc := billing.NewService(rdb, store)
	printSvc := printing.NewService(cfg.Restaurant.Name, printing.LogSink{}, sched,
		time.Duration(cfg.POS.PrintDelaySeconds)*time.Second)
	menuSvc := menu.NewService(store, rdb, cfg.POS.MaxMenuPrice)
	events := orders.NewEventPublisher(rdb)
	controller := orders.NewController(store, billingSvc, printSvc, events,
		cfg.Restaurant.RestaurantID, cfg.POS.TableCount)

	midnight := scheduler.NewMidnightTask(sched, controller.ClearAllOrders)
	midnight.Start()
	defer midnight.Stop()

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit())

	authHandler := handlers.NewAuthHTTPHandler(cfg.Auth)
	posHandler := handlers.NewPOSHTTPHandler(controller, menuSvc, printSvc)
	menuHandler := handlers.NewMenuHTTPHandler(menuSvc)
	reportsHandler := handlers.NewReportsHTTPHandler(store, billingSvc)

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth())
	{
		tables := protected.Group("/tables")
		{
			tables.GET("", posHandler.ListTables)
			tables.POST("/:number/select", posHandler.SelectTable)
		}

		ordersGroup := protected.Group("/orders")
		{
			ordersGroup.GET("", posHandler.ListOrders)
			ordersGroup.GET("/current", posHandler.CurrentOrder)
			ordersGroup.POST("/current/items", posHandler.AddItem)
			ordersGroup.PUT("/current/items/:itemId/quantity", posHandler.UpdateQuantity)
			ordersGroup.POST("/current/items/:itemId/parcel", posHandler.ToggleParcel)
			ordersGroup.PUT("/current/items/:itemId/parcel-charge", posHandler.UpdateParcelCharge)
			ordersGroup.PUT("/current/service-charge", posHandler.UpdateServiceCharge)
			ordersGroup.POST("/current/save", posHandler.SaveOrder)
			ordersGroup.POST("/current/complete", posHandler.CompleteOrder)
			ordersGroup.POST("/current/back", posHandler.BackToTables)
			ordersGroup.POST("/current/print", posHandler.Print)
		}

		menuGroup := protected.Group("/menu")
		{
			menuGroup.POST("/items", menuHandler.CreateItem)
			menuGroup.GET("/items", menuHandler.ListItems)
			menuGroup.GET("/items/:id", menuHandler.GetItem)
			menuGroup.PUT("/items/:id", menuHandler.UpdateItem)
			menuGroup.DELETE("/items/:id", menuHandler.DeleteItem)
			menuGroup.GET("/categories", menuHandler.ListCategories)
		}

		reports := protected.Group("/reports")
		{
			reports.GET("/recent", reportsHandler.RecentOrders)
			reports.GET("/summary", reportsHandler.Summary)
		}

		billingGroup := protected.Group("/billing")
		{
			billingGroup.POST("/reset-counter", reportsHandler.ResetBillCounter)
		}
	}

	r.GET("/health", healthCheckHandler(db != nil && remote != nil, rdb != nil))

	log.Printf("Starting server on %s", cfg.POS.ListenAddr)
	if err := r.Run(cfg.POS.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheckHandler(dbUp, redisUp bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		degraded := []string{}
		if !dbUp {
			degraded = append(degraded, "database")
		}
		if !redisUp {
			degraded = append(degraded, "redis")
		}
		if len(degraded) > 0 {
			status = "degraded"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    status,
			"message":   "Server is running",
			"degraded":  degraded,
			"timestamp": time.Now(),
		})
	}
}
