package router

import (
	"time"

	"github.com/Djidro/Royalpos/internal/config"
	"github.com/Djidro/Royalpos/internal/handler"
	"github.com/Djidro/Royalpos/internal/infra"
	"github.com/Djidro/Royalpos/internal/middleware"
	"github.com/Djidro/Royalpos/internal/repository"
	"github.com/Djidro/Royalpos/internal/service"
	"github.com/Djidro/Royalpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns the configured Gin engine plus
// the job handlers for the worker pool.
// Dependency graph: Handler <- Service <- Repository <- DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mirrorCB *infra.CircuitBreaker) (*gin.Engine, *worker.Handlers) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// Infrastructure
	pbClient := infra.NewPocketBaseClient(cfg.PocketBaseURL, cfg.PocketBaseToken)
	mailer := infra.NewMailer(cfg)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	cartRepo := repository.NewCartRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)

	// Worker dispatcher, injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb, cfg.MirrorEnabled())

	// Services
	authSvc := service.NewAuthService(userRepo, cfg)
	catalogSvc := service.NewCatalogService(productRepo, movementRepo, saleRepo, dispatcher)
	cartSvc := service.NewCartService(cartRepo, productRepo, shiftRepo)
	reportSvc := service.NewReportService(saleRepo, shiftRepo, expenseRepo, cfg)
	shiftSvc := service.NewShiftService(shiftRepo, saleRepo, expenseRepo, cartRepo, reportSvc, dispatcher, cfg)
	saleSvc := service.NewSaleService(saleRepo, shiftRepo, cartRepo, productRepo, movementRepo, dispatcher, cfg)
	expenseSvc := service.NewExpenseService(expenseRepo, shiftRepo, dispatcher)
	exportSvc := service.NewExportService(productRepo, saleRepo, shiftRepo, expenseRepo)

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(catalogSvc)
	cartH := handler.NewCartHandler(cartSvc)
	shiftsH := handler.NewShiftsHandler(shiftSvc, reportSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	expensesH := handler.NewExpensesHandler(expenseSvc)
	reportsH := handler.NewReportsHandler(reportSvc)
	exportH := handler.NewExportHandler(exportSvc)

	// Job processors consumed by the worker pool
	handlers := &worker.Handlers{
		Sync:  worker.NewSyncWorker(pbClient, mirrorCB, rdb, productRepo, saleRepo, expenseRepo),
		Email: worker.NewEmailWorker(mailer),
	}

	// Public
	r.GET("/health", handler.Health(db, rdb, mirrorCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes. Roles: cashier, admin.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole("cashier", "admin")
	adminOnly := middleware.RequireRole("admin")

	v1 := r.Group("/v1", jwtMW)
	{
		// Catalog: everyone reads, admin writes, stock adjustments for all
		v1.GET("/products", anyRole, productsH.List)
		v1.GET("/products/low-stock", anyRole, productsH.LowStock)
		v1.GET("/products/:id", anyRole, productsH.Get)
		v1.GET("/products/:id/movements", anyRole, productsH.Movements)
		v1.POST("/products/:id/stock", anyRole, productsH.AdjustStock)
		prods := v1.Group("/products", adminOnly)
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
		}

		cart := v1.Group("/cart", anyRole)
		{
			cart.GET("", cartH.Get)
			cart.DELETE("", cartH.Clear)
			cart.POST("/items", cartH.Add)
			cart.PATCH("/items/:id", cartH.ChangeQuantity)
			cart.DELETE("/items/:id", cartH.Remove)
		}

		shifts := v1.Group("/shifts", anyRole)
		{
			shifts.POST("/open", shiftsH.Open)
			shifts.POST("/close", shiftsH.Close)
			shifts.GET("/current", shiftsH.Current)
			shifts.GET("", shiftsH.History)
			shifts.GET("/:id", shiftsH.Get)
			shifts.GET("/:id/report", shiftsH.Report)
			shifts.GET("/:id/report.pdf", shiftsH.ReportPDF)
		}

		sales := v1.Group("/sales", anyRole)
		{
			sales.POST("/checkout", salesH.Checkout)
			sales.GET("", salesH.List)
			sales.GET("/:id", salesH.Get)
			sales.GET("/:id/receipt.pdf", salesH.Receipt)
			sales.POST("/:id/refund", salesH.Refund)
		}

		expenses := v1.Group("/expenses", anyRole)
		{
			expenses.POST("", expensesH.Add)
			expenses.GET("", expensesH.List)
			expenses.DELETE("/:id", expensesH.Delete)
		}

		v1.GET("/reports/summary", anyRole, reportsH.Summary)

		v1.GET("/export", anyRole, exportH.Export)
		v1.POST("/import", adminOnly, exportH.Import)

		users := v1.Group("/users", adminOnly)
		{
			users.POST("", authH.CreateUser)
			users.GET("", authH.ListUsers)
			users.PUT("/:id", authH.UpdateUser)
			users.DELETE("/:id", authH.DeactivateUser)
		}
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, handlers
}
