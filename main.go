package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RafalSprengel/restaurant-pos-backend/config"
	"github.com/RafalSprengel/restaurant-pos-backend/controllers"
	"github.com/RafalSprengel/restaurant-pos-backend/database"
	"github.com/RafalSprengel/restaurant-pos-backend/logger"
	"github.com/RafalSprengel/restaurant-pos-backend/middleware"
	"github.com/RafalSprengel/restaurant-pos-backend/repository"
	"github.com/RafalSprengel/restaurant-pos-backend/routes"
	"github.com/RafalSprengel/restaurant-pos-backend/services"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	logger.Initialize(cfg.Env)
	defer zap.L().Sync()

	// --- 1. Infrastructure ---

	if err := database.ConnectWithConfig(cfg.MongoURL, cfg.MongoDB); err != nil {
		zap.L().Fatal("Failed to connect to MongoDB", zap.Error(err))
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zap.L().Warn("Failed to parse REDIS_URL, falling back to default", zap.Error(err))
		redisOpts = &redis.Options{Addr: "redis:6379", DB: 0}
	}
	redisClient := redis.NewClient(redisOpts)

	// Typed-nil guard: keep the interface nil when presigning is unavailable.
	var presigner services.S3Presigner
	if presignClient := newPresignClient(cfg); presignClient != nil {
		presigner = presignClient
	}

	// --- 2. Dependency Injection ---

	customerRepo := repository.NewMongoCustomerRepository(database.DB)
	productRepo := repository.NewMongoProductRepository(database.DB)
	orderRepo := repository.NewMongoOrderRepository(database.DB)
	categoryRepo := repository.NewMongoCategoryRepository(database.DB)
	counters := database.NewCounters(database.DB)

	if err := customerRepo.EnsureIndexes(context.Background()); err != nil {
		zap.L().Warn("Failed to ensure customer indexes", zap.Error(err))
	}

	stripeService := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookKey, cfg.Currency)
	checkoutService := services.NewCheckoutService(customerRepo, productRepo, orderRepo, counters, stripeService)
	productService := services.NewProductService(productRepo, categoryRepo, presigner, cfg.S3Bucket, cfg.S3Prefix)
	categoryService := services.NewCategoryService(categoryRepo, productRepo)
	orderService := services.NewOrderService(orderRepo)
	customerService := services.NewCustomerService(customerRepo)

	ctrls := routes.Controllers{
		Products:   controllers.NewProductController(productService, redisClient),
		Categories: controllers.NewCategoryController(categoryService),
		Checkout:   controllers.NewCheckoutController(checkoutService, stripeService),
		Webhook:    controllers.NewWebhookController(stripeService, orderRepo),
		Orders:     controllers.NewOrderController(orderService),
		Customers:  controllers.NewCustomerController(customerService),
	}

	// --- 3. HTTP Server & Middleware ---

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	checkoutLimiter := middleware.RateLimitMiddleware(cfg.CheckoutRatePerMin, cfg.CheckoutRateBurst)
	routes.RegisterRoutes(r, ctrls, []byte(cfg.JWTSecret), checkoutLimiter)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// --- 4. Graceful Shutdown ---

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zap.L().Info("Restaurant backend starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Fatal("Server forced to shutdown", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		zap.L().Error("Failed to close Redis", zap.Error(err))
	}
	if err := database.Close(); err != nil {
		zap.L().Error("Failed to close MongoDB", zap.Error(err))
	}

	zap.L().Info("Stopped gracefully")
}

// newPresignClient builds the S3 presign client used for product image
// uploads, honoring a custom endpoint for local development.
func newPresignClient(cfg *config.Config) *s3.PresignClient {
	awsEndpoint := os.Getenv("AWS_ENDPOINT")
	awsAccessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	awsSecret := os.Getenv("AWS_SECRET_ACCESS_KEY")

	cfgOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.AWSRegion),
	}
	if awsAccessKey != "" || awsSecret != "" {
		cfgOpts = append(cfgOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecret, ""),
		))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(context.Background(), cfgOpts...)
	if err != nil {
		zap.L().Warn("Failed to load AWS config, image uploads disabled", zap.Error(err))
		return nil
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if awsEndpoint != "" {
			o.BaseEndpoint = aws.String(awsEndpoint)
		}
	})
	return s3.NewPresignClient(s3Client)
}
