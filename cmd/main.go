package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/freshhaul/coldroute/internal/auth"
	"github.com/freshhaul/coldroute/internal/db"
	"github.com/freshhaul/coldroute/internal/exports"
	"github.com/freshhaul/coldroute/internal/geo"
	"github.com/freshhaul/coldroute/internal/handlers"
	"github.com/freshhaul/coldroute/internal/middleware"
	"github.com/freshhaul/coldroute/internal/models"
	"github.com/freshhaul/coldroute/internal/notify"
	"github.com/freshhaul/coldroute/internal/otp"
	"github.com/freshhaul/coldroute/internal/scheduling"
	"github.com/freshhaul/coldroute/internal/telemetry"
	"github.com/freshhaul/coldroute/internal/workhistory"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	log.SetFormatter(&log.JSONFormatter{})
	if os.Getenv("LOG_LEVEL") == "debug" {
		log.SetLevel(log.DebugLevel)
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "coldroute"
	}
	database := client.Database(dbName)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		cancel()
		log.WithError(err).Fatal("Failed to create indexes")
	}
	cancel()

	collections := db.NewCollections(database)

	redisClient, err := db.ConnectRedis()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()
	otpStore := otp.NewStore(redisClient, 0)

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize auth service")
	}

	var districts geo.DistrictResolver
	if resolver, err := geo.NewGoogleDistrictResolver(); err != nil {
		log.WithError(err).Warn("District resolution disabled")
	} else {
		districts = resolver
	}

	notifier := notify.NewExpoNotifier(collections.Accounts)
	detector := scheduling.NewDetector(collections.Exports, collections.Drivers, collections.Vehicles)
	ledger := workhistory.NewLedger(collections.Drivers)
	engine := exports.NewEngine(collections.Exports, collections.Bookings, collections.Vendors, detector, ledger, districts, notifier)
	gateway := telemetry.NewGateway(collections.Exports, collections.Vehicles, collections.Devices)

	var ingestor *telemetry.Ingestor
	if brokerURL := os.Getenv("MQTT_BROKER_URL"); brokerURL != "" {
		ingestor, err = telemetry.NewIngestor(brokerURL, "coldroute-api", collections.Devices)
		if err != nil {
			log.WithError(err).Warn("Telemetry ingest disabled")
			ingestor = nil
		} else if err := ingestor.Start(); err != nil {
			log.WithError(err).Warn("Telemetry ingest disabled")
			ingestor.Stop()
			ingestor = nil
		}
	} else {
		log.Info("MQTT_BROKER_URL not set, telemetry ingest disabled")
	}

	authHandler := handlers.NewAuthHandler(authService, collections.Accounts, collections.Vendors, collections.Drivers, otpStore)
	exportHandler := handlers.NewExportHandler(engine)
	telemetryHandler := handlers.NewTelemetryHandler(gateway)
	registryHandler := handlers.NewRegistryHandler(collections.Vendors, collections.Drivers, collections.Vehicles, collections.Devices)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Group(func(r chi.Router) {
			r.Use(rateLimiter.RateLimit(10, 60))
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/forgot-password", authHandler.ForgotPassword)
			r.Post("/auth/verify-otp", authHandler.VerifyOTP)
			r.Post("/auth/reset-password", authHandler.ResetPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/availableResources", exportHandler.AvailableResources)

			r.Post("/export/add/{vendorId}", exportHandler.Create)
			r.Get("/export/vendor/{vendorId}", exportHandler.ListByVendor)
			r.Get("/export/driver/{driverId}", exportHandler.ListByDriver)
			r.Put("/export/accept/{id}", exportHandler.Accept)
			r.Put("/export/reject/{id}", exportHandler.Reject)
			r.Put("/export/start/{id}", exportHandler.StartByDriver)
			r.Put("/export/startByVendor/{exportId}", exportHandler.StartByVendor)
			r.Put("/export/complete/{exportId}", exportHandler.Complete)
			r.Post("/export/intermediateLocation/push/{exportId}", telemetryHandler.PushIntermediateLocation)
			r.Get("/export/{id}", exportHandler.Get)
			r.Delete("/export/{id}", exportHandler.Delete)

			r.Get("/device/sensor-data/{exportId}", telemetryHandler.SensorData)
			r.Get("/device/location-data/{exportId}", telemetryHandler.LocationData)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireRole(models.RoleVendor))
				r.Post("/vehicle/add/{vendorId}", registryHandler.AddVehicle)
				r.Post("/device/add", registryHandler.AddDevice)
				r.Put("/device/assign/{vehicleId}", registryHandler.AssignDevice)
				r.Post("/vendor/driver/add/{vendorId}", registryHandler.AddDriverToFleet)
			})
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	if ingestor != nil {
		ingestor.Stop()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}
}
