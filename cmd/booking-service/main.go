package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-booking/internal/booking"
	bookingapi "ms-booking/internal/booking/api"
	bookingdb "ms-booking/internal/booking/db"
	"ms-booking/internal/booking/kafka"
	"ms-booking/internal/booking/qr"
	rediswrap "ms-booking/internal/booking/redis"
	"ms-booking/internal/config"
	"ms-booking/internal/database/migrations"
	"ms-booking/internal/event"
	eventapi "ms-booking/internal/event/api"
	eventdb "ms-booking/internal/event/db"
	"ms-booking/internal/logger"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}
	cfg := config.Load()
	appLogger := logger.NewLogger()
	defer appLogger.Close()

	// --- PostgreSQL Setup ---
	sqldb, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("❌ Failed to open Postgres connection: %v", err)
	}
	defer sqldb.Close()

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Fatalf("❌ Failed to connect to Postgres: %v", err)
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	// Run migrations
	if err := migrations.NewRunner(bunDB, migrations.DefaultOptions()).Run(); err != nil {
		log.Fatalf("❌ Migrations failed: %v", err)
	}
	// CreateTable IfNotExists keeps fresh dev databases usable even with
	// AutoMigrate switched off
	eventdb.Migrate(bunDB)
	bookingdb.Migrate(bunDB)

	// --- Redis Setup (per-event reservation lock) ---
	var eventLock booking.EventLocker
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
		})
		log.Println("🔗 Connecting to Redis...")
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		eventLock = rediswrap.NewRedis(redisClient)
	} else {
		log.Println("⚠️ Redis disabled, relying on database locking only")
	}

	// --- Kafka Setup ---
	var publisher booking.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.BookingTopic)
		defer producer.Close()
		publisher = producer
	} else {
		log.Println("⚠️ Kafka disabled, booking events will not be published")
	}

	// --- Initialize Dependencies ---
	log.Println("📦 Initializing Booking Service...")
	bookingService := booking.NewService(&bookingdb.DB{Bun: bunDB}, eventLock, publisher)
	eventService := event.NewService(&eventdb.DB{Bun: bunDB})

	bookingHandler := &bookingapi.Handler{
		BookingService: bookingService,
		QR:             qr.NewQRGenerator(cfg.QR.SecretKey),
		Logger:         appLogger,
	}
	eventHandler := &eventapi.Handler{
		EventService: eventService,
		Logger:       appLogger,
	}

	// --- Setup Router ---
	r := chi.NewRouter()

	r.Post("/api/v1/bookings", bookingHandler.CreateBooking)
	r.Get("/api/v1/bookings", bookingHandler.GetAllBookings)
	r.Get("/api/v1/bookings/me", bookingHandler.GetMyBookings)
	r.Get("/api/v1/bookings/{bookingId}", bookingHandler.GetBooking)
	r.Delete("/api/v1/bookings/{bookingId}", bookingHandler.CancelBooking)
	r.Get("/api/v1/bookings/{bookingId}/qr", bookingHandler.GetBookingQR)

	r.Post("/api/v1/events", eventHandler.CreateEvent)
	r.Get("/api/v1/events", eventHandler.ListEvents)
	r.Get("/api/v1/events/{eventId}", eventHandler.GetEvent)
	r.Put("/api/v1/events/{eventId}", eventHandler.UpdateEvent)
	r.Delete("/api/v1/events/{eventId}", eventHandler.DeleteEvent)
	r.Get("/api/v1/events/{eventId}/seats", eventHandler.GetEventSeats)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("🚀 Booking Service running on %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ HTTP server error: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("📦 Shutdown signal received. Cleaning up...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server exited gracefully")
}
