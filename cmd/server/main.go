package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"

	"github.com/Maxito7/frontdesk_backend/internal/application"
	"github.com/Maxito7/frontdesk_backend/internal/config"
	"github.com/Maxito7/frontdesk_backend/internal/email"
	"github.com/Maxito7/frontdesk_backend/internal/infrastructure/repository"
	handlers "github.com/Maxito7/frontdesk_backend/internal/interfaces/http"
	"github.com/Maxito7/frontdesk_backend/internal/migration"
	"github.com/Maxito7/frontdesk_backend/internal/scheduler"
	fdsync "github.com/Maxito7/frontdesk_backend/internal/sync"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDBConnString())
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Error pinging database: %v", err)
	}

	if err := migration.Up(db); err != nil {
		log.Fatalf("Error applying migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: true,
		ExposeHeaders:    "Content-Length",
		MaxAge:           86400,
	}))

	// Email Client
	emailClient, err := email.NewClient(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPassword,
		cfg.SMTPFromName,
		cfg.SMTPFromEmail,
	)
	if err != nil {
		log.Printf("Warning: Email client initialization failed: %v", err)
		emailClient = nil // continue without email
	}

	// Repositories
	roomRepo := repository.NewRoomRepository(db)
	guestRepo := repository.NewGuestRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	// Services
	availabilityService := application.NewAvailabilityService(reservationRepo)
	var cancelNotifier application.CancellationNotifier
	if emailClient != nil {
		cancelNotifier = emailClient
	}
	reservationService := application.NewReservationService(reservationRepo, roomRepo, guestRepo, cancelNotifier)
	bookingService := application.NewBookingService(reservationRepo, roomRepo, guestRepo, availabilityService, emailClient)
	roomService := application.NewRoomService(roomRepo, reservationRepo)
	guestService := application.NewGuestService(guestRepo)

	// Sync coherency layer: outbox relay -> redis -> hub -> sessions
	hub := fdsync.NewHub()
	publisher := fdsync.NewRedisPublisher(redisClient, cfg.SyncChannel)
	bridge := fdsync.NewRedisBridge(redisClient, cfg.SyncChannel, hub)
	relay := fdsync.NewRelay(outboxRepo, publisher, cfg.GetDBConnString())

	go bridge.Run(ctx)
	go func() {
		if err := relay.Start(ctx); err != nil && ctx.Err() == nil {
			log.Printf("sync relay stopped: %v", err)
		}
	}()

	// Overdue checkout sweep
	occupancyScheduler := scheduler.NewOccupancyScheduler(reservationService)
	occupancyScheduler.Start()
	defer occupancyScheduler.Stop()

	// Handlers
	roomHandler := handlers.NewRoomHandler(roomService, availabilityService)
	guestHandler := handlers.NewGuestHandler(guestService)
	reservationHandler := handlers.NewReservationHandler(bookingService, reservationService, availabilityService)
	syncHandler := handlers.NewSyncHandler(hub)

	api := app.Group("/api")

	rooms := api.Group("/rooms")
	rooms.Get("/", roomHandler.GetAllRooms)
	rooms.Post("/", roomHandler.CreateRoom)
	rooms.Get("/:id", roomHandler.GetRoomByID)
	rooms.Put("/:id", roomHandler.UpdateRoom)
	rooms.Patch("/:id/status", roomHandler.SetStatus)
	rooms.Get("/:id/blocked-dates", roomHandler.GetBlockedDates)

	guests := api.Group("/guests")
	guests.Get("/", guestHandler.GetAllGuests)
	guests.Post("/", guestHandler.CreateGuest)
	guests.Get("/search", guestHandler.SearchByDocument)
	guests.Get("/:id", guestHandler.GetGuestByID)
	guests.Put("/:id", guestHandler.UpdateGuest)
	guests.Delete("/:id", guestHandler.DeleteGuest)

	reservations := api.Group("/reservations")
	reservations.Get("/", reservationHandler.GetAllReservations)
	reservations.Post("/", reservationHandler.CreateBooking)
	reservations.Post("/check-availability", reservationHandler.CheckAvailability)
	reservations.Get("/:id", reservationHandler.GetReservationByID)
	reservations.Patch("/:id/status", reservationHandler.Transition)

	api.Get("/sync/stream", syncHandler.Stream)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/health", func(c *fiber.Ctx) error {
		if err := db.Ping(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	go func() {
		<-ctx.Done()
		log.Println("shutting down...")
		_ = app.Shutdown()
	}()

	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
