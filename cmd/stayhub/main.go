package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"stayhub/internal/app/commands"
	adminapp "stayhub/internal/app/handlers/admin"
	bookingapp "stayhub/internal/app/handlers/booking"
	listingsapp "stayhub/internal/app/handlers/listings"
	meapp "stayhub/internal/app/handlers/me"
	onboardingapp "stayhub/internal/app/handlers/onboarding"
	"stayhub/internal/app/middleware"
	appoutbox "stayhub/internal/app/outbox"
	"stayhub/internal/app/queries"
	authsvc "stayhub/internal/app/services/auth"
	"stayhub/internal/app/uow"
	domainauth "stayhub/internal/domain/auth"
	domainlistings "stayhub/internal/domain/listings"
	domainonboarding "stayhub/internal/domain/onboarding"
	"stayhub/internal/domain/shared/money"
	"stayhub/internal/infra/broker/kafka"
	"stayhub/internal/infra/config"
	mongodb "stayhub/internal/infra/db/mongo"
	ginserver "stayhub/internal/infra/http/gin"
	"stayhub/internal/infra/obs"
	infraoutbox "stayhub/internal/infra/outbox"
	"stayhub/internal/infra/security"
	"stayhub/internal/infra/storage/memory"
	"stayhub/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg = config.Config{
			Env:                env,
			HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
			StorageMode:        "memory",
			SessionTTL:         720 * time.Hour,
			IdempotencyTTL:     168 * time.Hour,
			OutboxPollInterval: 500 * time.Millisecond,
		}
	}

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := getenv("LISTINGS_FIXTURES", "")
	if fixturesPath == "" {
		fixturesPath = defaultListingFixturesPath()
	}
	if err := app.loadListingFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("listing fixtures load failed", "error", err, "path", fixturesPath)
	}

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	listings domainlistings.ListingRepository
	worker   *infraoutbox.Worker
	producer *kafka.Producer
	mongo    *mongodb.Client
}

type storageSet struct {
	uowFactory  uow.UoWFactory
	listings    domainlistings.ListingRepository
	box         appoutbox.Outbox
	claims      infraoutbox.ClaimStore
	idempotency middleware.IdempotencyStore
	drafts      domainonboarding.DraftStore
	sessions    domainauth.SessionStore
}

func buildApplication(cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{}

	var stores storageSet
	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		app.mongo = client
		outboxStore := infraoutbox.NewMongoStore(client.DB)
		listingsRepo := mongodb.NewListingRepository(client.DB)
		stores = storageSet{
			uowFactory: mongodb.Factory{
				DB:           client.DB,
				ListingsRepo: listingsRepo,
				BookingRepo:  mongodb.NewBookingRepository(client.DB),
				UserRepo:     mongodb.NewUserRepository(client.DB),
			},
			listings:    listingsRepo,
			box:         outboxStore,
			claims:      outboxStore,
			idempotency: mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL),
			drafts:      mongodb.NewDraftStore(client.DB),
			sessions:    mongodb.NewSessionStore(client.DB),
		}
	default:
		listingsRepo := memory.NewListingRepository()
		outboxStore := memory.NewOutbox()
		stores = storageSet{
			uowFactory: memory.Factory{
				ListingsRepo: listingsRepo,
				BookingRepo:  memory.NewBookingRepository(),
				UserRepo:     memory.NewUserRepository(),
			},
			listings:    listingsRepo,
			box:         outboxStore,
			claims:      outboxStore,
			idempotency: memory.NewIdempotencyStore(),
			drafts:      memory.NewDraftStore(),
			sessions:    memory.NewSessionStore(),
		}
	}
	app.listings = stores.listings

	encoder := appoutbox.JSONEventEncoder{}
	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()

	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		UoWFactory: stores.uowFactory,
		Outbox:     stores.box,
		Encoder:    encoder,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.ConfirmHostBookingCommand{}.Key(), &bookingapp.ConfirmHostBookingHandler{
		Outbox:  stores.box,
		Encoder: encoder,
		Logger:  logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.DeclineHostBookingCommand{}.Key(), &bookingapp.DeclineHostBookingHandler{
		Outbox:  stores.box,
		Encoder: encoder,
		Logger:  logger,
	})
	commands.RegisterHandler(commandBus, listingsapp.UpdateListingCommand{}.Key(), &listingsapp.UpdateListingHandler{
		Outbox:  stores.box,
		Encoder: encoder,
		Logger:  logger,
	})
	commands.RegisterHandler(commandBus, listingsapp.SuspendListingCommand{}.Key(), &listingsapp.SuspendListingHandler{
		Outbox:  stores.box,
		Encoder: encoder,
		Logger:  logger,
	})
	commands.RegisterHandler(commandBus, adminapp.BlockUserCommand{}.Key(), &adminapp.BlockUserHandler{Logger: logger})

	queries.RegisterHandler(queryBus, bookingapp.QuoteStayQuery{}.Key(), &bookingapp.QuoteStayHandler{UoWFactory: stores.uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.CheckAvailabilityQuery{}.Key(), &bookingapp.CheckAvailabilityHandler{UoWFactory: stores.uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.ListHostBookingsQuery{}.Key(), &bookingapp.ListHostBookingsHandler{UoWFactory: stores.uowFactory, Logger: logger})
	queries.RegisterHandler(queryBus, listingsapp.SearchCatalogQuery{}.Key(), &listingsapp.SearchCatalogHandler{UoWFactory: stores.uowFactory})
	queries.RegisterHandler(queryBus, listingsapp.GetListingQuery{}.Key(), &listingsapp.GetListingHandler{UoWFactory: stores.uowFactory})
	queries.RegisterHandler(queryBus, listingsapp.ListHostListingsQuery{}.Key(), &listingsapp.ListHostListingsHandler{UoWFactory: stores.uowFactory})
	queries.RegisterHandler(queryBus, meapp.ListMyBookingsQuery{}.Key(), &meapp.ListMyBookingsHandler{UoWFactory: stores.uowFactory})
	queries.RegisterHandler(queryBus, meapp.GetMyProfileQuery{}.Key(), &meapp.GetMyProfileHandler{UoWFactory: stores.uowFactory})
	queries.RegisterHandler(queryBus, adminapp.OverviewQuery{}.Key(), &adminapp.OverviewHandler{UoWFactory: stores.uowFactory, Logger: logger})
	queries.RegisterHandler(queryBus, adminapp.ListUsersQuery{}.Key(), &adminapp.ListUsersHandler{UoWFactory: stores.uowFactory})

	onboardingapp.Register(commandBus, queryBus, &onboardingapp.Handlers{
		Wizard:  &domainonboarding.Wizard{Drafts: stores.drafts},
		Outbox:  stores.box,
		Encoder: encoder,
		Logger:  logger,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(stores.idempotency, nil),
		middleware.Transaction(stores.uowFactory, nil),
		middleware.OutboxFlush(stores.box),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	authService := &authsvc.Service{
		UoWFactory: stores.uowFactory,
		Sessions:   stores.sessions,
		Hasher:     security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	var uploader s3.Uploader = s3.NoopUploader{}
	if cfg.S3Endpoint != "" {
		client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			logger.Warn("s3 uploader unavailable, photo uploads disabled", "error", err)
		} else {
			uploader = client
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Warn("kafka producer unavailable, events stay staged", "error", err)
		} else {
			app.producer = producer
			app.worker = &infraoutbox.Worker{
				Store:       stores.claims,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
			}
		}
	}

	app.handlers = ginserver.Handlers{
		Auth: ginserver.AuthHandler{
			Service: authService,
			Queries: queryBusWithMiddleware,
			Logger:  logger,
		},
		Booking: ginserver.BookingHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Logger:   logger,
		},
		Listing: ginserver.ListingHandler{
			Queries: queryBusWithMiddleware,
			Logger:  logger,
		},
		HostBooking: ginserver.HostBookingHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Logger:   logger,
		},
		HostListing: ginserver.HostListingHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Logger:   logger,
		},
		Onboarding: ginserver.OnboardingHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Uploader: uploader,
			Logger:   logger,
		},
		Me: ginserver.MeHandler{
			Queries: queryBusWithMiddleware,
			Logger:  logger,
		},
		Admin: ginserver.AdminHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Logger:   logger,
		},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
	}
	return app, nil
}

func (a *application) ready() error {
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return a.mongo.Ping(ctx)
	}
	return nil
}

func (a *application) close(logger *slog.Logger) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Warn("kafka producer close failed", "error", err)
		}
	}
}

func (a *application) loadListingFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("listing fixtures file empty", "path", path)
		return nil
	}

	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	if len(fixtures) == 0 {
		return nil
	}

	now := time.Now()
	for _, fx := range fixtures {
		mode, err := domainlistings.ParseBookingMode(fx.BookingMode)
		if err != nil {
			logger.Error("fixture has invalid booking mode", "listing_id", fx.ID, "error", err)
			continue
		}
		currency := fx.Currency
		if currency == "" {
			currency = "USD"
		}
		listing, err := domainlistings.NewListing(domainlistings.CreateListingParams{
			ID:          domainlistings.ListingID(fx.ID),
			Host:        domainlistings.HostID(fx.Host),
			Title:       fx.Title,
			Description: fx.Description,
			Address: domainlistings.Address{
				Line1:   fx.Address.Line1,
				City:    fx.Address.City,
				Region:  fx.Address.Region,
				Country: fx.Address.Country,
				Lat:     fx.Address.Lat,
				Lon:     fx.Address.Lon,
			},
			NightlyRate: money.Money{Amount: fx.NightlyRateCents, Currency: currency},
			WeekendRate: money.Money{Amount: fx.WeekendRateCents, Currency: currency},
			CleaningFee: money.Money{Amount: fx.CleaningFeeCents, Currency: currency},
			ServiceFee:  money.Money{Amount: fx.ServiceFeeCents, Currency: currency},
			GuestsLimit: fx.GuestsLimit,
			Mode:        mode,
			ImageURL:    fx.ImageURL,
			Photos:      append([]string(nil), fx.Photos...),
			Amenities:   append([]string(nil), fx.Amenities...),
			Now:         now,
		})
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := listing.Publish(now); err != nil {
			logger.Error("fixture publish failed", "listing_id", fx.ID, "error", err)
			continue
		}
		listing.ClearEvents()
		if err := a.listings.Save(ctx, listing); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", listing.ID)
	}
	return nil
}

type listingFixture struct {
	ID               string         `json:"id"`
	Host             string         `json:"host"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Address          fixtureAddress `json:"address"`
	Amenities        []string       `json:"amenities"`
	GuestsLimit      int            `json:"guests_limit"`
	NightlyRateCents int64          `json:"nightly_rate_cents"`
	WeekendRateCents int64          `json:"weekend_rate_cents"`
	CleaningFeeCents int64          `json:"cleaning_fee_cents"`
	ServiceFeeCents  int64          `json:"service_fee_cents"`
	Currency         string         `json:"currency"`
	BookingMode      string         `json:"booking_mode"`
	ImageURL         string         `json:"image_url"`
	Photos           []string       `json:"photos"`
}

type fixtureAddress struct {
	Line1   string  `json:"line1"`
	City    string  `json:"city"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func defaultListingFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "listings.json"),
		filepath.Join("backend", "data", "listings.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
