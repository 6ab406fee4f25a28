package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/middleware"

	"github.com/menulingua/menulingua/internal/catalog"
	"github.com/menulingua/menulingua/internal/ingest"
	"github.com/menulingua/menulingua/internal/menu"
	"github.com/menulingua/menulingua/internal/mongo"
	"github.com/menulingua/menulingua/internal/order"
	"github.com/menulingua/menulingua/pkg"
)

const (
	appNamespace = "MENULINGUA"
	appName      = "menulingua"
	appVersion   = "0.1.0"
)

const defaultSessionTTL = 4 * time.Hour

func main() {
	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	seedCtx, cancelSeeds := context.WithCancel(ctx)
	defer cancelSeeds()

	baseRepo := mongo.NewBaseRepo(config, logger)
	err = baseRepo.Start(ctx)
	if err != nil {
		log.Fatalf("%s(%s) cannot start base repository: %v", appName, appVersion, err)
	}

	db := baseRepo.GetDatabase()
	if db == nil {
		log.Fatalf("%s(%s) cannot initialize repository database: %v", appName, appVersion, errors.New("repository database is nil"))
	}

	dishRepo := mongo.NewDishRepo(db)

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	pub, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	sub, err := pkg.NewNATSSubscriber(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
	}

	catalogURL, _ := config.GetString("services.catalog.url")
	catalogClient := apt.NewServiceClient(catalogURL)
	provider := catalog.NewServiceProvider(catalogClient, logger)

	nameCache := ingest.NewNameCache(dishRepo, logger)
	dishSub := ingest.NewCatalogDishSubscriber(sub, nameCache, logger)
	ingestor := ingest.NewIngestor(dishRepo, nameCache, pub, appName, logger)

	sessionStore := order.NewSessionStore(defaultSessionTTL)

	orderHandler := order.NewHandler(order.HandlerDeps{
		Sessions: sessionStore,
		Provider: provider,
	}, config, logger)

	menuHandler := menu.NewHandler(provider, config, logger)

	ingestHandler := ingest.NewHandler(ingest.HandlerDeps{
		Ingestor: ingestor,
		Store:    dishRepo,
	}, config, logger)

	publisherLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	}

	subLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return sub.Close()
		},
	}

	// Setup demo seeding if enabled
	demoEnabled, _ := config.GetString("seeding.demo")
	var seedHooks apt.LifecycleHooks
	if demoEnabled == "true" {
		logger.Info("Demo seeding enabled")
		seedHooks = apt.LifecycleHooks{
			OnStart: ingest.DemoSeedingFunc(seedCtx, ingestor, logger),
			OnStop: func(context.Context) error {
				cancelSeeds()
				return nil
			},
		}
	}

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger: logger,
	})

	lifecycles := []interface{}{
		apt.LifecycleHooks{OnStop: baseRepo.Stop},
		dishSub,
		publisherLifecycle,
		subLifecycle,
		apt.LifecycleHooks{OnStop: sessionStore.Stop},
	}
	if demoEnabled == "true" {
		lifecycles = append(lifecycles, seedHooks)
	}

	options := []apt.Option{
		apt.WithConfig(config),
		apt.WithLogger(logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", orderHandler, menuHandler, ingestHandler),
		apt.WithLifecycle(lifecycles...),
		apt.WithHealthChecks(appName),
	}

	ms := apt.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	err = ms.Run(ctx)
	if err != nil {
		_ = baseRepo.Stop(context.Background())
		log.Fatalf("%s(%s) stopped: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
