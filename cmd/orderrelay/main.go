package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/goevery/orderrelay/internal/auth"
	"github.com/goevery/orderrelay/internal/catalog/mongodb"
	"github.com/goevery/orderrelay/internal/handler"
	"github.com/goevery/orderrelay/internal/order/postgres"
	"github.com/goevery/orderrelay/internal/payment"
	"github.com/goevery/orderrelay/internal/presence"
	"github.com/goevery/orderrelay/internal/relay"
	"github.com/goevery/orderrelay/internal/room"
	"github.com/goevery/orderrelay/internal/server"
	userpostgres "github.com/goevery/orderrelay/internal/user/postgres"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

type App struct {
	logger          *zap.Logger
	settings        Settings
	originChecker   *server.OriginChecker
	websocketServer *server.WebSocketServer
	restServer      *server.RESTServer
	closers         []func()
}

func NewApp(ctx context.Context, logger *zap.Logger, settings Settings) (*App, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	originChecker := server.NewOriginChecker(settings.ClientURL)
	websocketUpgrader := &websocket.Upgrader{
		ReadBufferSize:    1024,
		WriteBufferSize:   1024,
		CheckOrigin:       originChecker.Check,
		EnableCompression: true,
	}

	// One registry and one membership table for the whole process.
	registry := presence.NewInMemoryRegistry(logger.Named("presence"))
	rooms := room.NewInMemoryTable()
	directory := relay.NewDirectory()
	fanout := relay.NewFanout(logger.Named("fanout"), rooms, directory)

	var tokenVerifier handler.TokenVerifier
	if settings.JWTSecret != "" {
		tokenVerifier = auth.NewVerifier(settings.JWTSecret)
	}

	router := server.NewRouter(
		logger,
		handler.NewAuthenticateHandler(logger, registry, tokenVerifier),
		handler.NewJoinOrderHandler(logger, rooms),
		handler.NewTrackingHandler(fanout),
		handler.NewAssignHandler(logger, registry, fanout),
	)

	websocketServer := server.NewWebSocketServer(
		logger,
		websocketUpgrader,
		server.ConnectionSettings{
			SendBufferSize: settings.SendBufferSize,
			PingInterval:   time.Duration(settings.PingIntervalSeconds) * time.Second,
		},
		directory,
		registry,
		rooms,
		router,
	)

	app := &App{
		logger:          logger,
		settings:        settings,
		originChecker:   originChecker,
		websocketServer: websocketServer,
	}

	database, err := app.setupDatabase(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	catalogHandler, err := app.setupCatalog(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	app.restServer = server.NewRESTServer(
		logger,
		database.orderHandler,
		database.paymentHandler,
		database.userHandler,
		catalogHandler,
	)

	return app, nil
}

type databaseHandlers struct {
	orderHandler   handler.OrderHandlerInterface
	paymentHandler handler.PaymentHandlerInterface
	userHandler    handler.UserHandlerInterface
}

// setupDatabase leaves every handler nil when no database is configured; the
// relay itself never depends on them.
func (a *App) setupDatabase(ctx context.Context) (databaseHandlers, error) {
	var handlers databaseHandlers

	if a.settings.DatabaseURL == "" {
		a.logger.Warn("DATABASE_URL not set, order and user endpoints disabled")
		return handlers, nil
	}

	pool, err := postgres.Connect(ctx, a.settings.DatabaseURL, a.settings.DatabaseMaxConns)
	if err != nil {
		return handlers, fmt.Errorf("connect postgres: %w", err)
	}
	a.closers = append(a.closers, pool.Close)

	store := postgres.NewStore(pool)
	handlers.orderHandler = handler.NewOrderHandler(store)
	handlers.userHandler = handler.NewUserHandler(userpostgres.NewStore(pool))

	if a.settings.RazorpayKeySecret == "" {
		a.logger.Warn("RAZORPAY_KEY_SECRET not set, payment verification disabled")
		return handlers, nil
	}

	verifier := payment.NewSignatureVerifier(a.settings.RazorpayKeySecret)
	handlers.paymentHandler = handler.NewPaymentHandler(verifier, store)

	return handlers, nil
}

func (a *App) setupCatalog(ctx context.Context) (handler.CatalogHandlerInterface, error) {
	if a.settings.MongoURI == "" {
		a.logger.Warn("MONGODB_URI not set, catalog endpoints disabled")
		return nil, nil
	}

	client, err := mongo.Connect(options.Client().ApplyURI(a.settings.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	a.closers = append(a.closers, func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	})

	shopCatalog := mongodb.NewCatalog(client, a.settings.MongoDatabase)
	if err := shopCatalog.Setup(ctx); err != nil {
		return nil, fmt.Errorf("setup catalog indexes: %w", err)
	}

	return handler.NewCatalogHandler(shopCatalog), nil
}

func (a *App) startHttpServer(ctx context.Context) {
	notifyCtx, notifyCtxCancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer notifyCtxCancel()

	address := fmt.Sprintf("0.0.0.0:%d", a.settings.Port)

	root := mux.NewRouter()
	router := root
	if a.settings.BasePath != "" {
		router = root.PathPrefix(a.settings.BasePath).Subrouter()
	}

	a.websocketServer.Register(router)
	a.restServer.Register(router)

	httpServer := &http.Server{
		Addr:    address,
		Handler: a.originChecker.Middleware(root),
	}

	a.logger.Info("starting http server",
		zap.String("address", address),
		zap.String("clientOrigin", a.settings.ClientURL))

	go func() {
		err := httpServer.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("failed to start http server",
				zap.Error(err))
		}
	}()

	<-notifyCtx.Done()

	a.logger.Info("stopping http server")

	shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCtxCancel()

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http server shutdown failed",
			zap.Error(err))
	}

	a.logger.Info("http server stopped")
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func main() {
	ctx := context.Background()

	var settings Settings
	_, err := env.UnmarshalFromEnviron(&settings)
	if err != nil {
		panic(fmt.Errorf("failed to parse settings from environment: %w", err))
	}

	logger, err := buildZapLogger(settings.LogEncoding)
	if err != nil {
		panic(fmt.Errorf("failed to build logger: %w", err))
	}
	defer logger.Sync()

	setupCtx, setupCtxCancel := context.WithTimeout(ctx, 30*time.Second)
	app, err := NewApp(setupCtx, logger, settings)
	setupCtxCancel()
	if err != nil {
		logger.Fatal("failed to setup", zap.Error(err))
	}
	defer app.close()

	app.startHttpServer(ctx)
}
