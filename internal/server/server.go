package server

import (
	"context"
	"os"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/chainpass/chainpass-api/internal/client/chain"
	"github.com/chainpass/chainpass-api/internal/config"
	"github.com/chainpass/chainpass-api/internal/db"
	"github.com/chainpass/chainpass-api/internal/events"
	"github.com/chainpass/chainpass-api/internal/handlers"
	"github.com/chainpass/chainpass-api/internal/logger"
	"github.com/chainpass/chainpass-api/internal/notify"
	"github.com/chainpass/chainpass-api/internal/services"
	"github.com/chainpass/chainpass-api/internal/wallet"
)

var (
	ticketHandler *handlers.TicketHandler

	chainClient *chain.Client
	dbPool      *pgxpool.Pool
)

// InitializeHandlers wires the chain client, wallet session, storage, and
// purchase session together from the loaded configuration.
func InitializeHandlers(cfg *config.Config) {
	ctx := context.Background()

	// Wallet session. Without a configured key the service runs with a
	// disconnected wallet: price reads still work, purchases are refused
	// with the connect-wallet warning.
	var walletSession wallet.Session
	if cfg.WalletPrivateKey != "" {
		session, err := wallet.NewLocalSession(cfg.WalletPrivateKey)
		if err != nil {
			logger.Fatal("Unable to load wallet session", zap.Error(err))
		}
		walletSession = session
		logger.Info("Wallet session connected", zap.String("address", session.Address().Hex()))
	} else {
		walletSession = wallet.Disconnected()
		logger.Warn("No wallet key configured; purchases are disabled")
	}

	var err error
	chainClient, err = chain.NewClient(cfg.ChainRPCURL, cfg.TicketContractAddress, cfg.ChainID, walletSession)
	if err != nil {
		logger.Fatal("Unable to create chain client", zap.Error(err))
	}

	// Ticket store is optional; without a database the list endpoints are
	// unavailable but purchases still work.
	var store db.TicketStore
	if cfg.DatabaseURL != "" {
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Unable to parse database connection string", zap.Error(err))
		}

		poolConfig.MaxConns = 20
		poolConfig.MinConns = 5
		poolConfig.MaxConnLifetime = time.Hour
		poolConfig.MaxConnIdleTime = time.Minute * 30

		dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			logger.Fatal("Unable to create connection pool", zap.Error(err))
		}

		ticketStore := db.NewStore(dbPool)
		if err := ticketStore.EnsureSchema(ctx); err != nil {
			logger.Fatal("Unable to ensure database schema", zap.Error(err))
		}
		store = ticketStore
	} else {
		logger.Warn("No DATABASE_URL configured; ticket listing is disabled")
	}

	// Notifications go to the log, and to the frontend relay when one is
	// configured.
	var notifier notify.Notifier = notify.NewLogNotifier()
	if cfg.NotifyWebhookURL != "" {
		notifier = notify.NewMultiNotifier(notifier, notify.NewWebhookNotifier(cfg.NotifyWebhookURL))
	}

	// The refresh signal always goes to the in-process bus; an SQS queue is
	// added for out-of-process ticket-list consumers when configured.
	var broadcaster events.Broadcaster = events.NewBus()
	if cfg.RefreshQueueURL != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			logger.Fatal("Unable to load AWS SDK config", zap.Error(err))
		}
		sqsBroadcaster := events.NewSQSBroadcaster(sqs.NewFromConfig(awsCfg), cfg.RefreshQueueURL)
		broadcaster = events.NewMultiBroadcaster(broadcaster, sqsBroadcaster)
	}

	var receipts services.ReceiptSender
	if cfg.ResendAPIKey != "" && cfg.BuyerEmail != "" {
		receipts = services.NewEmailService(cfg.ResendAPIKey, cfg.ReceiptFromEmail, cfg.ReceiptFromName, cfg.BuyerEmail, logger.Log)
	}

	// The handler spawns one purchase session per request from these
	// shared dependencies.
	sessionParams := services.PurchaseSessionParams{
		Contract:        chainClient,
		Wallet:          walletSession,
		Notifier:        notifier,
		Broadcaster:     broadcaster,
		Store:           store,
		Receipts:        receipts,
		DefaultReceiver: cfg.DefaultReceiverAddress,
	}

	ticketHandler = handlers.NewTicketHandler(chainClient, sessionParams, store, logger.Log)
}

// InitializeRoutes registers middleware and the API routes.
func InitializeRoutes(router *gin.Engine) {
	router.Use(configureCORS())

	router.GET("/health", handlers.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/events/:event_id/price", ticketHandler.GetEventPrice)

		tickets := v1.Group("/tickets")
		{
			tickets.POST("/purchase", ticketHandler.PurchaseTicket)
			tickets.GET("", ticketHandler.ListTickets)
			tickets.GET("/:tx_hash", ticketHandler.GetTicket)
		}
	}
}

// Shutdown releases the chain and database connections.
func Shutdown() {
	if chainClient != nil {
		chainClient.Close()
	}
	if dbPool != nil {
		dbPool.Close()
	}
}

// configureCORS returns a configured CORS middleware
func configureCORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		// Default to localhost if not set
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		origins := strings.Split(originsEnv, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		corsConfig.AllowOrigins = origins
	}

	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = os.Getenv("CORS_ALLOW_CREDENTIALS") == "true"

	return cors.New(corsConfig)
}
