package main

import (
	"context"
	"log"
	"time"

	"maybach_liquor/internal/admin"
	"maybach_liquor/internal/auth"
	"maybach_liquor/internal/cache"
	"maybach_liquor/internal/cart"
	"maybach_liquor/internal/checkout"
	"maybach_liquor/internal/config"
	"maybach_liquor/internal/database"
	"maybach_liquor/internal/handlers"
	"maybach_liquor/internal/logger"
	"maybach_liquor/internal/middleware"
	"maybach_liquor/internal/payment"
	"maybach_liquor/internal/routes"
	"maybach_liquor/internal/services"
	"maybach_liquor/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const startupTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := cfg.Validate(); err != nil {
		zlog.Fatal("❌ Configuration invalide", zap.Error(err))
	}

	if cfg.EnvFileLoaded {
		zlog.Info("✅ Fichier .env chargé")
	} else {
		zlog.Info("⚠️ Pas de fichier .env, variables système utilisées")
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	store, err := database.NewMemoryStore(database.DefaultFixtures())
	if err != nil {
		zlog.Fatal("❌ Chargement des fixtures impossible", zap.Error(err))
	}
	zlog.Info("✅ Fixtures chargées")

	storage, broker := initStorage(ctx, cfg, zlog)

	tokens, err := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		zlog.Fatal("❌ Émetteur JWT impossible", zap.Error(err))
	}

	ledger := payment.NewLedger(payment.SampleTransactions(time.Now()))
	mailer := utils.NewMailer(utils.MailConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}, zlog)
	notifier := utils.NewNotifier(mailer, zlog)

	var card payment.CardProcessor
	if cfg.StripeSecretKey != "" {
		card = payment.NewStripeCard(cfg.StripeSecretKey, zlog)
		zlog.Info("✅ Stripe initialisé")
	} else {
		card = payment.NewSimulatedCard(cfg.CardDelay, zlog)
		zlog.Info("⚠️ STRIPE_SECRET_KEY absent, paiement carte simulé")
	}
	mpesa := payment.NewSimulatedMpesa(ledger, cfg.MpesaRequestDelay, cfg.MpesaConfirmDelay, zlog)

	var searcher services.ProductSearcher
	if cfg.ElasticURL != "" {
		es, err := services.NewElasticSearcher(cfg.ElasticURL, cfg.ElasticUser, cfg.ElasticPassword, zlog)
		if err != nil {
			zlog.Warn("⚠️ Elasticsearch indisponible, recherche en mémoire", zap.Error(err))
		} else {
			products, _ := store.ListProducts(ctx)
			if err := es.IndexAll(ctx, products); err != nil {
				zlog.Warn("⚠️ Indexation initiale échouée", zap.Error(err))
			}
			searcher = es
			zlog.Info("✅ Elasticsearch connecté", zap.String("url", cfg.ElasticURL))
		}
	}

	var images services.ImageStore
	if cfg.MinioEndpoint != "" {
		m, err := services.NewMinioImageStore(services.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		}, zlog)
		if err == nil {
			err = m.EnsureBucket(ctx)
		}
		if err != nil {
			zlog.Warn("⚠️ MinIO indisponible, upload d'images désactivé", zap.Error(err))
		} else {
			images = m
			zlog.Info("✅ MinIO connecté", zap.String("bucket", cfg.MinioBucket))
		}
	}

	carts := cart.NewManager(storage, store, broker, zlog)
	sessions := auth.NewManager(storage, store, cfg.AuthLatency, zlog)

	h := &handlers.Handler{
		Catalog: services.NewCatalog(store, searcher, zlog),
		Carts:   carts,
		Broker:  broker,
		Auth:    sessions,
		Tokens:  tokens,
		Checkout: checkout.NewService(checkout.Deps{
			Carts:    carts,
			Products: store,
			Orders:   store,
			Mpesa:    mpesa,
			Card:     card,
			Notifier: notifier,
			Log:      zlog,
		}),
		Admin:          admin.NewService(store, ledger, notifier, cfg.LowStockThreshold, zlog),
		Orders:         store,
		Images:         images,
		Notifier:       notifier,
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            zlog,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, h, middleware.NewCookieStore(cfg.SessionSecret, cfg.IsProduction()))

	zlog.Info("🚀 Serveur Maybach Liquor lancé", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("❌ Arrêt du serveur", zap.Error(err))
	}
}

// initStorage choisit Redis si REDIS_HOST est défini : stockage local et diffusion
// des paniers passent alors par lui. Sinon tout reste en mémoire.
func initStorage(ctx context.Context, cfg config.Config, zlog *zap.Logger) (cache.Storage, cart.Broker) {
	if cfg.RedisHost == "" {
		zlog.Info("⚠️ REDIS_HOST absent, stockage local en mémoire")
		return cache.NewMemoryStorage(), cart.NewMemoryBroker()
	}
	client, err := database.ConnectRedis(ctx, cfg.RedisHost, cfg.RedisPassword)
	if err != nil {
		zlog.Warn("⚠️ Redis injoignable, stockage local en mémoire", zap.Error(err))
		return cache.NewMemoryStorage(), cart.NewMemoryBroker()
	}
	zlog.Info("✅ Redis connecté", zap.String("addr", cfg.RedisHost))
	return cache.NewRedisStorage(client, cfg.StorageTTL), cart.NewRedisBroker(client, zlog)
}
