package runtime

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"repayment-worker/internal/app/router"
	"repayment-worker/internal/pkg/cleanup"
	"repayment-worker/internal/pkg/config"
	"repayment-worker/internal/pkg/db/mongo"
	"repayment-worker/internal/pkg/db/redis"
	"repayment-worker/internal/pkg/gcs"
	"repayment-worker/internal/pkg/kafka"
	"repayment-worker/internal/pkg/otel"
	"repayment-worker/internal/pkg/store/repository"

	servicekafka "repayment-worker/internal/service/kafka"
	"repayment-worker/internal/service/repayment"

	"repayment-worker/internal/pkg/log_messages"
	"repayment-worker/internal/pkg/logger"
	"repayment-worker/internal/pkg/pubsub"
	pubsubService "repayment-worker/internal/service/pubsub"
)

var (
	connectMongoDB = mongo.ConnectToMongoDB
	connectRedisDB = func(ctx context.Context, cfg config.RedisConfig) (*redis.RedisClient, error) {
		return redis.ConnectToRedis(ctx, cfg, nil)
	}
	newKafkaProducer = kafka.NewKafkaProducer
	newGCSClient     = gcs.NewGCSClient
)

// PubSubConsumer defines the contract for any PubSub consumer
type PubSubConsumer interface {
	Close() error
	Consume(ctx context.Context, sub string, handler func(ctx context.Context, msg []byte) error) error
	StartConsumer(subscription string, handler func(ctx context.Context, msg []byte) error)
}

// PubSubPublisher defines the contract for any PubSub publisher
type PubSubPublisher interface {
	Close() error
	Publish(ctx context.Context, topic string, msg []byte) error
}

// App encapsulates application resources and lifecycle.
type App struct {
	Cfg             *config.AppConfig
	PubSubConsumer  PubSubConsumer
	PubSubPublisher PubSubPublisher
	KafkaProducer   *kafka.KafkaProducer
	KafkaService    *servicekafka.RepaymentKafkaService
	MongoClient     *mongo.MongoClient
	RedisClient     *redis.RedisClient
	HTTPServer      *http.Server
	GcsClient       gcs.GcsInterface
	OtelShutdown    func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadFromConfig()
	if err != nil {
		logger.CtxError(ctx, log_messages.FailedLoadingConfiguration, err)
		return nil, err
	}
	logger.Init(cfg.Logging.LogLevel)

	otelShutdown, err := otel.Setup(ctx, cfg.Otel.ServiceName, cfg.Otel.CollectorURL)
	if err != nil {
		logger.CtxError(ctx, "Failure in OpenTelemetry setup, continuing without tracing", err)
	}

	pubsubConsumer, err := pubsub.NewPubSubConsumer(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		logger.CtxError(ctx, log_messages.FailureInPubsubConsumerCreation, err)
		return nil, err
	}

	pubsubPublisher, err := pubsub.NewPubSubPublisher(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		logger.CtxError(ctx, "Failure in PubSub publisher creation", err)
		return nil, err
	}

	kafkaProducer, err := newKafkaProducer(cfg.Kafka)
	if err != nil {
		logger.CtxError(ctx, "Failure in Kafka producer creation", err)
		return nil, err
	}

	// Wrap kafkaProducer with the service used by the rest of the app
	kafkaService := servicekafka.NewRepaymentKafkaService(kafkaProducer)

	mClient, err := connectMongoDB(ctx, cfg.Mongo)
	if err != nil {
		logger.CtxError(ctx, "Failed to connect to MongoDB", err)
		return nil, err
	}

	rClient, err := connectRedisDB(ctx, cfg.Redis)
	if err != nil {
		logger.CtxError(ctx, "Failed to connect to Redis", err)
		return nil, err
	}

	gcsClient, err := newGCSClient(ctx, cfg.GCS.BucketName)
	if err != nil {
		logger.CtxError(ctx, "Failed to create GCS client", err)
		return nil, err
	}

	return &App{
		Cfg:             cfg,
		PubSubConsumer:  pubsubConsumer,
		PubSubPublisher: pubsubPublisher,
		KafkaProducer:   kafkaProducer,
		KafkaService:    kafkaService,
		MongoClient:     mClient,
		RedisClient:     rClient,
		GcsClient:       gcsClient,
		OtelShutdown:    otelShutdown,
	}, nil
}

// Run starts the PubSub consumer and HTTP server, then blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	redisStore := repository.NewRedisStoreAdapter(a.RedisClient.Client)
	repaymentService := repayment.NewRepaymentService(
		a.MongoClient,
		redisStore,
		a.PubSubPublisher,
		a.KafkaService,
		a.GcsClient,
		a.Cfg.Allocation,
		a.Cfg.PubSub.NotificationTopic,
	)

	// Start PubSub consumer
	pubSubConsumerService := pubsubService.NewPaymentMessageConsumer(repaymentService)
	go a.PubSubConsumer.StartConsumer(a.Cfg.PubSub.PaymentSubscription, pubSubConsumerService.HandlePaymentMessage)

	// Start HTTP server
	engine := router.SetupRouter(ctx, a.MongoClient, a.KafkaProducer, repaymentService, a.Cfg.AuditRepublish)
	a.HTTPServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.CtxError(ctx, log_messages.ServerStartFailure, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.Shutdown(ctx)
	logger.CtxInfo(ctx, log_messages.ServerExiting)
	return nil
}

// Shutdown gracefully closes all resources with bounded timeouts.
func (a *App) Shutdown(ctx context.Context) {
	cleanup.CleanupResources(ctx,
		a.PubSubConsumer,
		a.PubSubPublisher,
		a.KafkaProducer,
		a.MongoClient,
		a.RedisClient,
		a.HTTPServer,
		a.GcsClient,
	)

	if a.OtelShutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.OtelShutdown(shutdownCtx); err != nil {
			logger.CtxError(ctx, "Failed to shutdown OpenTelemetry exporter", err)
		}
	}
}
