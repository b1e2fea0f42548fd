package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alshuail-fund/internal/config"
	httpapi "alshuail-fund/internal/http"
	"alshuail-fund/internal/repository"
	"alshuail-fund/internal/service"
	"alshuail-fund/internal/store"
	"alshuail-fund/pkg/database"
	pkglogger "alshuail-fund/pkg/logger"
	pkgmqtt "alshuail-fund/pkg/mqtt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	commoncfg "alshuail-fund/pkg/config"
)

func main() {
	cfg := config.Load()

	logger, err := pkglogger.NewLogger(cfg.Log.Level, cfg.Log.Format, "alshuail-fund")
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var kv store.KV
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("Redis unavailable, dashboard statistics served uncached", zap.Error(err))
	} else {
		kv = store.NewRedisKV(redisClient)
	}

	// Member data lives in Postgres. Without a DB the service still comes up
	// on the in-memory store so the API can be exercised in dev.
	var db *sql.DB
	var membersRepo repository.MembersRepository
	var paymentsRepo repository.PaymentsRepository
	var auditRepo repository.AuditRepository
	var notificationsRepo repository.NotificationsRepository
	if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
		db = d
		membersRepo = repository.NewPostgresMembersRepository(db)
		paymentsRepo = repository.NewPostgresPaymentsRepository(db)
		auditRepo = repository.NewPostgresAuditRepository(db)
		notificationsRepo = repository.NewPostgresNotificationsRepository(db)
		logger.Info("Connected to Postgres", zap.String("database", cfg.Database.Database))
	} else {
		logger.Warn("Postgres connection failed, using in-memory store", zap.Error(err))
		mem := repository.NewMemoryRepository()
		membersRepo = mem
		paymentsRepo = mem
		auditRepo = mem
		notificationsRepo = mem
	}

	var sms service.SMSSender
	if cfg.SMS.GatewayURL != "" {
		sms = service.NewSMSClient(cfg.SMS.GatewayURL, cfg.SMS.APIKey, cfg.SMS.Sender, logger)
		logger.Info("SMS gateway enabled", zap.String("url", cfg.SMS.GatewayURL))
	}

	var push service.PushPublisher
	var mqttClient *pkgmqtt.Client
	if cfg.MQTT.Enabled {
		c, err := pkgmqtt.NewClient(&commoncfg.MQTTConfig{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
		})
		if err != nil {
			logger.Warn("MQTT connection failed, push channel disabled", zap.Error(err))
		} else {
			mqttClient = c
			push = service.NewMQTTPush(c, cfg.MQTT.TopicPrefix)
			logger.Info("MQTT push enabled", zap.String("broker", cfg.MQTT.Broker))
		}
	}

	queryService := service.NewMemberQueryService(membersRepo, logger)
	statsService := service.NewStatsService(queryService, kv, cfg.Stats.CacheTTL, logger)
	suspensionService := service.NewSuspensionService(membersRepo, auditRepo, logger)
	notificationService := service.NewNotificationService(membersRepo, notificationsRepo, auditRepo, sms, push, logger)
	statementService := service.NewStatementService(membersRepo, logger)
	paymentService := service.NewPaymentService(paymentsRepo, notificationsRepo, auditRepo, logger)

	router := httpapi.NewRouter(logger)
	router.RegisterMonitoringRoutes(httpapi.NewMonitoringHandler(
		queryService, statsService, suspensionService, notificationService, auditRepo, logger))
	router.RegisterStatementRoutes(httpapi.NewStatementHandler(statementService, logger))
	router.RegisterPaymentRoutes(httpapi.NewPaymentHandler(paymentService, statsService, logger))
	router.RegisterHealthRoute()

	srv := service.NewServer(cfg.HTTP.Addr, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case err := <-errCh:
		logger.Error("HTTP server stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	if db != nil {
		_ = db.Close()
	}
}
