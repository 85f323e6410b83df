package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brandconnect/config"
	"brandconnect/cron"
	"brandconnect/database"
	bookingRepo "brandconnect/database/repository/booking"
	messagingRepo "brandconnect/database/repository/messaging"
	notificationRepo "brandconnect/database/repository/notification"
	paymentRepo "brandconnect/database/repository/payment"
	userRepoPkg "brandconnect/database/repository/user"
	"brandconnect/handlers"
	"brandconnect/middleware"
	"brandconnect/routes"
	"brandconnect/services/booking"
	"brandconnect/services/messaging"
	"brandconnect/services/notification"
	"brandconnect/services/payment"
	"brandconnect/services/tasks"
	"brandconnect/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	sugar := logger.Sugar()

	database.InitDB()
	utils.InitRedis()

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer bootCancel()

	if config.AppConfig.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger())

	// repositories.
	bookings := bookingRepo.NewMongoBookingRepo()
	payments := paymentRepo.NewMongoPaymentRepo()
	conversations := messagingRepo.NewMongoMessagingRepo()
	notifications := notificationRepo.NewMongoNotificationRepo()
	users := userRepoPkg.NewMongoUserRepo()

	locker := utils.NewRedisLocker(utils.GetCacheClient(), utils.LockPrefix, utils.LockTTL)

	// outbound channels.
	emailClient, smsClient, err := notification.NewAWSChannels(bootCtx, config.AppConfig.AWSRegion)
	if err != nil {
		sugar.Fatalf("main: failed to load AWS configuration: %v", err)
	}
	var pusher notification.Pusher
	fcm, err := utils.FirebaseInit(bootCtx)
	if err != nil {
		sugar.Warnf("main: firebase unavailable, push disabled: %v", err)
	} else if fcm != nil {
		pusher = fcm
	}

	queueOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
	queue := asynq.NewClient(queueOpts)

	// services.
	notificationService, err := notification.NewDefaultNotificationService(
		notifications, users, emailClient, smsClient, pusher, logger,
		notification.Options{
			EmailFrom:   config.AppConfig.EmailFrom,
			SMSSenderID: config.AppConfig.SMSSenderID,
			Timeout:     config.AppConfig.ExternalCallTimeout,
		},
	)
	if err != nil {
		sugar.Fatalf("main: %v", err)
	}

	paymentService, err := payment.NewDefaultPaymentService(
		payments,
		payment.NewStripeGateway(config.AppConfig.StripeKey),
		locker,
		logger,
		payment.Options{
			DefaultCurrency: config.AppConfig.DefaultCurrency,
			CallTimeout:     config.AppConfig.ExternalCallTimeout,
			ConfirmTimeout:  config.AppConfig.PaymentConfirmTimeout,
		},
	)
	if err != nil {
		sugar.Fatalf("main: %v", err)
	}

	bookingService, err := booking.NewDefaultBookingService(
		bookings, users, paymentService, notificationService,
		tasks.NewReminderScheduler(queue), locker, logger,
	)
	if err != nil {
		sugar.Fatalf("main: %v", err)
	}
	paymentService.Bookings = bookingService

	feed := messaging.NewRedisFeed(utils.GetFeedClient(), logger)
	messagingService, err := messaging.NewDefaultMessagingService(conversations, feed, logger)
	if err != nil {
		sugar.Fatalf("main: %v", err)
	}

	// background work.
	worker := cron.NewReminderWorker(bookings, users, notificationService, logger)
	reminderServer := cron.InitReminderWorker(worker, queueOpts)

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	utils.StartHealthMonitor(monitorCtx,
		[]*redis.Client{utils.GetCacheClient(), utils.GetFeedClient()},
		database.MongoClient,
	)

	handlerBundle := &handlers.HandlerBundle{
		Booking: &handlers.BookingHandler{Bookings: bookingService, Users: users},
		Payment: &handlers.PaymentHandler{
			Payments: paymentService,
			Receipts: notificationService,
			Users:    users,
		},
		Messaging: &handlers.MessagingHandler{
			Messages:  messagingService,
			Feed:      feed,
			Heartbeat: 25 * time.Second,
		},
		Notification: &handlers.NotificationHandler{Notifications: notificationService},
	}

	routes.RegisterRoutes(router, handlerBundle, middleware.NewRateLimiterStore(config.AppConfig.MaxRequestsPerMin))

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	sugar.Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugar.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		sugar.Errorf("main: server forced to shutdown: %v", err)
	}

	reminderServer.Shutdown()
	if err := queue.Close(); err != nil {
		sugar.Warnf("main: closing task queue: %v", err)
	}
	stopMonitor()
	if err := database.Disconnect(ctx); err != nil {
		sugar.Warnf("main: closing database: %v", err)
	}
	_ = logger.Sync()

	sugar.Info("main: server stopped gracefully")
}
