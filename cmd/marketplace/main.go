package main

import (
	adminhandler "srida/internal/admin/handler"
	adminservice "srida/internal/admin/service"
	"srida/internal/bookings/events"
	bookingshandler "srida/internal/bookings/handler"
	bookingsrepo "srida/internal/bookings/repository"
	bookingsservice "srida/internal/bookings/service"
	bookingsvalidator "srida/internal/bookings/validator"
	messageshandler "srida/internal/messages/handler"
	messagesrepo "srida/internal/messages/repository"
	messagesservice "srida/internal/messages/service"
	messagesvalidator "srida/internal/messages/validator"
	serviceshandler "srida/internal/services/handler"
	servicesrepo "srida/internal/services/repository"
	servicesservice "srida/internal/services/service"
	servicesvalidator "srida/internal/services/validator"
	usersrepo "srida/internal/users/repository"
	usersservice "srida/internal/users/service"
	wishlisthandler "srida/internal/wishlist/handler"
	wishlistrepo "srida/internal/wishlist/repository"
	wishlistservice "srida/internal/wishlist/service"
	"srida/pkg/app"
	"srida/pkg/config"
	"srida/pkg/contracts"
	"srida/pkg/kafka"
	kafkaconfig "srida/pkg/kafka/config"
	kafkamiddleware "srida/pkg/kafka/middleware"
)

const ServiceName = "marketplace"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting marketplace service")

	publisher, closeProducer := initPublisher(cfg)
	defer closeProducer()

	handlers := initHandlers(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handlers...)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) (events.Publisher, func()) {
	kafkaCfg := kafkaconfig.Load()
	if !kafkaCfg.Enabled() {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NewNopPublisher(), func() {}
	}
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, events.Topic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))

	cfg.Log.Info("Kafka producer initialized", "topic", events.Topic)
	return events.NewKafkaPublisher(producer, cfg.Log), func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}
}

func initHandlers(cfg *config.Config, publisher events.Publisher) []contracts.Handler {
	userRepo := usersrepo.NewMongoUserRepository(cfg)
	userService := usersservice.NewUserService(userRepo, cfg)

	serviceRepo := servicesrepo.NewMongoServiceRepository(cfg)
	serviceService := servicesservice.NewServiceService(
		serviceRepo,
		userService,
		servicesvalidator.NewServiceValidator(cfg.Log),
		cfg,
	)

	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		serviceRepo,
		userService,
		publisher,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)

	messageRepo := messagesrepo.NewMongoMessageRepository(cfg)
	messageService := messagesservice.NewMessageService(
		messageRepo,
		userService,
		messagesvalidator.NewMessageValidator(cfg.Log),
		cfg,
	)

	wishlistRepo := wishlistrepo.NewMongoWishlistRepository(cfg)
	wishlistService := wishlistservice.NewWishlistService(wishlistRepo, serviceRepo, cfg)

	adminService := adminservice.NewAdminService(
		userService,
		serviceService,
		serviceRepo,
		bookingService,
		bookingRepo,
		cfg,
	)

	cfg.Log.Info("Marketplace services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		serviceshandler.NewServiceHandler(serviceService, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		messageshandler.NewMessageHandler(messageService, cfg.Log),
		wishlisthandler.NewWishlistHandler(wishlistService, cfg.Log),
		adminhandler.NewAdminHandler(adminService, cfg.Log),
	}
}
