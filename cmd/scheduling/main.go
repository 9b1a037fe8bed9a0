package main

import (
	"context"
	_ "time/tzdata"

	apptHandler "clinicsched/internal/appointments/handler"
	apptRepository "clinicsched/internal/appointments/repository"
	apptService "clinicsched/internal/appointments/service"
	apptValidator "clinicsched/internal/appointments/validator"
	btHandler "clinicsched/internal/blockedtimes/handler"
	btRepository "clinicsched/internal/blockedtimes/repository"
	btService "clinicsched/internal/blockedtimes/service"
	btValidator "clinicsched/internal/blockedtimes/validator"
	"clinicsched/internal/events"
	migrations "clinicsched/internal/migrations/mongo"
	"clinicsched/internal/scheduling/availability"
	"clinicsched/internal/scheduling/conflict"
	"clinicsched/internal/scheduling/facade"
	schedHandler "clinicsched/internal/scheduling/handler"
	whCache "clinicsched/internal/workinghours/cache"
	whHandler "clinicsched/internal/workinghours/handler"
	whLoader "clinicsched/internal/workinghours/loader"
	whRepository "clinicsched/internal/workinghours/repository"
	whService "clinicsched/internal/workinghours/service"
	whValidator "clinicsched/internal/workinghours/validator"
	"clinicsched/pkg/app"
	"clinicsched/pkg/config"
	"clinicsched/pkg/contracts"
	"clinicsched/pkg/kafka"
	kafka_config "clinicsched/pkg/kafka/config"
	kafkaMiddleware "clinicsched/pkg/kafka/middleware"
	"clinicsched/pkg/metrics"
)

const ServiceName = "scheduling"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()
	metrics.Register()

	if cfg.MigrateOnStart {
		if err := migrations.RunMigration(context.Background(), cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
			cfg.Log.Fatal("Migration failed", "error", err)
		}
	}

	cfg.Log.Info("Starting Scheduling service")
	publisher := initPublisher(cfg)
	handlers := initHandlers(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.SetApp(handlers...)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, domain events are not published")
		return events.NoopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.AppointmentsTopic, cfg.AppointmentsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafkaMiddleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafkaMiddleware.MetricsProducerMiddleware())
	}

	cfg.Log.Info("Kafka producer initialized", "topic", cfg.AppointmentsTopic, "dlq_topic", cfg.AppointmentsDLQTopic)
	return events.NewKafkaPublisher(producer, kafkaCfg.PublishTimeout, cfg.Log)
}

func initHandlers(cfg *config.Config, publisher events.Publisher) []contracts.Handler {
	fileDefault, err := whLoader.Load(cfg.WorkingHoursFile, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to load default working hours", "path", cfg.WorkingHoursFile, "error", err)
	}

	hoursService := whService.NewWorkingHoursService(
		whRepository.NewMongoWorkingHoursRepository(cfg),
		whCache.NewRedisCache(cfg.Client.Redis, cfg.WorkingHoursCacheTTL, cfg.Log),
		whValidator.NewWorkingHoursValidator(cfg.Log),
		fileDefault,
		cfg.Log,
	)

	appointmentRepo := apptRepository.NewMongoAppointmentRepository(cfg)
	blockedTimeRepo := btRepository.NewMongoBlockedTimeRepository(cfg)

	sources := conflict.Sources{
		Appointments: appointmentRepo,
		BlockedTimes: blockedTimeRepo,
		Hours:        hoursService,
		Location:     cfg.Location,
		Log:          cfg.Log,
	}
	detector := conflict.NewDetector(sources)
	calculator := availability.NewCalculator(sources,
		availability.WithDaysAhead(cfg.SuggestionDaysAhead),
		availability.WithMaxSuggestions(cfg.MaxSuggestions),
	)
	detector.SetSuggester(calculator)
	scheduler := facade.New(detector, cfg.Location, cfg.RecurrenceCeiling, cfg.Log)

	appointmentService := apptService.NewAppointmentService(
		appointmentRepo,
		apptRepository.NewMongoScopeLockRepository(cfg),
		scheduler,
		apptValidator.NewAppointmentValidator(cfg.Log),
		publisher,
		cfg.Log,
	)
	blockedTimeService := btService.NewBlockedTimeService(
		blockedTimeRepo,
		btValidator.NewBlockedTimeValidator(cfg.Log),
		publisher,
		cfg.Location,
		cfg.RecurrenceCeiling,
		cfg.Log,
	)

	cfg.Log.Info("Scheduling service initialized",
		"database", cfg.MongoDatabaseName,
		"time_zone", cfg.BusinessTimeZone,
		"recurrence_ceiling", cfg.RecurrenceCeiling,
	)

	return []contracts.Handler{
		apptHandler.NewAppointmentHandler(appointmentService, cfg.Location, cfg.Log),
		btHandler.NewBlockedTimeHandler(blockedTimeService, cfg.Log),
		schedHandler.NewCheckHandler(scheduler, cfg),
		schedHandler.NewAvailabilityHandler(calculator, cfg),
		whHandler.NewWorkingHoursHandler(hoursService, cfg.Log),
	}
}
