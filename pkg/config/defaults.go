package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "clinicsched"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRedisAddr            = ""
	DefaultRedisDB              = 0
	DefaultWorkingHoursCacheTTL = 5 * time.Minute

	DefaultRateLimitRequests = 120
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBusinessTimeZone     = "UTC"
	DefaultWorkingHoursFile     = "configs/working_hours.yaml"
	DefaultSuggestionDaysAhead  = 7
	DefaultMaxSuggestions       = 3
	DefaultRecurrenceCeiling    = 52
	DefaultPaginationLimit      = 100
	DefaultKafkaEnabled         = false
	DefaultAppointmentsTopic    = "scheduling.appointments"
	DefaultAppointmentsDLQTopic = "scheduling.appointments.dlq"
	DefaultMigrateOnStart       = false
	DefaultLogLevel             = "info"
)
