package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRedisAddr            = "REDIS_ADDR"
	EnvRedisPassword        = "REDIS_PASSWORD"
	EnvRedisDB              = "REDIS_DB"
	EnvWorkingHoursCacheTTL = "WORKING_HOURS_CACHE_TTL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvBusinessTimeZone    = "BUSINESS_TIME_ZONE"
	EnvWorkingHoursFile    = "DEFAULT_WORKING_HOURS_FILE"
	EnvSuggestionDaysAhead = "SUGGESTION_DAYS_AHEAD"
	EnvMaxSuggestions      = "MAX_SUGGESTIONS"
	EnvRecurrenceCeiling   = "RECURRENCE_CEILING"

	EnvKafkaEnabled         = "KAFKA_ENABLED"
	EnvAppointmentsTopic    = "KAFKA_APPOINTMENTS_TOPIC"
	EnvAppointmentsDLQTopic = "KAFKA_APPOINTMENTS_DLQ_TOPIC"

	EnvMigrateOnStart = "MIGRATE_ON_START"
)
