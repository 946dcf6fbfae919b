package config

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 8000
	defaultEnv        = "development"
	defaultBaseURL    = "http://localhost:8000"

	defaultMongoScheme     = "mongodb"
	defaultMongoHost       = "127.0.0.1"
	defaultMongoPort       = 27017
	defaultMongoName       = "sight_data"
	defaultMongoCollection = "artifacts"
	defaultMongoAppName    = "gallery"

	defaultRedisHost = "localhost"
	defaultRedisPort = 6379
	defaultRedisDB   = 0

	defaultDetectionEndpoint = "https://cluster1.overshoot.ai/api/v0.2/vision/analyze"
	defaultDetectionModel    = "Qwen/Qwen3-VL-30B-A3B-Instruct"

	defaultHTTPCacheTTLSeconds     = 15
	defaultTempImageSweepMinutes   = 60
	defaultTempImageRetentionHours = 0 // 0 = directory is not swept

	// MongoPasswordEnv supplies the store password when the YAML omits it.
	MongoPasswordEnv = "MONGODB_PASSWORD"

	// DetectionKeyEnv and DetectionKeyEnvLegacy supply the vision API key.
	// The legacy name is what existing frontend-era deployments already export.
	DetectionKeyEnv       = "OVERSHOOT_API_KEY"
	DetectionKeyEnvLegacy = "NEXT_PUBLIC_OVERSHOOT_API_KEY"
)
