package config

import "strings"

func normalizeMongoConfig(cfg MongoRuntimeConfig) MongoRuntimeConfig {
	cfg.URI = strings.TrimSpace(cfg.URI)
	cfg.URL = strings.TrimSpace(cfg.URL)
	cfg.Scheme = strings.ToLower(strings.TrimSpace(cfg.Scheme))
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.User = strings.TrimSpace(cfg.User)
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.Password = strings.TrimSpace(cfg.Password)
	cfg.Name = strings.TrimSpace(cfg.Name)
	cfg.DBName = strings.TrimSpace(cfg.DBName)
	cfg.Collection = strings.TrimSpace(cfg.Collection)
	cfg.AppName = strings.TrimSpace(cfg.AppName)

	if cfg.User == "" && cfg.Username != "" {
		cfg.User = cfg.Username
	}
	if cfg.Name == "" && cfg.DBName != "" {
		cfg.Name = cfg.DBName
	}
	if cfg.Scheme != "mongodb" && cfg.Scheme != "mongodb+srv" {
		cfg.Scheme = defaultMongoScheme
	}
	if cfg.Host == "" {
		cfg.Host = defaultMongoHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultMongoPort
	}
	if cfg.Name == "" {
		cfg.Name = defaultMongoName
	}
	if cfg.Collection == "" {
		cfg.Collection = defaultMongoCollection
	}
	if cfg.AppName == "" {
		cfg.AppName = defaultMongoAppName
	}
	if cfg.Params != nil {
		cfg.Params = copyStringMap(cfg.Params)
	}
	return cfg
}

func normalizeRedisConfig(cfg RedisRuntimeConfig) RedisRuntimeConfig {
	cfg.URL = normalizeRedisRawURL(cfg.URL)
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.Password = strings.TrimSpace(cfg.Password)
	cfg.Scheme = strings.ToLower(strings.TrimSpace(cfg.Scheme))

	if cfg.Host == "" && cfg.URL == "" {
		cfg.Host = defaultRedisHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultRedisPort
	}
	if cfg.DB < 0 {
		cfg.DB = defaultRedisDB
	}
	if cfg.Scheme == "" {
		if cfg.TLS {
			cfg.Scheme = "rediss"
		} else {
			cfg.Scheme = "redis"
		}
	}
	if cfg.Params != nil {
		cfg.Params = copyStringMap(cfg.Params)
	}
	return cfg
}

func normalizeRedisRawURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "redis://") || strings.HasPrefix(trimmed, "rediss://") {
		return trimmed
	}
	return "redis://" + trimmed
}

func normalizeDetectionConfig(cfg DetectionRuntimeConfig) DetectionRuntimeConfig {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	cfg.Model = strings.TrimSpace(cfg.Model)

	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultDetectionEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaultDetectionModel
	}
	return cfg
}

func normalizeHTTPCacheConfig(cfg HTTPCacheConfig) HTTPCacheConfig {
	if cfg.TTLSeconds <= 0 {
		cfg.TTLSeconds = defaultHTTPCacheTTLSeconds
	}
	return cfg
}

func normalizeTempImagesConfig(cfg TempImagesConfig) TempImagesConfig {
	if cfg.RetentionHours < 0 {
		cfg.RetentionHours = defaultTempImageRetentionHours
	}
	if cfg.SweepIntervalMins <= 0 {
		cfg.SweepIntervalMins = defaultTempImageSweepMinutes
	}
	return cfg
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	if trimmed == "" {
		return defaultEnv
	}
	return trimmed
}

func normalizeBaseURL(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return defaultBaseURL
	}
	return trimmed
}

func normalizeRuntimePaths(paths RuntimePathsConfig) RuntimePathsConfig {
	paths.Logs = strings.TrimSpace(paths.Logs)
	paths.TempImages = strings.TrimSpace(paths.TempImages)
	return paths
}

func copyStringMap(input map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}
