// Package config loads runtime configuration from YAML with environment
// fallbacks for secrets.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML config at configPath. Unknown keys are rejected so
// typos surface at boot. A missing file is not an error: the service runs
// on defaults plus environment variables, like the deployments it replaced.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	raw := rawAppConfig{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	applyRawAppConfig(&cfg, raw)
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	if cfg.Database.Port < 1 || cfg.Database.Port > 65535 {
		return nil, fmt.Errorf("invalid database.port %d in %q, expected 1-65535", cfg.Database.Port, path)
	}
	if cfg.Redis.Port < 1 || cfg.Redis.Port > 65535 {
		return nil, fmt.Errorf("invalid redis.port %d in %q, expected 1-65535", cfg.Redis.Port, path)
	}
	if cfg.Redis.DB < 0 {
		return nil, fmt.Errorf("invalid redis.db %d in %q, expected >= 0", cfg.Redis.DB, path)
	}

	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	cfg := AppConfig{
		Port:    defaultPort,
		Env:     defaultEnv,
		BaseURL: defaultBaseURL,
		Database: MongoRuntimeConfig{
			Scheme:     defaultMongoScheme,
			Host:       defaultMongoHost,
			Port:       defaultMongoPort,
			Name:       defaultMongoName,
			Collection: defaultMongoCollection,
			AppName:    defaultMongoAppName,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		Detection: DetectionRuntimeConfig{
			Endpoint: defaultDetectionEndpoint,
			Model:    defaultDetectionModel,
		},
		HTTPCache: HTTPCacheConfig{
			TTLSeconds: defaultHTTPCacheTTLSeconds,
		},
		TempImages: TempImagesConfig{
			RetentionHours:    defaultTempImageRetentionHours,
			SweepIntervalMins: defaultTempImageSweepMinutes,
		},
	}
	cfg.Database = normalizeMongoConfig(cfg.Database)
	cfg.Redis = normalizeRedisConfig(cfg.Redis)
	cfg.Detection = normalizeDetectionConfig(cfg.Detection)
	return cfg
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.NodeEnv); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(raw.PublicURL); v != "" {
		cfg.BaseURL = v
	}

	cfg.Database = applyRawMongoConfig(cfg.Database, raw)
	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw)
	cfg.Detection = applyRawDetectionConfig(cfg.Detection, raw)

	if raw.HTTPCache.Enable != nil {
		cfg.HTTPCache.Enable = *raw.HTTPCache.Enable
		cfg.HTTPCache.HasEnable = true
	}
	if raw.HTTPCache.TTLSeconds != 0 {
		cfg.HTTPCache.TTLSeconds = raw.HTTPCache.TTLSeconds
	}
	if raw.TempImages.RetentionHours != nil {
		cfg.TempImages.RetentionHours = *raw.TempImages.RetentionHours
	}
	if raw.TempImages.SweepIntervalMins != nil {
		cfg.TempImages.SweepIntervalMins = *raw.TempImages.SweepIntervalMins
	}

	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.LogsDir); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.Paths.TempImages); v != "" {
		cfg.Paths.TempImages = v
	}
	if v := strings.TrimSpace(raw.TempImageDir); v != "" {
		cfg.Paths.TempImages = v
	}
	if v := strings.TrimSpace(raw.TempImagesDir); v != "" {
		cfg.Paths.TempImages = v
	}

	switch {
	case raw.AllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	case raw.CORSAllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.CORSAllowedOrigins)
	}

	if v := strings.TrimSpace(raw.Timezone); v != "" {
		cfg.Timezone = v
	}
	if v := strings.TrimSpace(raw.TimeZone); v != "" {
		cfg.Timezone = v
	}
	if v := strings.TrimSpace(raw.TZ); v != "" {
		cfg.Timezone = v
	}

	cfg.HTTPCache = normalizeHTTPCacheConfig(cfg.HTTPCache)
	cfg.TempImages = normalizeTempImagesConfig(cfg.TempImages)
	cfg.Paths = normalizeRuntimePaths(cfg.Paths)
	cfg.BaseURL = normalizeBaseURL(cfg.BaseURL)
	cfg.Env = normalizeEnv(cfg.Env)
}

func applyRawMongoConfig(current MongoRuntimeConfig, raw rawAppConfig) MongoRuntimeConfig {
	cfg := current
	if v := strings.TrimSpace(raw.Database.URI); v != "" {
		cfg.URI = v
	}
	if v := strings.TrimSpace(raw.Database.URL); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(raw.MongoURI); v != "" {
		cfg.URI = v
	}
	if v := strings.TrimSpace(raw.MongoDBURI); v != "" {
		cfg.URI = v
	}
	if v := strings.TrimSpace(raw.Database.Scheme); v != "" {
		cfg.Scheme = v
	}
	if raw.Database.SRV != nil {
		if *raw.Database.SRV {
			cfg.Scheme = "mongodb+srv"
		} else {
			cfg.Scheme = "mongodb"
		}
	}
	if v := strings.TrimSpace(raw.Database.Host); v != "" {
		cfg.Host = v
	}
	if raw.Database.Port != 0 {
		cfg.Port = raw.Database.Port
	}
	if v := strings.TrimSpace(raw.Database.User); v != "" {
		cfg.User = v
	}
	if v := strings.TrimSpace(raw.Database.Username); v != "" {
		cfg.User = v
	}
	if v := strings.TrimSpace(raw.Database.Password); v != "" {
		cfg.Password = v
	}
	if v := strings.TrimSpace(raw.Database.Name); v != "" {
		cfg.Name = v
	}
	if v := strings.TrimSpace(raw.Database.DBName); v != "" {
		cfg.Name = v
	}
	if v := strings.TrimSpace(raw.Database.Collection); v != "" {
		cfg.Collection = v
	}
	if v := strings.TrimSpace(raw.Database.AppName); v != "" {
		cfg.AppName = v
	}
	if len(raw.Database.Params) > 0 {
		cfg.Params = copyStringMap(raw.Database.Params)
	}
	return normalizeMongoConfig(cfg)
}

func applyRawRedisConfig(current RedisRuntimeConfig, raw rawAppConfig) RedisRuntimeConfig {
	cfg := current
	configured := false
	if raw.Redis.Enable != nil {
		cfg.Enable = *raw.Redis.Enable
	}
	if v := normalizeRedisRawURL(raw.Redis.URL); v != "" {
		cfg.URL = v
		configured = true
	}
	if v := normalizeRedisRawURL(raw.RedisURL); v != "" {
		cfg.URL = v
		configured = true
	}
	if v := strings.TrimSpace(raw.Redis.Host); v != "" {
		cfg.Host = v
		configured = true
	}
	if v := strings.TrimSpace(raw.RedisHost); v != "" {
		cfg.Host = v
		configured = true
	}
	if raw.Redis.Port != 0 {
		cfg.Port = raw.Redis.Port
		configured = true
	}
	if raw.RedisPort != 0 {
		cfg.Port = raw.RedisPort
		configured = true
	}
	if v := strings.TrimSpace(raw.Redis.Username); v != "" {
		cfg.Username = v
		configured = true
	}
	if v := strings.TrimSpace(raw.RedisUsername); v != "" {
		cfg.Username = v
		configured = true
	}
	if v := strings.TrimSpace(raw.Redis.Password); v != "" {
		cfg.Password = v
		configured = true
	}
	if v := strings.TrimSpace(raw.RedisPassword); v != "" {
		cfg.Password = v
		configured = true
	}
	if raw.Redis.DB != nil {
		cfg.DB = *raw.Redis.DB
		configured = true
	}
	if raw.RedisDB != nil {
		cfg.DB = *raw.RedisDB
		configured = true
	}
	if raw.Redis.TLS != nil {
		cfg.TLS = *raw.Redis.TLS
		configured = true
	}
	if raw.RedisTLS != nil {
		cfg.TLS = *raw.RedisTLS
		configured = true
	}
	if v := strings.TrimSpace(raw.Redis.Scheme); v != "" {
		cfg.Scheme = v
		configured = true
	}
	if len(raw.Redis.Params) > 0 {
		cfg.Params = copyStringMap(raw.Redis.Params)
		configured = true
	}
	// Spelling out connection details implies enable unless stated otherwise.
	if raw.Redis.Enable == nil && configured {
		cfg.Enable = true
	}
	return normalizeRedisConfig(cfg)
}

func applyRawDetectionConfig(current DetectionRuntimeConfig, raw rawAppConfig) DetectionRuntimeConfig {
	cfg := current
	if v := strings.TrimSpace(raw.Detection.APIKey); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(raw.Detection.Key); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(raw.DetectionAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(raw.OvershootAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(raw.Detection.Endpoint); v != "" {
		cfg.Endpoint = v
	}
	if v := strings.TrimSpace(raw.Detection.URL); v != "" {
		cfg.Endpoint = v
	}
	if v := strings.TrimSpace(raw.Detection.Model); v != "" {
		cfg.Model = v
	}
	return normalizeDetectionConfig(cfg)
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

func (c *AppConfig) LogDir() string {
	if c == nil {
		return ResolveRuntimePath("", "logs")
	}
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

func (c *AppConfig) TempImageDir() string {
	if c == nil {
		return ResolveRuntimePath("", "temp_images")
	}
	return ResolveRuntimePath(c.Paths.TempImages, "temp_images")
}

// BaseURLValue is the public origin used when issuing temp-image URLs.
func (c *AppConfig) BaseURLValue() string {
	if c == nil {
		return defaultBaseURL
	}
	return normalizeBaseURL(c.BaseURL)
}

func (c *AppConfig) RedisEnabled() bool {
	return c != nil && c.Redis.Enable
}

func (c *AppConfig) HTTPCacheEnabled() bool {
	if c == nil {
		return false
	}
	if c.HTTPCache.HasEnable {
		return c.HTTPCache.Enable
	}
	return true
}

func (c *AppConfig) HTTPCacheTTL() time.Duration {
	ttl := defaultHTTPCacheTTLSeconds
	if c != nil && c.HTTPCache.TTLSeconds > 0 {
		ttl = c.HTTPCache.TTLSeconds
	}
	return time.Duration(ttl) * time.Second
}

// TempImageRetention reports the sweep cutoff age; ok is false when the
// directory is left unmanaged.
func (c *AppConfig) TempImageRetention() (age time.Duration, ok bool) {
	if c == nil || c.TempImages.RetentionHours <= 0 {
		return 0, false
	}
	return time.Duration(c.TempImages.RetentionHours) * time.Hour, true
}

func (c *AppConfig) TempImageSweepInterval() time.Duration {
	mins := defaultTempImageSweepMinutes
	if c != nil && c.TempImages.SweepIntervalMins > 0 {
		mins = c.TempImages.SweepIntervalMins
	}
	return time.Duration(mins) * time.Minute
}

// KeyValue returns the vision API key: YAML first, then the environment.
func (c DetectionRuntimeConfig) KeyValue() string {
	if v := strings.TrimSpace(c.APIKey); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(DetectionKeyEnv)); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(DetectionKeyEnvLegacy))
}
