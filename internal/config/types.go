package config

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                    `yaml:"port"`
	Env            string                 `yaml:"env"` // "development" | "production"
	BaseURL        string                 `yaml:"base_url"`
	Database       MongoRuntimeConfig     `yaml:"database"`
	Redis          RedisRuntimeConfig     `yaml:"redis"`
	Detection      DetectionRuntimeConfig `yaml:"detection"`
	HTTPCache      HTTPCacheConfig        `yaml:"http_cache"`
	TempImages     TempImagesConfig       `yaml:"temp_images"`
	Paths          RuntimePathsConfig     `yaml:"paths"`
	AllowedOrigins []string               `yaml:"allowed_origins"`
	Timezone       string                 `yaml:"timezone"`
}

type MongoRuntimeConfig struct {
	URI        string            `yaml:"uri"`
	URL        string            `yaml:"url"`
	Scheme     string            `yaml:"scheme"` // "mongodb" | "mongodb+srv"
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	User       string            `yaml:"user"`
	Username   string            `yaml:"username"`
	Password   string            `yaml:"password"`
	Name       string            `yaml:"name"`
	DBName     string            `yaml:"db_name"`
	Collection string            `yaml:"collection"`
	AppName    string            `yaml:"app_name"`
	Params     map[string]string `yaml:"params"`
}

type RedisRuntimeConfig struct {
	Enable   bool              `yaml:"enable"`
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       int               `yaml:"db"`
	TLS      bool              `yaml:"tls"`
	Scheme   string            `yaml:"scheme"`
	Params   map[string]string `yaml:"params"`
}

type DetectionRuntimeConfig struct {
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

type HTTPCacheConfig struct {
	Enable     bool `yaml:"enable"`
	HasEnable  bool `yaml:"-"`
	TTLSeconds int  `yaml:"ttl_seconds"`
}

// TempImagesConfig controls retention of uploaded temp images.
// RetentionHours == 0 leaves the directory unmanaged.
type TempImagesConfig struct {
	RetentionHours    int `yaml:"retention_hours"`
	SweepIntervalMins int `yaml:"sweep_interval_minutes"`
}

type RuntimePathsConfig struct {
	Logs       string `yaml:"logs"`
	TempImages string `yaml:"temp_images"`
}

type rawAppConfig struct {
	Port               int                   `yaml:"port"`
	Env                string                `yaml:"env"`
	NodeEnv            string                `yaml:"node_env"`
	BaseURL            string                `yaml:"base_url"`
	PublicURL          string                `yaml:"public_url"`
	Database           rawMongoConfig        `yaml:"database"`
	MongoURI           string                `yaml:"mongo_uri"`
	MongoDBURI         string                `yaml:"mongodb_uri"`
	Redis              rawRedisConfig        `yaml:"redis"`
	RedisURL           string                `yaml:"redis_url"`
	RedisHost          string                `yaml:"redis_host"`
	RedisPort          int                   `yaml:"redis_port"`
	RedisUsername      string                `yaml:"redis_username"`
	RedisPassword      string                `yaml:"redis_password"`
	RedisDB            *int                  `yaml:"redis_db"`
	RedisTLS           *bool                 `yaml:"redis_tls"`
	Detection          rawDetectionConfig    `yaml:"detection"`
	DetectionAPIKey    string                `yaml:"detection_api_key"`
	OvershootAPIKey    string                `yaml:"overshoot_api_key"`
	HTTPCache          rawHTTPCacheConfig    `yaml:"http_cache"`
	TempImages         rawTempImagesConfig   `yaml:"temp_images"`
	Paths              rawPathsConfig        `yaml:"paths"`
	LogDir             string                `yaml:"log_dir"`
	LogsDir            string                `yaml:"logs_dir"`
	TempImageDir       string                `yaml:"temp_image_dir"`
	TempImagesDir      string                `yaml:"temp_images_dir"`
	AllowedOrigins     []string              `yaml:"allowed_origins"`
	CORSAllowedOrigins []string              `yaml:"cors_allowed_origins"`
	Timezone           string                `yaml:"timezone"`
	TimeZone           string                `yaml:"time_zone"`
	TZ                 string                `yaml:"tz"`
}

type rawMongoConfig struct {
	URI        string            `yaml:"uri"`
	URL        string            `yaml:"url"`
	Scheme     string            `yaml:"scheme"`
	SRV        *bool             `yaml:"srv"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	User       string            `yaml:"user"`
	Username   string            `yaml:"username"`
	Password   string            `yaml:"password"`
	Name       string            `yaml:"name"`
	DBName     string            `yaml:"db_name"`
	Collection string            `yaml:"collection"`
	AppName    string            `yaml:"app_name"`
	Params     map[string]string `yaml:"params"`
}

type rawRedisConfig struct {
	Enable   *bool             `yaml:"enable"`
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       *int              `yaml:"db"`
	TLS      *bool             `yaml:"tls"`
	Scheme   string            `yaml:"scheme"`
	Params   map[string]string `yaml:"params"`
}

type rawDetectionConfig struct {
	APIKey   string `yaml:"api_key"`
	Key      string `yaml:"key"`
	Endpoint string `yaml:"endpoint"`
	URL      string `yaml:"url"`
	Model    string `yaml:"model"`
}

type rawHTTPCacheConfig struct {
	Enable     *bool `yaml:"enable"`
	TTLSeconds int   `yaml:"ttl_seconds"`
}

type rawTempImagesConfig struct {
	RetentionHours    *int `yaml:"retention_hours"`
	SweepIntervalMins *int `yaml:"sweep_interval_minutes"`
}

type rawPathsConfig struct {
	Logs       string `yaml:"logs"`
	TempImages string `yaml:"temp_images"`
}
