package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "./configs/config.yaml"

	defaultParseTimeout       = 5 * time.Second
	defaultMaxUploadBytes     = 5 << 20
	defaultLowConfidenceChars = 50
	defaultServerAddress      = ":8080"
	defaultShutdownTimeout    = 10 * time.Second
	defaultCacheTTL           = 24 * time.Hour
	defaultCollection         = "profiles"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Parser   ParserConfig   `yaml:"parser"`
	Server   ServerConfig   `yaml:"server"`
	Cache    CacheConfig    `yaml:"cache"`
	Index    IndexConfig    `yaml:"index"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	Logger   LoggerConfig   `yaml:"logger"`
}

type DatabaseConfig struct {
	SupabaseURL string `yaml:"supabase_url"`
	SupabaseKey string `yaml:"supabase_key"`
	// Driver is "pgdriver" (default) or "pq".
	Driver string `yaml:"driver"`
	Debug  bool   `yaml:"debug"`
}

type ParserConfig struct {
	Timeout            time.Duration `yaml:"timeout"`
	MaxUploadBytes     int64         `yaml:"max_upload_bytes"`
	LowConfidenceChars int           `yaml:"low_confidence_chars"`
}

type ServerConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type IndexConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	Collection    string `yaml:"collection"`
	InMemory      bool   `yaml:"in_memory"`
	EncryptionKey string `yaml:"encryption_key"`
}

type LLMConfig struct {
	// Provider is "ollama" (default) or "openai".
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Caller bool   `yaml:"caller"`
}

// LoadConfig reads the YAML file at path, then lets a .env file and FOLIO_*
// environment variables override it. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	applyEnv(&cfg)
	cfg.setDefaults()
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Database.SupabaseURL = getEnv("FOLIO_SUPABASE_URL", cfg.Database.SupabaseURL)
	cfg.Database.SupabaseKey = getEnv("FOLIO_SUPABASE_KEY", cfg.Database.SupabaseKey)
	cfg.Database.Driver = getEnv("FOLIO_DB_DRIVER", cfg.Database.Driver)
	cfg.Server.Address = getEnv("FOLIO_SERVER_ADDRESS", cfg.Server.Address)
	cfg.Cache.Address = getEnv("FOLIO_REDIS_ADDRESS", cfg.Cache.Address)
	cfg.Cache.Password = getEnv("FOLIO_REDIS_PASSWORD", cfg.Cache.Password)
	cfg.EmbedLLM.BaseURL = getEnv("FOLIO_EMBED_BASE_URL", cfg.EmbedLLM.BaseURL)
	cfg.EmbedLLM.APIKey = getEnv("FOLIO_EMBED_API_KEY", cfg.EmbedLLM.APIKey)
	cfg.Logger.Level = getEnv("FOLIO_LOG_LEVEL", cfg.Logger.Level)
	if v, err := time.ParseDuration(os.Getenv("FOLIO_PARSE_TIMEOUT")); err == nil {
		cfg.Parser.Timeout = v
	}
	if v, err := strconv.ParseBool(os.Getenv("FOLIO_CACHE_ENABLED")); err == nil {
		cfg.Cache.Enabled = v
	}
}

func (c *Config) setDefaults() {
	if c.Parser.Timeout <= 0 {
		c.Parser.Timeout = defaultParseTimeout
	}
	if c.Parser.MaxUploadBytes <= 0 {
		c.Parser.MaxUploadBytes = defaultMaxUploadBytes
	}
	if c.Parser.LowConfidenceChars <= 0 {
		c.Parser.LowConfidenceChars = defaultLowConfidenceChars
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "pgdriver"
	}
	if c.Server.Address == "" {
		c.Server.Address = defaultServerAddress
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = defaultCacheTTL
	}
	if c.Index.Collection == "" {
		c.Index.Collection = defaultCollection
	}
	if c.EmbedLLM.Provider == "" {
		c.EmbedLLM.Provider = "ollama"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "pretty"
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
