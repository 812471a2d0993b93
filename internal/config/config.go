package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lexhub/contractqa/internal/domain/catalog"
	"github.com/lexhub/contractqa/internal/domain/query"
)

// Config holds the contractqa API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Storage   StorageConfig   `yaml:"storage"`
	Cache     CacheConfig     `yaml:"cache"`
	Search    SearchConfig    `yaml:"search"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
	Facets    FacetsConfig    `yaml:"facets"`
	Queries   []catalog.Query `yaml:"queries"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the vector index database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig identifies the backing vector index and its distance metric.
// Version is a corpus stamp folded into result cache keys so that bumping
// it after a reindex orphans stale cached answers.
type IndexConfig struct {
	Name           string `yaml:"name"`
	DistanceMetric string `yaml:"distance_metric"` // cosine (default), l2
	Version        string `yaml:"version"`
}

// EmbeddingConfig holds embedding gateway settings. CacheTTLSec bounds how
// long query embeddings stay cached; 0 keeps them forever.
type EmbeddingConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Model       string `yaml:"model"`
	TimeoutSec  int    `yaml:"timeout_sec"`
	CacheTTLSec int    `yaml:"cache_ttl_sec"`
}

// LLMConfig holds completion service settings.
type LLMConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// StorageConfig holds object storage settings for signed download links.
// An empty endpoint disables link minting entirely.
type StorageConfig struct {
	Endpoint     string `yaml:"endpoint"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	UseSSL       bool   `yaml:"use_ssl"`
	URLExpirySec int    `yaml:"url_expiry_sec"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Dir     string `yaml:"dir"`
	Enabled *bool  `yaml:"enabled"` // nil = enabled
}

// SearchConfig holds search pipeline settings.
type SearchConfig struct {
	DefaultTopK  int `yaml:"default_top_k"`
	MultiWorkers int `yaml:"multi_workers"`
}

// FacetsConfig enumerates the legal values per facet. Every list is
// implicitly prefixed with the "All" sentinel when served to clients.
type FacetsConfig struct {
	Accounts        []string `yaml:"accounts"`
	AccountTypes    []string `yaml:"account_types"`
	DocumentTypes   []string `yaml:"document_types"`
	SolutionLines   []string `yaml:"solution_lines"`
	RelatedProducts []string `yaml:"related_products"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// CacheEnabled reports whether the result cache starts enabled.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Synthesis plus reduction can take a while; give responses room.
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Index.Name == "" {
		c.Index.Name = "contract-chunks"
	}
	if c.Index.DistanceMetric == "" {
		c.Index.DistanceMetric = "cosine"
	}
	if c.Index.Version == "" {
		c.Index.Version = "v1"
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Embedding.CacheTTLSec < 0 {
		c.Embedding.CacheTTLSec = 0
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 60
	}
	if c.Storage.URLExpirySec <= 0 {
		c.Storage.URLExpirySec = 3600
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "cache"
	}
	if c.Search.DefaultTopK <= 0 {
		c.Search.DefaultTopK = query.DefaultTopK
	}
	if c.Search.MultiWorkers <= 0 {
		c.Search.MultiWorkers = 4
	}
	if len(c.Facets.DocumentTypes) == 0 {
		c.Facets.DocumentTypes = []string{
			"Contract", "Amendment", "Addendum", "SOW", "MSA", "Agreement", "Policy",
		}
	}
	if len(c.Queries) == 0 {
		c.Queries = catalog.Default()
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.URL == "" {
		return fmt.Errorf("embedding.url is required")
	}
	switch c.Index.DistanceMetric {
	case "cosine", "l2":
		// ok
	default:
		return fmt.Errorf("index.distance_metric must be \"cosine\" or \"l2\", got %q",
			c.Index.DistanceMetric)
	}
	if c.Search.DefaultTopK > query.MaxTopK {
		return fmt.Errorf("search.default_top_k must not exceed %d", query.MaxTopK)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
