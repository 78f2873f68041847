package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EmbeddingConfig selects the embedding model and expected dimension.
type EmbeddingConfig struct {
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// StorageConfig carries each backend's endpoint/credential pair.
type StorageConfig struct {
	VectorDSN  string `yaml:"vector_dsn"`
	GraphURI   string `yaml:"graph_uri"`
	GraphUser  string `yaml:"graph_user"`
	GraphPass  string `yaml:"graph_pass"`
	KVAddr     string `yaml:"kv_addr"`
}

// TTLConfig holds the preset duration overrides, expressed in seconds in
// YAML for readability.
type TTLConfig struct {
	ScratchpadSeconds int `yaml:"scratchpad"`
	SessionSeconds    int `yaml:"session"`
	CacheSeconds      int `yaml:"cache"`
	TemporarySeconds  int `yaml:"temporary"`
	PersistentSeconds int `yaml:"persistent"`
}

// DispatchConfig carries the per-backend deadlines and default policy.
type DispatchConfig struct {
	PerBackendDeadlinesMS map[string]int `yaml:"per_backend_deadlines_ms"`
	DefaultPolicy         string         `yaml:"default_policy"`
}

// RankingConfig names the available weight-vector policies.
type RankingConfig struct {
	Policies []string `yaml:"policies"`
}

// Config holds all application configuration, loaded hierarchically:
// env(CTX_CONFIG_PATH) > ./config/.ctxrc.yaml > ./.ctxrc.yaml, falling back
// to environment-variable defaults for anything a config file omits.
type Config struct {
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`
	LogLevel      string `yaml:"log_level"`

	EnableMetrics bool `yaml:"enable_metrics"`
	EnableTracing bool `yaml:"enable_tracing"`
	EnableCORS    bool `yaml:"enable_cors"`
	AuthRequired  bool `yaml:"auth_required"`

	Embedding EmbeddingConfig `yaml:"embedding"`
	Storage   StorageConfig   `yaml:"storage"`
	TTL       TTLConfig       `yaml:"ttl"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Ranking   RankingConfig   `yaml:"ranking"`
}

func defaults() *Config {
	return &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
		AuthRequired:  getEnvBool("AUTH_REQUIRED", getEnv("ENVIRONMENT", "development") == "production"),
		Embedding: EmbeddingConfig{
			Model:      getEnv("EMBEDDING_MODEL", "BAAI/bge-small-en-v1.5"),
			Dimensions: getEnvInt("EMBEDDING_DIMENSIONS", 384),
		},
		Storage: StorageConfig{
			VectorDSN: getEnv("VECTOR_DSN", "postgres://localhost:5432/ctxmemory"),
			GraphURI:  getEnv("GRAPH_URI", "bolt://localhost:7687"),
			GraphUser: getEnv("GRAPH_USER", "neo4j"),
			GraphPass: getEnv("GRAPH_PASS", ""),
			KVAddr:    getEnv("KV_ADDR", "localhost:6379"),
		},
		TTL: TTLConfig{
			ScratchpadSeconds: getEnvInt("TTL_SCRATCHPAD_SECONDS", 3600),
			SessionSeconds:    getEnvInt("TTL_SESSION_SECONDS", 7*24*3600),
			CacheSeconds:      getEnvInt("TTL_CACHE_SECONDS", 300),
			TemporarySeconds:  getEnvInt("TTL_TEMPORARY_SECONDS", 60),
			PersistentSeconds: getEnvInt("TTL_PERSISTENT_SECONDS", 30*24*3600),
		},
		Dispatch: DispatchConfig{
			PerBackendDeadlinesMS: map[string]int{"kv": 3, "text": 20, "vector": 100, "graph": 200},
			DefaultPolicy:         getEnv("DISPATCH_DEFAULT_POLICY", "parallel"),
		},
		Ranking: RankingConfig{Policies: []string{"default"}},
	}
}

// candidatePaths returns the hierarchical lookup order.
func candidatePaths() []string {
	var paths []string
	if p := os.Getenv("CTX_CONFIG_PATH"); p != "" {
		paths = append(paths, p)
	}
	paths = append(paths, "./config/.ctxrc.yaml", "./.ctxrc.yaml")
	return paths
}

// Load builds a Config from environment-variable defaults, then overlays
// the first readable, valid YAML file found in the hierarchical lookup.
// Invalid YAML at a candidate path is treated as "no config found" there,
// and the next candidate is tried.
func Load() (*Config, error) {
	cfg := defaults()

	for _, path := range candidatePaths() {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var overlay Config
		if err := yaml.Unmarshal(data, &overlay); err != nil {
			continue
		}
		mergeOverlay(cfg, &overlay)
		break
	}

	return cfg, nil
}

// mergeOverlay copies non-zero scalar fields from overlay onto cfg and
// replaces whole sections when the file sets the section's key field. The
// boolean flags (enable_metrics, enable_tracing, enable_cors, auth_required)
// are never taken from the file.
func mergeOverlay(cfg, overlay *Config) {
	if overlay.ServerAddress != "" {
		cfg.ServerAddress = overlay.ServerAddress
	}
	if overlay.Environment != "" {
		cfg.Environment = overlay.Environment
	}
	if overlay.LogLevel != "" {
		cfg.LogLevel = overlay.LogLevel
	}
	if overlay.Embedding.Model != "" {
		cfg.Embedding = overlay.Embedding
	}
	if overlay.Storage.GraphURI != "" || overlay.Storage.VectorDSN != "" || overlay.Storage.KVAddr != "" {
		cfg.Storage = overlay.Storage
	}
	if overlay.TTL.ScratchpadSeconds != 0 {
		cfg.TTL = overlay.TTL
	}
	if overlay.Dispatch.DefaultPolicy != "" {
		cfg.Dispatch = overlay.Dispatch
	}
	if len(overlay.Ranking.Policies) > 0 {
		cfg.Ranking = overlay.Ranking
	}
}

func (c *Config) IsDevelopment() bool { return c.Environment == "development" }
func (c *Config) IsProduction() bool  { return c.Environment == "production" }

func (c *TTLConfig) ScratchpadTTL() time.Duration { return time.Duration(c.ScratchpadSeconds) * time.Second }
func (c *TTLConfig) SessionTTL() time.Duration    { return time.Duration(c.SessionSeconds) * time.Second }
func (c *TTLConfig) CacheTTL() time.Duration      { return time.Duration(c.CacheSeconds) * time.Second }
func (c *TTLConfig) TemporaryTTL() time.Duration  { return time.Duration(c.TemporarySeconds) * time.Second }
func (c *TTLConfig) PersistentTTL() time.Duration { return time.Duration(c.PersistentSeconds) * time.Second }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
