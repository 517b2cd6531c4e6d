package model

import "time"

// Config holds the complete wikitree configuration
type Config struct {
	API          APIConfig          `yaml:"api" mapstructure:"api"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Resolver     ResolverConfig     `yaml:"resolver" mapstructure:"resolver"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// APIConfig configures the knowledge-base endpoints and the HTTP client
type APIConfig struct {
	MediaWikiURL  string        `yaml:"mediawiki_url" mapstructure:"mediawiki_url"`
	SparqlURL     string        `yaml:"sparql_url" mapstructure:"sparql_url"`
	EntityURI     string        `yaml:"entity_uri" mapstructure:"entity_uri"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// RateLimitingConfig bounds the request rate per API host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig configures the resolution and entity caches
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ResolverConfig holds entity resolution and simplification policy
type ResolverConfig struct {
	SearchLimit           int      `yaml:"search_limit" mapstructure:"search_limit"`
	InstanceOfProperty    string   `yaml:"instance_of_property" mapstructure:"instance_of_property"`
	DisambiguationClasses []string `yaml:"disambiguation_classes" mapstructure:"disambiguation_classes"`
	MeaninglessPredicates []string `yaml:"meaningless_predicates" mapstructure:"meaningless_predicates"`
	QueryLimit            int      `yaml:"query_limit" mapstructure:"query_limit"`
}

// ServerConfig configures `wikitree serve`
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// OutputConfig configures CLI output
type OutputConfig struct {
	Verbose  bool `yaml:"verbose" mapstructure:"verbose"`
	JSONLogs bool `yaml:"json_logs" mapstructure:"json_logs"`
	Pretty   bool `yaml:"pretty" mapstructure:"pretty"`
}

// DefaultDisambiguationClasses are the classes whose instances are never a
// factual answer: disambiguation pages, list articles, categories, templates.
var DefaultDisambiguationClasses = []string{
	"Q4167410",  // Wikimedia disambiguation page
	"Q17362920", // Wikimedia duplicated page
	"Q4167836",  // Wikimedia category
	"Q13406463", // Wikimedia list article
	"Q11266439", // Wikimedia template
	"Q14204246", // Wikimedia project page
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			MediaWikiURL:  "https://www.wikidata.org/w/api.php",
			SparqlURL:     "https://query.wikidata.org/sparql",
			EntityURI:     "http://www.wikidata.org/entity/",
			UserAgent:     "wikitree/0.1 (+https://github.com/ppiankov/wikitree)",
			Timeout:       30 * time.Second,
			MaxBodyBytes:  10_000_000,
			RespectRobots: false,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 5,
			BurstSize:         10,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".wikitree-cache",
			MemoryTTL: 0,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Resolver: ResolverConfig{
			SearchLimit:           50,
			InstanceOfProperty:    "P31",
			DisambiguationClasses: append([]string(nil), DefaultDisambiguationClasses...),
			MeaninglessPredicates: []string{"identity", "name", "definition"},
			QueryLimit:            500,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
