package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm"       validate:"required"`
	Embedding EmbeddingConfig `mapstructure:"embedding" validate:"required"`
	Retrieval RetrievalConfig `mapstructure:"retrieval" validate:"required"`
	Rubric    RubricConfig    `mapstructure:"rubric"    validate:"required"`
	Adaptive  AdaptiveConfig  `mapstructure:"adaptive"`
	Session   SessionConfig   `mapstructure:"session"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// LLMConfig contains settings for the generative text service boundary.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`

	// ModelName is the primary generation model. FallbackModelNames are
	// tried in order when the primary fails; first success wins.
	ModelName          string   `mapstructure:"model_name"           validate:"required"`
	FallbackModelNames []string `mapstructure:"fallback_model_names"`

	MaxOutputTokens   int `mapstructure:"max_output_tokens"  validate:"gte=0"`
	GenerationTimeout int `mapstructure:"generation_timeout" validate:"gte=0"` // seconds, default 30
}

// EmbeddingConfig contains settings for the embedding provider boundary.
type EmbeddingConfig struct {
	ModelName string `mapstructure:"model_name" validate:"required"`
	CacheSize int    `mapstructure:"cache_size" validate:"gte=0"`
	Timeout   int    `mapstructure:"timeout"    validate:"gte=0"` // seconds, default 5
}

// RetrievalConfig contains retrieval orchestration settings.
type RetrievalConfig struct {
	ResultBudget  int     `mapstructure:"result_budget"  validate:"gte=0"`
	PerQueryCap   int     `mapstructure:"per_query_cap"  validate:"gte=0"`
	MinSimilarity float64 `mapstructure:"min_similarity" validate:"gte=0,lte=1"`
	SearchTimeout int     `mapstructure:"search_timeout" validate:"gte=0"` // seconds, default 2
}

// RubricConfig locates the module rubric definitions.
type RubricConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AdaptiveConfig overrides the difficulty controller thresholds.
// Zero values keep the controller defaults.
type AdaptiveConfig struct {
	NovicePromoteThreshold       float64 `mapstructure:"novice_promote_threshold"       validate:"gte=0,lte=1"`
	IntermediatePromoteThreshold float64 `mapstructure:"intermediate_promote_threshold" validate:"gte=0,lte=1"`
	AdvancedPromoteThreshold     float64 `mapstructure:"advanced_promote_threshold"     validate:"gte=0,lte=1"`
	MasteryCompleteThreshold     float64 `mapstructure:"mastery_complete_threshold"     validate:"gte=0,lte=1"`
}

// SessionConfig contains conversation window settings.
type SessionConfig struct {
	WindowSize int `mapstructure:"window_size" validate:"gte=0"`
}
