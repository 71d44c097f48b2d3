package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing file is fine; environment variables may carry everything.
	}

	// Environment variables with ASP_ prefix, nested keys joined by
	// underscores (e.g. ASP_DATABASE_URL, ASP_LLM_GEMINI_API_KEY).
	v.SetEnvPrefix("ASP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers default values so that only secrets and the
// database URL are strictly required from the environment.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	// Empty defaults so viper binds the matching environment variables
	// during Unmarshal; required-field validation rejects them when left
	// unset.
	v.SetDefault("database.url", "")
	v.SetDefault("llm.gemini_api_key", "")

	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.fallback_model_names", []string{})
	v.SetDefault("llm.max_output_tokens", 1024)
	v.SetDefault("llm.generation_timeout", 30)

	v.SetDefault("embedding.model_name", "text-embedding-004")
	v.SetDefault("embedding.cache_size", 1024)
	v.SetDefault("embedding.timeout", 5)

	v.SetDefault("retrieval.result_budget", 5)
	v.SetDefault("retrieval.per_query_cap", 2)
	v.SetDefault("retrieval.min_similarity", 0.4)
	v.SetDefault("retrieval.search_timeout", 2)

	v.SetDefault("rubric.path", "rubrics.json")

	v.SetDefault("session.window_size", 5)
}
