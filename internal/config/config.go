package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env               string        `mapstructure:"env"`                 // current application environment (local, dev, prod etc)
	StoragePath       string        `mapstructure:"storage_path"`        // SQLite file backing durable progress storage
	QuestionsPath     string        `mapstructure:"questions_path"`      // path to JSON file with the question bank
	AutoSaveInterval  time.Duration `mapstructure:"auto_save_interval"`  // cadence of the dirty-checked auto-save
	QuestionTimer     time.Duration `mapstructure:"question_timer"`      // per-question answer window
	StorageLimitBytes int64         `mapstructure:"storage_limit_bytes"` // budget reported by storage usage estimates
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("env", "local")
	v.SetDefault("storage_path", "animal-quiz.db")
	v.SetDefault("questions_path", "assets/questions.json")
	v.SetDefault("auto_save_interval", "5s")
	v.SetDefault("question_timer", "30s")
	v.SetDefault("storage_limit_bytes", 5<<20)

	v.SetEnvPrefix("ANIMAL_QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if cfg.AutoSaveInterval <= 0 {
		cfg.AutoSaveInterval = 5 * time.Second
	}
	if cfg.QuestionTimer <= 0 {
		cfg.QuestionTimer = 30 * time.Second
	}

	return &cfg, nil
}
