package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/stitts-dev/lineup-engine/pkg/types"
)

// Config holds engine-level defaults. Request-scoped knobs (objective,
// randomness, lineup count) live on the Ruleset; these are process-wide.
type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Redis (optional result cache)
	RedisURL string `mapstructure:"REDIS_URL"`
	CacheTTL int    `mapstructure:"CACHE_TTL"` // seconds

	// Optimization
	MaxLineups        int           `mapstructure:"MAX_LINEUPS"`
	SolveTimeout      time.Duration `mapstructure:"SOLVE_TIMEOUT"`
	CandidatesPerSlot int           `mapstructure:"CANDIDATES_PER_SLOT"`
	MinSalarySpendPct float64       `mapstructure:"MIN_SALARY_SPEND_PCT"`
	DiversityFloor    float64       `mapstructure:"DIVERSITY_FLOOR"`

	// Simulation
	MaxSimulations    int           `mapstructure:"MAX_SIMULATIONS"`
	SimulationWorkers int           `mapstructure:"SIMULATION_WORKERS"`
	SimulationTimeout time.Duration `mapstructure:"SIMULATION_TIMEOUT"`

	// Determinism
	Seed int64 `mapstructure:"SEED"`
}

// LoadConfig reads engine configuration from .env and the environment.
func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("CACHE_TTL", 3600)
	viper.SetDefault("MAX_LINEUPS", 150)
	viper.SetDefault("SOLVE_TIMEOUT", "30s")
	viper.SetDefault("CANDIDATES_PER_SLOT", 15)
	viper.SetDefault("MIN_SALARY_SPEND_PCT", 0.0)
	viper.SetDefault("DIVERSITY_FLOOR", 0.0)
	viper.SetDefault("MAX_SIMULATIONS", 10000)
	viper.SetDefault("SIMULATION_WORKERS", 4)
	viper.SetDefault("SIMULATION_TIMEOUT", "60s")
	viper.SetDefault("SEED", 0)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// ApplyRulesetDefaults fills ruleset fields the caller left unset from
// process-wide configuration: the minimum salary spend becomes the
// salary floor and the lineup count falls back to the configured cap.
func (c *Config) ApplyRulesetDefaults(r *types.Ruleset) {
	if r.SalaryFloor == 0 && c.MinSalarySpendPct > 0 {
		r.SalaryFloor = int(c.MinSalarySpendPct * float64(r.SalaryCap))
	}
	if r.NumLineups == 0 && c.MaxLineups > 0 {
		r.NumLineups = c.MaxLineups
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
