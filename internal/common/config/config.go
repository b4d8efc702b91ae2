package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Engine   EngineConfig            `mapstructure:"engine"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Logging  LoggingConfig           `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// EngineConfig holds the trip-context engine tunables. The decay amounts,
// floor and hint cap are deliberately configuration, not code constants.
type EngineConfig struct {
	HintCap              int         `mapstructure:"hint_cap"`
	HistoryWindow        int         `mapstructure:"history_window"`
	ConfidenceFloor      float64     `mapstructure:"confidence_floor"`
	ClarificationEpsilon float64     `mapstructure:"clarification_epsilon"`
	Decay                DecayConfig `mapstructure:"decay"`

	PatternsPath  string `mapstructure:"patterns_path"`
	KnowledgePath string `mapstructure:"knowledge_path"`
	ActionsPath   string `mapstructure:"actions_path"`

	SessionTTL        int `mapstructure:"session_ttl"`        // seconds
	SuggestionTimeout int `mapstructure:"suggestion_timeout"` // milliseconds
}

// DecayConfig is the confidence reduction applied per automatically
// resolved conflict, keyed by severity.
type DecayConfig struct {
	High   float64 `mapstructure:"high"`
	Medium float64 `mapstructure:"medium"`
	Low    float64 `mapstructure:"low"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
