package analyzemessage

import "time"

type Config struct {
	Timeout         time.Duration
	AuditBestEffort bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		AuditBestEffort: true,
	}
}
