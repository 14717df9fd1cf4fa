package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Local sqlite archive of events and matches.
	DatabaseURL string

	// The Blue Alliance API
	TBABaseURL string
	TBAKey     string
	TBAAppID   string

	// url → last-modified cache written after each sync.
	HistoryPath string

	// Rating hyperparameter file (optional; compiled defaults otherwise).
	TuningPath string

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DatabaseURL: envStr("DATABASE_URL", ""),
		TBABaseURL:  envStr("TBA_BASE_URL", "https://www.thebluealliance.com/api/v3"),
		TBAKey:      envStr("TBA_KEY", ""),
		TBAAppID:    envStr("TBA_APP_ID", "frc-elo:rating-engine:0"),
		HistoryPath: envStr("TBA_HISTORY_PATH", "tba_history.csv"),
		TuningPath:  envStr("TUNING_PATH", "tuning.yaml"),
		LogLevel:    envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
