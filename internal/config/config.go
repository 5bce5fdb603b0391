package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"quantsim/internal/engines/simulation"
)

type Config struct {
	Port        string
	Environment string

	// Empty disables simulation archival; the engine runs memory-only.
	DatabaseURL string

	// Zero seeds the generator from the clock; any other value makes
	// timeline generation reproducible across restarts.
	SimulationSeed int64

	Defaults simulation.Config
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SimulationSeed: getEnvInt64("SIMULATION_SEED", 0),
		Defaults: simulation.Config{
			Rounds:            getEnvInt("SIMULATION_ROUNDS", simulation.DefaultRounds),
			SimulationMinutes: getEnvFloat("SIMULATION_MINUTES", simulation.DefaultSimulationMinutes),
			SpeedMultiplier:   getEnvFloat("SIMULATION_SPEED", simulation.DefaultSpeedMultiplier),
		},
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("Invalid integer for %s: %q, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
		log.Printf("Invalid integer for %s: %q, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
		log.Printf("Invalid number for %s: %q, using default %g", key, value, defaultValue)
	}
	return defaultValue
}
