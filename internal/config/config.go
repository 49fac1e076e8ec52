package config

import (
	"os"
	"strconv"
)

type Config struct {
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	HTTPPort      string
	JWTSecret     string
	LogLevel      string

	CountdownSeconds int
	RoundSeconds     int
}

func Load() *Config {
	return &Config{
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:    getEnv("MONGO_DATABASE", "emoji_game"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:         getEnv("PORT", "3002"),
		JWTSecret:        getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		CountdownSeconds: getEnvInt("COUNTDOWN_SECONDS", 3),
		RoundSeconds:     getEnvInt("ROUND_SECONDS", 60),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
