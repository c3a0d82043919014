package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BackendURL string
	ListenAddr string

	StateDBPath string
	LogLevel    string

	HTTPTimeout time.Duration

	KafkaBrokers []string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return &Config{
		BackendURL:   must(os.Getenv("BACKEND_URL"), "BACKEND_URL"),
		ListenAddr:   getenv("LISTEN_ADDR", ":8080"),
		StateDBPath:  getenv("STATE_DB_PATH", "storefront.db"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		HTTPTimeout:  durationDefault("HTTP_TIMEOUT", 15*time.Second),
		KafkaBrokers: csv(os.Getenv("KAFKA_ADDRESS")),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(v, name string) string {
	if v == "" {
		log.Fatalf("missing required env %s", name)
	}
	return v
}

// durationDefault reads an env value as a whole number of seconds.
func durationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

func csv(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
