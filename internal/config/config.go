package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Server configures thoughtsd.
type Server struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret string

	LoginRPS   float64
	LoginBurst int

	LogLevel string
}

// Client configures the terminal client.
type Client struct {
	ServerURL   string
	SessionFile string
	LogFile     string
	LogLevel    string
}

func LoadServer() (Server, error) {
	_ = godotenv.Load()

	cfg := Server{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		CORSAllowedOrigins:   splitList(getenv("CORS_ALLOWED_ORIGINS", "")),
		LogLevel:             getenv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.DatabaseURL, err = requireEnv("DATABASE_URL"); err != nil {
		return cfg, err
	}
	if cfg.JWTSecret, err = requireEnv("JWT_SECRET"); err != nil {
		return cfg, err
	}
	if cfg.LoginRPS, err = strconv.ParseFloat(getenv("LOGIN_RPS", "1"), 64); err != nil {
		return cfg, fmt.Errorf("LOGIN_RPS: %w", err)
	}
	if cfg.LoginBurst, err = strconv.Atoi(getenv("LOGIN_BURST", "5")); err != nil {
		return cfg, fmt.Errorf("LOGIN_BURST: %w", err)
	}
	return cfg, nil
}

func LoadClient() (Client, error) {
	_ = godotenv.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Client{
		ServerURL:   strings.TrimRight(getenv("THOUGHTS_SERVER", "http://localhost:8080"), "/"),
		SessionFile: getenv("THOUGHTS_SESSION_FILE", home+"/.mythoughts/session.json"),
		LogFile:     getenv("THOUGHTS_LOG_FILE", home+"/.mythoughts/client.log"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
	}, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func requireEnv(key string) (string, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return "", fmt.Errorf("missing env: %s", key)
	}
	return v, nil
}

func splitList(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
