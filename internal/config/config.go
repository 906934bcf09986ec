package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once at startup from the environment, after an optional .env file.
type Config struct {
	ServerPort     string
	AllowedOrigins []string

	StoreBackend string // memory | postgres | http
	DatabaseURL  string
	StoreURL     string
	StoreTimeout time.Duration

	TerminalID    string // terminal served by the interactive app
	TicketSeed    int64
	TicketCounter string // memory | redis
	RedisURL      string
	RedisPassword string

	Currency  string
	StoreName string

	PrinterType    string // none | usb | network
	PrinterUSBPath string
	PrinterAddress string
	ReceiptDir     string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:     getenv("SERVER_PORT", "8080"),
		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),
		StoreBackend:   strings.ToLower(getenv("STORE_BACKEND", "memory")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		StoreURL:       os.Getenv("STORE_URL"),
		TerminalID:     getenv("TERMINAL_ID", "caja1"),
		TicketCounter:  strings.ToLower(getenv("TICKET_COUNTER", "memory")),
		RedisURL:       os.Getenv("REDIS_URL"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		Currency:       getenv("CURRENCY", "ARS"),
		StoreName:      getenv("STORE_NAME", "Almacén"),
		PrinterType:    strings.ToLower(getenv("PRINTER_TYPE", "none")),
		PrinterUSBPath: getenv("PRINTER_USB_PATH", "/dev/usb/lp0"),
		PrinterAddress: os.Getenv("PRINTER_ADDRESS"),
		ReceiptDir:     os.Getenv("RECEIPT_DIR"),
	}

	var err error
	if cfg.StoreTimeout, err = time.ParseDuration(getenv("STORE_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid STORE_TIMEOUT: %w", err)
	}
	if cfg.TicketSeed, err = strconv.ParseInt(getenv("TICKET_SEED", "1001"), 10, 64); err != nil {
		return nil, fmt.Errorf("invalid TICKET_SEED: %w", err)
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getenv("RATE_LIMIT_RPS", "20"), 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getenv("RATE_LIMIT_BURST", "40")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORE_BACKEND=postgres requires DATABASE_URL")
		}
	case "http":
		if c.StoreURL == "" {
			return fmt.Errorf("STORE_BACKEND=http requires STORE_URL")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.TicketCounter {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("TICKET_COUNTER=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown TICKET_COUNTER %q", c.TicketCounter)
	}
	switch c.PrinterType {
	case "none", "usb":
	case "network":
		if c.PrinterAddress == "" {
			return fmt.Errorf("PRINTER_TYPE=network requires PRINTER_ADDRESS")
		}
	default:
		return fmt.Errorf("unknown PRINTER_TYPE %q", c.PrinterType)
	}
	if c.TicketSeed < 1 {
		return fmt.Errorf("TICKET_SEED must be positive")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
