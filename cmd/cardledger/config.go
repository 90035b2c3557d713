package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Renal37/cardledger/internal/services"
)

type Config struct {
	endpoint        string
	backendEndpoint string
	backendTimeout  time.Duration
	dsn             string
	redisAddress    string
	logLevel        string
	env             string
	authSecretKey   string
	feeDebounce     time.Duration
	pollInterval    time.Duration
	quoteTTL        time.Duration
	allowedOrigins  []string
}

const developmentSecretKey = "development-key"

// NewConfig читает флаги из args, затем переменные окружения поверх них.
func NewConfig(args []string) (Config, error) {
	var (
		config         Config
		allowedOrigins string
	)

	flags := flag.NewFlagSet("cardledger", flag.ContinueOnError)
	flags.StringVar(&config.endpoint, "a", "localhost:8090", "address and port to run server")
	flags.StringVar(&config.backendEndpoint, "b", "http://localhost:8080/api/v1", "card platform backend base URL")
	flags.DurationVar(&config.backendTimeout, "t", 15*time.Second, "backend request timeout")
	flags.StringVar(&config.dsn, "d", "", "data source name for the action journal database")
	flags.StringVar(&config.redisAddress, "r", "", "redis address for the fee quote cache")
	flags.DurationVar(&config.feeDebounce, "fee-debounce", services.DefaultFeeDebounce, "fee quote debounce window")
	flags.DurationVar(&config.pollInterval, "poll-interval", services.DefaultPollInterval, "deposit status poll interval")
	flags.DurationVar(&config.quoteTTL, "quote-ttl", 30*time.Second, "fee quote cache ttl")
	flags.StringVar(&allowedOrigins, "origins", "http://localhost:3000", "comma separated CORS origins")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if address := os.Getenv("RUN_ADDRESS"); address != "" {
		config.endpoint = address
	}

	if backendAddress := os.Getenv("BACKEND_ADDRESS"); backendAddress != "" {
		config.backendEndpoint = backendAddress
	}

	if d := os.Getenv("DATABASE_URI"); d != "" {
		config.dsn = d
	}

	if r := os.Getenv("REDIS_ADDRESS"); r != "" {
		config.redisAddress = r
	}

	if o := os.Getenv("ALLOWED_ORIGINS"); o != "" {
		allowedOrigins = o
	}
	config.allowedOrigins = splitList(allowedOrigins)

	if l := os.Getenv("LOG_LEVEL"); l != "" {
		config.logLevel = l
	} else {
		config.logLevel = "info"
	}

	if e := os.Getenv("ENV"); e != "" {
		config.env = e
	} else {
		config.env = "production"
	}

	durations := map[string]*time.Duration{
		"FEE_DEBOUNCE":  &config.feeDebounce,
		"POLL_INTERVAL": &config.pollInterval,
		"QUOTE_TTL":     &config.quoteTTL,
	}
	for name, target := range durations {
		raw := os.Getenv(name)
		if raw == "" {
			continue
		}
		value, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", name, err)
		}
		*target = value
	}

	if secret := os.Getenv("AUTH_SECRET_KEY"); secret != "" {
		config.authSecretKey = secret
	} else if config.env == "production" {
		return Config{}, errors.New("AUTH_SECRET_KEY has to be defined for production environment")
	} else {
		config.authSecretKey = developmentSecretKey
	}

	return config, nil
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
