package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/tokend/internal/logger"
)

const (
	defaultAppName      = "tokend"
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultAlgorithm    = "HS256"

	defaultAccessTokenMinutes = 15
	defaultRefreshTokenDays   = 7
)

type Config struct {
	// Application display name
	AppName string

	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key to sign JWT tokens (symmetric)
	SecretKey string

	// JWT signing algorithm
	Algorithm string

	// Token lifetimes
	AccessTokenMinutes int
	RefreshTokenDays   int

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		AppName:            defaultAppName,
		LogLevel:           defaultLoggingLevel,
		ListenAddr:         defaultListenAddr,
		Algorithm:          defaultAlgorithm,
		AccessTokenMinutes: defaultAccessTokenMinutes,
		RefreshTokenDays:   defaultRefreshTokenDays,
		Environment:        defaultEnvironment,
	}
}

// Load variables from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}
	setInt := func(o *int) func(value string) {
		return func(value string) {
			if parsed, err := strconv.Atoi(value); err == nil {
				*o = parsed
			}
		}
	}

	envMap := map[string]func(string){
		"APP_NAME":                    setString(&c.AppName),
		"RUN_ADDRESS":                 setString(&c.ListenAddr),
		"DATABASE_URL":                setString(&c.DatabaseDSN),
		"JWT_SECRET":                  setString(&c.SecretKey),
		"JWT_ALGORITHM":               setString(&c.Algorithm),
		"ACCESS_TOKEN_EXPIRE_MINUTES": setInt(&c.AccessTokenMinutes),
		"REFRESH_TOKEN_EXPIRE_DAYS":   setInt(&c.RefreshTokenDays),
		"LOG_LEVEL":                   setString(&c.LogLevel),
		"ENVIRONMENT":                 setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("tokend", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key to sign tokens")
	fs.StringVar(&c.Algorithm, "algorithm", c.Algorithm, "JWT signing algorithm")
	fs.IntVar(&c.AccessTokenMinutes, "access-ttl", c.AccessTokenMinutes, "Access token lifetime in minutes")
	fs.IntVar(&c.RefreshTokenDays, "refresh-ttl", c.RefreshTokenDays, "Refresh token lifetime in days")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")

	return fs.Parse(args)
}
