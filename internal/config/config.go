package config

import (
	"errors"
	"flag"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type FileStoreConfig struct {
	Endpoint  string `env:"FILESTORE_ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"FILESTORE_ACCESS_KEY"`
	SecretKey string `env:"FILESTORE_SECRET_KEY"`
	Bucket    string `env:"FILESTORE_BUCKET" envDefault:"equiptrack-documents"`
	UseSSL    bool   `env:"FILESTORE_USE_SSL" envDefault:"false"`
}

type ServerConfig struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	DatabaseDSN string `env:"DATABASE_URI"`
	// env has no []byte parser, so the secret is read as a string and
	// converted below.
	SecretKey           string `env:"SECRET_KEY"`
	AuthCookieExpiresIn int    `env:"AUTH_COOKIE_EXPIRES_SECONDS" envDefault:"86400"`

	Secret []byte

	FileStore FileStoreConfig
}

func NewConfig() (*ServerConfig, error) {
	return newConfig(os.Args[1:])
}

func newConfig(args []string) (*ServerConfig, error) {
	// A local .env is optional; environment variables win either way.
	_ = godotenv.Load()

	var params ServerConfig
	err := env.Parse(&params)
	if err != nil {
		return nil, err
	}

	var runAddress string
	var databaseDSN string
	var secret string

	flags := flag.NewFlagSet("equiptrack", flag.ContinueOnError)
	flags.StringVar(&runAddress, "a", "localhost:8080", "Base address to listen on")
	flags.StringVar(&databaseDSN, "d", "postgres://postgres@localhost:5432/equiptrack?sslmode=disable", "Database DSN")
	flags.StringVar(&secret, "s", "", "Secret key for auth tokens")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if params.RunAddress == "" {
		params.RunAddress = runAddress
	}
	if params.DatabaseDSN == "" {
		params.DatabaseDSN = databaseDSN
	}
	if params.SecretKey == "" {
		params.SecretKey = secret
	}
	if params.SecretKey == "" {
		return nil, errors.New("secret key is required, set SECRET_KEY or pass -s")
	}
	params.Secret = []byte(params.SecretKey)

	return &params, nil
}
