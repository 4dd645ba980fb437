package config

import (
	"path"

	"github.com/sugit/boardsync/internal/env"

	"go.uber.org/zap"
)

const (
	PortEnv        = "PORT"
	DatabaseUrlEnv = "DATABASE_URL"
	RedisAddrEnv   = "REDIS_ADDR"
	RootPathEnv    = "ROOT_PATH"
)

type Config struct {
	Logger *zap.Logger

	Port int

	// DatabaseURL switches the discussion store to Postgres when set;
	// otherwise documents live in process memory.
	DatabaseURL string

	// RedisAddr switches broadcast fan-out to the Redis relay when set, so
	// rooms span server instances.
	RedisAddr string

	MigrationsPath string
}

func Load() (Config, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return Config{}, err
	}

	port := env.MustGetInt(PortEnv)

	dbURL, _ := env.LookupString(DatabaseUrlEnv)
	redisAddr, _ := env.LookupString(RedisAddrEnv)

	var migrationsPath string
	if rootPath, found := env.LookupString(RootPathEnv); found {
		migrationsPath = path.Join(rootPath, "db", "migrations")
	} else {
		migrationsPath = path.Join("db", "migrations")
	}

	return Config{
		Logger:         logger,
		Port:           port,
		DatabaseURL:    dbURL,
		RedisAddr:      redisAddr,
		MigrationsPath: migrationsPath,
	}, nil
}
