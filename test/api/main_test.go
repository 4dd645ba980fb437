package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path"
	"testing"
	"time"

	"github.com/sugit/boardsync/internal/config"
	"github.com/sugit/boardsync/internal/server"
	"github.com/sugit/boardsync/internal/test"

	"github.com/cenkalti/backoff/v4"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type IntegrationTestFixture struct {
	wsURL string
	db    *sql.DB
}

var fixture = IntegrationTestFixture{}

func TestMain(m *testing.M) {
	rootPath := "../../"
	if err := os.Setenv(config.RootPathEnv, rootPath); err != nil {
		log.Fatal(err)
	}

	if err := godotenv.Load(path.Join(rootPath, "config.env")); err != nil {
		log.Fatal(err)
	}

	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	conf.Logger = zap.NewNop()

	f, err := test.NewLocalTestFixture(path.Join(rootPath, "docker-compose.yml"))
	if err != nil {
		log.Fatal(err)
	}

	defer func() {
		if err := f.Stop(); err != nil {
			log.Fatal(err)
		}
	}()

	if err := f.Start(); err != nil {
		log.Fatal(err)
	}

	if err := awaitInfrastructure(conf); err != nil {
		log.Fatal(err)
	}

	srv, err := server.NewSyncServer(conf)
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal(err)
		}
	}()

	if err := initFixture(conf); err != nil {
		log.Fatal(err)
	}

	_ = m.Run()
}

// awaitInfrastructure blocks until postgres and redis accept connections -
// the compose services need a moment after the containers report up.
func awaitInfrastructure(conf config.Config) error {
	ctx := context.Background()

	pingPostgres := func() error {
		db, err := sql.Open("postgres", conf.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		return db.PingContext(ctx)
	}

	pingRedis := func() error {
		client := redis.NewClient(&redis.Options{Addr: conf.RedisAddr})
		defer client.Close()

		return client.Ping(ctx).Err()
	}

	policy := func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.MaxElapsedTime = time.Minute
		return b
	}

	if err := backoff.Retry(pingPostgres, policy()); err != nil {
		return err
	}

	return backoff.Retry(pingRedis, policy())
}

func initFixture(conf config.Config) error {
	fixture.wsURL = fmt.Sprintf("ws://localhost:%d/ws", conf.Port)

	db, err := sql.Open("postgres", conf.DatabaseURL)
	if err != nil {
		return err
	}

	fixture.db = db

	return nil
}
