// Package testutils spins up throwaway infrastructure for integration tests.
package testutils

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ory/dockertest"
	"github.com/ory/dockertest/docker"
)

// RunTestDatabase starts a disposable postgres container and returns its DSN
// together with a cleanup func. The cleanup func is safe to call even when an
// error is returned.
func RunTestDatabase() (string, func(), error) {

	cleanUp := func() {}

	pool, err := dockertest.NewPool("")
	if err != nil {
		return "", cleanUp, fmt.Errorf("could not construct docker pool: %w", err)
	}

	if err = pool.Client.Ping(); err != nil {
		return "", cleanUp, fmt.Errorf("could not connect to docker: %w", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=equiptrack_test",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return "", cleanUp, fmt.Errorf("could not start postgres: %w", err)
	}

	cleanUp = func() {
		if err := pool.Purge(resource); err != nil {
			fmt.Printf("could not purge postgres container: %s\n", err)
		}
	}

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s/equiptrack_test?sslmode=disable",
		resource.GetHostPort("5432/tcp"))

	// The container reports ready before postgres accepts connections.
	err = pool.Retry(func() error {
		conn, err := pgx.Connect(context.Background(), dsn)
		if err != nil {
			return err
		}
		return conn.Close(context.Background())
	})
	if err != nil {
		return "", cleanUp, fmt.Errorf("could not connect to test postgres: %w", err)
	}

	return dsn, cleanUp, nil
}
