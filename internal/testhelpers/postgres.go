package testhelpers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage    = "postgres:16-alpine"
	postgresUser     = "lkcrawl"
	postgresPassword = "lkcrawl"
	postgresDatabase = "lkcrawl_test"
)

// Postgres is a disposable database container for the storage specs.
type Postgres struct {
	container testcontainers.Container
	URL       string
}

// StartPostgres boots a throwaway postgres and returns once it accepts
// connections. The server logs the ready line twice: once for the init
// run and once for the real start.
func StartPostgres(ctx context.Context) (pg *Postgres, err error) {
	// testcontainers panics instead of failing when no docker host is found
	defer func() {
		if r := recover(); r != nil {
			pg, err = nil, fmt.Errorf("docker is unavailable: %v", r)
		}
	}()

	testcontainers.Logger = log.New(io.Discard, "", 0)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     postgresUser,
				"POSTGRES_PASSWORD": postgresPassword,
				"POSTGRES_DB":       postgresDatabase,
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
	})
	if err != nil {
		if container != nil {
			_ = container.Terminate(context.Background())
		}
		return nil, fmt.Errorf("failed to start postgres: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, err
	}

	return &Postgres{
		container: container,
		URL: fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
			postgresUser, postgresPassword, net.JoinHostPort(host, port.Port()), postgresDatabase),
	}, nil
}

func (p *Postgres) Terminate() error {
	if p == nil {
		return nil
	}
	return p.container.Terminate(context.Background())
}
