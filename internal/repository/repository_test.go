package repository_test

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartmirror/internal/migrate"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, *pgxpool.Pool, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return postgresContainer, nil, fmt.Errorf("pc.ConnectionString: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return postgresContainer, nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := migrate.Apply(ctx, pool); err != nil {
		pool.Close()
		return postgresContainer, nil, fmt.Errorf("migrate.Apply: %w", err)
	}

	return postgresContainer, pool, nil
}
