package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/protus/pkg/config"
	"github.com/tendant/protus/pkg/discussion"
	"github.com/tendant/protus/pkg/dynamo"
	"github.com/tendant/protus/pkg/project"
	"github.com/tendant/protus/pkg/team"
	"github.com/tendant/protus/pkg/user"
)

// stores bundles the repositories of the selected backend.
type stores struct {
	users       user.UserRepository
	projects    project.Repository
	team        team.Repository
	discussions discussion.Repository
	close       func()
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	noop := func() {}

	switch cfg.StoreBackend {
	case config.StoreFile:
		users, err := user.NewFileUserRepository(cfg.DataDir)
		if err != nil {
			return stores{}, err
		}
		projects, err := project.NewFileRepository(cfg.DataDir)
		if err != nil {
			return stores{}, err
		}
		members, err := team.NewFileRepository(cfg.DataDir)
		if err != nil {
			return stores{}, err
		}
		discussions, err := discussion.NewFileRepository(cfg.DataDir)
		if err != nil {
			return stores{}, err
		}
		slog.Info("Using file store", "dir", cfg.DataDir)
		return stores{users: users, projects: projects, team: members, discussions: discussions, close: noop}, nil

	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.ToDatabaseURL())
		if err != nil {
			return stores{}, fmt.Errorf("failed creating dbpool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("failed connecting to database: %w", err)
		}
		slog.Info("Using postgres store", "host", cfg.Database.Host, "db", cfg.Database.Database)
		return stores{
			users:       user.NewPostgresUserRepository(pool),
			projects:    project.NewPostgresRepository(pool),
			team:        team.NewPostgresRepository(pool),
			discussions: discussion.NewPostgresRepository(pool),
			close:       pool.Close,
		}, nil

	case config.StoreDynamoDB:
		client, err := dynamo.NewClient(ctx, cfg.DynamoDB)
		if err != nil {
			return stores{}, err
		}
		if cfg.DynamoDB.Endpoint != "" {
			if err := dynamo.EnsureTables(ctx, client, cfg.DynamoDB); err != nil {
				return stores{}, err
			}
		}
		return stores{
			users:       user.NewDynamoDBUserRepository(client, cfg.DynamoDB.UsersTable, cfg.DynamoDB.UserKeysTable),
			projects:    project.NewDynamoDBRepository(client, cfg.DynamoDB.ProjectsTable, cfg.DynamoDB.TasksTable),
			team:        team.NewDynamoDBRepository(client, cfg.DynamoDB.TeamTable),
			discussions: discussion.NewDynamoDBRepository(client, cfg.DynamoDB.DiscussionsTable),
			close:       noop,
		}, nil

	default:
		slog.Warn("Using in-memory store, all data is lost on restart")
		return stores{
			users:       user.NewInMemoryUserRepository(),
			projects:    project.NewInMemoryRepository(),
			team:        team.NewInMemoryRepository(),
			discussions: discussion.NewInMemoryRepository(),
			close:       noop,
		}, nil
	}
}
