package config

import (
	"fmt"
)

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	Host     string `env:"IDM_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"IDM_PG_PORT" env-default:"5432"`
	Database string `env:"IDM_PG_DATABASE" env-default:"protus_db"`
	User     string `env:"IDM_PG_USER" env-default:"protus"`
	Password string `env:"IDM_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"IDM_PG_SCHEMA" env-default:"public"`
}

// ToDatabaseURL converts the config to a PostgreSQL connection URL
func (d DatabaseConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s,public",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

// DynamoDBConfig holds the key-value table store settings.
// Endpoint is only set for local emulators such as dynamodb-local.
type DynamoDBConfig struct {
	Region           string `env:"AWS_REGION" env-default:"us-east-1"`
	Endpoint         string `env:"DYNAMODB_ENDPOINT"`
	UsersTable       string `env:"USERS_TABLE" env-default:"protus-users"`
	UserKeysTable    string `env:"USER_KEYS_TABLE" env-default:"protus-user-keys"`
	ProjectsTable    string `env:"PROJECTS_TABLE" env-default:"protus-projects"`
	TasksTable       string `env:"TASKS_TABLE" env-default:"protus-tasks"`
	TeamTable        string `env:"TEAM_TABLE" env-default:"protus-team"`
	DiscussionsTable string `env:"DISCUSSIONS_TABLE" env-default:"protus-discussions"`
}
