// Package dynamotest starts a dynamodb-local container for repository tests.
package dynamotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tendant/protus/pkg/config"
	"github.com/tendant/protus/pkg/dynamo"
)

const image = "amazon/dynamodb-local:2.5.2"

// Start runs dynamodb-local, creates uniquely named tables and returns a
// client for them. The test is skipped under -short or without a container
// provider.
func Start(t *testing.T) (*dynamodb.Client, config.DynamoDBConfig) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping dynamodb-local test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"-jar", "DynamoDBLocal.jar", "-inMemory", "-sharedDb"},
			WaitingFor:   wait.ForListeningPort("8000/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.PortEndpoint(ctx, "8000/tcp", "http")
	require.NoError(t, err)

	suffix := uuid.NewString()[:8]
	cfg := config.DynamoDBConfig{
		Region:           "us-east-1",
		Endpoint:         endpoint,
		UsersTable:       fmt.Sprintf("users-%s", suffix),
		UserKeysTable:    fmt.Sprintf("user-keys-%s", suffix),
		ProjectsTable:    fmt.Sprintf("projects-%s", suffix),
		TasksTable:       fmt.Sprintf("tasks-%s", suffix),
		TeamTable:        fmt.Sprintf("team-%s", suffix),
		DiscussionsTable: fmt.Sprintf("discussions-%s", suffix),
	}

	client, err := dynamo.NewClient(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, dynamo.EnsureTables(ctx, client, cfg))
	return client, cfg
}
