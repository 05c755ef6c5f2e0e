package project

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/protus/pkg/config"
	"github.com/tendant/protus/pkg/dynamo"
	"github.com/tendant/protus/pkg/dynamo/dynamotest"
)

func clearTables(t *testing.T, client *dynamodb.Client, cfg config.DynamoDBConfig) {
	t.Helper()
	ctx := context.Background()
	for table, keys := range map[string][]string{
		cfg.ProjectsTable: {"projectId"},
		cfg.TasksTable:    {"projectId", "taskId"},
	} {
		out, err := client.Scan(ctx, &dynamodb.ScanInput{TableName: aws.String(table)})
		require.NoError(t, err)
		for _, item := range out.Items {
			key := map[string]types.AttributeValue{}
			for _, name := range keys {
				key[name] = item[name]
			}
			_, err := client.DeleteItem(ctx, &dynamodb.DeleteItemInput{TableName: aws.String(table), Key: key})
			require.NoError(t, err)
		}
	}
}

func TestDynamoDBRepository(t *testing.T) {
	client, cfg := dynamotest.Start(t)

	runRepositoryContract(t, func(t *testing.T) Repository {
		clearTables(t, client, cfg)
		return NewDynamoDBRepository(client, cfg.ProjectsTable, cfg.TasksTable)
	})
}

// Items written here must stay readable by legacy clients,
// which expect a NULL owner rather than a missing attribute.
func TestDynamoDBRepository_LegacyItems(t *testing.T) {
	client, cfg := dynamotest.Start(t)
	ctx := context.Background()
	repo := NewDynamoDBRepository(client, cfg.ProjectsTable, cfg.TasksTable)

	p := newTestProject("Apollo", 0)
	_, err := repo.CreateProject(ctx, p)
	require.NoError(t, err)

	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(cfg.ProjectsTable),
		Key:       dynamo.StringKey("projectId", p.ProjectID),
	})
	require.NoError(t, err)
	require.Contains(t, out.Item, "owner")
	assert.IsType(t, &types.AttributeValueMemberNULL{}, out.Item["owner"])

	var raw map[string]interface{}
	require.NoError(t, attributevalue.UnmarshalMap(out.Item, &raw))
	assert.Equal(t, "Apollo", raw["name"])
	assert.Equal(t, "2025-03-01T12:00:00Z", raw["createdAt"])
}
