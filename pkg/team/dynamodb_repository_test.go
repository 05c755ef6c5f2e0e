package team

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/protus/pkg/dynamo/dynamotest"
)

func TestDynamoDBRepository(t *testing.T) {
	client, cfg := dynamotest.Start(t)
	ctx := context.Background()

	runRepositoryContract(t, func(t *testing.T) Repository {
		out, err := client.Scan(ctx, &dynamodb.ScanInput{TableName: aws.String(cfg.TeamTable)})
		require.NoError(t, err)
		for _, item := range out.Items {
			_, err := client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(cfg.TeamTable),
				Key:       map[string]types.AttributeValue{"memberId": item["memberId"]},
			})
			require.NoError(t, err)
		}
		return NewDynamoDBRepository(client, cfg.TeamTable)
	})
}

func TestDynamoDBRepository_LegacyItems(t *testing.T) {
	client, cfg := dynamotest.Start(t)
	ctx := context.Background()

	item, err := attributevalue.MarshalMap(map[string]interface{}{
		"memberId":  "m-legacy",
		"name":      "Legacy",
		"email":     "legacy@x.com",
		"role":      "Contributor",
		"createdAt": "2024-05-01T10:00:00.000Z",
	})
	require.NoError(t, err)
	_, err = client.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String(cfg.TeamTable), Item: item})
	require.NoError(t, err)

	members, err := NewDynamoDBRepository(client, cfg.TeamTable).ListMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "m-legacy", members[0].MemberID)
	assert.Equal(t, 2024, members[0].CreatedAt.Year())
}
