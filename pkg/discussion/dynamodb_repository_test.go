package discussion

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/protus/pkg/dynamo"
	"github.com/tendant/protus/pkg/dynamo/dynamotest"
)

func TestDynamoDBRepository(t *testing.T) {
	client, cfg := dynamotest.Start(t)
	ctx := context.Background()

	runRepositoryContract(t, func(t *testing.T) Repository {
		out, err := client.Scan(ctx, &dynamodb.ScanInput{TableName: aws.String(cfg.DiscussionsTable)})
		require.NoError(t, err)
		for _, item := range out.Items {
			_, err := client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(cfg.DiscussionsTable),
				Key:       map[string]types.AttributeValue{"messageId": item["messageId"]},
			})
			require.NoError(t, err)
		}
		return NewDynamoDBRepository(client, cfg.DiscussionsTable)
	})
}

// General-channel messages keep a NULL projectId attribute.
func TestDynamoDBRepository_NullProject(t *testing.T) {
	client, cfg := dynamotest.Start(t)
	ctx := context.Background()

	m := newTestMessage("", "hello", 0)
	_, err := NewDynamoDBRepository(client, cfg.DiscussionsTable).CreateMessage(ctx, m)
	require.NoError(t, err)

	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(cfg.DiscussionsTable),
		Key:       dynamo.StringKey("messageId", m.MessageID),
	})
	require.NoError(t, err)
	assert.IsType(t, &types.AttributeValueMemberNULL{}, out.Item["projectId"])
}
