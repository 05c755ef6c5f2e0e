package discussion

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/tendant/protus/pkg/dynamo"
)

// DynamoDBRepository keeps messages keyed by messageId. Project filtering is
// a scan filter, as the legacy table has no project index.
type DynamoDBRepository struct {
	client dynamo.API
	table  string
}

func NewDynamoDBRepository(client dynamo.API, table string) *DynamoDBRepository {
	return &DynamoDBRepository{client: client, table: table}
}

func (r *DynamoDBRepository) CreateMessage(ctx context.Context, m Message) (Message, error) {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal message: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return Message{}, fmt.Errorf("failed to create message: %w", err)
	}
	return m, nil
}

func (r *DynamoDBRepository) ListMessages(ctx context.Context, projectID string) ([]Message, error) {
	input := &dynamodb.ScanInput{
		TableName:      aws.String(r.table),
		ConsistentRead: aws.Bool(true),
	}
	if projectID != "" {
		expr, err := expression.NewBuilder().
			WithFilter(expression.Name("projectId").Equal(expression.Value(projectID))).
			Build()
		if err != nil {
			return nil, err
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	messages := []Message{}
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan messages: %w", err)
		}
		var batch []Message
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
		}
		messages = append(messages, batch...)
	}
	sortNewestFirst(messages)
	return messages, nil
}

func (r *DynamoDBRepository) DeleteMessage(ctx context.Context, messageID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       dynamo.StringKey("messageId", messageID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
