package team

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/tendant/protus/pkg/dynamo"
)

// DynamoDBRepository keeps members keyed by memberId.
type DynamoDBRepository struct {
	client dynamo.API
	table  string
}

func NewDynamoDBRepository(client dynamo.API, table string) *DynamoDBRepository {
	return &DynamoDBRepository{client: client, table: table}
}

func (r *DynamoDBRepository) CreateMember(ctx context.Context, m Member) (Member, error) {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return Member{}, fmt.Errorf("failed to marshal member: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return Member{}, fmt.Errorf("failed to create member: %w", err)
	}
	return m, nil
}

func (r *DynamoDBRepository) ListMembers(ctx context.Context) ([]Member, error) {
	members := []Member{}
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:      aws.String(r.table),
		ConsistentRead: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan members: %w", err)
		}
		var batch []Member
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal members: %w", err)
		}
		members = append(members, batch...)
	}
	sortMembers(members)
	return members, nil
}

func (r *DynamoDBRepository) DeleteMember(ctx context.Context, memberID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       dynamo.StringKey("memberId", memberID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return nil
}
