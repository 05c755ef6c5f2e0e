// Package dynamo holds the DynamoDB client plumbing shared by the key-value
// store backends of pkg/user and pkg/project.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/tendant/protus/pkg/config"
)

// API is the subset of *dynamodb.Client used by the repositories.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// NewClient builds a DynamoDB client from the default AWS credential chain.
// When an endpoint is configured (dynamodb-local), static dummy credentials
// are used instead.
func NewClient(ctx context.Context, cfg config.DynamoDBConfig) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	slog.Info("DynamoDB client ready", "region", cfg.Region, "endpoint", cfg.Endpoint)
	return client, nil
}

// TableCreator is implemented by *dynamodb.Client.
type TableCreator interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// EnsureTables creates the application tables with the legacy key shapes if they
// do not exist. It is meant for local emulators; production tables are
// provisioned outside the service.
func EnsureTables(ctx context.Context, api TableCreator, cfg config.DynamoDBConfig) error {
	tables := []struct {
		name     string
		hash     string
		rangeKey string
	}{
		{cfg.UsersTable, "userId", ""},
		{cfg.UserKeysTable, "key", ""},
		{cfg.ProjectsTable, "projectId", ""},
		{cfg.TasksTable, "projectId", "taskId"},
		{cfg.TeamTable, "memberId", ""},
		{cfg.DiscussionsTable, "messageId", ""},
	}

	for _, tbl := range tables {
		input := &dynamodb.CreateTableInput{
			TableName:   aws.String(tbl.name),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String(tbl.hash), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(tbl.hash), KeyType: types.KeyTypeHash},
			},
		}
		if tbl.rangeKey != "" {
			input.AttributeDefinitions = append(input.AttributeDefinitions,
				types.AttributeDefinition{AttributeName: aws.String(tbl.rangeKey), AttributeType: types.ScalarAttributeTypeS})
			input.KeySchema = append(input.KeySchema,
				types.KeySchemaElement{AttributeName: aws.String(tbl.rangeKey), KeyType: types.KeyTypeRange})
		}

		_, err := api.CreateTable(ctx, input)
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to create table %s: %w", tbl.name, err)
		}

		waiter := dynamodb.NewTableExistsWaiter(api)
		if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tbl.name)}, tableWaitTimeout); err != nil {
			return fmt.Errorf("table %s did not become active: %w", tbl.name, err)
		}
		slog.Info("Created DynamoDB table", "table", tbl.name)
	}
	return nil
}
