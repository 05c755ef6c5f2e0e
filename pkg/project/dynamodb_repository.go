package project

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/tendant/protus/pkg/dynamo"
)

// DynamoDBRepository keeps projects keyed by projectId and tasks keyed by
// projectId and taskId.
type DynamoDBRepository struct {
	client        dynamo.API
	projectsTable string
	tasksTable    string
}

func NewDynamoDBRepository(client dynamo.API, projectsTable, tasksTable string) *DynamoDBRepository {
	return &DynamoDBRepository{client: client, projectsTable: projectsTable, tasksTable: tasksTable}
}

func taskItemKey(projectID, taskID string) map[string]types.AttributeValue {
	key := dynamo.StringKey("projectId", projectID)
	key["taskId"] = &types.AttributeValueMemberS{Value: taskID}
	return key
}

func (r *DynamoDBRepository) put(ctx context.Context, table string, v interface{}) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	})
	return err
}

func (r *DynamoDBRepository) CreateProject(ctx context.Context, p Project) (Project, error) {
	if err := r.put(ctx, r.projectsTable, p); err != nil {
		return Project{}, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

func (r *DynamoDBRepository) GetProject(ctx context.Context, projectID string) (Project, error) {
	if projectID == "" {
		return Project{}, ErrProjectNotFound
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.projectsTable),
		Key:            dynamo.StringKey("projectId", projectID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	if out.Item == nil {
		return Project{}, ErrProjectNotFound
	}
	var p Project
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return Project{}, fmt.Errorf("failed to unmarshal project: %w", err)
	}
	return p, nil
}

func (r *DynamoDBRepository) ListProjects(ctx context.Context) ([]Project, error) {
	projects := []Project{}
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:      aws.String(r.projectsTable),
		ConsistentRead: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan projects: %w", err)
		}
		var batch []Project
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal projects: %w", err)
		}
		projects = append(projects, batch...)
	}
	sortProjects(projects)
	return projects, nil
}

func (r *DynamoDBRepository) UpdateProject(ctx context.Context, projectID string, upd ProjectUpdate) (Project, error) {
	update := expression.Set(expression.Name("updatedAt"), expression.Value(upd.UpdatedAt))
	if upd.Name != nil {
		update = update.Set(expression.Name("name"), expression.Value(*upd.Name))
	}
	if upd.Status != nil {
		update = update.Set(expression.Name("status"), expression.Value(*upd.Status))
	}
	if upd.Owner.Set {
		update = update.Set(expression.Name("owner"), expression.Value(upd.Owner.Value))
	}

	var p Project
	err := r.update(ctx, r.projectsTable, dynamo.StringKey("projectId", projectID), "projectId", update, &p)
	if err != nil {
		if dynamo.IsConditionFailed(err) {
			return Project{}, ErrProjectNotFound
		}
		return Project{}, fmt.Errorf("failed to update project: %w", err)
	}
	return p, nil
}

func (r *DynamoDBRepository) CreateTask(ctx context.Context, t Task) (Task, error) {
	if err := r.put(ctx, r.tasksTable, t); err != nil {
		return Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return t, nil
}

func (r *DynamoDBRepository) ListTasks(ctx context.Context, projectID string) ([]Task, error) {
	keyCond := expression.Key("projectId").Equal(expression.Value(projectID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, err
	}

	tasks := []Task{}
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tasksTable),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query tasks: %w", err)
		}
		var batch []Task
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tasks: %w", err)
		}
		tasks = append(tasks, batch...)
	}
	sortTasks(tasks)
	return tasks, nil
}

func (r *DynamoDBRepository) UpdateTask(ctx context.Context, projectID, taskID string, upd TaskUpdate) (Task, error) {
	update := expression.Set(expression.Name("updatedAt"), expression.Value(upd.UpdatedAt))
	if upd.Title != nil {
		update = update.Set(expression.Name("title"), expression.Value(*upd.Title))
	}
	if upd.Status != nil {
		update = update.Set(expression.Name("status"), expression.Value(*upd.Status))
	}
	if upd.Assignee.Set {
		update = update.Set(expression.Name("assignee"), expression.Value(upd.Assignee.Value))
	}
	if upd.Priority != nil {
		update = update.Set(expression.Name("priority"), expression.Value(*upd.Priority))
	}
	if upd.DueDate.Set {
		update = update.Set(expression.Name("dueDate"), expression.Value(upd.DueDate.Value))
	}

	var t Task
	err := r.update(ctx, r.tasksTable, taskItemKey(projectID, taskID), "taskId", update, &t)
	if err != nil {
		if dynamo.IsConditionFailed(err) {
			return Task{}, ErrTaskNotFound
		}
		return Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	return t, nil
}

// update applies an existing-item-only update and decodes the new image into out.
func (r *DynamoDBRepository) update(ctx context.Context, table string, key map[string]types.AttributeValue,
	existsAttr string, update expression.UpdateBuilder, out interface{}) error {
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name(existsAttr))).
		Build()
	if err != nil {
		return err
	}
	res, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       key,
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return err
	}
	return attributevalue.UnmarshalMap(res.Attributes, out)
}
