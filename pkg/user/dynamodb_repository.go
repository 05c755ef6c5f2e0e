package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/tendant/protus/pkg/dynamo"
)

const (
	keyAttr      = "key"
	bootstrapKey = "bootstrap"
)

// keyItem is stored in the keys table and points a unique value at its owner.
type keyItem struct {
	Key    string `dynamodbav:"key"`
	UserID string `dynamodbav:"userId"`
}

func emailKey(email string) string { return "email#" + email }
func tokenKey(token string) string { return "token#" + token }

// DynamoDBUserRepository implements UserRepository on DynamoDB. User items
// keep the legacy attribute names; uniqueness of email and token and the
// first-user bootstrap are enforced with conditional puts on a keys table
// written in the same transaction as the user item.
type DynamoDBUserRepository struct {
	client     dynamo.API
	usersTable string
	keysTable  string
}

func NewDynamoDBUserRepository(client dynamo.API, usersTable, keysTable string) *DynamoDBUserRepository {
	return &DynamoDBUserRepository{client: client, usersTable: usersTable, keysTable: keysTable}
}

func (r *DynamoDBUserRepository) putKey(key, userID string) (types.TransactWriteItem, error) {
	item, err := attributevalue.MarshalMap(keyItem{Key: key, UserID: userID})
	if err != nil {
		return types.TransactWriteItem{}, err
	}
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(keyAttr))).
		Build()
	if err != nil {
		return types.TransactWriteItem{}, err
	}
	return types.TransactWriteItem{Put: &types.Put{
		TableName:                aws.String(r.keysTable),
		Item:                     item,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	}}, nil
}

func (r *DynamoDBUserRepository) deleteKey(key string) types.TransactWriteItem {
	return types.TransactWriteItem{Delete: &types.Delete{
		TableName: aws.String(r.keysTable),
		Key:       dynamo.StringKey(keyAttr, key),
	}}
}

// insert writes the user item and its key items in one transaction.
// Item order: user, email key, [bootstrap marker], [token key].
func (r *DynamoDBUserRepository) insert(ctx context.Context, u User, bootstrap bool) (User, error) {
	// A legacy user holding the email has no key item until it is looked up.
	if _, err := r.FindUserByEmail(ctx, u.Email); err == nil {
		return User{}, ErrEmailExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return User{}, err
	}

	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return User{}, fmt.Errorf("failed to marshal user: %w", err)
	}
	userExpr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("userId"))).
		Build()
	if err != nil {
		return User{}, err
	}

	items := []types.TransactWriteItem{{Put: &types.Put{
		TableName:                aws.String(r.usersTable),
		Item:                     item,
		ConditionExpression:      userExpr.Condition(),
		ExpressionAttributeNames: userExpr.Names(),
	}}}

	emailItem, err := r.putKey(emailKey(u.Email), u.UserID)
	if err != nil {
		return User{}, err
	}
	items = append(items, emailItem)
	emailIdx, bootstrapIdx, tokenIdx := 1, -1, -1

	if bootstrap {
		marker, err := r.putKey(bootstrapKey, u.UserID)
		if err != nil {
			return User{}, err
		}
		items = append(items, marker)
		bootstrapIdx = len(items) - 1
	}
	if u.Token != "" {
		tok, err := r.putKey(tokenKey(u.Token), u.UserID)
		if err != nil {
			return User{}, err
		}
		items = append(items, tok)
		tokenIdx = len(items) - 1
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	switch {
	case err == nil:
		return u, nil
	case dynamo.FailedAt(err, bootstrapIdx):
		return User{}, ErrUsersExist
	case dynamo.FailedAt(err, emailIdx):
		return User{}, ErrEmailExists
	case dynamo.FailedAt(err, tokenIdx):
		return User{}, ErrTokenExists
	default:
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}
}

func (r *DynamoDBUserRepository) CreateUser(ctx context.Context, u User) (User, error) {
	return r.insert(ctx, u, false)
}

// CreateFirstUser refuses when any user item exists (which also covers tables
// populated before the keys table existed) and otherwise races on the
// bootstrap marker.
func (r *DynamoDBUserRepository) CreateFirstUser(ctx context.Context, u User) (User, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:      aws.String(r.usersTable),
		Limit:          aws.Int32(1),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return User{}, fmt.Errorf("failed to check for users: %w", err)
	}
	if len(out.Items) > 0 {
		return User{}, ErrUsersExist
	}
	return r.insert(ctx, u, true)
}

func (r *DynamoDBUserRepository) GetUserByID(ctx context.Context, userID string) (User, error) {
	if userID == "" {
		return User{}, ErrUserNotFound
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.usersTable),
		Key:            dynamo.StringKey("userId", userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	if out.Item == nil {
		return User{}, ErrUserNotFound
	}
	var u User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return User{}, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return u, nil
}

// ownerOf resolves a key item to the user id it points at.
func (r *DynamoDBUserRepository) ownerOf(ctx context.Context, key string) (string, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.keysTable),
		Key:            dynamo.StringKey(keyAttr, key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get key item: %w", err)
	}
	if out.Item == nil {
		return "", ErrUserNotFound
	}
	var k keyItem
	if err := attributevalue.UnmarshalMap(out.Item, &k); err != nil {
		return "", fmt.Errorf("failed to unmarshal key item: %w", err)
	}
	return k.UserID, nil
}

func (r *DynamoDBUserRepository) FindUserByEmail(ctx context.Context, email string) (User, error) {
	if email == "" {
		return User{}, ErrUserNotFound
	}
	u, err := r.lookup(ctx, emailKey(email), "email", email)
	if err != nil {
		return User{}, err
	}
	if u.Email != email {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (r *DynamoDBUserRepository) FindUserByToken(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrUserNotFound
	}
	u, err := r.lookup(ctx, tokenKey(token), "token", token)
	if err != nil {
		return User{}, err
	}
	if u.Token != token {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

// lookup resolves a unique value through its key item. Users written before
// the keys table existed have no key items; they are found by a scan on attr
// and get their key item backfilled.
func (r *DynamoDBUserRepository) lookup(ctx context.Context, key, attr, value string) (User, error) {
	userID, err := r.ownerOf(ctx, key)
	if errors.Is(err, ErrUserNotFound) {
		return r.findUnkeyed(ctx, key, attr, value)
	}
	if err != nil {
		return User{}, err
	}
	return r.GetUserByID(ctx, userID)
}

func (r *DynamoDBUserRepository) findUnkeyed(ctx context.Context, key, attr, value string) (User, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name(attr).Equal(expression.Value(value))).
		Build()
	if err != nil {
		return User{}, err
	}
	users, err := r.scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(r.usersTable),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(true),
	})
	if err != nil {
		return User{}, err
	}
	if len(users) == 0 {
		return User{}, ErrUserNotFound
	}

	u := users[0]
	if err := r.backfillKey(ctx, key, u.UserID); err != nil {
		return User{}, err
	}
	slog.Info("Backfilled key item for legacy user", "userId", u.UserID, "attr", attr)
	return u, nil
}

// backfillKey writes a key item unless one already exists.
func (r *DynamoDBUserRepository) backfillKey(ctx context.Context, key, userID string) error {
	put, err := r.putKey(key, userID)
	if err != nil {
		return err
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                put.Put.TableName,
		Item:                     put.Put.Item,
		ConditionExpression:      put.Put.ConditionExpression,
		ExpressionAttributeNames: put.Put.ExpressionAttributeNames,
	})
	if err != nil && !dynamo.IsConditionFailed(err) {
		return fmt.Errorf("failed to backfill key item: %w", err)
	}
	return nil
}

func (r *DynamoDBUserRepository) FindUsersByRoleStatus(ctx context.Context, role, status string) ([]User, error) {
	filter := expression.Name("role").Equal(expression.Value(role)).
		And(expression.Name("status").Equal(expression.Value(status)))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, err
	}
	return r.scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(r.usersTable),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(true),
	})
}

func (r *DynamoDBUserRepository) ListUsers(ctx context.Context) ([]User, error) {
	return r.scan(ctx, &dynamodb.ScanInput{
		TableName:      aws.String(r.usersTable),
		ConsistentRead: aws.Bool(true),
	})
}

func (r *DynamoDBUserRepository) scan(ctx context.Context, input *dynamodb.ScanInput) ([]User, error) {
	users := []User{}
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan users: %w", err)
		}
		var batch []User
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal users: %w", err)
		}
		users = append(users, batch...)
	}
	sortByCreated(users)
	return users, nil
}

// updateExpression translates upd into an update and its condition. When the
// update writes the token, the condition pins it to the value read in cur so
// the key items written alongside stay consistent. Expected OTP and token
// values are pinned as given.
func updateExpression(cur User, upd UserUpdate) (expression.Expression, error) {
	var update expression.UpdateBuilder
	set := func(name string, value interface{}) {
		update = update.Set(expression.Name(name), expression.Value(value))
	}
	remove := func(names ...string) {
		for _, name := range names {
			update = update.Remove(expression.Name(name))
		}
	}

	if upd.Role != nil {
		set("role", *upd.Role)
	}
	if upd.Status != nil {
		set("status", *upd.Status)
	}
	if upd.LastLogin != nil {
		set("lastLogin", *upd.LastLogin)
	}
	switch {
	case upd.OTP != nil:
		set("otp", upd.OTP.Value)
		set("otpExpiry", upd.OTP.ExpiresAt)
	case upd.ClearOTP:
		remove("otp", "otpExpiry")
	}
	switch {
	case upd.Token != nil:
		set("token", upd.Token.Value)
		set("tokenExpiry", upd.Token.ExpiresAt)
	case upd.ClearToken:
		remove("token", "tokenExpiry")
	}

	cond := expression.AttributeExists(expression.Name("userId"))
	switch {
	case upd.ExpectToken != nil:
		cond = cond.And(equalsOrAbsent("token", *upd.ExpectToken))
	case upd.Token != nil || upd.ClearToken:
		cond = cond.And(equalsOrAbsent("token", cur.Token))
	}
	if upd.ExpectOTP != nil {
		cond = cond.And(equalsOrAbsent("otp", *upd.ExpectOTP))
	}
	return expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
}

func equalsOrAbsent(name, value string) expression.ConditionBuilder {
	if value == "" {
		return expression.AttributeNotExists(expression.Name(name))
	}
	return expression.Name(name).Equal(expression.Value(value))
}

func (r *DynamoDBUserRepository) UpdateUser(ctx context.Context, userID string, upd UserUpdate) (User, error) {
	cur, err := r.GetUserByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if err := upd.check(cur); err != nil {
		return User{}, err
	}
	if upd.IsEmpty() {
		return cur, nil
	}

	next := cur
	upd.apply(&next)

	expr, err := updateExpression(cur, upd)
	if err != nil {
		return User{}, fmt.Errorf("failed to build update: %w", err)
	}
	key := dynamo.StringKey("userId", userID)

	if next.Token == cur.Token {
		_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(r.usersTable),
			Key:                       key,
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		if err != nil {
			if dynamo.IsConditionFailed(err) {
				return User{}, r.conditionFailure(ctx, userID)
			}
			return User{}, fmt.Errorf("failed to update user: %w", err)
		}
		return next, nil
	}

	// The token changes: swap its key items in the same transaction.
	items := []types.TransactWriteItem{{Update: &types.Update{
		TableName:                 aws.String(r.usersTable),
		Key:                       key,
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}}}
	if cur.Token != "" {
		items = append(items, r.deleteKey(tokenKey(cur.Token)))
	}
	tokenIdx := -1
	if next.Token != "" {
		tok, err := r.putKey(tokenKey(next.Token), userID)
		if err != nil {
			return User{}, err
		}
		items = append(items, tok)
		tokenIdx = len(items) - 1
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	switch {
	case err == nil:
		return next, nil
	case dynamo.FailedAt(err, 0):
		return User{}, r.conditionFailure(ctx, userID)
	case dynamo.FailedAt(err, tokenIdx):
		return User{}, ErrTokenExists
	default:
		return User{}, fmt.Errorf("failed to update user: %w", err)
	}
}

// conditionFailure distinguishes a deleted record from a lost race.
func (r *DynamoDBUserRepository) conditionFailure(ctx context.Context, userID string) error {
	if _, err := r.GetUserByID(ctx, userID); err != nil {
		return err
	}
	return ErrConditionFailed
}

func (r *DynamoDBUserRepository) DeleteUser(ctx context.Context, userID string) error {
	cur, err := r.GetUserByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	items := []types.TransactWriteItem{
		{Delete: &types.Delete{TableName: aws.String(r.usersTable), Key: dynamo.StringKey("userId", userID)}},
		r.deleteKey(emailKey(cur.Email)),
	}
	if cur.Token != "" {
		items = append(items, r.deleteKey(tokenKey(cur.Token)))
	}
	if _, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	// Release the bootstrap marker if it names this user, so an emptied
	// store can bootstrap again.
	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("userId").Equal(expression.Value(userID))).
		Build()
	if err != nil {
		return err
	}
	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.keysTable),
		Key:                       dynamo.StringKey(keyAttr, bootstrapKey),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil && !dynamo.IsConditionFailed(err) {
		return fmt.Errorf("failed to release bootstrap marker: %w", err)
	}
	return nil
}
