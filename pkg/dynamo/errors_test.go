package dynamo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
)

func TestCancelledAt(t *testing.T) {
	err := fmt.Errorf("create user: %w", &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
			{Code: aws.String("None")},
		},
	})

	assert.Equal(t, []int{1}, CancelledAt(err))
	assert.True(t, FailedAt(err, 1))
	assert.False(t, FailedAt(err, 0))
	assert.Nil(t, CancelledAt(errors.New("boom")))
}

func TestIsConditionFailed(t *testing.T) {
	assert.True(t, IsConditionFailed(fmt.Errorf("wrapped: %w", &types.ConditionalCheckFailedException{})))
	assert.False(t, IsConditionFailed(errors.New("boom")))
}

func TestStringKey(t *testing.T) {
	key := StringKey("userId", "u-1")
	assert.Equal(t, &types.AttributeValueMemberS{Value: "u-1"}, key["userId"])
}
