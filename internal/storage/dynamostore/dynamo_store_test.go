package dynamostore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sh3r4rd/file_metadata/internal/apperr"
	"github.com/sh3r4rd/file_metadata/internal/model"
)

type fakeDynamo struct {
	items map[string]map[string]types.AttributeValue
	putIn *dynamodb.PutItemInput
	getIn *dynamodb.GetItemInput
	err   error
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putIn = in
	if f.err != nil {
		return nil, f.err
	}
	id := in.Item["id"].(*types.AttributeValueMemberS).Value
	f.items[id] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.getIn = in
	if f.err != nil {
		return nil, f.err
	}
	id := in.Key["id"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[id]}, nil
}

func TestNew_Validation(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)

	st, err := New(context.Background(), Config{
		TableName: "Administratortest",
		Region:    "us-east-1",
		Endpoint:  "http://localhost:8000",
		AccessKey: "x",
		SecretKey: "y",
	})
	require.NoError(t, err)
	require.NotNil(t, st.client)
	require.Equal(t, "Administratortest", st.table)
}

func TestStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	fake := &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
	st := NewFromClient(fake, "Administratortest")

	rec := model.FileRecord{
		ID:         "1700000000000_abc",
		UploadedAt: "2026-01-01T00:00:00.000Z",
		Metadata:   model.RecordMetadata{Author: "alice", Description: model.DefaultDescription},
	}
	require.NoError(t, st.PutRecord(ctx, rec))

	assert.Equal(t, "Administratortest", aws.ToString(fake.putIn.TableName))
	assert.Equal(t, "attribute_not_exists(id)", aws.ToString(fake.putIn.ConditionExpression))
	assert.Contains(t, fake.putIn.Item, "UploadedAt")
	assert.Contains(t, fake.putIn.Item, "Metadata")

	got, err := st.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, *got)
	assert.True(t, aws.ToBool(fake.getIn.ConsistentRead))
}

func TestStore_GetMissing(t *testing.T) {
	st := NewFromClient(&fakeDynamo{items: map[string]map[string]types.AttributeValue{}}, "t")

	_, err := st.GetRecord(context.Background(), "nope")
	require.True(t, apperr.IsNotFound(err))
	assert.Contains(t, err.Error(), "nope")
}

func TestStore_ClientErrors(t *testing.T) {
	ctx := context.Background()
	st := NewFromClient(&fakeDynamo{err: errors.New("throttled")}, "t")

	err := st.PutRecord(ctx, model.FileRecord{ID: "k"})
	require.Equal(t, apperr.KindStorageFault, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "throttled")

	_, err = st.GetRecord(ctx, "k")
	require.Equal(t, apperr.KindStorageFault, apperr.KindOf(err))
}

func TestStore_GetMalformedItem(t *testing.T) {
	fake := &fakeDynamo{items: map[string]map[string]types.AttributeValue{
		"k": {
			"id":       &types.AttributeValueMemberS{Value: "k"},
			"Metadata": &types.AttributeValueMemberN{Value: "12"},
		},
	}}
	st := NewFromClient(fake, "t")

	_, err := st.GetRecord(context.Background(), "k")
	require.Equal(t, apperr.KindStorageFault, apperr.KindOf(err))
}
