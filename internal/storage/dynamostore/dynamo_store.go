package dynamostore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/sh3r4rd/file_metadata/internal/apperr"
	"github.com/sh3r4rd/file_metadata/internal/model"
)

// Config holds configuration for the file metadata table.
type Config struct {
	TableName string
	Region    string
	Endpoint  string // DynamoDB Local endpoint, empty for AWS
	AccessKey string
	SecretKey string
}

// API is the subset of *dynamodb.Client used by Store.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Store implements storage.RecordStore on a DynamoDB table keyed by "id".
type Store struct {
	client API
	table  string
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.TableName == "" {
		return nil, fmt.Errorf("table name is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewFromClient(client, cfg.TableName), nil
}

func NewFromClient(client API, table string) *Store {
	return &Store{client: client, table: table}
}

// PutRecord writes rec. Records are write-once: an existing item with the
// same id makes the put fail.
func (s *Store) PutRecord(ctx context.Context, rec model.FileRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return apperr.StorageFault("failed to marshal file record", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return apperr.StorageFault("failed to put item in dynamodb", err)
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, id string) (*model.FileRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, apperr.StorageFault("failed to get item from dynamodb", err)
	}
	if len(out.Item) == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("record %s not found", id))
	}

	var rec model.FileRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, apperr.StorageFault("failed to unmarshal file record", err)
	}
	return &rec, nil
}
