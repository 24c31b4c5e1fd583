package submissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/richcards/leadrelay/pkg/logging"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoStore writes submissions to a DynamoDB table keyed by "id". The table
// should have TTL enabled on the "ttl" attribute.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewDynamoStore builds a store backed by the provided DynamoDB client.
func NewDynamoStore(client dynamoAPI, tableName string, logger *logging.Logger) *DynamoStore {
	if client == nil {
		panic("submissions: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("submissions: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Save puts the submission, refusing to overwrite an existing id.
func (s *DynamoStore) Save(ctx context.Context, sub *Submission) error {
	if sub == nil {
		return errors.New("submissions: submission cannot be nil")
	}

	ctx, span := storeTracer.Start(ctx, "submissions.dynamodb.put")
	defer span.End()
	span.SetAttributes(
		attribute.String("submission.id", sub.ID),
		attribute.String("dynamodb.table", s.tableName),
	)

	item, err := attributevalue.MarshalMap(sub)
	if err != nil {
		return fmt.Errorf("submissions: failed to marshal submission: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "put failed")
		return fmt.Errorf("submissions: dynamodb put failed: %w", err)
	}

	s.logger.Debug("submission saved to dynamodb", "submission_id", sub.ID, "table", s.tableName)
	return nil
}

var _ Store = (*DynamoStore)(nil)
