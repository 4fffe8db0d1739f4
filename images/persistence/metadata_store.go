package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dfryer1193/cloudgram/images/domain"
)

var _ domain.MetadataStore = (*DynamoMetadataStore)(nil)

// DynamoAPI is the slice of the DynamoDB client this adapter uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoMetadataStore implements domain.MetadataStore against a
// DynamoDB table keyed by image_id.
type DynamoMetadataStore struct {
	client DynamoAPI
	table  string
}

func NewDynamoMetadataStore(client DynamoAPI, table string) *DynamoMetadataStore {
	return &DynamoMetadataStore{
		client: client,
		table:  table,
	}
}

// PutRecord inserts the record, overwriting by primary key. There is no
// conditional write; the service generates a fresh ID per upload so
// collisions do not occur in practice.
func (s *DynamoMetadataStore) PutRecord(ctx context.Context, rec *domain.ImageRecord) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", rec.ImageID, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put record %s: %w", rec.ImageID, err)
	}

	return nil
}

// GetRecord returns the record for imageID, or (nil, nil) when absent.
func (s *DynamoMetadataStore) GetRecord(ctx context.Context, imageID string) (*domain.ImageRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       recordKey(imageID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", imageID, err)
	}

	if len(out.Item) == 0 {
		return nil, nil
	}

	rec := &domain.ImageRecord{}
	if err := attributevalue.UnmarshalMap(out.Item, rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record %s: %w", imageID, err)
	}

	return rec, nil
}

// Scan returns every record matching the filter, following pagination
// tokens until the table is exhausted so callers never see a partial
// page.
func (s *DynamoMetadataStore) Scan(ctx context.Context, filter domain.ImageFilter) ([]*domain.ImageRecord, error) {
	in := &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	}

	cond, hasFilter, err := buildFilterCondition(filter)
	if err != nil {
		return nil, err
	}
	if hasFilter {
		expr, err := expression.NewBuilder().WithFilter(cond).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build filter expression: %w", err)
		}
		in.FilterExpression = expr.Filter()
		in.ExpressionAttributeNames = expr.Names()
		in.ExpressionAttributeValues = expr.Values()
	}

	var recs []*domain.ImageRecord
	for {
		out, err := s.client.Scan(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("failed to scan records: %w", err)
		}

		page := []*domain.ImageRecord{}
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scan page: %w", err)
		}
		recs = append(recs, page...)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}

	if recs == nil {
		recs = []*domain.ImageRecord{}
	}
	return recs, nil
}

// DeleteRecord removes the record for imageID. DynamoDB reports success
// for missing keys, so the operation is naturally idempotent.
func (s *DynamoMetadataStore) DeleteRecord(ctx context.Context, imageID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       recordKey(imageID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", imageID, err)
	}

	return nil
}

// buildFilterCondition translates an ImageFilter into a DynamoDB filter
// condition. A set filter value containing only whitespace is rejected
// as caller error rather than sent to the store.
func buildFilterCondition(filter domain.ImageFilter) (expression.ConditionBuilder, bool, error) {
	var cond expression.ConditionBuilder
	hasFilter := false

	if filter.UserID != "" {
		if strings.TrimSpace(filter.UserID) == "" {
			return cond, false, fmt.Errorf("%w: user_id filter is blank", domain.ErrValidation)
		}
		cond = expression.Name("user_id").Equal(expression.Value(filter.UserID))
		hasFilter = true
	}

	if filter.Tag != "" {
		if strings.TrimSpace(filter.Tag) == "" {
			return cond, false, fmt.Errorf("%w: tag filter is blank", domain.ErrValidation)
		}
		tagCond := expression.Name("tags").Contains(filter.Tag)
		if hasFilter {
			cond = cond.And(tagCond)
		} else {
			cond = tagCond
		}
		hasFilter = true
	}

	return cond, hasFilter, nil
}

func recordKey(imageID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"image_id": &types.AttributeValueMemberS{Value: imageID},
	}
}
