package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/vecml/blobstore"
)

// ErrConcurrentModification is returned when another writer committed the
// same model version first.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// DynamoDBClient is the subset of the DynamoDB API used by Registry.
type DynamoDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Registry records, per model name, a monotonically increasing version and
// the blob name that holds it.
//
// Table schema:
//   - Partition key: model (string)
//   - Sort key: version (number)
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name vecml-models \
//	  --attribute-definitions AttributeName=model,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=model,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type Registry struct {
	client DynamoDBClient
	table  string
}

// NewRegistry creates a registry on an existing table.
func NewRegistry(client DynamoDBClient, table string) *Registry {
	return &Registry{client: client, table: table}
}

// Latest returns the newest version of model and its blob name. It returns
// blobstore.ErrNotFound if nothing was committed yet.
func (r *Registry) Latest(ctx context.Context, model string) (uint64, string, error) {
	resp, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("model = :model"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":model": &types.AttributeValueMemberS{Value: model},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("query registry: %w", err)
	}
	if len(resp.Items) == 0 {
		return 0, "", blobstore.ErrNotFound
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("invalid version attribute in registry")
	}
	blobAttr, ok := item["blob"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("invalid blob attribute in registry")
	}
	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("parse version: %w", err)
	}
	return version, blobAttr.Value, nil
}

// Commit records blob as the given version of model. It fails with
// ErrConcurrentModification if that version already exists.
func (r *Registry) Commit(ctx context.Context, model string, version uint64, blob string) error {
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item: map[string]types.AttributeValue{
			"model":   &types.AttributeValueMemberS{Value: model},
			"version": &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
			"blob":    &types.AttributeValueMemberS{Value: blob},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("commit version %d of %q: %w", version, model, err)
	}
	return nil
}

// Publish commits blob as the version after the current latest and returns
// that version.
func (r *Registry) Publish(ctx context.Context, model, blob string) (uint64, error) {
	current, _, err := r.Latest(ctx, model)
	if err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		return 0, err
	}
	next := current + 1
	if err := r.Commit(ctx, model, next, blob); err != nil {
		return 0, err
	}
	return next, nil
}
