package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/pathgo/artifact"
)

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// ErrConcurrentModification is returned when a run ID is committed twice.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// RunRecord is the registry entry for a finished run. It points at the
// artifacts the run wrote to the store.
type RunRecord struct {
	RunID       string
	Place       string
	Start       int64
	Goal        int64
	Weight      string
	TotalCost   float64
	Expanded    int
	Runtime     time.Duration
	Artifacts   []string
	CommittedAt time.Time
}

// RunRegistry records finished runs in DynamoDB so artifacts written to S3
// can be discovered later. A conditional write makes each run ID commit
// exactly once; retried or racing writers cannot overwrite a record.
//
// Table schema:
//   - Partition key: run_id (string)
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name pathgo-runs \
//	  --attribute-definitions AttributeName=run_id,AttributeType=S \
//	  --key-schema AttributeName=run_id,KeyType=HASH \
//	  --billing-mode PAY_PER_REQUEST
type RunRegistry struct {
	client    DDBClient
	tableName string
}

// NewRunRegistry creates a run registry on the given table.
func NewRunRegistry(client DDBClient, tableName string) *RunRegistry {
	return &RunRegistry{
		client:    client,
		tableName: tableName,
	}
}

// Commit writes the record for a run ID. Committing an ID that already
// exists returns ErrConcurrentModification.
func (r *RunRegistry) Commit(ctx context.Context, rec RunRecord) error {
	if rec.RunID == "" {
		return errors.New("run id must not be empty")
	}

	committedAt := rec.CommittedAt
	if committedAt.IsZero() {
		committedAt = time.Now()
	}

	artifacts := make([]types.AttributeValue, 0, len(rec.Artifacts))
	for _, name := range rec.Artifacts {
		artifacts = append(artifacts, &types.AttributeValueMemberS{Value: name})
	}

	// Conditional put: only succeed if this run ID doesn't exist yet
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"run_id":       &types.AttributeValueMemberS{Value: rec.RunID},
			"place":        &types.AttributeValueMemberS{Value: rec.Place},
			"start":        &types.AttributeValueMemberN{Value: strconv.FormatInt(rec.Start, 10)},
			"goal":         &types.AttributeValueMemberN{Value: strconv.FormatInt(rec.Goal, 10)},
			"weight":       &types.AttributeValueMemberS{Value: rec.Weight},
			"total_cost":   &types.AttributeValueMemberN{Value: strconv.FormatFloat(rec.TotalCost, 'f', -1, 64)},
			"expanded":     &types.AttributeValueMemberN{Value: strconv.Itoa(rec.Expanded)},
			"runtime_ms":   &types.AttributeValueMemberN{Value: strconv.FormatInt(rec.Runtime.Milliseconds(), 10)},
			"artifacts":    &types.AttributeValueMemberL{Value: artifacts},
			"committed_at": &types.AttributeValueMemberS{Value: committedAt.UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_not_exists(run_id)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentModification
		}

		return fmt.Errorf("failed to commit run to DynamoDB: %w", err)
	}

	return nil
}

// Get fetches the record for a run ID. Missing runs return
// artifact.ErrNotFound.
func (r *RunRegistry) Get(ctx context.Context, runID string) (RunRecord, error) {
	resp, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"run_id": &types.AttributeValueMemberS{Value: runID},
		},
	})
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to read run from DynamoDB: %w", err)
	}

	if len(resp.Item) == 0 {
		return RunRecord{}, artifact.ErrNotFound
	}

	return unmarshalRunRecord(resp.Item)
}

// Delete removes the record for a run ID. Missing runs are ignored.
func (r *RunRegistry) Delete(ctx context.Context, runID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"run_id": &types.AttributeValueMemberS{Value: runID},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete run from DynamoDB: %w", err)
	}

	return nil
}

func unmarshalRunRecord(item map[string]types.AttributeValue) (RunRecord, error) {
	str := func(key string) string {
		if v, ok := item[key].(*types.AttributeValueMemberS); ok {
			return v.Value
		}

		return ""
	}

	num := func(key string) float64 {
		if v, ok := item[key].(*types.AttributeValueMemberN); ok {
			f, _ := strconv.ParseFloat(v.Value, 64)
			return f
		}

		return 0
	}

	rec := RunRecord{
		RunID:     str("run_id"),
		Place:     str("place"),
		Start:     int64(num("start")),
		Goal:      int64(num("goal")),
		Weight:    str("weight"),
		TotalCost: num("total_cost"),
		Expanded:  int(num("expanded")),
		Runtime:   time.Duration(num("runtime_ms")) * time.Millisecond,
	}

	if rec.RunID == "" {
		return RunRecord{}, errors.New("invalid run_id attribute in DynamoDB")
	}

	if v, ok := item["artifacts"].(*types.AttributeValueMemberL); ok {
		for _, el := range v.Value {
			if s, ok := el.(*types.AttributeValueMemberS); ok {
				rec.Artifacts = append(rec.Artifacts, s.Value)
			}
		}
	}

	if v := str("committed_at"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			rec.CommittedAt = ts
		}
	}

	return rec, nil
}
