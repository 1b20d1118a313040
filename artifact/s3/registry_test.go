package s3

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/pathgo/artifact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDDBClient is an in-memory DynamoDB mock for testing.
type mockDDBClient struct {
	mu    sync.RWMutex
	items map[string]map[string]types.AttributeValue // run_id -> item
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func (m *mockDDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	runID := params.Item["run_id"].(*types.AttributeValueMemberS).Value

	// Check conditional expression
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(run_id)" {
		if _, exists := m.items[runID]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}

	m.items[runID] = params.Item

	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runID := params.Key["run_id"].(*types.AttributeValueMemberS).Value

	if item, ok := m.items[runID]; ok {
		return &dynamodb.GetItemOutput{Item: item}, nil
	}

	return &dynamodb.GetItemOutput{}, nil
}

func (m *mockDDBClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	runID := params.Key["run_id"].(*types.AttributeValueMemberS).Value
	delete(m.items, runID)

	return &dynamodb.DeleteItemOutput{}, nil
}

func TestRunRegistry_CommitAndGet(t *testing.T) {
	ctx := context.Background()
	registry := NewRunRegistry(newMockDDBClient(), "pathgo-runs")

	rec := RunRecord{
		RunID:       "run-001",
		Place:       "seattle",
		Start:       17,
		Goal:        4211,
		Weight:      "travel_time",
		TotalCost:   1234.5,
		Expanded:    8042,
		Runtime:     3217 * time.Millisecond,
		Artifacts:   []string{"runs/run-001/report.json", "runs/run-001/path.geojson"},
		CommittedAt: time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC),
	}

	require.NoError(t, registry.Commit(ctx, rec))

	got, err := registry.Get(ctx, "run-001")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestRunRegistry_DuplicateCommit(t *testing.T) {
	ctx := context.Background()
	registry := NewRunRegistry(newMockDDBClient(), "pathgo-runs")

	rec := RunRecord{RunID: "run-001", Place: "tokyo"}
	require.NoError(t, registry.Commit(ctx, rec))

	err := registry.Commit(ctx, rec)
	assert.ErrorIs(t, err, ErrConcurrentModification)
}

func TestRunRegistry_ConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	registry := NewRunRegistry(newMockDDBClient(), "pathgo-runs")

	// Racing writers on the same run ID: exactly one wins.
	var wg sync.WaitGroup
	successes := 0
	conflicts := 0
	var mu sync.Mutex

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			err := registry.Commit(ctx, RunRecord{RunID: "run-race", Place: fmt.Sprintf("writer-%d", id)})
			mu.Lock()
			defer mu.Unlock()
			if err == ErrConcurrentModification {
				conflicts++
			} else if err == nil {
				successes++
			} else {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 1, successes)
	assert.Equal(t, 4, conflicts)
}

func TestRunRegistry_GetMissing(t *testing.T) {
	registry := NewRunRegistry(newMockDDBClient(), "pathgo-runs")

	_, err := registry.Get(context.Background(), "no-such-run")
	assert.ErrorIs(t, err, artifact.ErrNotFound)
}

func TestRunRegistry_Delete(t *testing.T) {
	ctx := context.Background()
	registry := NewRunRegistry(newMockDDBClient(), "pathgo-runs")

	require.NoError(t, registry.Commit(ctx, RunRecord{RunID: "run-001"}))
	require.NoError(t, registry.Delete(ctx, "run-001"))

	_, err := registry.Get(ctx, "run-001")
	assert.ErrorIs(t, err, artifact.ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, registry.Delete(ctx, "run-001"))
}

func TestRunRegistry_EmptyRunID(t *testing.T) {
	registry := NewRunRegistry(newMockDDBClient(), "pathgo-runs")

	err := registry.Commit(context.Background(), RunRecord{})
	assert.Error(t, err)
}
