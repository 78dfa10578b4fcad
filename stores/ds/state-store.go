package ds

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"

	"github.com/weegigs/wee-contracts-go/we"
)

// MaxChanges is the largest change set a single commit accepts. DynamoDB
// transactions are limited to 25 items and one is the latest revision record.
const MaxChanges = 24

type StateTableName string

func (name StateTableName) String() string {
	return string(name)
}

type DynamoStateStore struct {
	db       *dynamodb.Client
	table    string
	revision *we.RevisionGenerator
	clock    we.Clock
	loaded   func(we.ContractAddress)
}

func NewStateStore(db *dynamodb.Client, table StateTableName) *DynamoStateStore {
	return &DynamoStateStore{
		db:       db,
		table:    table.String(),
		revision: we.NewRevisionGenerator(),
		clock:    we.SystemClock,
	}
}

var errTornRead = errors.New("state changed while loading")

// Load pages the instance's records, then re-reads the latest revision record.
// A commit landing between pages restarts the load, so values and revision
// always come from the same commit.
func (ds *DynamoStateStore) Load(ctx context.Context, address we.ContractAddress) (we.State, error) {
	var state we.State
	err := retry.Do(
		func() error {
			loaded, err := ds.load(ctx, address)
			if err != nil {
				return err
			}

			if ds.loaded != nil {
				ds.loaded(address)
			}

			latest, err := ds.latestRevision(ctx, address)
			if err != nil {
				return err
			}

			if latest != loaded.Revision {
				return errTornRead
			}

			state = loaded
			return nil
		},
		retry.Attempts(5),
		retry.Delay(10*time.Millisecond),
		retry.RetryIf(func(err error) bool { return errors.Is(err, errTornRead) }),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return we.State{}, err
	}

	return state, nil
}

func (ds *DynamoStateStore) load(ctx context.Context, address we.ContractAddress) (we.State, error) {
	state := we.EmptyState(address)

	err := ds.query(ctx, address, nil, func(items []record) error {
		for _, item := range items {
			if item.isLatest() {
				state.Revision = item.Revision
				continue
			}

			if key, ok := item.valueKey(); ok {
				value := item.Value
				if value == nil {
					value = []byte{}
				}
				state.Values[key] = value
			}
		}

		return nil
	})
	if err != nil {
		return we.State{}, err
	}

	return state, nil
}

func (ds *DynamoStateStore) latestRevision(ctx context.Context, address we.ContractAddress) (we.Revision, error) {
	key, err := attributevalue.MarshalMap(recordKey{PartitionKey: partitionKey(address), SortKey: latestSortKey})
	if err != nil {
		return "", err
	}

	out, err := ds.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(ds.table),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", err
	}

	if len(out.Item) == 0 {
		return we.InitialRevision, nil
	}

	var latest record
	if err := attributevalue.UnmarshalMap(out.Item, &latest); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal latest revision")
	}

	return latest.Revision, nil
}

func (ds *DynamoStateStore) Commit(ctx context.Context, address we.ContractAddress, changes we.ChangeSet) (we.Revision, error) {
	if changes.Size() > MaxChanges {
		return "", fmt.Errorf("change set of %d keys exceeds the limit of %d", changes.Size(), MaxChanges)
	}

	var revision we.Revision
	err := retry.Do(
		func() error {
			now := ds.clock.Now()
			revision = ds.revision.NewRevision(now)

			write, err := ds.makeTransaction(address, changes, revision, we.TimestampFromTime(now))
			if err != nil {
				return err
			}

			_, err = ds.db.TransactWriteItems(ctx, write)
			return maybeRevisionConflict(err)
		},
		retry.Attempts(3),
		retry.Delay(25*time.Millisecond),
		retry.RetryIf(isTransient),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}

	return revision, nil
}

// Remove deletes every record held for an instance and returns how many were
// removed.
func (ds *DynamoStateStore) Remove(ctx context.Context, address we.ContractAddress) (int, error) {
	projection := expression.NamesList(expression.Name("pk"), expression.Name("sk"))

	var count int
	err := ds.query(ctx, address, &projection, func(items []record) error {
		if len(items) == 0 {
			return nil
		}

		var actions []types.TransactWriteItem
		for _, item := range items {
			key, err := attributevalue.MarshalMap(recordKey{PartitionKey: item.PartitionKey, SortKey: item.SortKey})
			if err != nil {
				return err
			}

			actions = append(actions, types.TransactWriteItem{
				Delete: &types.Delete{
					Key:       key,
					TableName: aws.String(ds.table),
				},
			})
		}

		_, err := ds.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: actions})
		if err != nil {
			return err
		}

		count += len(items)
		return nil
	})

	return count, err
}

func (ds *DynamoStateStore) query(ctx context.Context, address we.ContractAddress, projection *expression.ProjectionBuilder, page func([]record) error) error {
	builder := expression.NewBuilder().WithKeyCondition(
		expression.Key("pk").Equal(expression.Value(partitionKey(address))),
	)
	if projection != nil {
		builder = builder.WithProjection(*projection)
	}

	expr, err := builder.Build()
	if err != nil {
		return err
	}

	var start map[string]types.AttributeValue
	for {
		query := &dynamodb.QueryInput{
			TableName:                 aws.String(ds.table),
			ConsistentRead:            aws.Bool(true),
			ExclusiveStartKey:         start,
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			KeyConditionExpression:    expr.KeyCondition(),
			ProjectionExpression:      expr.Projection(),
			Limit:                     aws.Int32(25),
		}

		out, err := ds.db.Query(ctx, query)
		if err != nil {
			return err
		}

		var items []record
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return errors.Wrap(err, "failed to unmarshal state records")
		}

		if err := page(items); err != nil {
			return err
		}

		start = out.LastEvaluatedKey
		if len(start) == 0 {
			return nil
		}
	}
}

func (ds *DynamoStateStore) makeTransaction(address we.ContractAddress, changes we.ChangeSet, revision we.Revision, timestamp we.Timestamp) (*dynamodb.TransactWriteItemsInput, error) {
	latest, err := attributevalue.MarshalMap(latestRecord(address, revision, timestamp))
	if err != nil {
		return nil, err
	}

	condition, err := expression.NewBuilder().WithCondition(
		latestCondition(revision, changes.ExpectedRevision),
	).Build()
	if err != nil {
		return nil, err
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				Item:                                latest,
				TableName:                           aws.String(ds.table),
				ConditionExpression:                 condition.Condition(),
				ExpressionAttributeNames:            condition.Names(),
				ExpressionAttributeValues:           condition.Values(),
				ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureNone,
			},
		},
	}

	for key, value := range changes.Writes {
		item, err := attributevalue.MarshalMap(valueRecord(address, key, value))
		if err != nil {
			return nil, err
		}

		items = append(items, types.TransactWriteItem{
			Put: &types.Put{Item: item, TableName: aws.String(ds.table)},
		})
	}

	for _, key := range changes.Removes {
		item, err := attributevalue.MarshalMap(recordKey{PartitionKey: partitionKey(address), SortKey: valueSortKey(key)})
		if err != nil {
			return nil, err
		}

		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{Key: item, TableName: aws.String(ds.table)},
		})
	}

	return &dynamodb.TransactWriteItemsInput{TransactItems: items}, nil
}

func latestCondition(revision we.Revision, expectedRevision we.Revision) expression.ConditionBuilder {
	if len(expectedRevision) == 0 {
		return expression.Name("revision").LessThan(expression.Value(revision)).Or(
			expression.AttributeNotExists(expression.Name("revision")),
		)
	}

	if expectedRevision == we.InitialRevision {
		return expression.AttributeNotExists(expression.Name("revision"))
	}

	return expression.Name("revision").Equal(expression.Value(expectedRevision))
}

func maybeRevisionConflict(err error) error {
	var tc *types.TransactionCanceledException
	if errors.As(err, &tc) {
		for _, reason := range tc.CancellationReasons {
			if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
				return we.RevisionConflict
			}
		}
	}

	return err
}

func isTransient(err error) bool {
	var tc *types.TransactionCanceledException
	if errors.As(err, &tc) {
		for _, reason := range tc.CancellationReasons {
			if aws.ToString(reason.Code) == "TransactionConflict" {
				return true
			}
		}
	}

	var ae smithy.APIError
	if errors.As(err, &ae) {
		switch ae.ErrorCode() {
		case "ThrottlingException", "ProvisionedThroughputExceededException", "TransactionInProgressException":
			return true
		}
	}

	return false
}
