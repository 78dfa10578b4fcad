package ds

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const localEndpoint = "http://localhost:8000"

// LocalDynamoStore connects to DynamoDB local on port 8000, creating the state
// table when it is missing.
func LocalDynamoStore(ctx context.Context) (*DynamoStateStore, error) {
	cfg, err := staticConfig(ctx, localEndpoint)
	if err != nil {
		return nil, err
	}

	client := Client(cfg)
	table := LocalStateTableName()

	exists, err := tableExists(ctx, client, table)
	if err != nil {
		return nil, err
	}

	if !exists {
		if err := createTable(ctx, client, table); err != nil {
			return nil, err
		}
	}

	return NewStateStore(client, table), nil
}

func staticConfig(ctx context.Context, endpoint string) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx,
		config.WithRegion("ap-southeast-2"),
		config.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				if service == dynamodb.ServiceID {
					return aws.Endpoint{
						PartitionID:   "aws",
						URL:           endpoint,
						SigningRegion: region,
					}, nil
				}
				return aws.Endpoint{}, errors.Errorf("unknown endpoint requested for %s", service)
			})),
		config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID: "dummy", SecretAccessKey: "dummy", SessionToken: "dummy",
				Source: "Hard-coded credentials; values are irrelevant for local DynamoDB",
			},
		}))
}

func tableExists(ctx context.Context, client *dynamodb.Client, name StateTableName) (bool, error) {
	required := &dynamodb.DescribeTableInput{TableName: aws.String(name.String())}
	description, err := client.DescribeTable(ctx, required)
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}

	if description.Table.TableStatus != types.TableStatusActive {
		return false, errors.Errorf("state table %s exists but is not active", name)
	}

	return true, nil
}

func createTable(ctx context.Context, client *dynamodb.Client, name StateTableName) error {
	log.Info().Str("table", name.String()).Msg("creating state table")

	_, err := client.CreateTable(
		ctx, &dynamodb.CreateTableInput{
			TableName: aws.String(name.String()),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("pk"), AttributeType: types.ScalarAttributeTypeS},
				{AttributeName: aws.String("sk"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String("sk"), KeyType: types.KeyTypeRange},
			},
			BillingMode: types.BillingModePayPerRequest,
		},
	)
	if err != nil {
		return errors.Wrapf(err, "failed to create state table %s", name)
	}

	return waitForTable(ctx, client, name)
}

func waitForTable(ctx context.Context, client *dynamodb.Client, name StateTableName) error {
	required := &dynamodb.DescribeTableInput{TableName: aws.String(name.String())}
	return dynamodb.NewTableExistsWaiter(client).Wait(ctx, required, 2*time.Minute)
}
