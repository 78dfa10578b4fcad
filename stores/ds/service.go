package ds

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/wire"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"

	"github.com/weegigs/wee-contracts-go/support"
	"github.com/weegigs/wee-contracts-go/we"
)

var Live = wire.NewSet(
	support.AWSConfig,
	Client,
	LiveStateTableName,
	NewStateStore,
	wire.Bind(new(we.StateStore), new(*DynamoStateStore)),
)

var Local = wire.NewSet(
	LocalDynamoStore,
	wire.Bind(new(we.StateStore), new(*DynamoStateStore)),
)

func LiveStateTableName(cfg support.Config) (StateTableName, error) {
	table, err := cfg.RequireStateTableName()
	if err != nil {
		return "", err
	}

	return StateTableName(table), nil
}

func LocalStateTableName() StateTableName {
	return StateTableName("wee-contracts")
}

func Client(cfg aws.Config) *dynamodb.Client {
	otelaws.AppendMiddlewares(&cfg.APIOptions)
	return dynamodb.NewFromConfig(cfg)
}
