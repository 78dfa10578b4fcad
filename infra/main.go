package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigatewayv2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdynamodb"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

const defaultLambdaAsset = "../dist/counter-lambda"

type ContractStackProps struct {
	awscdk.StackProps
	// LambdaAsset is the directory holding the built counter-lambda binary.
	LambdaAsset string
}

// NewContractStack declares the state table, the counter lambda and an HTTP
// API forwarding every route to it.
func NewContractStack(scope constructs.Construct, id string, props *ContractStackProps) awscdk.Stack {
	var sprops awscdk.StackProps
	asset := defaultLambdaAsset
	if props != nil {
		sprops = props.StackProps
		if props.LambdaAsset != "" {
			asset = props.LambdaAsset
		}
	}
	stack := awscdk.NewStack(scope, &id, &sprops)

	table := awsdynamodb.NewTable(stack, jsii.String("StateTable"), &awsdynamodb.TableProps{
		PartitionKey:  &awsdynamodb.Attribute{Name: jsii.String("pk"), Type: awsdynamodb.AttributeType_STRING},
		SortKey:       &awsdynamodb.Attribute{Name: jsii.String("sk"), Type: awsdynamodb.AttributeType_STRING},
		BillingMode:   awsdynamodb.BillingMode_PAY_PER_REQUEST,
		RemovalPolicy: awscdk.RemovalPolicy_RETAIN,
	})

	function := awslambda.NewFunction(stack, jsii.String("CounterFunction"), &awslambda.FunctionProps{
		Runtime: awslambda.Runtime_GO_1_X(),
		Handler: jsii.String("counter-lambda"),
		Code:    awslambda.Code_FromAsset(jsii.String(asset), nil),
		Environment: &map[string]*string{
			"COUNTER_STORE":             jsii.String("dynamo"),
			"DYNAMODB_STATE_TABLE_NAME": table.TableName(),
		},
		Tracing: awslambda.Tracing_ACTIVE,
		Timeout: awscdk.Duration_Seconds(jsii.Number(10)),
	})
	table.GrantReadWriteData(function)

	api := awsapigatewayv2.NewCfnApi(stack, jsii.String("CounterApi"), &awsapigatewayv2.CfnApiProps{
		Name:         jsii.String("counter"),
		ProtocolType: jsii.String("HTTP"),
		Target:       function.FunctionArn(),
	})

	function.AddPermission(jsii.String("CounterApiInvoke"), &awslambda.Permission{
		Principal: awsiam.NewServicePrincipal(jsii.String("apigateway.amazonaws.com"), nil),
		SourceArn: awscdk.Fn_Sub(
			jsii.String("arn:${AWS::Partition}:execute-api:${AWS::Region}:${AWS::AccountId}:${ApiId}/*/*"),
			&map[string]*string{"ApiId": api.Ref()},
		),
	})

	awscdk.NewCfnOutput(stack, jsii.String("CounterApiEndpoint"), &awscdk.CfnOutputProps{
		Value: api.AttrApiEndpoint(),
	})

	return stack
}

func main() {
	app := awscdk.NewApp(nil)

	NewContractStack(app, "WeeContracts", &ContractStackProps{
		StackProps: awscdk.StackProps{Env: env()},
	})

	app.Synth(nil)
}

func env() *awscdk.Environment {
	account, region := os.Getenv("CDK_DEFAULT_ACCOUNT"), os.Getenv("CDK_DEFAULT_REGION")
	if account == "" || region == "" {
		return nil
	}

	return &awscdk.Environment{
		Account: jsii.String(account),
		Region:  jsii.String(region),
	}
}
