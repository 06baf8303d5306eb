package database

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoSettings selects the DynamoDB account. With Endpoint set (DynamoDB
// Local, LocalStack) static credentials are used; otherwise the default AWS
// credential chain applies.
type DynamoSettings struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// ConnectDynamoDB creates a DynamoDB client for the given settings.
func ConnectDynamoDB(ctx context.Context, s DynamoSettings) (*dynamodb.Client, error) {
	region := s.Region
	if region == "" {
		region = "eu-west-2"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}

	if s.Endpoint != "" {
		// Local DynamoDB does not validate credentials, but the AWS SDK requires them.
		creds := credentials.NewStaticCredentialsProvider(orDefault(s.AccessKeyID, "local"), orDefault(s.SecretAccessKey, "local"), "")
		loadOpts = append(loadOpts, config.WithCredentialsProvider(creds))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	log.Printf("[database] dynamodb region=%s endpoint=%q", region, s.Endpoint)
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
		}
	}), nil
}

// CheckTables fails when any of the named tables is missing. Tables are
// provisioned outside the service.
func CheckTables(ctx context.Context, ddb *dynamodb.Client, names ...string) error {
	var missing []string
	for _, name := range names {
		_, err := ddb.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)})
		if err == nil {
			continue
		}
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			missing = append(missing, name)
			continue
		}
		return fmt.Errorf("describe table %s: %w", name, err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("dynamodb tables not found: %v", missing)
	}
	return nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
