package repository

import (
	"context"
	"errors"
	"sort"

	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

const (
	defaultPricingOverridesTableName = "pricing_overrides"
	defaultBaseRatesTableName        = "base_rates"
	overridesKeyIndex                = "override_key-updated_at-index"
	overridesCustomerIndex           = "customer_id-index"
)

type pricingOverrideItem struct {
	ID           string `dynamodbav:"id"`
	OverrideKey  string `dynamodbav:"override_key"`
	CustomerID   string `dynamodbav:"customer_id"`
	ServiceType  string `dynamodbav:"service_type"`
	CleaningType string `dynamodbav:"cleaning_type"`
	HourlyRate   string `dynamodbav:"hourly_rate"`
	Currency     string `dynamodbav:"currency"`
	Note         string `dynamodbav:"note,omitempty"`
	CreatedAt    string `dynamodbav:"created_at"`
	UpdatedAt    string `dynamodbav:"updated_at"`
}

type baseRateItem struct {
	ServiceType  string `dynamodbav:"service_type"`
	CleaningType string `dynamodbav:"cleaning_type"`
	HourlyRate   string `dynamodbav:"hourly_rate"`
	Currency     string `dynamodbav:"currency"`
	UpdatedAt    string `dynamodbav:"updated_at"`
}

// PricingDynamoRepository persists overrides and base rates in DynamoDB.
//
// Table requirements:
//   - pricing_overrides: PK id (string)
//     GSI override_key-updated_at-index (PK override_key, SK updated_at)
//     GSI customer_id-index (PK customer_id)
//   - base_rates: PK service_type (string), SK cleaning_type (string, "*" = service-wide)
//
// Rates are stored as decimal strings so no precision is lost.

type PricingDynamoRepository struct {
	ddb            *dynamodb.Client
	overridesTable string
	baseRatesTable string
}

var _ interfaces.IPricingRepository = (*PricingDynamoRepository)(nil)

func NewPricingDynamoRepository(ddb *dynamodb.Client, overridesTable, baseRatesTable string) *PricingDynamoRepository {
	return &PricingDynamoRepository{
		ddb:            ddb,
		overridesTable: tableOrDefault(overridesTable, defaultPricingOverridesTableName),
		baseRatesTable: tableOrDefault(baseRatesTable, defaultBaseRatesTableName),
	}
}

func overrideKey(customerID, serviceType, cleaningType string) string {
	return customerID + "#" + serviceType + "#" + storedCleaningType(cleaningType)
}

func (r *PricingDynamoRepository) FindOverride(ctx context.Context, customerID, serviceType, cleaningType string) (entities.PricingOverride, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.overridesTable),
		IndexName:              aws.String(overridesKeyIndex),
		KeyConditionExpression: aws.String("#override_key = :key"),
		ExpressionAttributeNames: map[string]string{
			"#override_key": "override_key",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":key": &types.AttributeValueMemberS{Value: overrideKey(customerID, serviceType, cleaningType)},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return entities.PricingOverride{}, err
	}
	if len(out.Items) == 0 {
		return entities.PricingOverride{}, nil
	}
	var it pricingOverrideItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return entities.PricingOverride{}, err
	}
	return fromPricingOverrideItem(it)
}

func (r *PricingDynamoRepository) ListOverrides(ctx context.Context, customerID string) ([]entities.PricingOverride, error) {
	p := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.overridesTable),
		IndexName:              aws.String(overridesCustomerIndex),
		KeyConditionExpression: aws.String("#customer_id = :customer_id"),
		ExpressionAttributeNames: map[string]string{
			"#customer_id": "customer_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":customer_id": &types.AttributeValueMemberS{Value: customerID},
		},
	})
	var out []entities.PricingOverride
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var items []pricingOverrideItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, err
		}
		for _, it := range items {
			o, err := fromPricingOverrideItem(it)
			if err != nil {
				return nil, err
			}
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ServiceType != out[j].ServiceType {
			return out[i].ServiceType < out[j].ServiceType
		}
		if out[i].CleaningType != out[j].CleaningType {
			return out[i].CleaningType < out[j].CleaningType
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *PricingDynamoRepository) UpsertOverride(ctx context.Context, o entities.PricingOverride) (entities.PricingOverride, error) {
	av, err := attributevalue.MarshalMap(toPricingOverrideItem(o))
	if err != nil {
		return entities.PricingOverride{}, err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.overridesTable),
		Item:      av,
	})
	if err != nil {
		return entities.PricingOverride{}, err
	}
	return o, nil
}

func (r *PricingDynamoRepository) DeleteOverride(ctx context.Context, id string) error {
	_, err := r.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.overridesTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression:      aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return interfaces.ErrPricingOverrideNotFound
		}
		return err
	}
	return nil
}

func (r *PricingDynamoRepository) GetBaseRate(ctx context.Context, serviceType, cleaningType string) (entities.BaseRate, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.baseRatesTable),
		Key: map[string]types.AttributeValue{
			"service_type":  &types.AttributeValueMemberS{Value: serviceType},
			"cleaning_type": &types.AttributeValueMemberS{Value: storedCleaningType(cleaningType)},
		},
	})
	if err != nil {
		return entities.BaseRate{}, err
	}
	if len(out.Item) == 0 {
		return entities.BaseRate{}, nil
	}
	var it baseRateItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.BaseRate{}, err
	}
	return fromBaseRateItem(it)
}

func (r *PricingDynamoRepository) UpsertBaseRate(ctx context.Context, rate entities.BaseRate) (entities.BaseRate, error) {
	av, err := attributevalue.MarshalMap(toBaseRateItem(rate))
	if err != nil {
		return entities.BaseRate{}, err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.baseRatesTable),
		Item:      av,
	})
	if err != nil {
		return entities.BaseRate{}, err
	}
	return rate, nil
}

func toPricingOverrideItem(o entities.PricingOverride) pricingOverrideItem {
	return pricingOverrideItem{
		ID:           o.ID,
		OverrideKey:  overrideKey(o.CustomerID, o.ServiceType, o.CleaningType),
		CustomerID:   o.CustomerID,
		ServiceType:  o.ServiceType,
		CleaningType: storedCleaningType(o.CleaningType),
		HourlyRate:   o.HourlyRate.String(),
		Currency:     o.Currency,
		Note:         o.Note,
		CreatedAt:    formatTime(o.CreatedAt),
		UpdatedAt:    formatTime(o.UpdatedAt),
	}
}

func fromPricingOverrideItem(it pricingOverrideItem) (entities.PricingOverride, error) {
	rate, err := decimal.NewFromString(it.HourlyRate)
	if err != nil {
		return entities.PricingOverride{}, err
	}
	return entities.PricingOverride{
		ID:           it.ID,
		CustomerID:   it.CustomerID,
		ServiceType:  it.ServiceType,
		CleaningType: domainCleaningType(it.CleaningType),
		HourlyRate:   rate,
		Currency:     it.Currency,
		Note:         it.Note,
		CreatedAt:    parseTime(it.CreatedAt),
		UpdatedAt:    parseTime(it.UpdatedAt),
	}, nil
}

func toBaseRateItem(rate entities.BaseRate) baseRateItem {
	return baseRateItem{
		ServiceType:  rate.ServiceType,
		CleaningType: storedCleaningType(rate.CleaningType),
		HourlyRate:   rate.HourlyRate.String(),
		Currency:     rate.Currency,
		UpdatedAt:    formatTime(rate.UpdatedAt),
	}
}

func fromBaseRateItem(it baseRateItem) (entities.BaseRate, error) {
	rate, err := decimal.NewFromString(it.HourlyRate)
	if err != nil {
		return entities.BaseRate{}, err
	}
	return entities.BaseRate{
		ServiceType:  it.ServiceType,
		CleaningType: domainCleaningType(it.CleaningType),
		HourlyRate:   rate,
		Currency:     it.Currency,
		UpdatedAt:    parseTime(it.UpdatedAt),
	}, nil
}
