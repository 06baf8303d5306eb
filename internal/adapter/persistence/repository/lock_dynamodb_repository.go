package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"cleaning_payments/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultLocksTableName = "booking_locks"

type bookingLockItem struct {
	BookingID string `dynamodbav:"booking_id"`
	Owner     string `dynamodbav:"owner"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
	// TTL attribute (epoch seconds) so DynamoDB sweeps abandoned locks.
	TTL int64 `dynamodbav:"ttl"`
}

// BookingLockDynamoRepository implements per-booking leases with a
// conditional put.
//
// Table requirements:
//   - PK: booking_id (string)
//   - TTL attribute: ttl
type BookingLockDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IBookingLocker = (*BookingLockDynamoRepository)(nil)

func NewBookingLockDynamoRepository(ddb *dynamodb.Client, tableName string) *BookingLockDynamoRepository {
	return &BookingLockDynamoRepository{
		ddb:       ddb,
		tableName: tableOrDefault(tableName, defaultLocksTableName),
	}
}

func (r *BookingLockDynamoRepository) Acquire(ctx context.Context, bookingID, owner string, now time.Time, ttl time.Duration) (bool, error) {
	expires := now.Add(ttl)
	av, err := attributevalue.MarshalMap(bookingLockItem{
		BookingID: bookingID,
		Owner:     owner,
		ExpiresAt: expires.UnixMilli(),
		TTL:       expires.Add(time.Hour).Unix(),
	})
	if err != nil {
		return false, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#booking_id) OR #expires_at < :now"),
		ExpressionAttributeNames: map[string]string{
			"#booking_id": "booking_id",
			"#expires_at": "expires_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.UnixMilli(), 10)},
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *BookingLockDynamoRepository) Release(ctx context.Context, bookingID, owner string) error {
	_, err := r.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"booking_id": &types.AttributeValueMemberS{Value: bookingID},
		},
		ConditionExpression: aws.String("#owner = :owner"),
		ExpressionAttributeNames: map[string]string{
			"#owner": "owner",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: owner},
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			// Lease expired and was taken over; nothing of ours to release.
			return nil
		}
		return err
	}
	return nil
}
