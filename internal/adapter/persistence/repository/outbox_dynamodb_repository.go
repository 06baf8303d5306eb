package repository

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultOutboxTableName = "notification_outbox"
	outboxStatusIndex      = "status-next_attempt_at-index"
	outboxBookingIndex     = "booking_id-index"
)

type outboxItem struct {
	ID            string            `dynamodbav:"id"`
	BookingID     string            `dynamodbav:"booking_id"`
	Event         string            `dynamodbav:"event"`
	Channel       string            `dynamodbav:"channel"`
	Recipient     string            `dynamodbav:"recipient"`
	Payload       map[string]string `dynamodbav:"payload,omitempty"`
	Status        string            `dynamodbav:"status"`
	Attempts      int               `dynamodbav:"attempts"`
	NextAttemptAt string            `dynamodbav:"next_attempt_at"`
	LeaseUntil    string            `dynamodbav:"lease_until,omitempty"`
	LastError     string            `dynamodbav:"last_error,omitempty"`
	CreatedAt     string            `dynamodbav:"created_at"`
	SentAt        string            `dynamodbav:"sent_at,omitempty"`
}

// NotificationOutboxDynamoRepository persists the notification outbox in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI status-next_attempt_at-index (PK status, SK next_attempt_at)
//   - GSI booking_id-index (PK booking_id)

type NotificationOutboxDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.INotificationOutboxRepository = (*NotificationOutboxDynamoRepository)(nil)

func NewNotificationOutboxDynamoRepository(ddb *dynamodb.Client, tableName string) *NotificationOutboxDynamoRepository {
	return &NotificationOutboxDynamoRepository{
		ddb:       ddb,
		tableName: tableOrDefault(tableName, defaultOutboxTableName),
	}
}

func (r *NotificationOutboxDynamoRepository) Create(ctx context.Context, item entities.NotificationOutboxItem) (entities.NotificationOutboxItem, error) {
	av, err := attributevalue.MarshalMap(toOutboxItem(item))
	if err != nil {
		return entities.NotificationOutboxItem{}, err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	if err != nil {
		return entities.NotificationOutboxItem{}, err
	}
	return item, nil
}

func (r *NotificationOutboxDynamoRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]entities.NotificationOutboxItem, error) {
	pending, err := r.queryStatus(ctx, entities.OutboxStatusPending, "#next_attempt_at <= :now", "", now)
	if err != nil {
		return nil, err
	}
	expired, err := r.queryStatus(ctx, entities.OutboxStatusSending, "", "#lease_until < :now", now)
	if err != nil {
		return nil, err
	}
	out := append(pending, expired...)
	sort.Slice(out, func(i, j int) bool { return out[i].NextAttemptAt.Before(out[j].NextAttemptAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *NotificationOutboxDynamoRepository) queryStatus(ctx context.Context, status entities.OutboxStatus, rangeCond, filter string, now time.Time) ([]entities.NotificationOutboxItem, error) {
	keyCond := "#status = :status"
	names := map[string]string{"#status": "status"}
	if rangeCond != "" {
		keyCond += " AND " + rangeCond
		names["#next_attempt_at"] = "next_attempt_at"
	}
	input := &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String(outboxStatusIndex),
		KeyConditionExpression:   aws.String(keyCond),
		ExpressionAttributeNames: names,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
			":now":    &types.AttributeValueMemberS{Value: formatTime(now)},
		},
	}
	if filter != "" {
		input.FilterExpression = aws.String(filter)
		names["#lease_until"] = "lease_until"
	}

	var out []entities.NotificationOutboxItem
	p := dynamodb.NewQueryPaginator(r.ddb, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var items []outboxItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, err
		}
		for _, it := range items {
			out = append(out, fromOutboxItem(it))
		}
	}
	return out, nil
}

func (r *NotificationOutboxDynamoRepository) Claim(ctx context.Context, id string, now time.Time, lease time.Duration) (bool, error) {
	nowStr := formatTime(now)
	_, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:    aws.String("SET #status = :sending, #lease_until = :until"),
		ConditionExpression: aws.String("(#status = :pending AND #next_attempt_at <= :now) OR (#status = :sending AND #lease_until < :now)"),
		ExpressionAttributeNames: map[string]string{
			"#status":          "status",
			"#lease_until":     "lease_until",
			"#next_attempt_at": "next_attempt_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sending": &types.AttributeValueMemberS{Value: string(entities.OutboxStatusSending)},
			":pending": &types.AttributeValueMemberS{Value: string(entities.OutboxStatusPending)},
			":until":   &types.AttributeValueMemberS{Value: formatTime(now.Add(lease))},
			":now":     &types.AttributeValueMemberS{Value: nowStr},
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

func (r *NotificationOutboxDynamoRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	return r.update(ctx, id, "SET #status = :status, #sent_at = :sent_at REMOVE #lease_until, #last_error",
		map[string]string{
			"#status":      "status",
			"#sent_at":     "sent_at",
			"#lease_until": "lease_until",
			"#last_error":  "last_error",
		},
		map[string]types.AttributeValue{
			":status":  &types.AttributeValueMemberS{Value: string(entities.OutboxStatusSent)},
			":sent_at": &types.AttributeValueMemberS{Value: formatTime(sentAt)},
		})
}

func (r *NotificationOutboxDynamoRepository) MarkFailed(ctx context.Context, id string, attempts int, lastErr string, next time.Time, dead bool) error {
	status := entities.OutboxStatusPending
	if dead {
		status = entities.OutboxStatusDead
	}
	return r.update(ctx, id, "SET #status = :status, #attempts = :attempts, #last_error = :last_error, #next_attempt_at = :next REMOVE #lease_until",
		map[string]string{
			"#status":          "status",
			"#attempts":        "attempts",
			"#last_error":      "last_error",
			"#next_attempt_at": "next_attempt_at",
			"#lease_until":     "lease_until",
		},
		map[string]types.AttributeValue{
			":status":     &types.AttributeValueMemberS{Value: string(status)},
			":attempts":   &types.AttributeValueMemberN{Value: strconv.Itoa(attempts)},
			":last_error": &types.AttributeValueMemberS{Value: lastErr},
			":next":       &types.AttributeValueMemberS{Value: formatTime(next)},
		})
}

func (r *NotificationOutboxDynamoRepository) update(ctx context.Context, id, expr string, names map[string]string, values map[string]types.AttributeValue) error {
	_, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  mergeNames(names, map[string]string{"#id": "id"}),
		ExpressionAttributeValues: values,
	})
	return err
}

func (r *NotificationOutboxDynamoRepository) ListByBookingID(ctx context.Context, bookingID string) ([]entities.NotificationOutboxItem, error) {
	p := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(outboxBookingIndex),
		KeyConditionExpression: aws.String("#booking_id = :booking_id"),
		ExpressionAttributeNames: map[string]string{
			"#booking_id": "booking_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":booking_id": &types.AttributeValueMemberS{Value: bookingID},
		},
	})
	var out []entities.NotificationOutboxItem
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var items []outboxItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, err
		}
		for _, it := range items {
			out = append(out, fromOutboxItem(it))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func toOutboxItem(it entities.NotificationOutboxItem) outboxItem {
	return outboxItem{
		ID:            it.ID,
		BookingID:     it.BookingID,
		Event:         string(it.Event),
		Channel:       string(it.Channel),
		Recipient:     it.Recipient,
		Payload:       it.Payload,
		Status:        string(it.Status),
		Attempts:      it.Attempts,
		NextAttemptAt: formatTime(it.NextAttemptAt),
		LeaseUntil:    formatTimePtr(it.LeaseUntil),
		LastError:     it.LastError,
		CreatedAt:     formatTime(it.CreatedAt),
		SentAt:        formatTimePtr(it.SentAt),
	}
}

func fromOutboxItem(it outboxItem) entities.NotificationOutboxItem {
	return entities.NotificationOutboxItem{
		ID:            it.ID,
		BookingID:     it.BookingID,
		Event:         entities.NotificationEvent(it.Event),
		Channel:       entities.NotificationChannel(it.Channel),
		Recipient:     it.Recipient,
		Payload:       it.Payload,
		Status:        entities.OutboxStatus(it.Status),
		Attempts:      it.Attempts,
		NextAttemptAt: parseTime(it.NextAttemptAt),
		LeaseUntil:    parseTimePtr(it.LeaseUntil),
		LastError:     it.LastError,
		CreatedAt:     parseTime(it.CreatedAt),
		SentAt:        parseTimePtr(it.SentAt),
	}
}
