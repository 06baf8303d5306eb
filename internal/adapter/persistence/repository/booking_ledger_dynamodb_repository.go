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
	defaultBookingsTableName     = "bookings"
	defaultLedgerTableName       = "payment_ledger"
	bookingsStateScheduleIndex   = "payment_state-scheduled_start-index"
	bookingsGatewayRefIndex      = "gateway_ref-index"
	conditionalCheckFailedReason = "ConditionalCheckFailed"
)

type bookingItem struct {
	ID                    string `dynamodbav:"id"`
	CustomerID            string `dynamodbav:"customer_id"`
	CustomerEmail         string `dynamodbav:"customer_email,omitempty"`
	CustomerPhone         string `dynamodbav:"customer_phone,omitempty"`
	ServiceType           string `dynamodbav:"service_type"`
	CleaningType          string `dynamodbav:"cleaning_type,omitempty"`
	Address               string `dynamodbav:"address"`
	ScheduledStart        string `dynamodbav:"scheduled_start"`
	DurationMins          int    `dynamodbav:"duration_minutes"`
	Currency              string `dynamodbav:"currency"`
	AmountMinor           int64  `dynamodbav:"amount_minor"`
	AuthorizedAmountMinor int64  `dynamodbav:"authorized_amount_minor"`
	ApprovedCaptureMinor  int64  `dynamodbav:"approved_capture_minor"`
	PaymentMethodRef      string `dynamodbav:"payment_method_ref,omitempty"`
	PaymentState          string `dynamodbav:"payment_state"`
	GatewayRef            string `dynamodbav:"gateway_ref,omitempty"`
	IdempotencyKey        string `dynamodbav:"idempotency_key,omitempty"`
	AuthAttempts          int    `dynamodbav:"auth_attempts"`
	CaptureAttempts       int    `dynamodbav:"capture_attempts"`
	NextAttemptAt         string `dynamodbav:"next_attempt_at,omitempty"`
	FailureReason         string `dynamodbav:"failure_reason,omitempty"`
	FailureRetryable      bool   `dynamodbav:"failure_retryable"`
	NeedsReview           bool   `dynamodbav:"needs_review"`
	ReviewReason          string `dynamodbav:"review_reason,omitempty"`
	Cancelled             bool   `dynamodbav:"cancelled"`
	LedgerSeq             int    `dynamodbav:"ledger_seq"`
	CreatedAt             string `dynamodbav:"created_at"`
	UpdatedAt             string `dynamodbav:"updated_at"`
}

type ledgerEntryItem struct {
	BookingID     string `dynamodbav:"booking_id"`
	Seq           int    `dynamodbav:"seq"`
	ID            string `dynamodbav:"id"`
	PreviousState string `dynamodbav:"previous_state,omitempty"`
	NewState      string `dynamodbav:"new_state"`
	At            string `dynamodbav:"at"`
	Actor         string `dynamodbav:"actor"`
	ActorID       string `dynamodbav:"actor_id,omitempty"`
	ExternalRef   string `dynamodbav:"external_ref,omitempty"`
	AmountMinor   int64  `dynamodbav:"amount_minor"`
	Reason        string `dynamodbav:"reason,omitempty"`
}

// BookingLedgerDynamoRepository persists bookings and their ledger in DynamoDB.
//
// Table requirements:
//   - bookings: PK id (string)
//     GSI payment_state-scheduled_start-index (PK payment_state, SK scheduled_start)
//     GSI gateway_ref-index (PK gateway_ref)
//   - payment_ledger: PK booking_id (string), SK seq (number)
//
// Transitions are a TransactWriteItems of the booking put (conditional on state
// and ledger_seq) and the ledger put (conditional on the seq being new).

type BookingLedgerDynamoRepository struct {
	ddb           *dynamodb.Client
	bookingsTable string
	ledgerTable   string
}

var _ interfaces.IBookingLedgerRepository = (*BookingLedgerDynamoRepository)(nil)

func NewBookingLedgerDynamoRepository(ddb *dynamodb.Client, bookingsTable, ledgerTable string) *BookingLedgerDynamoRepository {
	return &BookingLedgerDynamoRepository{
		ddb:           ddb,
		bookingsTable: tableOrDefault(bookingsTable, defaultBookingsTableName),
		ledgerTable:   tableOrDefault(ledgerTable, defaultLedgerTableName),
	}
}

func (r *BookingLedgerDynamoRepository) CreateBooking(ctx context.Context, b entities.Booking, first entities.LedgerEntry) (entities.Booking, error) {
	b.LedgerSeq = first.Seq
	bookingAV, err := attributevalue.MarshalMap(toBookingItem(b))
	if err != nil {
		return entities.Booking{}, err
	}
	entryAV, err := attributevalue.MarshalMap(toLedgerEntryItem(first))
	if err != nil {
		return entities.Booking{}, err
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.bookingsTable),
				Item:                     bookingAV,
				ConditionExpression:      aws.String("attribute_not_exists(#id)"),
				ExpressionAttributeNames: map[string]string{"#id": "id"},
			}},
			{Put: r.newLedgerPut(entryAV)},
		},
	})
	if err != nil {
		if isConditionFailure(err) {
			return entities.Booking{}, interfaces.ErrStateConflict
		}
		return entities.Booking{}, err
	}
	return b, nil
}

func (r *BookingLedgerDynamoRepository) newLedgerPut(entryAV map[string]types.AttributeValue) *types.Put {
	return &types.Put{
		TableName:                aws.String(r.ledgerTable),
		Item:                     entryAV,
		ConditionExpression:      aws.String("attribute_not_exists(#booking_id)"),
		ExpressionAttributeNames: map[string]string{"#booking_id": "booking_id"},
	}
}

func (r *BookingLedgerDynamoRepository) GetByID(ctx context.Context, id string) (entities.Booking, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.bookingsTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Booking{}, err
	}
	if len(out.Item) == 0 {
		return entities.Booking{}, nil
	}
	var it bookingItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Booking{}, err
	}
	return checkedBooking(fromBookingItem(it))
}

func (r *BookingLedgerDynamoRepository) GetByGatewayRef(ctx context.Context, gatewayRef string) (entities.Booking, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.bookingsTable),
		IndexName:              aws.String(bookingsGatewayRefIndex),
		KeyConditionExpression: aws.String("#gateway_ref = :ref"),
		ExpressionAttributeNames: map[string]string{
			"#gateway_ref": "gateway_ref",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ref": &types.AttributeValueMemberS{Value: gatewayRef},
		},
	})
	if err != nil {
		return entities.Booking{}, err
	}
	if len(out.Items) == 0 {
		return entities.Booking{}, nil
	}
	var items []bookingItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return entities.Booking{}, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].UpdatedAt > items[j].UpdatedAt })
	// The GSI is eventually consistent; re-read the row itself.
	return r.GetByID(ctx, items[0].ID)
}

func (r *BookingLedgerDynamoRepository) AppendTransition(ctx context.Context, b entities.Booking, entry entities.LedgerEntry) (entities.Booking, error) {
	b.LedgerSeq = entry.Seq
	bookingAV, err := attributevalue.MarshalMap(toBookingItem(b))
	if err != nil {
		return entities.Booking{}, err
	}
	entryAV, err := attributevalue.MarshalMap(toLedgerEntryItem(entry))
	if err != nil {
		return entities.Booking{}, err
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.bookingsTable),
				Item:                bookingAV,
				ConditionExpression: aws.String("#payment_state = :prev AND #ledger_seq = :seq"),
				ExpressionAttributeNames: map[string]string{
					"#payment_state": "payment_state",
					"#ledger_seq":    "ledger_seq",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":prev": &types.AttributeValueMemberS{Value: string(entry.PreviousState)},
					":seq":  &types.AttributeValueMemberN{Value: strconv.Itoa(entry.Seq - 1)},
				},
			}},
			{Put: r.newLedgerPut(entryAV)},
		},
	})
	if err != nil {
		if isConditionFailure(err) {
			return entities.Booking{}, interfaces.ErrStateConflict
		}
		return entities.Booking{}, err
	}
	return b, nil
}

func (r *BookingLedgerDynamoRepository) SaveDetails(ctx context.Context, b entities.Booking) (entities.Booking, error) {
	av, err := attributevalue.MarshalMap(toBookingItem(b))
	if err != nil {
		return entities.Booking{}, err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.bookingsTable),
		Item:                av,
		ConditionExpression: aws.String("#payment_state = :state AND #ledger_seq = :seq"),
		ExpressionAttributeNames: map[string]string{
			"#payment_state": "payment_state",
			"#ledger_seq":    "ledger_seq",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":state": &types.AttributeValueMemberS{Value: string(b.PaymentState)},
			":seq":   &types.AttributeValueMemberN{Value: strconv.Itoa(b.LedgerSeq)},
		},
	})
	if err != nil {
		if isConditionFailure(err) {
			return entities.Booking{}, interfaces.ErrStateConflict
		}
		return entities.Booking{}, err
	}
	return b, nil
}

func (r *BookingLedgerDynamoRepository) GetHistory(ctx context.Context, bookingID string) ([]entities.LedgerEntry, error) {
	input := r.ledgerQuery(bookingID, true)
	var out []entities.LedgerEntry
	p := dynamodb.NewQueryPaginator(r.ddb, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var items []ledgerEntryItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, err
		}
		for _, it := range items {
			out = append(out, fromLedgerEntryItem(it))
		}
	}
	return out, nil
}

func (r *BookingLedgerDynamoRepository) ledgerQuery(bookingID string, forward bool) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(r.ledgerTable),
		KeyConditionExpression: aws.String("#booking_id = :id"),
		ExpressionAttributeNames: map[string]string{
			"#booking_id": "booking_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: bookingID},
		},
		ScanIndexForward: aws.Bool(forward),
		ConsistentRead:   aws.Bool(true),
	}
}

func (r *BookingLedgerDynamoRepository) HasPendingAuthorization(ctx context.Context, bookingID string, now time.Time, staleness time.Duration) (bool, error) {
	input := r.ledgerQuery(bookingID, false)
	input.Limit = aws.Int32(1)
	out, err := r.ddb.Query(ctx, input)
	if err != nil {
		return false, err
	}
	if len(out.Items) == 0 {
		return false, nil
	}
	var it ledgerEntryItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return false, err
	}
	return isPendingAuthorization(fromLedgerEntryItem(it), now, staleness), nil
}

func (r *BookingLedgerDynamoRepository) ListDue(ctx context.Context, horizon time.Time) ([]entities.Booking, error) {
	var out []entities.Booking
	for _, state := range activePaymentStates {
		p := dynamodb.NewQueryPaginator(r.ddb, dueQuery(r.bookingsTable, state, horizon))
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				return nil, err
			}
			var items []bookingItem
			if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
				return nil, err
			}
			for _, it := range items {
				out = append(out, fromBookingItem(it))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledStart.Before(out[j].ScheduledStart) })
	return out, nil
}

// dueQuery reads one state partition of the schedule index. In-flight states
// are read whole; the others stop at horizon.
func dueQuery(table string, state entities.PaymentState, horizon time.Time) *dynamodb.QueryInput {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String(bookingsStateScheduleIndex),
		KeyConditionExpression: aws.String("#payment_state = :state"),
		FilterExpression:       aws.String("#cancelled = :false"),
		ExpressionAttributeNames: map[string]string{
			"#payment_state": "payment_state",
			"#cancelled":     "cancelled",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":state": &types.AttributeValueMemberS{Value: string(state)},
			":false": &types.AttributeValueMemberBOOL{Value: false},
		},
	}
	if !state.InFlight() {
		in.KeyConditionExpression = aws.String("#payment_state = :state AND #scheduled_start <= :horizon")
		in.ExpressionAttributeNames["#scheduled_start"] = "scheduled_start"
		in.ExpressionAttributeValues[":horizon"] = &types.AttributeValueMemberS{Value: formatTime(horizon)}
	}
	return in
}

// isConditionFailure recognizes a failed condition on a single write or on
// any member of a transaction.
func isConditionFailure(err error) bool {
	var cfe *types.ConditionalCheckFailedException
	if errors.As(err, &cfe) {
		return true
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, reason := range tce.CancellationReasons {
			if aws.ToString(reason.Code) == conditionalCheckFailedReason {
				return true
			}
		}
	}
	return false
}

func toBookingItem(b entities.Booking) bookingItem {
	return bookingItem{
		ID:                    b.ID,
		CustomerID:            b.CustomerID,
		CustomerEmail:         b.CustomerEmail,
		CustomerPhone:         b.CustomerPhone,
		ServiceType:           b.ServiceType,
		CleaningType:          b.CleaningType,
		Address:               b.Address,
		ScheduledStart:        formatTime(b.ScheduledStart),
		DurationMins:          b.DurationMins,
		Currency:              b.Currency,
		AmountMinor:           b.AmountMinor,
		AuthorizedAmountMinor: b.AuthorizedAmountMinor,
		ApprovedCaptureMinor:  b.ApprovedCaptureMinor,
		PaymentMethodRef:      b.PaymentMethodRef,
		PaymentState:          string(b.PaymentState),
		GatewayRef:            b.GatewayRef,
		IdempotencyKey:        b.IdempotencyKey,
		AuthAttempts:          b.AuthAttempts,
		CaptureAttempts:       b.CaptureAttempts,
		NextAttemptAt:         formatTimePtr(b.NextAttemptAt),
		FailureReason:         b.FailureReason,
		FailureRetryable:      b.FailureRetryable,
		NeedsReview:           b.NeedsReview,
		ReviewReason:          b.ReviewReason,
		Cancelled:             b.Cancelled,
		LedgerSeq:             b.LedgerSeq,
		CreatedAt:             formatTime(b.CreatedAt),
		UpdatedAt:             formatTime(b.UpdatedAt),
	}
}

func fromBookingItem(it bookingItem) entities.Booking {
	return entities.Booking{
		ID:                    it.ID,
		CustomerID:            it.CustomerID,
		CustomerEmail:         it.CustomerEmail,
		CustomerPhone:         it.CustomerPhone,
		ServiceType:           it.ServiceType,
		CleaningType:          it.CleaningType,
		Address:               it.Address,
		ScheduledStart:        parseTime(it.ScheduledStart),
		DurationMins:          it.DurationMins,
		Currency:              it.Currency,
		AmountMinor:           it.AmountMinor,
		AuthorizedAmountMinor: it.AuthorizedAmountMinor,
		ApprovedCaptureMinor:  it.ApprovedCaptureMinor,
		PaymentMethodRef:      it.PaymentMethodRef,
		PaymentState:          entities.PaymentState(it.PaymentState),
		GatewayRef:            it.GatewayRef,
		IdempotencyKey:        it.IdempotencyKey,
		AuthAttempts:          it.AuthAttempts,
		CaptureAttempts:       it.CaptureAttempts,
		NextAttemptAt:         parseTimePtr(it.NextAttemptAt),
		FailureReason:         it.FailureReason,
		FailureRetryable:      it.FailureRetryable,
		NeedsReview:           it.NeedsReview,
		ReviewReason:          it.ReviewReason,
		Cancelled:             it.Cancelled,
		LedgerSeq:             it.LedgerSeq,
		CreatedAt:             parseTime(it.CreatedAt),
		UpdatedAt:             parseTime(it.UpdatedAt),
	}
}

func toLedgerEntryItem(e entities.LedgerEntry) ledgerEntryItem {
	return ledgerEntryItem{
		BookingID:     e.BookingID,
		Seq:           e.Seq,
		ID:            e.ID,
		PreviousState: string(e.PreviousState),
		NewState:      string(e.NewState),
		At:            formatTime(e.At),
		Actor:         string(e.Actor),
		ActorID:       e.ActorID,
		ExternalRef:   e.ExternalRef,
		AmountMinor:   e.AmountMinor,
		Reason:        e.Reason,
	}
}

func fromLedgerEntryItem(it ledgerEntryItem) entities.LedgerEntry {
	return entities.LedgerEntry{
		ID:            it.ID,
		BookingID:     it.BookingID,
		Seq:           it.Seq,
		PreviousState: entities.PaymentState(it.PreviousState),
		NewState:      entities.PaymentState(it.NewState),
		At:            parseTime(it.At),
		Actor:         entities.Actor(it.Actor),
		ActorID:       it.ActorID,
		ExternalRef:   it.ExternalRef,
		AmountMinor:   it.AmountMinor,
		Reason:        it.Reason,
	}
}
