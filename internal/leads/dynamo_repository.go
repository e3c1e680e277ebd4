package leads

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// leadItem is the DynamoDB document shape: partition key userId, sort key id.
type leadItem struct {
	UserID       string   `dynamodbav:"userId"`
	ID           string   `dynamodbav:"id"`
	Name         string   `dynamodbav:"name"`
	Phone        string   `dynamodbav:"phone"`
	Email        string   `dynamodbav:"email"`
	Status       string   `dynamodbav:"status"`
	Priority     string   `dynamodbav:"priority"`
	LeadType     string   `dynamodbav:"leadType"`
	LeadSubType  string   `dynamodbav:"leadSubType"`
	TeamMember   string   `dynamodbav:"teamMember"`
	Platform     string   `dynamodbav:"platform"`
	OrderValue   string   `dynamodbav:"orderValue"`
	SaleDate     string   `dynamodbav:"saleDate"`
	HoneyTypes   []string `dynamodbav:"honeyTypes"`
	HoneyType    string   `dynamodbav:"honeyType,omitempty"`
	Notes        string   `dynamodbav:"notes"`
	NextFollowUp string   `dynamodbav:"nextFollowUp,omitempty"`
	CreatedAt    string   `dynamodbav:"createdAt"`
	UpdatedAt    string   `dynamodbav:"updatedAt"`
}

// DynamoRepository stores leads as documents in a DynamoDB table.
type DynamoRepository struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
	now       func() time.Time
}

// NewDynamoRepository builds a repository backed by the provided DynamoDB client.
func NewDynamoRepository(client dynamoAPI, tableName string, logger *logging.Logger) *DynamoRepository {
	if client == nil {
		panic("leads: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("leads: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create writes a new document; the condition guards against id reuse.
func (r *DynamoRepository) Create(ctx context.Context, userID string, lead *Lead) (*Lead, error) {
	out := lead.Clone()
	out.ID = uuid.New().String()
	out.UserID = userID
	out.CreatedAt = r.now()
	out.UpdatedAt = out.CreatedAt

	if err := r.put(ctx, out, "attribute_not_exists(id)"); err != nil {
		return nil, fmt.Errorf("leads: failed to persist lead: %w", err)
	}
	return out, nil
}

// Update replaces the document, keeping the original creation time.
func (r *DynamoRepository) Update(ctx context.Context, userID string, lead *Lead) (*Lead, error) {
	existing, err := r.GetByID(ctx, userID, lead.ID)
	if err != nil {
		return nil, err
	}
	out := lead.Clone()
	out.UserID = userID
	out.CreatedAt = existing.CreatedAt
	out.UpdatedAt = r.now()

	if err := r.put(ctx, out, "attribute_exists(id)"); err != nil {
		if isConditionFailed(err) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: failed to update lead: %w", err)
	}
	return out, nil
}

// Delete removes the document.
func (r *DynamoRepository) Delete(ctx context.Context, userID, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 r.key(userID, id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrLeadNotFound
		}
		return fmt.Errorf("leads: failed to delete lead: %w", err)
	}
	return nil
}

// GetByID loads one document.
func (r *DynamoRepository) GetByID(ctx context.Context, userID, id string) (*Lead, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            r.key(userID, id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("leads: failed to load lead: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrLeadNotFound
	}
	var item leadItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("leads: failed to decode lead: %w", err)
	}
	return item.toLead(), nil
}

// List queries the user's partition page by page and orders newest first.
func (r *DynamoRepository) List(ctx context.Context, userID string) ([]*Lead, error) {
	var (
		out   = []*Lead{}
		start map[string]types.AttributeValue
	)
	for {
		page, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("userId = :u"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":u": &types.AttributeValueMemberS{Value: userID},
			},
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("leads: failed to query leads: %w", err)
		}
		var items []leadItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("leads: failed to decode leads: %w", err)
		}
		for i := range items {
			out = append(out, items[i].toLead())
		}
		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		start = page.LastEvaluatedKey
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *DynamoRepository) put(ctx context.Context, lead *Lead, condition string) error {
	item, err := attributevalue.MarshalMap(newLeadItem(lead))
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String(condition),
	})
	return err
}

func (r *DynamoRepository) key(userID, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
		"id":     &types.AttributeValueMemberS{Value: id},
	}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func newLeadItem(lead *Lead) leadItem {
	item := leadItem{
		UserID:      lead.UserID,
		ID:          lead.ID,
		Name:        lead.Name,
		Phone:       lead.Phone,
		Email:       lead.Email,
		Status:      lead.Status,
		Priority:    string(lead.Priority),
		LeadType:    string(lead.LeadType),
		LeadSubType: lead.LeadSubType,
		TeamMember:  lead.TeamMember,
		Platform:    string(lead.Platform),
		OrderValue:  lead.OrderValue,
		SaleDate:    lead.SaleDate,
		HoneyTypes:  append([]string{}, lead.HoneyTypes...),
		HoneyType:   lead.HoneyType,
		Notes:       lead.Notes,
		CreatedAt:   lead.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   lead.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if lead.NextFollowUp != nil {
		item.NextFollowUp = lead.NextFollowUp.UTC().Format(time.RFC3339Nano)
	}
	return item
}

func (i leadItem) toLead() *Lead {
	lead := &Lead{
		ID:          i.ID,
		UserID:      i.UserID,
		Name:        i.Name,
		Phone:       i.Phone,
		Email:       i.Email,
		Status:      i.Status,
		Priority:    Priority(i.Priority),
		LeadType:    LeadType(i.LeadType),
		LeadSubType: i.LeadSubType,
		TeamMember:  i.TeamMember,
		Platform:    Platform(i.Platform),
		OrderValue:  i.OrderValue,
		SaleDate:    i.SaleDate,
		HoneyTypes:  i.HoneyTypes,
		HoneyType:   i.HoneyType,
		Notes:       i.Notes,
	}
	lead.CreatedAt, _ = time.Parse(time.RFC3339Nano, i.CreatedAt)
	lead.UpdatedAt, _ = time.Parse(time.RFC3339Nano, i.UpdatedAt)
	if i.NextFollowUp != "" {
		if t, err := time.Parse(time.RFC3339Nano, i.NextFollowUp); err == nil {
			lead.NextFollowUp = &t
		}
	}
	return lead
}
