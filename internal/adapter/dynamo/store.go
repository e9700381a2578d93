// Package dynamo persists comments in a DynamoDB table with a geohash
// secondary index for same-cell proximity queries.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/coatcheck/coatcheck-service/internal/config"
	"github.com/coatcheck/coatcheck-service/internal/domain"
	"github.com/coatcheck/coatcheck-service/internal/observability"
)

// Table attribute names. These are load-bearing: the GSI is keyed on Geohash
// and the vote update expression addresses the counters by name.
const (
	attrCommentID  = "CommentId"
	attrThumbsUp   = "ThumbsUp"
	attrThumbsDown = "ThumbsDown"
	geohashIndex   = "GeohashIndex"
)

// API is the subset of the DynamoDB client the store uses. Tests substitute
// a mock; production passes *dynamodb.Client.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Store implements domain.CommentStore on DynamoDB.
type Store struct {
	client  API
	table   string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClient builds a DynamoDB client from the default AWS config chain.
// A non-empty DynamoEndpoint points the client at a local DynamoDB and
// switches to static placeholder credentials, matching how the table is run
// under sam local / dynamodb-local.
func NewClient(ctx context.Context, cfg *config.Config) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.DynamoEndpoint != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var ddbOpts []func(*dynamodb.Options)
	if cfg.DynamoEndpoint != "" {
		ddbOpts = append(ddbOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		})
	}

	return dynamodb.NewFromConfig(awsCfg, ddbOpts...), nil
}

// NewStore creates a comment store backed by the given DynamoDB client.
func NewStore(client API, table string, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		client:  client,
		table:   table,
		logger:  logger,
		metrics: metrics,
	}
}

// Put inserts a new comment record.
func (s *Store) Put(ctx context.Context, c domain.Comment) error {
	defer s.observe("put", time.Now())

	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal comment: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return s.storeErr("put item", err)
	}
	return nil
}

// GetByID fetches one comment by its primary key.
func (s *Store) GetByID(ctx context.Context, id string) (domain.Comment, error) {
	defer s.observe("get", time.Now())

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       commentKey(id),
	})
	if err != nil {
		return domain.Comment{}, s.storeErr("get item", err)
	}
	if len(out.Item) == 0 {
		return domain.Comment{}, domain.ErrNotFound
	}

	var c domain.Comment
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return domain.Comment{}, fmt.Errorf("unmarshal comment: %w", err)
	}
	return c, nil
}

// QueryByGeohash returns all comments whose Geohash attribute equals gh,
// via an exact-match query on the geohash index. Never a prefix scan.
func (s *Store) QueryByGeohash(ctx context.Context, gh string) ([]domain.Comment, error) {
	defer s.observe("query", time.Now())

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		IndexName:              aws.String(geohashIndex),
		KeyConditionExpression: aws.String("Geohash = :gh"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":gh": &types.AttributeValueMemberS{Value: gh},
		},
	})
	if err != nil {
		return nil, s.storeErr("query geohash", err)
	}

	comments := make([]domain.Comment, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &comments); err != nil {
		return nil, fmt.Errorf("unmarshal comments: %w", err)
	}
	return comments, nil
}

// UpdateVote adds +1 to the counter selected by kind in a single atomic
// UpdateItem, so concurrent votes never lose updates. The condition on the
// primary key turns updates against missing comments into ErrNotFound
// instead of minting a counter-only record.
func (s *Store) UpdateVote(ctx context.Context, id string, kind domain.VoteKind) (int64, error) {
	defer s.observe("update_vote", time.Now())

	attr := attrThumbsUp
	if kind == domain.VoteDown {
		attr = attrThumbsDown
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.table),
		Key:                 commentKey(id),
		UpdateExpression:    aws.String("ADD #vote :inc"),
		ConditionExpression: aws.String("attribute_exists(CommentId)"),
		ExpressionAttributeNames: map[string]string{
			"#vote": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":inc": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return 0, domain.ErrNotFound
		}
		return 0, s.storeErr("update vote", err)
	}

	n, ok := out.Attributes[attr].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("update vote: unexpected %s attribute in response", attr)
	}
	count, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("update vote: parse counter: %w", err)
	}
	return count, nil
}

// CheckReadiness verifies the comment table is reachable.
func (s *Store) CheckReadiness(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	})
	if err != nil {
		return fmt.Errorf("describe table %s: %w", s.table, err)
	}
	return nil
}

func commentKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrCommentID: &types.AttributeValueMemberS{Value: id},
	}
}

// storeErr logs the underlying SDK failure and maps it to ErrStoreUnavailable
// so callers never see (or leak) DynamoDB internals.
func (s *Store) storeErr(op string, err error) error {
	s.metrics.StoreErrors.Inc()
	s.logger.Error("dynamodb operation failed", "op", op, "table", s.table, "error", err)
	return fmt.Errorf("%s: %w", op, domain.ErrStoreUnavailable)
}

func (s *Store) observe(op string, start time.Time) {
	s.metrics.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
