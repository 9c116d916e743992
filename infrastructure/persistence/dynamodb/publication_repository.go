package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"doi-requests-backend/application/ports"
	"doi-requests-backend/domain/core/aggregates"
	"doi-requests-backend/domain/core/valueobjects"
	pkgerrors "doi-requests-backend/pkg/errors"
	"doi-requests-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the repository
type DynamoDBAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

var (
	_ DynamoDBAPI                 = (*dynamodb.Client)(nil)
	_ ports.PublicationRepository = (*PublicationRepository)(nil)
)

// accessDeniedCodes are the AWS error codes reported when the function role
// may not use the table
var accessDeniedCodes = map[string]bool{
	"AccessDeniedException": true,
	"AccessDenied":          true,
	"NotAuthorized":         true,
}

// PublicationRepository implements ports.PublicationRepository on the
// publications table. Every version is its own item keyed by identifier and
// modifiedDate.
type PublicationRepository struct {
	client    DynamoDBAPI
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewPublicationRepository creates a new PublicationRepository
func NewPublicationRepository(client DynamoDBAPI, tableName, indexName string, logger *zap.Logger) *PublicationRepository {
	return &PublicationRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// GetLatest retrieves the most recent version of a publication. A version
// that cannot be read fails the whole call.
func (r *PublicationRepository) GetLatest(ctx context.Context, id valueobjects.PublicationID) (*aggregates.Publication, error) {
	keyCond := expression.Key(AttrIdentifier).Equal(expression.Value(id.String())).
		And(expression.Key(AttrModifiedDate).GreaterThan(expression.Value(HeadMarker)))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query").WithCause(err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		ConsistentRead:            aws.Bool(true),
	}

	var versions []*aggregates.Publication
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, r.mapError(err, pkgerrors.NewStoreReadError, zap.String("publicationID", id.String()))
		}

		for _, raw := range page.Items {
			pub, err := unmarshalPublication(raw)
			if err != nil {
				r.logger.Error("Malformed publication version",
					zap.String("publicationID", id.String()),
					zap.Error(err),
				)
				return nil, pkgerrors.NewStoreReadError(err)
			}
			versions = append(versions, pub)
		}
	}

	latest := aggregates.LatestVersion(versions)
	if latest == nil {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("Publication not found: %s", id))
	}

	r.logger.Debug("Resolved latest publication version",
		zap.String("publicationID", id.String()),
		zap.Int("versions", len(versions)),
		zap.Time("modifiedDate", latest.ModifiedDate()),
	)

	return latest, nil
}

// PutNewVersion stores pub as a new item and moves the head row to it in one
// transaction. The head row condition rejects the write when another writer
// of this service has stored a version after the one pub was read from.
// Only this service moves the head row, so a version the publication service
// writes after the read is not detected and is shadowed by pub.
func (r *PublicationRepository) PutNewVersion(ctx context.Context, pub *aggregates.Publication) error {
	if !pub.IsModified() {
		return pkgerrors.NewInternalError(fmt.Sprintf("publication %s has no changes to store", pub.ID()))
	}

	item, err := marshalPublication(pub)
	if err != nil {
		return pkgerrors.NewInternalError("failed to serialize publication").WithCause(err)
	}

	newVersion := utils.FormatVersionTimestamp(pub.ModifiedDate())
	expected := utils.FormatVersionTimestamp(pub.BaseModifiedDate())

	putExpr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(AttrModifiedDate))).
		Build()
	if err != nil {
		return pkgerrors.NewInternalError("failed to build put condition").WithCause(err)
	}

	headCond := expression.AttributeNotExists(expression.Name(AttrLatestModifiedDate)).
		Or(expression.Name(AttrLatestModifiedDate).LessThanEqual(expression.Value(expected)))
	headExpr, err := expression.NewBuilder().
		WithCondition(headCond).
		WithUpdate(expression.Set(expression.Name(AttrLatestModifiedDate), expression.Value(newVersion))).
		Build()
	if err != nil {
		return pkgerrors.NewInternalError("failed to build head update").WithCause(err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:                aws.String(r.tableName),
					Item:                     item,
					ConditionExpression:      putExpr.Condition(),
					ExpressionAttributeNames: putExpr.Names(),
				},
			},
			{
				Update: &types.Update{
					TableName: aws.String(r.tableName),
					Key: map[string]types.AttributeValue{
						AttrIdentifier:   &types.AttributeValueMemberS{Value: pub.ID().String()},
						AttrModifiedDate: &types.AttributeValueMemberS{Value: HeadMarker},
					},
					ConditionExpression:       headExpr.Condition(),
					UpdateExpression:          headExpr.Update(),
					ExpressionAttributeNames:  headExpr.Names(),
					ExpressionAttributeValues: headExpr.Values(),
				},
			},
		},
	}

	if _, err := r.client.TransactWriteItems(ctx, input); err != nil {
		if isConditionFailure(err) {
			r.logger.Info("Publication version conflict",
				zap.String("publicationID", pub.ID().String()),
				zap.String("expected", expected),
			)
			return pkgerrors.NewVersionConflictError(pub.ID().String()).WithCause(err)
		}
		return r.mapError(err, pkgerrors.NewStoreWriteError, zap.String("publicationID", pub.ID().String()))
	}

	r.logger.Info("Stored publication version",
		zap.String("publicationID", pub.ID().String()),
		zap.String("modifiedDate", newVersion),
	)
	return nil
}

// QueryByPublisher retrieves every version indexed under publisherID.
// Versions that cannot be read are logged and skipped.
func (r *PublicationRepository) QueryByPublisher(ctx context.Context, publisherID string) ([]*aggregates.Publication, error) {
	keyCond := expression.Key(AttrPublisherID).Equal(expression.Value(publisherID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query").WithCause(err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var (
		publications []*aggregates.Publication
		skipped      int
	)
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, r.mapError(err, pkgerrors.NewStoreReadError, zap.String("publisherID", publisherID))
		}

		for _, raw := range page.Items {
			pub, err := unmarshalPublication(raw)
			if err != nil {
				skipped++
				r.logger.Warn("Skipping malformed publication version",
					zap.String("publisherID", publisherID),
					zap.Error(err),
				)
				continue
			}
			publications = append(publications, pub)
		}
	}

	r.logger.Debug("Queried publisher index",
		zap.String("publisherID", publisherID),
		zap.Int("versions", len(publications)),
		zap.Int("skipped", skipped),
	)

	return publications, nil
}

// mapError converts an AWS error to an application error. Access denied
// becomes Forbidden, everything else goes through fallback.
func (r *PublicationRepository) mapError(err error, fallback func(error) *pkgerrors.AppError, fields ...zap.Field) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && accessDeniedCodes[apiErr.ErrorCode()] {
		r.logger.Error("Access to publication table denied",
			append(fields, zap.String("code", apiErr.ErrorCode()), zap.Error(err))...)
		return pkgerrors.NewForbiddenError().WithCause(err)
	}

	appErr := fallback(err)
	r.logger.Error(appErr.Message, append(fields, zap.Error(err))...)
	return appErr
}

// isConditionFailure reports whether a write failed on one of its conditions
func isConditionFailure(err error) bool {
	var conditionErr *types.ConditionalCheckFailedException
	if errors.As(err, &conditionErr) {
		return true
	}

	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for _, reason := range canceled.CancellationReasons {
			if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
				return true
			}
		}
	}
	return false
}
