// Package claimstore persists immutable claim versions in DynamoDB. Rows are
// keyed by (claim_id, version); the LatestVersionIndex GSI (claim_id,
// is_latest) answers "fetch the latest version" without scanning history.
package claimstore

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/anycompany/claims-processing/internal/models"
)

// Attribute names of the claims table.
const (
	attrClaimID      = "claim_id"
	attrVersion      = "version"
	attrIsLatest     = "is_latest"
	attrStatus       = "status"
	attrCreatedAt    = "created_at"
	attrDetails      = "claim_details"
	attrVehicle      = "vehicle_info"
	attrDocuments    = "documents"
	attrUploadedDocs = "current_uploaded_documents"
	attrRequiredDocs = "required_documents"
	attrSummary      = "version_summary"
	latestFlagTrue   = "true"
	latestFlagFalse  = "false"
	conditionalCheck = "ConditionalCheckFailed"
)

// DefaultLatestIndex is the GSI that serves latest-version lookups.
const DefaultLatestIndex = "LatestVersionIndex"

// Store wraps a DynamoDB client and table name for claim version operations.
type Store struct {
	DB    *dynamodb.Client
	Table string
	Index string
	Log   *zap.Logger
}

// New returns a Store bound to the given table using the default GSI.
func New(db *dynamodb.Client, table string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{DB: db, Table: table, Index: DefaultLatestIndex, Log: log}
}

// GetLatest returns the version with is_latest set, or models.ErrNotFound if
// the claim has never been written. Any other failure propagates as a
// storage error; callers must not treat it as claim absence.
func (s *Store) GetLatest(ctx context.Context, claimID string) (models.ClaimVersion, error) {
	keyCond := expression.Key(attrClaimID).Equal(expression.Value(claimID)).
		And(expression.Key(attrIsLatest).Equal(expression.Value(latestFlagTrue)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return models.ClaimVersion{}, eris.Wrap(err, "build latest query")
	}

	out, err := s.DB.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.Table),
		IndexName:                 aws.String(s.Index),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return models.ClaimVersion{}, eris.Wrapf(err, "query latest version of %s", claimID)
	}
	if len(out.Items) == 0 {
		return models.ClaimVersion{}, models.ErrNotFound
	}
	return unmarshalVersion(out.Items[0])
}

// GetAllVersions returns every version of the claim in no particular order;
// callers sort by version token when they need chronology.
func (s *Store) GetAllVersions(ctx context.Context, claimID string) ([]models.ClaimVersion, error) {
	keyCond := expression.Key(attrClaimID).Equal(expression.Value(claimID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, eris.Wrap(err, "build versions query")
	}

	var versions []models.ClaimVersion
	pager := dynamodb.NewQueryPaginator(s.DB, &dynamodb.QueryInput{
		TableName:                 aws.String(s.Table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, eris.Wrapf(err, "query versions of %s", claimID)
		}
		for _, item := range page.Items {
			v, err := unmarshalVersion(item)
			if err != nil {
				s.Log.Warn("skipping undecodable claim row",
					zap.String("claim_id", claimID), zap.Error(err))
				continue
			}
			versions = append(versions, v)
		}
	}
	return versions, nil
}

// Put inserts a single version row, refusing to overwrite an existing token.
// A conditional failure means a concurrent writer produced the same token
// and surfaces as models.ErrLatestConflict.
func (s *Store) Put(ctx context.Context, v models.ClaimVersion) error {
	cond := expression.AttributeNotExists(expression.Name(attrVersion))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return eris.Wrap(err, "build put condition")
	}

	_, err = s.DB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.Table),
		Item:                      marshalVersion(v),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return models.ErrLatestConflict
		}
		return eris.Wrapf(err, "put version %s of %s", v.Version, v.ClaimID)
	}
	return nil
}

// Demote clears is_latest on exactly the given row.
func (s *Store) Demote(ctx context.Context, claimID, version string) error {
	update := expression.Set(expression.Name(attrIsLatest), expression.Value(latestFlagFalse))
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return eris.Wrap(err, "build demote update")
	}

	_, err = s.DB.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.Table),
		Key:                       versionKey(claimID, version),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return eris.Wrapf(err, "demote version %s of %s", version, claimID)
	}
	return nil
}

// SwapLatest installs next as the latest version and demotes the prior one
// in a single transaction. The demote is conditional on the prior row still
// being latest, so two writers racing from the same read cannot both win:
// the loser gets models.ErrLatestConflict and should re-read and re-merge.
func (s *Store) SwapLatest(ctx context.Context, next models.ClaimVersion, priorVersion string) error {
	demote, err := expression.NewBuilder().
		WithUpdate(expression.Set(expression.Name(attrIsLatest), expression.Value(latestFlagFalse))).
		WithCondition(expression.Equal(expression.Name(attrIsLatest), expression.Value(latestFlagTrue))).
		Build()
	if err != nil {
		return eris.Wrap(err, "build demote expression")
	}
	put, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(attrVersion))).
		Build()
	if err != nil {
		return eris.Wrap(err, "build put expression")
	}

	_, err = s.DB.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []ddbtypes.TransactWriteItem{
			{
				Update: &ddbtypes.Update{
					TableName:                 aws.String(s.Table),
					Key:                       versionKey(next.ClaimID, priorVersion),
					UpdateExpression:          demote.Update(),
					ConditionExpression:       demote.Condition(),
					ExpressionAttributeNames:  demote.Names(),
					ExpressionAttributeValues: demote.Values(),
				},
			},
			{
				Put: &ddbtypes.Put{
					TableName:                 aws.String(s.Table),
					Item:                      marshalVersion(next),
					ConditionExpression:       put.Condition(),
					ExpressionAttributeNames:  put.Names(),
					ExpressionAttributeValues: put.Values(),
				},
			},
		},
	})
	if err != nil {
		if isConditionalCancellation(err) {
			return models.ErrLatestConflict
		}
		return eris.Wrapf(err, "swap latest of %s to %s", next.ClaimID, next.Version)
	}
	return nil
}

// isConditionalCancellation reports whether a transaction was canceled
// because one of its condition checks failed.
func isConditionalCancellation(err error) bool {
	var tc *ddbtypes.TransactionCanceledException
	if !errors.As(err, &tc) {
		return false
	}
	for _, reason := range tc.CancellationReasons {
		if reason.Code != nil && *reason.Code == conditionalCheck {
			return true
		}
	}
	return false
}

func versionKey(claimID, version string) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		attrClaimID: &ddbtypes.AttributeValueMemberS{Value: claimID},
		attrVersion: &ddbtypes.AttributeValueMemberS{Value: version},
	}
}
