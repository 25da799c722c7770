package documentstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"

	"github.com/wso2/consent-intake-api/internal/intake/model"
	"github.com/wso2/consent-intake-api/internal/system/config"
)

const defaultWriteTimeout = 30 * time.Second

// dynamoAPI is the slice of the DynamoDB client used by the store; narrowed
// for test substitution.
type dynamoAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// DynamoStore writes consent records to a DynamoDB table partitioned by id
// with version as the sort key.
type DynamoStore struct {
	client  dynamoAPI
	table   string
	timeout time.Duration
	logger  *logrus.Logger
}

// DynamoStoreOptionFunc configures a DynamoStore.
type DynamoStoreOptionFunc func(*DynamoStore)

// WithDynamoClient overrides the DynamoDB client (used by tests).
func WithDynamoClient(client dynamoAPI) DynamoStoreOptionFunc {
	return func(s *DynamoStore) {
		s.client = client
	}
}

// WithWriteTimeout overrides the per-write deadline.
func WithWriteTimeout(timeout time.Duration) DynamoStoreOptionFunc {
	return func(s *DynamoStore) {
		s.timeout = timeout
	}
}

// NewDynamoStore builds a DynamoDB-backed document store from configuration.
func NewDynamoStore(ctx context.Context, cfg *config.DocumentStoreConfig, logger *logrus.Logger, opts ...DynamoStoreOptionFunc) (*DynamoStore, error) {
	if cfg.Table == "" {
		return nil, fmt.Errorf("dynamodb document store: table not set")
	}

	store := &DynamoStore{
		table:   cfg.Table,
		timeout: defaultWriteTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(store)
	}

	if store.client == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamodb document store: load default AWS config: %w", err)
		}
		if cfg.Region != "" {
			awsCfg.Region = cfg.Region
		}
		store.client = dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
		})
	}

	return store, nil
}

// PutRecordBatch writes all records in a single BatchWriteItem call. Any
// unprocessed item left behind by the store means the batch was partially
// applied and the write is reported as failed.
func (s *DynamoStore) PutRecordBatch(ctx context.Context, records []model.ConsentRecord) error {
	if len(records) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	writes := make([]dbtypes.WriteRequest, 0, len(records))
	for _, record := range records {
		item, err := attributevalue.MarshalMap(record)
		if err != nil {
			return fmt.Errorf("failed to marshal record %s v%d: %w", record.ID, record.Version, err)
		}
		writes = append(writes, dbtypes.WriteRequest{
			PutRequest: &dbtypes.PutRequest{Item: item},
		})
	}

	out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]dbtypes.WriteRequest{
			s.table: writes,
		},
	})
	if err != nil {
		s.logger.WithError(err).WithField("table", s.table).Error("batch write failed")
		return fmt.Errorf("batch write failed: %w", err)
	}

	if len(out.UnprocessedItems) > 0 {
		unprocessed := 0
		for _, reqs := range out.UnprocessedItems {
			unprocessed += len(reqs)
		}
		s.logger.WithFields(logrus.Fields{
			"table":       s.table,
			"unprocessed": unprocessed,
		}).Error("batch write left unprocessed items")
		return fmt.Errorf("%d of %d items unprocessed: %w", unprocessed, len(records), ErrPartialWrite)
	}

	return nil
}
