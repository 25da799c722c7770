package documentstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/wso2/consent-intake-api/internal/intake/model"
	"github.com/wso2/consent-intake-api/internal/system/config"
)

const insertRecordQuery = `INSERT INTO CONSENT_RECORD
	(RECORD_ID, VERSION, LATEST_VERSION, FORM_HASH, SALT_KEY, FORM_CONTENT,
	 SUBMITTER_ID, SUBMITTER_NAME, SUBMITTER_FAMILY_NAME, SUBMITTED_AT, ARTIFACTS)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// MySQLStore writes consent records to a relational table. Batch atomicity
// comes from wrapping the inserts in a single transaction, so a partial
// batch is never visible to readers.
type MySQLStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewMySQLStore opens a connection pool for the MySQL-backed document store.
func NewMySQLStore(cfg *config.DocumentStoreConfig, logger *logrus.Logger) (*MySQLStore, error) {
	db, err := sqlx.Open("mysql", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("mysql document store: open: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return &MySQLStore{db: db, logger: logger}, nil
}

// NewMySQLStoreWithDB wraps an existing connection (used by tests).
func NewMySQLStoreWithDB(db *sqlx.DB, logger *logrus.Logger) *MySQLStore {
	return &MySQLStore{db: db, logger: logger}
}

// HealthCheck verifies database connectivity.
func (s *MySQLStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

// PutRecordBatch inserts all records inside one transaction.
func (s *MySQLStore) PutRecordBatch(ctx context.Context, records []model.ConsentRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, record := range records {
		if err := insertRecord(ctx, tx, record); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.WithError(rbErr).Error("rollback failed after insert error")
			}
			return fmt.Errorf("failed to insert record %s v%d: %w", record.ID, record.Version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit record batch: %w", err)
	}
	return nil
}

func insertRecord(ctx context.Context, tx *sqlx.Tx, record model.ConsentRecord) error {
	formJSON, err := json.Marshal(record.FormContent)
	if err != nil {
		return fmt.Errorf("failed to marshal form content: %w", err)
	}

	var latestVersion *int
	if record.IsPointer() {
		latestVersion = &record.LatestVersion
	}

	var artifactsJSON []byte
	if record.Artifacts != nil {
		artifactsJSON, err = json.Marshal(record.Artifacts)
		if err != nil {
			return fmt.Errorf("failed to marshal artifact refs: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, insertRecordQuery,
		record.ID,
		record.Version,
		latestVersion,
		record.Fingerprint.Hash,
		record.Fingerprint.Salt,
		formJSON,
		record.Submitter.ID,
		record.Submitter.Name,
		record.Submitter.FamilyName,
		record.Timestamp.UTC().Format(time.RFC3339Nano),
		artifactsJSON,
	)
	return err
}
