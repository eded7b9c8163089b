package db

import (
	"context"
	"fmt"

	"lkcrawl/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Session stages rows in memory and writes them in a single transaction on
// Commit. It is owned by one goroutine for the whole run.
type Session struct {
	db     *gorm.DB
	logger *zap.Logger
	staged []any
}

func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Session, error) {
	gormDB, err := InitDB(ctx, dsn)
	if err != nil {
		return nil, err
	}

	return NewSession(gormDB, logger), nil
}

func NewSession(gormDB *gorm.DB, logger *zap.Logger) *Session {
	return &Session{
		db:     gormDB,
		logger: logger.Named("db"),
	}
}

// Stage queues a row for the next Commit. row must be a pointer to a model.
func (s *Session) Stage(row any) {
	s.staged = append(s.staged, row)
}

func (s *Session) Pending() int {
	return len(s.staged)
}

// Commit inserts every staged row in staging order. Staged rows are dropped
// whether or not the transaction succeeds.
func (s *Session) Commit(ctx context.Context) error {
	staged := s.staged
	s.staged = nil

	if len(staged) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range staged {
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("failed to insert %T: %w", row, err)
			}
		}
		return nil
	})
	if err != nil {
		if IsConstraintViolation(err) {
			s.logger.Warn("staged rows rejected by a constraint", zap.Int("rows", len(staged)), zap.Error(err))
		}
		return err
	}

	s.logger.Debug("committed staged rows", zap.Int("rows", len(staged)))
	return nil
}

func (s *Session) Discard() {
	if len(s.staged) > 0 {
		s.logger.Warn("discarding staged rows", zap.Int("rows", len(s.staged)))
	}
	s.staged = nil
}

func (s *Session) CompanyExists(ctx context.Context, urnID int64) (bool, error) {
	count, err := gorm.G[models.Company](s.db).Where("urn_id = ?", urnID).Count(ctx, "urn_id")
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (s *Session) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
