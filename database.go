package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func initDB(path string) (*gorm.DB, error) {
	newLogger := logger.New(
		&InfoLogger,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	if err := ensureDBDir(path); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&UserRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	return db, nil
}

// ensureDBDir creates the parent directory of a file-backed SQLite path.
func ensureDBDir(path string) error {
	if strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory") {
		return nil
	}
	clean := strings.SplitN(strings.TrimPrefix(path, "file:"), "?", 2)[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory %q: %w", dir, err)
	}
	return nil
}

// UserStore owns the users table.
type UserStore struct {
	db    *gorm.DB
	clock Clock
}

func NewUserStore(db *gorm.DB, clock Clock) *UserStore {
	return &UserStore{db: db, clock: clock}
}

// Upsert inserts the user or, when the id is already known, refreshes the
// display fields only. joined_at keeps its first value.
func (s *UserStore) Upsert(ctx context.Context, userID int64, firstName, username string) error {
	record := UserRecord{
		UserID:    userID,
		FirstName: firstName,
		Username:  username,
		JoinedAt:  s.clock.Now().UTC().Format(time.RFC3339),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "username"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", userID, err)
	}
	return nil
}

// AllUserIDs returns a point-in-time snapshot of every stored id.
func (s *UserStore) AllUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.WithContext(ctx).Model(&UserRecord{}).Order("user_id").Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	return ids, nil
}

// Get returns the stored record for userID.
func (s *UserStore) Get(ctx context.Context, userID int64) (UserRecord, error) {
	var record UserRecord
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	return record, err
}

// Count returns the number of stored users.
func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&UserRecord{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, nil
}
