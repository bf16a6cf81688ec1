package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Mojasagwe/taxiRankApp/domain"
)

// credentialRecord is one stored key-value pair.
type credentialRecord struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value string `gorm:"column:value"`
}

func (credentialRecord) TableName() string { return "credentials" }

// GormStore is a credential store backed by an embedded sqlite database.
type GormStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the sqlite database at path and
// migrates the credentials table.
func NewSQLiteStore(path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open credential database: %w", err)
	}
	return NewGormStore(db)
}

// NewGormStore wraps an existing gorm handle.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&credentialRecord{}); err != nil {
		return nil, fmt.Errorf("migrate credentials table: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Get implements domain.CredentialStore.
func (s *GormStore) Get(ctx context.Context, key string) (string, error) {
	var record credentialRecord
	err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrCredentialsNotFound
		}
		return "", fmt.Errorf("read credential: %w", err)
	}
	return record.Value, nil
}

// Set implements domain.CredentialStore.
func (s *GormStore) Set(ctx context.Context, key, value string) error {
	record := credentialRecord{Key: key, Value: value}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	return nil
}

// Remove implements domain.CredentialStore.
func (s *GormStore) Remove(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Delete(&credentialRecord{}, "key = ?", key).Error
	if err != nil {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}

// Clear implements domain.CredentialStore.
func (s *GormStore) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&credentialRecord{}).Error
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
