// Package store persists successful provider results so repeated queries
// can be answered without another backend call.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"horse.fit/easydict/internal/config"
	"horse.fit/easydict/internal/translation"
)

// CachedResult maps easydict_cached_results.
type CachedResult struct {
	CachedResultID int64     `gorm:"column:cached_result_id;primaryKey;autoIncrement"`
	Provider       string    `gorm:"column:provider;type:text;not null;uniqueIndex:idx_cached_results_key,priority:1"`
	SourceLang     string    `gorm:"column:source_lang;type:text;not null;uniqueIndex:idx_cached_results_key,priority:2"`
	TargetLang     string    `gorm:"column:target_lang;type:text;not null;uniqueIndex:idx_cached_results_key,priority:3"`
	TextHash       string    `gorm:"column:text_hash;type:varchar(64);not null;uniqueIndex:idx_cached_results_key,priority:4"`
	QueryText      string    `gorm:"column:query_text;type:text;not null"`
	Payload        string    `gorm:"column:payload;type:text;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
	UpdatedAt      time.Time `gorm:"column:updated_at;not null;index"`
}

func (CachedResult) TableName() string { return "easydict_cached_results" }

// Store is a gorm-backed translation.ResultStore.
type Store struct {
	gdb   *gorm.DB
	sqlDB *sql.DB
	ttl   time.Duration
	now   func() time.Time
}

// Open connects to DATABASE_URL and migrates the schema. postgres:// URLs
// use Postgres; any other value is a SQLite DSN.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	dsn := strings.TrimSpace(cfg.DatabaseURL)
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	gdb, err := gorm.Open(dialectorFor(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(resolveGormLogLevel(cfg.LogLevel, cfg.Environment)),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get gorm sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(8)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := gdb.WithContext(ctx).AutoMigrate(&CachedResult{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("auto-migrate schema: %w", err)
	}

	return &Store{
		gdb:   gdb,
		sqlDB: sqlDB,
		ttl:   cfg.CacheTTL,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

func dialectorFor(dsn string) gorm.Dialector {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") || strings.Contains(lower, "host=") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

// Lookup returns the cached result for key if it has not expired.
func (s *Store) Lookup(ctx context.Context, key translation.CacheKey) (*translation.Result, bool, error) {
	if s == nil || s.gdb == nil {
		return nil, false, fmt.Errorf("store is not initialized")
	}

	query := s.gdb.WithContext(ctx).
		Where("provider = ? AND source_lang = ? AND target_lang = ? AND text_hash = ?",
			string(key.Provider), key.Source, key.Target, textHash(key.Text))
	if s.ttl > 0 {
		query = query.Where("updated_at > ?", s.now().Add(-s.ttl))
	}

	var row CachedResult
	if err := query.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lookup cached result: %w", err)
	}

	var result translation.Result
	if err := json.Unmarshal([]byte(row.Payload), &result); err != nil {
		return nil, false, fmt.Errorf("decode cached result: %w", err)
	}
	return &result, true, nil
}

// Save upserts the result for key.
func (s *Store) Save(ctx context.Context, key translation.CacheKey, result *translation.Result) error {
	if s == nil || s.gdb == nil {
		return fmt.Errorf("store is not initialized")
	}
	if result == nil {
		return fmt.Errorf("result is nil")
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode cached result: %w", err)
	}

	now := s.now()
	row := CachedResult{
		Provider:   string(key.Provider),
		SourceLang: key.Source,
		TargetLang: key.Target,
		TextHash:   textHash(key.Text),
		QueryText:  key.Text,
		Payload:    string(payload),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = s.gdb.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "source_lang"},
			{Name: "target_lang"},
			{Name: "text_hash"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"query_text", "payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save cached result: %w", err)
	}
	return nil
}

// Prune deletes expired rows and returns how many were removed.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	if s == nil || s.gdb == nil {
		return 0, fmt.Errorf("store is not initialized")
	}
	if s.ttl <= 0 {
		return 0, nil
	}
	res := s.gdb.WithContext(ctx).
		Where("updated_at <= ?", s.now().Add(-s.ttl)).
		Delete(&CachedResult{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune cached results: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func textHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func resolveGormLogLevel(appLogLevel, environment string) logger.LogLevel {
	level := strings.ToLower(strings.TrimSpace(appLogLevel))
	switch level {
	case "trace", "debug":
		return logger.Info
	case "warn", "warning", "info", "":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		if strings.EqualFold(strings.TrimSpace(environment), "local") {
			return logger.Warn
		}
		return logger.Error
	}
}
