// Package index implements the Index Store component: durable storage for
// track metadata and fingerprint records, and the lookups the Matcher
// needs, backed by a pure-Go SQLite driver.
package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/soundmark/soundmark/pkg/soundmark/model"
)

// track and fingerprint are the GORM row models. They are kept separate
// from model.TrackMeta/model.Fingerprint so the storage schema can evolve
// without changing the public API.
type track struct {
	ID         uint32 `gorm:"primaryKey;autoIncrement"`
	Title      string `gorm:"uniqueIndex:idx_track_unique,priority:1"`
	Artist     string `gorm:"uniqueIndex:idx_track_unique,priority:2"`
	YouTubeID  string `gorm:"index:idx_youtube_id"`
	DurationMs int
	CreatedAt  time.Time
}

type fingerprintRow struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	Hash       uint32 `gorm:"index:idx_hash"`
	TrackID    uint32 `gorm:"index:idx_track"`
	AnchorTime int
}

// SQLiteStore is the default Store implementation.
type SQLiteStore struct {
	db        *gorm.DB
	path      string
	batchSize int
}

// Config configures a SQLiteStore.
type Config struct {
	Path      string
	BatchSize int // rows per CreateInBatches call, default 1000
}

// Open creates or opens a SQLite-backed index at cfg.Path, running schema
// migration if needed.
func Open(cfg Config) (*SQLiteStore, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("index: creating storage directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path+"?_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("index: opening sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("index: getting underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&track{}, &fingerprintRow{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("index: migrating schema: %w", err)
	}

	return &SQLiteStore{db: db, path: cfg.Path, batchSize: cfg.BatchSize}, nil
}

func (s *SQLiteStore) CreateTrack(ctx context.Context, meta model.TrackMeta) (model.TrackID, error) {
	db := s.db.WithContext(ctx)

	var row track
	err := db.Where("title = ? AND artist = ?", meta.Title, meta.Artist).First(&row).Error
	if err == nil {
		return model.TrackID(row.ID), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("index: querying existing track: %w", err)
	}

	row = track{
		Title:      meta.Title,
		Artist:     meta.Artist,
		YouTubeID:  meta.YouTubeID,
		DurationMs: meta.DurationMs,
	}
	if err := db.Create(&row).Error; err != nil {
		return 0, fmt.Errorf("index: creating track: %w", err)
	}
	return model.TrackID(row.ID), nil
}

func (s *SQLiteStore) InsertFingerprints(ctx context.Context, trackID model.TrackID, fps []model.Fingerprint) error {
	if len(fps) == 0 {
		return nil
	}
	rows := make([]fingerprintRow, len(fps))
	for i, fp := range fps {
		rows[i] = fingerprintRow{Hash: fp.Hash, TrackID: uint32(trackID), AnchorTime: fp.AnchorTime}
	}
	if err := s.db.WithContext(ctx).CreateInBatches(rows, s.batchSize).Error; err != nil {
		return fmt.Errorf("index: batch inserting fingerprints: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteTrack(ctx context.Context, trackID model.TrackID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("track_id = ?", uint32(trackID)).Delete(&fingerprintRow{}).Error; err != nil {
			return fmt.Errorf("index: deleting fingerprints: %w", err)
		}
		if err := tx.Where("id = ?", uint32(trackID)).Delete(&track{}).Error; err != nil {
			return fmt.Errorf("index: deleting track: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) Lookup(ctx context.Context, hash uint32) ([]model.Hit, error) {
	var rows []fingerprintRow
	if err := s.db.WithContext(ctx).Where("hash = ?", hash).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("index: looking up hash: %w", err)
	}
	hits := make([]model.Hit, len(rows))
	for i, r := range rows {
		hits[i] = model.Hit{Track: model.TrackID(r.TrackID), AnchorTime: r.AnchorTime}
	}
	return hits, nil
}

func (s *SQLiteStore) LookupMany(ctx context.Context, hashes []uint32) (map[uint32][]model.Hit, error) {
	result := make(map[uint32][]model.Hit)
	if len(hashes) == 0 {
		return result, nil
	}

	var rows []fingerprintRow
	if err := s.db.WithContext(ctx).Where("hash IN ?", hashes).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("index: batch looking up hashes: %w", err)
	}
	for _, r := range rows {
		result[r.Hash] = append(result[r.Hash], model.Hit{Track: model.TrackID(r.TrackID), AnchorTime: r.AnchorTime})
	}
	return result, nil
}

func (s *SQLiteStore) GetTrack(ctx context.Context, trackID model.TrackID) (model.TrackMeta, error) {
	var row track
	if err := s.db.WithContext(ctx).First(&row, uint32(trackID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.TrackMeta{}, fmt.Errorf("index: track %d not found: %w", trackID, err)
		}
		return model.TrackMeta{}, fmt.Errorf("index: getting track: %w", err)
	}
	return trackToMeta(row), nil
}

func (s *SQLiteStore) ListTracks(ctx context.Context) ([]model.TrackMeta, error) {
	var rows []track
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("index: listing tracks: %w", err)
	}
	out := make([]model.TrackMeta, len(rows))
	for i, r := range rows {
		out[i] = trackToMeta(r)
	}
	return out, nil
}

func (s *SQLiteStore) FingerprintCount(ctx context.Context, trackID model.TrackID) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&fingerprintRow{}).Where("track_id = ?", uint32(trackID)).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("index: counting track fingerprints: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (model.Stats, error) {
	var trackCount, fpCount int64
	if err := s.db.WithContext(ctx).Model(&track{}).Count(&trackCount).Error; err != nil {
		return model.Stats{}, fmt.Errorf("index: counting tracks: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&fingerprintRow{}).Count(&fpCount).Error; err != nil {
		return model.Stats{}, fmt.Errorf("index: counting fingerprints: %w", err)
	}

	var sizeBytes int64
	if info, err := os.Stat(s.path); err == nil {
		sizeBytes = info.Size()
	}

	return model.Stats{TrackCount: int(trackCount), FingerprintCount: fpCount, SizeBytes: sizeBytes}, nil
}

// Optimize runs SQLite's VACUUM and ANALYZE to reclaim space and refresh
// the query planner's statistics after a large batch of deletes/inserts.
func (s *SQLiteStore) Optimize(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("VACUUM").Error; err != nil {
		return fmt.Errorf("index: vacuum: %w", err)
	}
	if err := s.db.WithContext(ctx).Exec("ANALYZE").Error; err != nil {
		return fmt.Errorf("index: analyze: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func trackToMeta(r track) model.TrackMeta {
	return model.TrackMeta{
		ID:         model.TrackID(r.ID),
		Title:      r.Title,
		Artist:     r.Artist,
		YouTubeID:  r.YouTubeID,
		DurationMs: r.DurationMs,
		CreatedAt:  r.CreatedAt,
	}
}
