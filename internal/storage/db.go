package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Alexander-D-Karpov/sonicflow/internal/config"
	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

var (
	ErrNotFound = errors.New("not found")
	ErrClosed   = errors.New("database is closed")
)

var _ types.TrackStore = (*Database)(nil)

type Database struct {
	db       *sql.DB
	cacheDir string
	mu       sync.RWMutex
	closed   bool
	logger   *zap.Logger
}

func NewDatabase(cfg *config.Config, logger *zap.Logger) (*Database, error) {
	logger = logging.OrNop(logger).Named("db")

	dbDir := filepath.Dir(cfg.Storage.DatabasePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	cacheDir := cfg.Storage.CacheDir
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := openDatabase(cfg.Storage.DatabasePath, cfg.Storage.EnableWAL, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	storage := &Database{
		db:       db,
		cacheDir: cacheDir,
		logger:   logger,
	}

	if err := storage.runMigrations(); err != nil {
		if closeErr := storage.Close(); closeErr != nil {
			logger.Warn("failed to close database after migration error", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return storage, nil
}

func openDatabase(dbPath string, enableWAL bool, logger *zap.Logger) (*sql.DB, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		logger.Info("creating new database", zap.String("path", dbPath))
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=memory",
		"PRAGMA cache_size=-16000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=30000",
	}

	if enableWAL {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				logger.Warn("failed to close database after pragma error", zap.Error(closeErr))
			}
			return nil, fmt.Errorf("execute pragma %s: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Warn("failed to close database after ping error", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

func (d *Database) logFailure(operation string, err error, start time.Time) {
	if err == nil {
		return
	}
	d.logger.Debug("operation failed",
		zap.String("op", operation),
		zap.Duration("took", time.Since(start)),
		zap.Error(err))
}

func (d *Database) checkClosed() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}
	return nil
}

const trackColumns = `id, title, artist, album, cover, duration, audio_url, genre,
	description, location, date_time, organizer, source, position, last_sync, created_at`

// GetTracks returns cached tracks in catalog order.
func (d *Database) GetTracks(ctx context.Context, limit, offset int) ([]*types.Track, error) {
	start := time.Now()

	if err := d.checkClosed(); err != nil {
		return nil, err
	}

	query := `SELECT ` + trackColumns + ` FROM tracks ORDER BY position ASC, id ASC LIMIT ? OFFSET ?`

	tracks, err := d.queryTracks(ctx, query, limit, offset)
	if err != nil {
		d.logFailure("GetTracks", err, start)
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	return tracks, nil
}

func (d *Database) GetTrack(ctx context.Context, id string) (*types.Track, error) {
	start := time.Now()

	if err := d.checkClosed(); err != nil {
		return nil, err
	}

	row := d.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)
	track, err := scanTrack(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("track %s: %w", id, ErrNotFound)
		}
		d.logFailure("GetTrack", err, start)
		return nil, fmt.Errorf("scan track: %w", err)
	}
	return track, nil
}

// SaveTracks replaces every cached track of the sources present in tracks.
// Slice order becomes catalog order.
func (d *Database) SaveTracks(ctx context.Context, tracks []*types.Track) (err error) {
	start := time.Now()
	defer func() { d.logFailure("SaveTracks", err, start) }()

	if err := d.checkClosed(); err != nil {
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			d.logger.Warn("failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	sources := map[types.TrackSource]bool{}
	for _, t := range tracks {
		sources[t.Source] = true
	}
	for source := range sources {
		if _, err := tx.ExecContext(ctx, "DELETE FROM tracks WHERE source = ?", string(source)); err != nil {
			return fmt.Errorf("clear %s tracks: %w", source, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO tracks (`+trackColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i, t := range tracks {
		organizer := ""
		if t.Organizer != nil {
			data, err := json.Marshal(t.Organizer)
			if err != nil {
				return fmt.Errorf("marshal organizer: %w", err)
			}
			organizer = string(data)
		}

		created := t.CreatedAt
		if created.IsZero() {
			created = now
		}

		if _, err := stmt.ExecContext(ctx,
			t.ID, t.Title, t.Artist, t.Album, t.Cover, t.Duration, t.AudioURL, t.Genre,
			t.Description, t.Location, t.DateTime, organizer, string(t.Source), i, now, created,
		); err != nil {
			return fmt.Errorf("insert track %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// SearchTracks is a substring match used when the fuzzy index is cold.
func (d *Database) SearchTracks(ctx context.Context, query string, limit int) ([]*types.Track, error) {
	start := time.Now()

	if err := d.checkClosed(); err != nil {
		return nil, err
	}

	pattern := "%" + strings.ToLower(query) + "%"
	searchQuery := `SELECT ` + trackColumns + ` FROM tracks
		WHERE LOWER(title) LIKE ? OR LOWER(artist) LIKE ? OR LOWER(genre) LIKE ? OR LOWER(location) LIKE ?
		ORDER BY position ASC
		LIMIT ?`

	tracks, err := d.queryTracks(ctx, searchQuery, pattern, pattern, pattern, pattern, limit)
	if err != nil {
		d.logFailure("SearchTracks", err, start)
		return nil, fmt.Errorf("search tracks: %w", err)
	}
	return tracks, nil
}

func (d *Database) queryTracks(ctx context.Context, query string, args ...interface{}) ([]*types.Track, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			d.logger.Debug("failed to close rows", zap.Error(closeErr))
		}
	}()

	var tracks []*types.Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return tracks, nil
}

func scanTrack(scanner interface {
	Scan(dest ...interface{}) error
}) (*types.Track, error) {
	var (
		t         types.Track
		organizer string
		source    string
	)

	if err := scanner.Scan(
		&t.ID, &t.Title, &t.Artist, &t.Album, &t.Cover, &t.Duration, &t.AudioURL, &t.Genre,
		&t.Description, &t.Location, &t.DateTime, &organizer, &source, &t.Position, &t.LastSync, &t.CreatedAt,
	); err != nil {
		return nil, err
	}

	t.Source = types.TrackSource(source)
	if organizer != "" {
		var o types.Organizer
		if err := json.Unmarshal([]byte(organizer), &o); err == nil {
			t.Organizer = &o
		}
	}
	return &t, nil
}

// RecordPlay appends one play to the local history.
func (d *Database) RecordPlay(ctx context.Context, play *types.PlayHistory) error {
	start := time.Now()

	if err := d.checkClosed(); err != nil {
		return err
	}

	res, err := d.db.ExecContext(ctx,
		`INSERT INTO play_history (play_id, track_id, played_at, created_at) VALUES (?, ?, ?, ?)`,
		play.PlayID, play.TrackID, play.PlayedAt, time.Now())
	if err != nil {
		d.logFailure("RecordPlay", err, start)
		return fmt.Errorf("insert play: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		play.ID = id
	}
	return nil
}

// RecentPlays returns the newest plays first.
func (d *Database) RecentPlays(ctx context.Context, limit int) ([]*types.PlayHistory, error) {
	start := time.Now()

	if err := d.checkClosed(); err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, play_id, track_id, played_at, created_at FROM play_history ORDER BY played_at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		d.logFailure("RecentPlays", err, start)
		return nil, fmt.Errorf("query plays: %w", err)
	}
	defer rows.Close()

	var plays []*types.PlayHistory
	for rows.Next() {
		var p types.PlayHistory
		if err := rows.Scan(&p.ID, &p.PlayID, &p.TrackID, &p.PlayedAt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan play: %w", err)
		}
		plays = append(plays, &p)
	}
	return plays, rows.Err()
}

func (d *Database) PlayCount(ctx context.Context, trackID string) (int, error) {
	if err := d.checkClosed(); err != nil {
		return 0, err
	}

	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM play_history WHERE track_id = ?`, trackID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count plays: %w", err)
	}
	return n, nil
}

// GetCachedFile returns the local copy of url, or "" when none is cached.
func (d *Database) GetCachedFile(ctx context.Context, url string) (string, error) {
	start := time.Now()

	if err := d.checkClosed(); err != nil {
		return "", err
	}

	var localPath string
	err := d.db.QueryRowContext(ctx, "SELECT local_path FROM cache_entries WHERE url = ?", url).Scan(&localPath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		d.logFailure("GetCachedFile", err, start)
		return "", fmt.Errorf("get cached file: %w", err)
	}

	if _, err := os.Stat(localPath); os.IsNotExist(err) {
		_, _ = d.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE url = ?", url)
		return "", nil
	}

	_, _ = d.db.ExecContext(ctx, "UPDATE cache_entries SET accessed_at = ? WHERE url = ?", time.Now(), url)

	return localPath, nil
}

// SaveCachedFile stores data under the cache dir, keyed by the url hash.
func (d *Database) SaveCachedFile(ctx context.Context, url string, data io.Reader) (path string, err error) {
	start := time.Now()
	defer func() { d.logFailure("SaveCachedFile", err, start) }()

	if err := d.checkClosed(); err != nil {
		return "", err
	}

	key := CacheKey(url)
	localPath := filepath.Join(d.cacheDir, key)

	if err := os.MkdirAll(d.cacheDir, 0755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	file, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	size, copyErr := io.Copy(file, data)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		if removeErr := os.Remove(localPath); removeErr != nil {
			d.logger.Debug("failed to remove partial cache file", zap.Error(removeErr))
		}
		if copyErr != nil {
			return "", fmt.Errorf("write file: %w", copyErr)
		}
		return "", fmt.Errorf("close file: %w", closeErr)
	}

	now := time.Now()
	_, err = d.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO cache_entries (key, url, local_path, size, accessed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		key, url, localPath, size, now, now)
	if err != nil {
		if removeErr := os.Remove(localPath); removeErr != nil {
			d.logger.Debug("failed to remove cache file after database error", zap.Error(removeErr))
		}
		return "", fmt.Errorf("save cache entry: %w", err)
	}

	return localPath, nil
}

// CacheKey is the file name used for a cached url.
func CacheKey(url string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(url)))
}

func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}

	d.closed = true

	if d.db != nil {
		if _, err := d.db.Exec("PRAGMA optimize"); err != nil {
			d.logger.Warn("failed to optimize database", zap.Error(err))
		}
		return d.db.Close()
	}

	return nil
}
