package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dhashe/vidsteps/internal/domain/entity"
)

type StepRepository struct {
	db *sql.DB
}

func NewStepRepository(dbPath string) (*StepRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := &StepRepository{db: db}
	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return repo, nil
}

func (r *StepRepository) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS video_timestamps (
		path TEXT PRIMARY KEY,
		timestamps BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS play_history (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		mode TEXT NOT NULL,
		steps_count INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		ended_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_play_history_path ON play_history(path);
	`
	_, err := r.db.Exec(schema)
	return err
}

func (r *StepRepository) SaveSteps(ctx context.Context, videoPath string, steps entity.StepList) error {
	data, err := json.Marshal(steps.Timestamps)
	if err != nil {
		return fmt.Errorf("marshal timestamps: %w", err)
	}

	query := `
		INSERT INTO video_timestamps (path, timestamps) VALUES (?, ?)
		ON CONFLICT (path) DO UPDATE SET timestamps = excluded.timestamps`

	if _, err := r.db.ExecContext(ctx, query, videoPath, data); err != nil {
		return fmt.Errorf("save steps: %w", err)
	}
	return nil
}

// LoadSteps returns the stored step list for the video, or an empty list when
// the video has never been recorded.
func (r *StepRepository) LoadSteps(ctx context.Context, videoPath string) (entity.StepList, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT timestamps FROM video_timestamps WHERE path = ?`, videoPath,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return entity.StepList{}, nil
	}
	if err != nil {
		return entity.StepList{}, fmt.Errorf("load steps: %w", err)
	}

	var timestamps []float64
	if err := json.Unmarshal(data, &timestamps); err != nil {
		return entity.StepList{}, fmt.Errorf("unmarshal timestamps: %w", err)
	}
	return entity.NewStepList(timestamps), nil
}

func (r *StepRepository) DeleteSteps(ctx context.Context, videoPath string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM video_timestamps WHERE path = ?`, videoPath,
	); err != nil {
		return fmt.Errorf("delete steps: %w", err)
	}
	return nil
}

func (r *StepRepository) ListVideos(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT path FROM video_timestamps ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (r *StepRepository) SaveHistory(ctx context.Context, rec entity.HistoryRecord) error {
	query := `
		INSERT INTO play_history (id, path, mode, steps_count, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query,
		rec.ID.String(), rec.VideoPath, string(rec.Mode),
		rec.StepCount, rec.StartedAt, rec.EndedAt,
	); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (r *StepRepository) Stats(ctx context.Context) (*entity.PlayStats, error) {
	stats := &entity.PlayStats{}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN mode = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN mode = ? THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(steps_count), 0)
		FROM play_history`,
		string(entity.ModeRecording), string(entity.ModePlaying),
	).Scan(&stats.TotalSessions, &stats.Recordings, &stats.Playbacks, &stats.AverageSteps)
	if err != nil {
		return nil, fmt.Errorf("query history stats: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM video_timestamps`,
	).Scan(&stats.VideosTracked)
	if err != nil {
		return nil, fmt.Errorf("count videos: %w", err)
	}

	return stats, nil
}

func (r *StepRepository) Close() error {
	return r.db.Close()
}
