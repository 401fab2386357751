package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/storycrawl/internal/model"
)

// FileName is the database file created inside the database directory.
const FileName = "storycrawl.db"

// timestampLayout is how timestamps are written. It sorts lexically.
const timestampLayout = "2006-01-02 15:04:05.000"

// CrawlDB stores story crawls.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the CrawlDB inside dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create the file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per story per run
	CREATE TABLE IF NOT EXISTS story_crawls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		story_id TEXT NOT NULL,
		title TEXT,
		mode TEXT NOT NULL,
		depth INTEGER NOT NULL,
		walks INTEGER DEFAULT 0,
		actions INTEGER NOT NULL,
		branches INTEGER NOT NULL,
		endings INTEGER NOT NULL,
		digest TEXT NOT NULL,
		tree_json TEXT NOT NULL,
		run_id TEXT,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_story_crawls_story ON story_crawls(story_id);
	CREATE INDEX IF NOT EXISTS idx_story_crawls_run ON story_crawls(run_id);
	CREATE INDEX IF NOT EXISTS idx_story_crawls_timestamp ON story_crawls(timestamp);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// StoryCrawl is one stored crawl of a story.
type StoryCrawl struct {
	// ID is the row id, set by SaveStoryCrawl.
	ID int64

	StoryID string
	Title   string

	// Mode is "crawl" or "random".
	Mode string

	// Depth is the depth limit the crawl ran with; negative is unlimited.
	Depth int

	// Walks is the number of random walks. Zero for exhaustive crawls.
	Walks int

	Stats model.Stats

	// Digest is model.Digest of the tree.
	Digest string

	// RunID groups the stories crawled by one invocation.
	RunID string

	// Timestamp is when the crawl finished. Zero means now.
	Timestamp time.Time

	// Root is the crawled tree. Metadata queries leave it nil.
	Root *model.Node
}

// SaveStoryCrawl inserts a crawl and returns its row id.
func (cdb *CrawlDB) SaveStoryCrawl(ctx context.Context, crawl *StoryCrawl) (int64, error) {
	if crawl.Root == nil {
		return 0, fmt.Errorf("story %s has no tree", crawl.StoryID)
	}
	treeJSON, err := json.Marshal(crawl.Root)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize tree: %w", err)
	}

	ts := crawl.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query := `
	INSERT INTO story_crawls (story_id, title, mode, depth, walks, actions, branches, endings, digest, tree_json, run_id, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := cdb.db.ExecContext(ctx, query,
		crawl.StoryID,
		crawl.Title,
		crawl.Mode,
		crawl.Depth,
		crawl.Walks,
		crawl.Stats.Actions,
		crawl.Stats.Branches,
		crawl.Stats.Endings,
		crawl.Digest,
		string(treeJSON),
		crawl.RunID,
		ts.UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save story crawl: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read story crawl id: %w", err)
	}
	crawl.ID = id
	return id, nil
}

const crawlColumns = `id, story_id, title, mode, depth, walks, actions, branches, endings, digest, run_id, timestamp`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCrawl reads crawlColumns, optionally followed by tree_json.
func scanCrawl(row rowScanner, withTree bool) (*StoryCrawl, error) {
	var (
		crawl     StoryCrawl
		title     sql.NullString
		runID     sql.NullString
		timestamp string
		treeJSON  string
	)
	dest := []any{
		&crawl.ID,
		&crawl.StoryID,
		&title,
		&crawl.Mode,
		&crawl.Depth,
		&crawl.Walks,
		&crawl.Stats.Actions,
		&crawl.Stats.Branches,
		&crawl.Stats.Endings,
		&crawl.Digest,
		&runID,
		&timestamp,
	}
	if withTree {
		dest = append(dest, &treeJSON)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	crawl.Title = title.String
	crawl.RunID = runID.String
	crawl.Timestamp = parseTimestamp(timestamp)

	if withTree {
		var root model.Node
		if err := json.Unmarshal([]byte(treeJSON), &root); err != nil {
			return nil, fmt.Errorf("failed to parse tree of crawl %d: %w", crawl.ID, err)
		}
		crawl.Root = &root
	}
	return &crawl, nil
}

// GetLatestStoryCrawl returns the most recent crawl of a story, or nil when
// the story was never crawled.
func (cdb *CrawlDB) GetLatestStoryCrawl(ctx context.Context, storyID string) (*StoryCrawl, error) {
	query := `SELECT ` + crawlColumns + `, tree_json
	FROM story_crawls
	WHERE story_id = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	crawl, err := scanCrawl(cdb.db.QueryRowContext(ctx, query, storyID), true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get story crawl: %w", err)
	}
	return crawl, nil
}

// GetStoryCrawlByID retrieves a crawl by its row id, or nil when there is
// no such row.
func (cdb *CrawlDB) GetStoryCrawlByID(ctx context.Context, id int64) (*StoryCrawl, error) {
	query := `SELECT ` + crawlColumns + `, tree_json
	FROM story_crawls
	WHERE id = ?
	`

	crawl, err := scanCrawl(cdb.db.QueryRowContext(ctx, query, id), true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get story crawl: %w", err)
	}
	return crawl, nil
}

// GetStoryHistory returns every crawl of a story, newest first.
func (cdb *CrawlDB) GetStoryHistory(ctx context.Context, storyID string) ([]*StoryCrawl, error) {
	return cdb.history(ctx, storyID, true)
}

// GetStoryHistoryWithMetadata is GetStoryHistory without the trees.
func (cdb *CrawlDB) GetStoryHistoryWithMetadata(ctx context.Context, storyID string) ([]*StoryCrawl, error) {
	return cdb.history(ctx, storyID, false)
}

func (cdb *CrawlDB) history(ctx context.Context, storyID string, withTree bool) ([]*StoryCrawl, error) {
	columns := crawlColumns
	if withTree {
		columns += ", tree_json"
	}
	query := `SELECT ` + columns + `
	FROM story_crawls
	WHERE story_id = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := cdb.db.QueryContext(ctx, query, storyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get story history: %w", err)
	}
	defer rows.Close()

	var crawls []*StoryCrawl
	for rows.Next() {
		crawl, err := scanCrawl(rows, withTree)
		if err != nil {
			return nil, fmt.Errorf("failed to scan story crawl: %w", err)
		}
		crawls = append(crawls, crawl)
	}
	return crawls, rows.Err()
}

// ListStories returns the ids of all crawled stories.
func (cdb *CrawlDB) ListStories(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT story_id FROM story_crawls
	ORDER BY story_id
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	defer rows.Close()

	var stories []string
	for rows.Next() {
		var story string
		if err := rows.Scan(&story); err != nil {
			return nil, fmt.Errorf("failed to scan story: %w", err)
		}
		stories = append(stories, story)
	}
	return stories, rows.Err()
}

// GetRun returns the crawls recorded by one run, in insertion order,
// without their trees.
func (cdb *CrawlDB) GetRun(ctx context.Context, runID string) ([]*StoryCrawl, error) {
	query := `SELECT ` + crawlColumns + `
	FROM story_crawls
	WHERE run_id = ?
	ORDER BY id
	`

	rows, err := cdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	var crawls []*StoryCrawl
	for rows.Next() {
		crawl, err := scanCrawl(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan story crawl: %w", err)
		}
		crawls = append(crawls, crawl)
	}
	return crawls, rows.Err()
}

// HasRecentCrawl reports whether the story was crawled within d.
func (cdb *CrawlDB) HasRecentCrawl(ctx context.Context, storyID string, d time.Duration) (bool, error) {
	query := `
	SELECT COUNT(*) FROM story_crawls
	WHERE story_id = ? AND timestamp > ?
	`

	since := time.Now().Add(-d).UTC().Format(timestampLayout)

	var count int
	if err := cdb.db.QueryRowContext(ctx, query, storyID, since).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check recent crawl: %w", err)
	}
	return count > 0, nil
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02 15:04:05",  // SQLite default datetime format
	"2006-01-02T15:04:05Z", // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",  // ISO 8601 without timezone
	time.RFC3339,
	time.RFC3339Nano,
}

// parseTimestamp parses a stored timestamp as UTC. It returns the zero time
// when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
