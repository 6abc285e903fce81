package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fastpin/internal/fastpin"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
)

// SQLStore implements the fastpin.Store interface over database/sql.
// The same queries serve both supported dialects; the few statements that
// differ (insert-or-ignore) are selected by dialect.
type SQLStore struct {
	db      *sql.DB
	dialect string // "sqlite" or "mysql"
}

// NewSQLStore wraps an existing database connection. The schema must
// already be migrated; see the factory functions in this package.
func NewSQLStore(db *sql.DB, dialect string) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// OpenSQLite opens and configures a SQLite connection with appropriate
// PRAGMAs. path can be a file path or ":memory:" for an in-memory database.
func OpenSQLite(path string) (*sql.DB, error) {
	// Foreign keys go through the DSN so every pooled connection gets the
	// PRAGMA, not just the one a plain Exec would land on. Cascade deletes
	// on item_tags depend on it. (SQLite default is OFF for backward
	// compatibility.)
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection; cap the pool at one so
	// every statement sees the same schema and data.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

// OpenMySQL opens a MySQL connection from host/port/name/user/password.
func OpenMySQL(host string, port int, name, user, password string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		user, password, host, port, name)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

const itemColumns = `id, type, text_content, rich_text_content, image_data,
	image_width, image_height, file_path, file_name, cached_file_data,
	is_cached, file_size, source, source_application, created_at, modified_at`

// Item operations

func (s *SQLStore) InsertItem(ctx context.Context, item *fastpin.PinnedItem) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO items (type, text_content, rich_text_content, image_data,
			image_width, image_height, file_path, file_name, cached_file_data,
			is_cached, file_size, source, source_application, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Type.String(),
		nullString(item.TextContent),
		nullString(item.RichTextContent),
		item.ImageData,
		nullInt(int64(item.ImageWidth)),
		nullInt(int64(item.ImageHeight)),
		nullString(item.FilePath),
		nullString(item.FileName),
		item.CachedFileData,
		item.IsCached,
		nullInt(item.FileSize),
		item.Source.String(),
		nullString(item.SourceApplication),
		item.CreatedAt,
		item.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted item id: %w", err)
	}
	item.ID = id
	return nil
}

func (s *SQLStore) UpdateItem(ctx context.Context, item *fastpin.PinnedItem) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE items SET type = ?, text_content = ?, rich_text_content = ?,
			image_data = ?, image_width = ?, image_height = ?, file_path = ?,
			file_name = ?, cached_file_data = ?, is_cached = ?, file_size = ?,
			source = ?, source_application = ?, modified_at = ?
		WHERE id = ?`,
		item.Type.String(),
		nullString(item.TextContent),
		nullString(item.RichTextContent),
		item.ImageData,
		nullInt(int64(item.ImageWidth)),
		nullInt(int64(item.ImageHeight)),
		nullString(item.FilePath),
		nullString(item.FileName),
		item.CachedFileData,
		item.IsCached,
		nullInt(item.FileSize),
		item.Source.String(),
		nullString(item.SourceApplication),
		item.ModifiedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteItem(ctx context.Context, id int64) error {
	// item_tags rows cascade via the foreign key.
	if _, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

func (s *SQLStore) FindItem(ctx context.Context, id int64) (*fastpin.PinnedItem, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = ?", id)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding item: %w", err)
	}

	if err := s.loadItemTags(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *SQLStore) QueryItems(ctx context.Context, f fastpin.Filter) ([]*fastpin.PinnedItem, error) {
	var where []string
	var args []any

	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		where = append(where, `(
			LOWER(COALESCE(text_content, '')) LIKE ? ESCAPE '!'
			OR LOWER(COALESCE(file_name, '')) LIKE ? ESCAPE '!'
			OR EXISTS (
				SELECT 1 FROM item_tags it JOIN tags t ON t.id = it.tag_id
				WHERE it.item_id = items.id AND LOWER(t.name) LIKE ? ESCAPE '!'
			))`)
		args = append(args, pattern, pattern, pattern)
	}

	if f.Type != nil {
		where = append(where, "type = ?")
		args = append(args, f.Type.String())
	}

	if f.TagName != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM item_tags it JOIN tags t ON t.id = it.tag_id
			WHERE it.item_id = items.id AND t.name = ?
		)`)
		args = append(args, f.TagName)
	}

	if f.Day != nil {
		dayStart := time.Date(f.Day.Year(), f.Day.Month(), f.Day.Day(), 0, 0, 0, 0, f.Day.Location())
		where = append(where, "created_at >= ? AND created_at < ?")
		args = append(args, dayStart, dayStart.AddDate(0, 0, 1))
	}

	query := "SELECT " + itemColumns + " FROM items"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []*fastpin.PinnedItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}

	for _, item := range items {
		if err := s.loadItemTags(ctx, item); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// Tag operations

func (s *SQLStore) GetOrCreateTag(ctx context.Context, name string) (*fastpin.Tag, error) {
	// Insert-or-ignore against the name uniqueness constraint, then select.
	// Concurrent callers with the same name race only on the insert; the
	// constraint guarantees a single row either way. Never check-then-insert.
	var insert string
	switch s.dialect {
	case "mysql":
		insert = "INSERT IGNORE INTO tags (name) VALUES (?)"
	default:
		insert = "INSERT INTO tags (name) VALUES (?) ON CONFLICT(name) DO NOTHING"
	}

	if _, err := s.db.ExecContext(ctx, insert, name); err != nil {
		return nil, fmt.Errorf("upserting tag: %w", err)
	}

	tag, err := s.FindTagByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, fmt.Errorf("tag %q not found after upsert", name)
	}
	return tag, nil
}

func (s *SQLStore) FindTagByName(ctx context.Context, name string) (*fastpin.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, color, class FROM tags WHERE name = ?", name)

	tag, err := scanTag(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding tag by name: %w", err)
	}
	return tag, nil
}

func (s *SQLStore) DeleteTag(ctx context.Context, id int64) error {
	// item_tags rows cascade via the foreign key; other tags untouched.
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tags WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting tag: %w", err)
	}
	return nil
}

func (s *SQLStore) ListTags(ctx context.Context) ([]*fastpin.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, color, class FROM tags ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var tags []*fastpin.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return tags, nil
}

func (s *SQLStore) LinkItemTag(ctx context.Context, itemID, tagID int64) error {
	var insert string
	switch s.dialect {
	case "mysql":
		insert = "INSERT IGNORE INTO item_tags (item_id, tag_id) VALUES (?, ?)"
	default:
		insert = "INSERT INTO item_tags (item_id, tag_id) VALUES (?, ?) ON CONFLICT(item_id, tag_id) DO NOTHING"
	}
	if _, err := s.db.ExecContext(ctx, insert, itemID, tagID); err != nil {
		return fmt.Errorf("linking tag: %w", err)
	}
	return nil
}

func (s *SQLStore) UnlinkItemTag(ctx context.Context, itemID, tagID int64) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM item_tags WHERE item_id = ? AND tag_id = ?", itemID, tagID)
	if err != nil {
		return fmt.Errorf("unlinking tag: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// BackupTo creates a complete copy of the database at destPath using
// VACUUM INTO. SQLite only.
func (s *SQLStore) BackupTo(destPath string) error {
	if s.dialect != "sqlite" {
		return fmt.Errorf("backup is only supported for the sqlite backend")
	}
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// loadItemTags fills item.Tags with the linked tags, sorted by name.
func (s *SQLStore) loadItemTags(ctx context.Context, item *fastpin.PinnedItem) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.color, t.class
		FROM tags t JOIN item_tags it ON it.tag_id = t.id
		WHERE it.item_id = ?
		ORDER BY t.name`, item.ID)
	if err != nil {
		return fmt.Errorf("loading item tags: %w", err)
	}
	defer rows.Close()

	item.Tags = nil
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return fmt.Errorf("scanning item tag: %w", err)
		}
		item.Tags = append(item.Tags, tag)
	}
	return rows.Err()
}

// escapeLike escapes LIKE wildcards so search text matches them literally.
// '!' is the escape character declared in the queries above; backslash would
// need dialect-specific quoting inside the statement text.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(sc scanner) (*fastpin.PinnedItem, error) {
	var (
		item               fastpin.PinnedItem
		typ, source        string
		text, richText     sql.NullString
		width, height      sql.NullInt64
		filePath, fileName sql.NullString
		fileSize           sql.NullInt64
		sourceApp          sql.NullString
	)

	err := sc.Scan(
		&item.ID, &typ, &text, &richText, &item.ImageData,
		&width, &height, &filePath, &fileName, &item.CachedFileData,
		&item.IsCached, &fileSize, &source, &sourceApp,
		&item.CreatedAt, &item.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	parsed, ok := fastpin.ParseItemType(typ)
	if !ok {
		return nil, fmt.Errorf("unknown item type %q", typ)
	}
	item.Type = parsed

	switch source {
	case "clipboard":
		item.Source = fastpin.SourceClipboard
	case "manual":
		item.Source = fastpin.SourceManual
	default:
		item.Source = fastpin.SourceUnknown
	}

	item.TextContent = text.String
	item.RichTextContent = richText.String
	item.ImageWidth = int(width.Int64)
	item.ImageHeight = int(height.Int64)
	item.FilePath = filePath.String
	item.FileName = fileName.String
	item.FileSize = fileSize.Int64
	item.SourceApplication = sourceApp.String

	return &item, nil
}

func scanTag(sc scanner) (*fastpin.Tag, error) {
	var (
		tag          fastpin.Tag
		color, class sql.NullString
	)
	if err := sc.Scan(&tag.ID, &tag.Name, &color, &class); err != nil {
		return nil, err
	}
	tag.Color = color.String
	tag.Class = class.String
	return &tag, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}

// Compile-time check that SQLStore implements fastpin.Store
var _ fastpin.Store = (*SQLStore)(nil)
