package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// timeFormat is fixed-width so created_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000Z"

// Repository persists and queries audit entries.
type Repository interface {
	Record(ctx context.Context, e *Entry) error
	List(ctx context.Context, f Filter) (*Page, error)
}

// SQLiteRepository implements Repository on the audit_logs table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new audit repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record inserts e, filling ID and CreatedAt when empty.
func (r *SQLiteRepository) Record(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = "aud-" + uuid.NewString()[:8]
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var details *string
	if len(e.Details) > 0 {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("marshalling audit details: %w", err)
		}
		s := string(b)
		details = &s
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, action, entity_type, entity_id, account_id, source, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Action, e.EntityType,
		nullable(e.EntityID), nullable(e.AccountID),
		e.Source, details,
		e.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

// nullable maps "" to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// List returns entries matching f, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, f Filter) (*Page, error) {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var conditions []string
	var args []any
	if f.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, f.Action)
	}
	if f.AccountID != "" {
		conditions = append(conditions, "account_id = ?")
		args = append(args, f.AccountID)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM audit_logs " + where //nolint:gosec // parameterised conditions only
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting audit entries: %w", err)
	}

	query := "SELECT id, action, entity_type, entity_id, account_id, source, details, created_at FROM audit_logs " + //nolint:gosec // parameterised conditions only
		where + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}

	return &Page{Entries: entries, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var e Entry
	var entityID, accountID, details sql.NullString
	var createdAt string

	if err := rows.Scan(&e.ID, &e.Action, &e.EntityType,
		&entityID, &accountID, &e.Source, &details, &createdAt); err != nil {
		return e, fmt.Errorf("scanning audit entry: %w", err)
	}

	e.EntityID = entityID.String
	e.AccountID = accountID.String
	if details.Valid && details.String != "" {
		if err := json.Unmarshal([]byte(details.String), &e.Details); err != nil {
			return e, fmt.Errorf("decoding audit details %s: %w", e.ID, err)
		}
	}

	t, err := time.Parse(timeFormat, createdAt)
	if err != nil {
		return e, fmt.Errorf("parsing audit timestamp %q: %w", createdAt, err)
	}
	e.CreatedAt = t
	return e, nil
}
