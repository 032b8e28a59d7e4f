package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// AccountRepository defines the interface for account persistence.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetActive(ctx context.Context, id string, active bool) error
	Count(ctx context.Context) (int, error)
}

// SQLiteAccountRepository implements AccountRepository on the accounts table.
type SQLiteAccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a SQLite-backed account repository.
func NewAccountRepository(db *sql.DB) *SQLiteAccountRepository {
	return &SQLiteAccountRepository{db: db}
}

const accountColumns = "id, email, display_name, password_hash, is_active, created_at, updated_at"

// Create inserts account, assigning an ID when empty. The email is
// normalised before storage.
func (r *SQLiteAccountRepository) Create(ctx context.Context, account *Account) error {
	email, err := NormalizeEmail(account.Email)
	if err != nil {
		return err
	}
	account.Email = email

	if account.ID == "" {
		account.ID = "acc-" + uuid.NewString()[:8]
	}
	now := time.Now().UTC().Truncate(time.Second)
	account.CreatedAt, account.UpdatedAt = now, now

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		account.ID, account.Email, account.DisplayName, account.PasswordHash,
		boolToInt(account.IsActive), now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("creating account: %w", err)
	}
	return nil
}

// GetByID returns the account with id or ErrAccountNotFound.
func (r *SQLiteAccountRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = ?", id))
}

// GetByEmail looks an account up by address, case-insensitively.
func (r *SQLiteAccountRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	return scanAccount(r.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE email = ?", normalized))
}

// UpdatePassword replaces the stored hash.
func (r *SQLiteAccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.update(ctx, "password_hash = ?", passwordHash, id)
}

// SetActive enables or disables an account.
func (r *SQLiteAccountRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.update(ctx, "is_active = ?", boolToInt(active), id)
}

func (r *SQLiteAccountRepository) update(ctx context.Context, set string, value any, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET "+set+", updated_at = ? WHERE id = ?", //nolint:gosec // set is a constant from this file
		value, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}

	n, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// Count returns the number of accounts.
func (r *SQLiteAccountRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}
	return n, nil
}

func scanAccount(row *sql.Row) (*Account, error) {
	var a Account
	var active int
	var createdAt, updatedAt string

	err := row.Scan(&a.ID, &a.Email, &a.DisplayName, &a.PasswordHash, &active, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning account: %w", err)
	}

	a.IsActive = active != 0
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled
	return &a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}
