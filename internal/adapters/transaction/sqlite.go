package transaction

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ecert/internal/domain/transaction"
)

//go:embed schema.sql
var schema string

// timeLayout is fixed width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the journal database at dbPath and creates the
// schema when missing.
func NewSQLiteRepository(ctx context.Context, dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// :memory: databases are per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// Migrate applies the journal schema. It is idempotent.
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, hash, method, method_sig, argument, from_address, status, block_number, created_at, confirmed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.Hash,
		tx.Method,
		tx.MethodSig,
		tx.Argument,
		tx.From,
		string(tx.Status),
		tx.BlockNumber,
		tx.CreatedAt.UTC().Format(timeLayout),
		formatNullableTime(tx.ConfirmedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// Update stores the status, block number and confirmation time of the entry
// with the same hash.
func (r *SQLiteRepository) Update(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET status = ?, block_number = ?, confirmed_at = ?
		WHERE hash = ?
	`

	res, err := r.db.ExecContext(ctx, query,
		string(tx.Status),
		tx.BlockNumber,
		formatNullableTime(tx.ConfirmedAt),
		strings.ToLower(tx.Hash),
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: hash=%s", transaction.ErrTransactionNotFound, tx.Hash)
	}

	return nil
}

func (r *SQLiteRepository) GetByHash(ctx context.Context, hash string) (*transaction.Transaction, error) {
	query := `
		SELECT id, hash, method, method_sig, argument, from_address, status, block_number, created_at, confirmed_at
		FROM transactions
		WHERE hash = ?
	`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, strings.ToLower(hash)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: hash=%s", transaction.ErrTransactionNotFound, hash)
		}
		return nil, fmt.Errorf("failed to get transaction by hash: %w", err)
	}

	return tx, nil
}

// List returns journal entries newest first, filtered and paginated by opts.
func (r *SQLiteRepository) List(ctx context.Context, opts transaction.FilterOptions) (*transaction.TransactionResult, error) {
	opts = opts.Normalize()

	var (
		where []string
		args  []any
	)
	if opts.Method != nil {
		where = append(where, "method = ?")
		args = append(args, *opts.Method)
	}
	if opts.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*opts.Status))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions"+clause, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := `
		SELECT id, hash, method, method_sig, argument, from_address, status, block_number, created_at, confirmed_at
		FROM transactions` + clause + `
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	pageArgs := append(append([]any{}, args...), opts.PageSize, (opts.Page-1)*opts.PageSize)

	rows, err := r.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]transaction.Transaction, 0, opts.PageSize)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	totalPages := (total + opts.PageSize - 1) / opts.PageSize

	return &transaction.TransactionResult{
		Transactions: txs,
		Total:        total,
		Page:         opts.Page,
		PageSize:     opts.PageSize,
		TotalPages:   totalPages,
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var (
		tx          transaction.Transaction
		status      string
		createdAt   string
		confirmedAt sql.NullString
	)

	err := s.Scan(
		&tx.ID,
		&tx.Hash,
		&tx.Method,
		&tx.MethodSig,
		&tx.Argument,
		&tx.From,
		&status,
		&tx.BlockNumber,
		&createdAt,
		&confirmedAt,
	)
	if err != nil {
		return nil, err
	}
	tx.Status = transaction.TransactionStatus(status)

	tx.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	if confirmedAt.Valid {
		at, err := parseTime(confirmedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse confirmed_at: %w", err)
		}
		tx.ConfirmedAt = &at
	}

	return &tx, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		// Try parsing as datetime format if RFC3339 fails
		t, err = time.Parse("2006-01-02 15:04:05", s)
	}
	return t, err
}

func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}
