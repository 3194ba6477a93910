package transaction

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"ecert/internal/domain/transaction"
)

// setupTestDB creates an in-memory journal for testing
func setupTestDB(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := NewSQLiteRepository(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

func newEntry(hash, method string, createdAt time.Time) *transaction.Transaction {
	tx := transaction.NewTransaction(hash, method, "arg-"+method, "0xF39FD6E51AAD88F6F4CE6AB8827279CFFFB92266", []byte{0xde, 0xad, 0xbe, 0xef, 0x00})
	tx.CreatedAt = createdAt
	return tx
}

func TestSQLiteRepository_CreateAndGetByHash(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)
	tx := newEntry("0xABCDEF", "burnCertificate", created)

	if err := repo.Create(ctx, tx); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByHash(ctx, "0xAbCdEf")
	if err != nil {
		t.Fatalf("GetByHash() error = %v", err)
	}

	if got.ID != tx.ID {
		t.Errorf("ID = %s, want %s", got.ID, tx.ID)
	}
	if got.Hash != "0xabcdef" {
		t.Errorf("Hash = %s, want 0xabcdef", got.Hash)
	}
	if got.Method != "burnCertificate" || got.Argument != "arg-burnCertificate" {
		t.Errorf("Method/Argument = %s/%s", got.Method, got.Argument)
	}
	if got.MethodSig != "0xdeadbeef" {
		t.Errorf("MethodSig = %s, want 0xdeadbeef", got.MethodSig)
	}
	if got.From != "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266" {
		t.Errorf("From = %s", got.From)
	}
	if got.Status != transaction.TransactionStatusPending {
		t.Errorf("Status = %s, want pending", got.Status)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	if got.ConfirmedAt != nil {
		t.Errorf("ConfirmedAt = %v, want nil", got.ConfirmedAt)
	}
}

func TestSQLiteRepository_CreateDuplicateHash(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	if err := repo.Create(ctx, newEntry("0x01", "addMinter", time.Now())); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(ctx, newEntry("0x01", "addMinter", time.Now())); err == nil {
		t.Error("Create() with duplicate hash should fail")
	}
}

func TestSQLiteRepository_GetByHash_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetByHash(context.Background(), "0xmissing")
	if !errors.Is(err, transaction.ErrTransactionNotFound) {
		t.Errorf("GetByHash() error = %v, want ErrTransactionNotFound", err)
	}
}

func TestSQLiteRepository_Update(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	tx := newEntry("0x02", "removeMinter", time.Now())
	if err := repo.Create(ctx, tx); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	confirmed := time.Date(2024, 3, 1, 12, 0, 5, 0, time.UTC)
	tx.Confirm(false, 42, confirmed)
	if err := repo.Update(ctx, tx); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByHash(ctx, "0x02")
	if err != nil {
		t.Fatalf("GetByHash() error = %v", err)
	}
	if got.Status != transaction.TransactionStatusFailed {
		t.Errorf("Status = %s, want failed", got.Status)
	}
	if got.BlockNumber != 42 {
		t.Errorf("BlockNumber = %d, want 42", got.BlockNumber)
	}
	if got.ConfirmedAt == nil || !got.ConfirmedAt.Equal(confirmed) {
		t.Errorf("ConfirmedAt = %v, want %v", got.ConfirmedAt, confirmed)
	}
}

func TestSQLiteRepository_Update_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	tx := newEntry("0x03", "addMinter", time.Now())
	err := repo.Update(context.Background(), tx)
	if !errors.Is(err, transaction.ErrTransactionNotFound) {
		t.Errorf("Update() error = %v, want ErrTransactionNotFound", err)
	}
}

func TestSQLiteRepository_List(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	methods := []string{"burnCertificate", "addMinter", "burnCertificate", "removeMinter", "burnCertificate"}
	for i, m := range methods {
		tx := newEntry("0x1"+string(rune('0'+i)), m, base.Add(time.Duration(i)*time.Second))
		if i == 0 {
			tx.Confirm(true, 1, base)
		}
		if err := repo.Create(ctx, tx); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	burn := "burnCertificate"
	success := transaction.TransactionStatusSuccess

	tests := []struct {
		name       string
		opts       transaction.FilterOptions
		wantHashes []string
		wantTotal  int
		wantPages  int
	}{
		{
			name:       "all newest first",
			opts:       transaction.FilterOptions{},
			wantHashes: []string{"0x14", "0x13", "0x12", "0x11", "0x10"},
			wantTotal:  5,
			wantPages:  1,
		},
		{
			name:       "by method",
			opts:       transaction.FilterOptions{Method: &burn},
			wantHashes: []string{"0x14", "0x12", "0x10"},
			wantTotal:  3,
			wantPages:  1,
		},
		{
			name:       "by status",
			opts:       transaction.FilterOptions{Status: &success},
			wantHashes: []string{"0x10"},
			wantTotal:  1,
			wantPages:  1,
		},
		{
			name:       "second page",
			opts:       transaction.FilterOptions{Page: 2, PageSize: 2},
			wantHashes: []string{"0x12", "0x11"},
			wantTotal:  5,
			wantPages:  3,
		},
		{
			name:       "page past the end",
			opts:       transaction.FilterOptions{Page: 9, PageSize: 2},
			wantHashes: []string{},
			wantTotal:  5,
			wantPages:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.List(ctx, tt.opts)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if result.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", result.Total, tt.wantTotal)
			}
			if result.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantPages)
			}
			if len(result.Transactions) != len(tt.wantHashes) {
				t.Fatalf("got %d transactions, want %d", len(result.Transactions), len(tt.wantHashes))
			}
			for i, want := range tt.wantHashes {
				if got := result.Transactions[i].Hash; got != want {
					t.Errorf("Transactions[%d].Hash = %s, want %s", i, got, want)
				}
			}
		})
	}
}

func TestSQLiteRepository_FileDatabase(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	repo, err := NewSQLiteRepository(ctx, dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	if err := repo.Create(ctx, newEntry("0xfeed", "addMinter", time.Now())); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	repo.Close()

	reopened, err := NewSQLiteRepository(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	if err := reopened.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if _, err := reopened.GetByHash(ctx, "0xfeed"); err != nil {
		t.Errorf("GetByHash() after reopen error = %v", err)
	}
}
