package transaction

import (
	"testing"
	"time"
)

func TestTransaction_ExtractMethodSignature(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "selector with arguments",
			input:    []byte{0xa9, 0x05, 0x9c, 0xbb, 0x00, 0x01},
			expected: "0xa9059cbb",
		},
		{
			name:     "selector only",
			input:    []byte{0x98, 0x3b, 0x2d, 0x56},
			expected: "0x983b2d56",
		},
		{
			name:     "short input",
			input:    []byte{0x12, 0x34},
			expected: "",
		},
		{
			name:     "empty input",
			input:    nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{}
			result := tx.ExtractMethodSignature(tt.input)
			if result != tt.expected {
				t.Errorf("ExtractMethodSignature() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestNewTransaction(t *testing.T) {
	tx := NewTransaction("0xABCDEF", "addMinter", "0x1111", "0xAAAA", []byte{0x98, 0x3b, 0x2d, 0x56, 0x00})

	if tx.ID == "" {
		t.Error("NewTransaction() ID should not be empty")
	}
	if tx.Hash != "0xabcdef" {
		t.Errorf("NewTransaction() Hash = %v, want lowercase", tx.Hash)
	}
	if tx.From != "0xaaaa" {
		t.Errorf("NewTransaction() From = %v, want lowercase", tx.From)
	}
	if tx.Status != TransactionStatusPending {
		t.Errorf("NewTransaction() Status = %v, want pending", tx.Status)
	}
	if tx.MethodSig != "0x983b2d56" {
		t.Errorf("NewTransaction() MethodSig = %v", tx.MethodSig)
	}
	if tx.ConfirmedAt != nil {
		t.Error("NewTransaction() ConfirmedAt should be nil")
	}
}

func TestTransaction_Confirm(t *testing.T) {
	tests := []struct {
		name       string
		success    bool
		wantStatus TransactionStatus
	}{
		{name: "mined successfully", success: true, wantStatus: TransactionStatusSuccess},
		{name: "reverted", success: false, wantStatus: TransactionStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := NewTransaction("0x01", "burnCertificate", "AbCdEfGhIj", "0x02", nil)
			at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
			tx.Confirm(tt.success, 42, at)

			if tx.Status != tt.wantStatus {
				t.Errorf("Confirm() Status = %v, want %v", tx.Status, tt.wantStatus)
			}
			if tx.BlockNumber != 42 {
				t.Errorf("Confirm() BlockNumber = %d, want 42", tx.BlockNumber)
			}
			if tx.ConfirmedAt == nil || !tx.ConfirmedAt.Equal(at) || tx.ConfirmedAt.Location() != time.UTC {
				t.Errorf("Confirm() ConfirmedAt = %v, want %v in UTC", tx.ConfirmedAt, at)
			}
		})
	}
}

func TestFilterOptions_Normalize(t *testing.T) {
	tests := []struct {
		name         string
		opts         FilterOptions
		wantPage     int
		wantPageSize int
	}{
		{name: "defaults", opts: FilterOptions{}, wantPage: 1, wantPageSize: 20},
		{name: "keeps values", opts: FilterOptions{Page: 3, PageSize: 50}, wantPage: 3, wantPageSize: 50},
		{name: "caps page size", opts: FilterOptions{Page: 1, PageSize: 1000}, wantPage: 1, wantPageSize: 100},
		{name: "negative page", opts: FilterOptions{Page: -2, PageSize: 5}, wantPage: 1, wantPageSize: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.opts.Normalize()
			if got.Page != tt.wantPage || got.PageSize != tt.wantPageSize {
				t.Errorf("Normalize() = (%d, %d), want (%d, %d)", got.Page, got.PageSize, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}

func TestTransactionStatus_Valid(t *testing.T) {
	for _, s := range []TransactionStatus{TransactionStatusPending, TransactionStatusSuccess, TransactionStatusFailed} {
		if !s.Valid() {
			t.Errorf("Valid(%q) = false, want true", s)
		}
	}
	if TransactionStatus("mined").Valid() {
		t.Error("Valid(\"mined\") = true, want false")
	}
}
