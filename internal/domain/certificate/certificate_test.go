package certificate

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    common.Address
		wantErr bool
	}{
		{
			name:  "checksummed",
			input: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
			want:  common.HexToAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"),
		},
		{
			name:  "surrounding whitespace",
			input: "  0x70997970C51812dc3A010C7d01b50e0d17dc79C8 ",
			want:  common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
		},
		{name: "too short", input: "0x1234", wantErr: true},
		{name: "not hex", input: "0xZZ9Fd6e51aad88F6F4ce6aB8827279cffFb92266", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAddress) {
					t.Errorf("ParseAddress() error = %v, want ErrInvalidAddress", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAddress() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseAddress() = %s, want %s", got.Hex(), tt.want.Hex())
			}
		})
	}
}

func TestValidateToken(t *testing.T) {
	if err := ValidateToken("Ab3dE5gH9k"); err != nil {
		t.Errorf("ValidateToken() error = %v", err)
	}
	for _, token := range []string{"", "   "} {
		if err := ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateToken(%q) error = %v, want ErrInvalidToken", token, err)
		}
	}
}
