package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codedError struct {
	code int
	msg  string
}

func (e *codedError) Error() string  { return e.msg }
func (e *codedError) ErrorCode() int { return e.code }

func TestLocalDescriptor_JSON(t *testing.T) {
	raw, err := json.Marshal(LocalDescriptor())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"chainId": "0x539",
		"chainName": "Hardhat Local",
		"nativeCurrency": {"name": "Ether", "symbol": "ETH", "decimals": 18},
		"rpcUrls": ["http://127.0.0.1:8545"]
	}`, string(raw))
}

func TestDescriptor_Switch(t *testing.T) {
	raw, err := json.Marshal(LocalDescriptor().Switch())
	require.NoError(t, err)
	assert.JSONEq(t, `{"chainId": "0x539"}`, string(raw))
}

func TestDescriptor_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Descriptor)
		wantErr bool
	}{
		{name: "local descriptor", mutate: func(d *Descriptor) {}},
		{name: "missing chain id", mutate: func(d *Descriptor) { d.ChainID = nil }, wantErr: true},
		{name: "zero chain id", mutate: func(d *Descriptor) { d.ChainID = (*hexutil.Big)(big.NewInt(0)) }, wantErr: true},
		{name: "missing name", mutate: func(d *Descriptor) { d.ChainName = "" }, wantErr: true},
		{name: "no rpc urls", mutate: func(d *Descriptor) { d.RPCURLs = nil }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := LocalDescriptor()
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDescriptor)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	unrecognized := &codedError{code: CodeChainUnrecognized, msg: "Unrecognized chain ID"}
	rejected := &codedError{code: 4001, msg: "User rejected the request"}
	plain := errors.New("connection refused")

	tests := []struct {
		name     string
		err      error
		wantKind ErrorKind
	}{
		{name: "unrecognized chain", err: unrecognized, wantKind: KindChainUnrecognized},
		{name: "wrapped unrecognized chain", err: fmt.Errorf("call: %w", unrecognized), wantKind: KindChainUnrecognized},
		{name: "user rejection", err: rejected, wantKind: KindOther},
		{name: "transport error", err: plain, wantKind: KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(MethodSwitchChain, tt.err)

			var chainErr *ChainError
			require.ErrorAs(t, err, &chainErr)
			assert.Equal(t, tt.wantKind, chainErr.Kind)
			assert.Equal(t, MethodSwitchChain, chainErr.Method)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.wantKind == KindChainUnrecognized, IsChainUnrecognized(err))
		})
	}
}

func TestClassify_NilAndIdempotent(t *testing.T) {
	assert.NoError(t, Classify(MethodChainID, nil))

	first := Classify(MethodSwitchChain, &codedError{code: CodeChainUnrecognized})
	second := Classify(MethodAddChain, first)
	assert.Same(t, first, second)
}
