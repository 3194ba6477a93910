// Package contractinfo is the source of truth for the deployed certificate
// contract: its address on the local chain and its ABI.
package contractinfo

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Address is where the certificate contract lands when it is the first
// deployment from the default Hardhat account.
const Address = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

// ABIJSON is the contract interface as emitted by the compiler.
//
//go:embed abi.json
var ABIJSON string

var (
	parseOnce sync.Once
	parsed    abi.ABI
	parseErr  error
)

// ABI returns the parsed contract interface.
func ABI() (abi.ABI, error) {
	parseOnce.Do(func() {
		parsed, parseErr = abi.JSON(strings.NewReader(ABIJSON))
		if parseErr != nil {
			parseErr = fmt.Errorf("contractinfo: parse abi: %w", parseErr)
		}
	})
	return parsed, parseErr
}

// DefaultAddress returns Address as a common.Address.
func DefaultAddress() common.Address {
	return common.HexToAddress(Address)
}
