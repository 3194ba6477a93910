package http

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	certservice "ecert/internal/application/certificate"
	"ecert/internal/domain/network"
	"ecert/internal/domain/transaction"
)

func ToHTTPTransaction(t *transaction.Transaction) *Transaction {
	if t == nil {
		return nil
	}
	return &Transaction{
		ID:          t.ID,
		Hash:        t.Hash,
		Method:      t.Method,
		MethodSig:   t.MethodSig,
		Argument:    t.Argument,
		From:        t.From,
		Status:      string(t.Status),
		BlockNumber: t.BlockNumber,
		CreatedAt:   t.CreatedAt,
		ConfirmedAt: t.ConfirmedAt,
	}
}

func ToHTTPTransactions(transactions []transaction.Transaction) []Transaction {
	result := make([]Transaction, len(transactions))
	for i, t := range transactions {
		result[i] = *ToHTTPTransaction(&t)
	}
	return result
}

func ToHTTPTransactionPage(r *transaction.TransactionResult) PaginatedResponse {
	return PaginatedResponse{
		Data:       ToHTTPTransactions(r.Transactions),
		Page:       r.Page,
		PageSize:   r.PageSize,
		Total:      r.Total,
		TotalPages: r.TotalPages,
	}
}

func ToHTTPReceipt(r *types.Receipt) *Receipt {
	if r == nil {
		return nil
	}
	status := string(transaction.TransactionStatusFailed)
	if r.Status == types.ReceiptStatusSuccessful {
		status = string(transaction.TransactionStatusSuccess)
	}
	receipt := &Receipt{
		TransactionHash: r.TxHash.Hex(),
		GasUsed:         r.GasUsed,
		Status:          status,
	}
	if r.BlockNumber != nil {
		receipt.BlockNumber = r.BlockNumber.Uint64()
	}
	return receipt
}

func ToHTTPNetwork(d network.Descriptor) *Network {
	n := &Network{
		ChainName:      d.ChainName,
		NativeCurrency: d.NativeCurrency,
		RPCURLs:        d.RPCURLs,
	}
	if d.ChainID != nil {
		n.ChainID = d.ChainID.String()
	}
	return n
}

// ToHTTPStatus renders a status snapshot. signer is the zero address when no
// signing key is configured.
func ToHTTPStatus(s *certservice.Status, contract, signer common.Address, target network.Descriptor) *Status {
	if s == nil {
		return nil
	}
	status := &Status{
		BlockNumber: s.BlockNumber,
		Owner:       s.Owner.Hex(),
		Contract:    contract.Hex(),
		Target:      ToHTTPNetwork(target),
	}
	if s.ChainID != nil {
		status.ChainID = hexutil.EncodeBig(s.ChainID)
	}
	if signer != (common.Address{}) {
		status.Signer = signer.Hex()
	}
	return status
}
