package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	loggeradapter "ecert/internal/adapters/logger"
	"ecert/internal/adapters/wallet"
	"ecert/internal/application/ratelimiter"
	"ecert/internal/domain/certificate"
	"ecert/internal/domain/network"
	"ecert/internal/domain/transaction"
	httpports "ecert/internal/ports/http"
)

// HandlerAdapter adapts domain services to HTTP handlers
type HandlerAdapter struct {
	certificateService httpports.CertificateService
	networkService     httpports.NetworkService
	transactionService httpports.TransactionService
	chain              httpports.Chain
	contract           common.Address
	generateToken      func() string
	events             http.Handler
	logger             *loggeradapter.Logger
}

// NewHandlerAdapter creates a new handler adapter. events may be nil, in
// which case /ws/events is not served.
func NewHandlerAdapter(
	certificateService httpports.CertificateService,
	networkService httpports.NetworkService,
	transactionService httpports.TransactionService,
	chain httpports.Chain,
	contract common.Address,
	events http.Handler,
	logger *loggeradapter.Logger,
) *HandlerAdapter {
	if logger == nil {
		logger = loggeradapter.NewNopLogger()
	}
	return &HandlerAdapter{
		certificateService: certificateService,
		networkService:     networkService,
		transactionService: transactionService,
		chain:              chain,
		contract:           contract,
		generateToken:      certificate.GenerateToken,
		events:             events,
		logger:             logger,
	}
}

func (h *HandlerAdapter) HealthCheck(c echo.Context) error {
	status := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "ecert",
		"version":   "1.0.0",
	}
	return c.JSON(http.StatusOK, status)
}

// GetStatus handles GET /api/v1/status
func (h *HandlerAdapter) GetStatus(c echo.Context) error {
	st, err := h.certificateService.Status(c.Request().Context(), h.chain.Reader)
	if err != nil {
		return h.writeError(c, "Failed to get status", err)
	}

	var signer common.Address
	if h.chain.Signer != nil && h.chain.Signer.Opts != nil {
		signer = h.chain.Signer.Opts.From
	}
	return c.JSON(http.StatusOK, httpports.ToHTTPStatus(st, h.contract, signer, h.networkService.Descriptor()))
}

// GetNetwork handles GET /api/v1/network
func (h *HandlerAdapter) GetNetwork(c echo.Context) error {
	if err := h.networkService.VerifyChain(c.Request().Context(), h.chain.Provider); err != nil {
		return h.writeError(c, "Chain verification failed", err)
	}
	return c.JSON(http.StatusOK, httpports.ToHTTPNetwork(h.networkService.Descriptor()))
}

// EnsureNetwork handles POST /api/v1/network/ensure
func (h *HandlerAdapter) EnsureNetwork(c echo.Context) error {
	if err := h.networkService.EnsureNetwork(c.Request().Context(), h.chain.Provider); err != nil {
		return h.writeError(c, "Network handshake failed", err)
	}
	return c.JSON(http.StatusOK, httpports.ToHTTPNetwork(h.networkService.Descriptor()))
}

// GenerateToken handles POST /api/v1/tokens
func (h *HandlerAdapter) GenerateToken(c echo.Context) error {
	return c.JSON(http.StatusCreated, httpports.Token{Token: h.generateToken()})
}

// GetOwner handles GET /api/v1/owner
func (h *HandlerAdapter) GetOwner(c echo.Context) error {
	owner, err := h.certificateService.GetOwner(c.Request().Context(), h.chain.Reader)
	if err != nil {
		return h.writeError(c, "Failed to get owner", err)
	}
	return c.JSON(http.StatusOK, httpports.Owner{Owner: owner.Hex()})
}

// GetMinter handles GET /api/v1/minters/:address
func (h *HandlerAdapter) GetMinter(c echo.Context) error {
	account, err := certificate.ParseAddress(c.Param("address"))
	if err != nil {
		return h.writeError(c, "Invalid minter address", err)
	}

	ok, err := h.certificateService.IsMinter(c.Request().Context(), account, h.chain.Reader)
	if err != nil {
		return h.writeError(c, "Failed to check minter", err)
	}
	return c.JSON(http.StatusOK, httpports.MinterStatus{Address: account.Hex(), IsMinter: ok})
}

// AddMinter handles POST /api/v1/minters
func (h *HandlerAdapter) AddMinter(c echo.Context) error {
	var req httpports.MinterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, httpports.ErrorResponse{
			Error:   "Bad Request",
			Message: "invalid request body",
		})
	}

	account, err := certificate.ParseAddress(req.Address)
	if err != nil {
		return h.writeError(c, "Invalid minter address", err)
	}

	receipt, err := h.certificateService.AddMinter(c.Request().Context(), account, h.chain.Signer)
	if err != nil {
		return h.writeError(c, "Failed to add minter", err, zap.String("address", account.Hex()))
	}
	return c.JSON(http.StatusOK, httpports.ToHTTPReceipt(receipt))
}

// RemoveMinter handles DELETE /api/v1/minters/:address
func (h *HandlerAdapter) RemoveMinter(c echo.Context) error {
	account, err := certificate.ParseAddress(c.Param("address"))
	if err != nil {
		return h.writeError(c, "Invalid minter address", err)
	}

	receipt, err := h.certificateService.RemoveMinter(c.Request().Context(), account, h.chain.Signer)
	if err != nil {
		return h.writeError(c, "Failed to remove minter", err, zap.String("address", account.Hex()))
	}
	return c.JSON(http.StatusOK, httpports.ToHTTPReceipt(receipt))
}

// GetCertificate handles GET /api/v1/certificates/:token
func (h *HandlerAdapter) GetCertificate(c echo.Context) error {
	token := c.Param("token")
	if err := certificate.ValidateToken(token); err != nil {
		return h.writeError(c, "Invalid certificate token", err)
	}

	valid, err := h.certificateService.IsValidCertificate(c.Request().Context(), token, h.chain.Reader)
	if err != nil {
		return h.writeError(c, "Failed to validate certificate", err)
	}
	return c.JSON(http.StatusOK, httpports.CertificateStatus{Token: token, Valid: valid})
}

// BurnCertificate handles DELETE /api/v1/certificates/:token
func (h *HandlerAdapter) BurnCertificate(c echo.Context) error {
	token := c.Param("token")
	if err := certificate.ValidateToken(token); err != nil {
		return h.writeError(c, "Invalid certificate token", err)
	}

	receipt, err := h.certificateService.BurnCertificate(c.Request().Context(), token, h.chain.Signer)
	if err != nil {
		return h.writeError(c, "Failed to burn certificate", err, zap.String("token", token))
	}
	return c.JSON(http.StatusOK, httpports.ToHTTPReceipt(receipt))
}

// GetTransactions handles GET /api/v1/transactions
func (h *HandlerAdapter) GetTransactions(c echo.Context) error {
	filters := httpports.TransactionFilters{
		Page:     1,
		PageSize: 20,
	}

	// Parse query parameters
	if methodParam := c.QueryParam("method"); methodParam != "" {
		filters.Method = &methodParam
	}
	if statusParam := c.QueryParam("status"); statusParam != "" {
		filters.Status = &statusParam
	}
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if page, err := strconv.Atoi(pageParam); err == nil && page > 0 {
			filters.Page = page
		}
	}
	if pageSizeParam := c.QueryParam("page_size"); pageSizeParam != "" {
		if pageSize, err := strconv.Atoi(pageSizeParam); err == nil && pageSize > 0 {
			filters.PageSize = pageSize
		}
	}

	opts, err := httpports.ToDomainFilterOptions(filters)
	if err != nil {
		return c.JSON(http.StatusBadRequest, httpports.ErrorResponse{
			Error:   "Bad Request",
			Message: err.Error(),
		})
	}

	result, err := h.transactionService.GetTransactions(c.Request().Context(), opts)
	if err != nil {
		h.logger.Error("Failed to get transactions", zap.Any("filters", filters), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, httpports.ErrorResponse{
			Error:   "Internal Server Error",
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, httpports.ToHTTPTransactionPage(result))
}

// GetTransactionByHash handles GET /api/v1/transactions/:hash
func (h *HandlerAdapter) GetTransactionByHash(c echo.Context) error {
	hash := c.Param("hash")
	if hash == "" {
		return c.JSON(http.StatusBadRequest, httpports.ErrorResponse{
			Error:   "Bad Request",
			Message: "hash is required",
		})
	}

	tx, err := h.transactionService.GetTransactionByHash(c.Request().Context(), hash)
	if err != nil {
		return h.writeError(c, "Failed to get transaction", err, zap.String("hash", hash))
	}

	return c.JSON(http.StatusOK, httpports.ToHTTPTransaction(tx))
}

// writeError maps domain errors to status codes. Client errors are logged at
// Warn, everything else at Error.
func (h *HandlerAdapter) writeError(c echo.Context, msg string, err error, fields ...zap.Field) error {
	code := statusCode(err)
	fields = append(fields, zap.Int("status", code), zap.Error(err))
	if code >= http.StatusInternalServerError {
		h.logger.Error(msg, fields...)
	} else {
		h.logger.Warn(msg, fields...)
	}

	return c.JSON(code, httpports.ErrorResponse{
		Error:   http.StatusText(code),
		Message: err.Error(),
	})
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, certificate.ErrInvalidAddress),
		errors.Is(err, certificate.ErrInvalidToken):
		return http.StatusBadRequest
	case errors.Is(err, certificate.ErrNoSigner):
		return http.StatusForbidden
	case errors.Is(err, transaction.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, certificate.ErrTransactionReverted),
		errors.Is(err, network.ErrChainMismatch):
		return http.StatusConflict
	case errors.Is(err, ratelimiter.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, wallet.ErrWalletNotFound):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
