// Package transport exposes the ledger over HTTP.
package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
)

// LedgerHandler serves the REST surface: chain and UTXO reads, wallet
// management, payment submission and block production.
type LedgerHandler struct {
	ledger   LedgerReader
	wallets  WalletService
	payments PaymentService
	producer BlockProducer
	pool     TxSubmitter
	logger   *zap.Logger
}

func NewLedgerHandler(
	ledger LedgerReader,
	wallets WalletService,
	payments PaymentService,
	producer BlockProducer,
	pool TxSubmitter,
	logger *zap.Logger,
) (*LedgerHandler, error) {

	if ledger == nil {
		return nil, errors.New("ledger reader is required")
	}
	if wallets == nil {
		return nil, errors.New("wallet service is required")
	}
	if payments == nil {
		return nil, errors.New("payment service is required")
	}
	if producer == nil {
		return nil, errors.New("block producer is required")
	}
	if pool == nil {
		return nil, errors.New("transaction submitter is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &LedgerHandler{
		ledger:   ledger,
		wallets:  wallets,
		payments: payments,
		producer: producer,
		pool:     pool,
		logger:   logger,
	}, nil
}

// Register mounts all routes on mux.
func (h *LedgerHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/health", h.health)
	mux.HandleFunc("GET /v1/chain/tip", h.chainTip)
	mux.HandleFunc("GET /v1/blocks/{height}", h.blockByHeight)
	mux.HandleFunc("GET /v1/utxos", h.listUTXOs)
	mux.HandleFunc("GET /v1/addresses/{address}/balance", h.balance)
	mux.HandleFunc("POST /v1/wallets", h.createWallet)
	mux.HandleFunc("POST /v1/transactions", h.createPayment)
	mux.HandleFunc("POST /v1/blocks/mine", h.mine)
}

func (h *LedgerHandler) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *LedgerHandler) chainTip(w http.ResponseWriter, r *http.Request) {
	height, err := h.ledger.Height(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	tip, ok, err := h.ledger.GetLatestBlock(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	resp := TipResponse{Height: height}
	if ok {
		resp.BlockHash = tip.Hash()
		resp.Timestamp = tip.Header.Timestamp
		resp.TxCount = len(tip.Transactions)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) blockByHeight(w http.ResponseWriter, r *http.Request) {
	height, err := strconv.ParseUint(r.PathValue("height"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "height must be a non-negative integer")
		return
	}

	block, ok, err := h.ledger.GetBlock(r.Context(), height)
	if err != nil {
		h.fail(w, err)
		return
	}
	if !ok {
		h.writeError(w, http.StatusNotFound, "no block at requested height")
		return
	}
	h.writeJSON(w, http.StatusOK, blockToDTO(block))
}

func (h *LedgerHandler) listUTXOs(w http.ResponseWriter, r *http.Request) {
	coins, err := h.ledger.AllUTXOs(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	dtos := make([]UTXODTO, 0, len(coins))
	for _, coin := range coins {
		dtos = append(dtos, utxoToDTO(coin))
	}
	h.writeJSON(w, http.StatusOK, dtos)
}

func (h *LedgerHandler) balance(w http.ResponseWriter, r *http.Request) {
	addr := model.Address(r.PathValue("address"))
	units, err := h.wallets.Balance(r.Context(), addr)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, balanceToDTO(addr, units))
}

func (h *LedgerHandler) createWallet(w http.ResponseWriter, r *http.Request) {
	var req CreateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "wallet name is required")
		return
	}

	created := h.wallets.Create(req.Name)
	h.writeJSON(w, http.StatusCreated, WalletResponse{
		Name:      created.Name,
		Address:   string(created.Address),
		PublicKey: created.PublicKey,
	})
}

func (h *LedgerHandler) createPayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.FromWallet == "" || req.ToAddress == "" {
		h.writeError(w, http.StatusBadRequest, "from_wallet and to_address are required")
		return
	}
	if req.Amount == 0 {
		h.writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	sender, ok := h.wallets.Get(req.FromWallet)
	if !ok {
		h.writeError(w, http.StatusNotFound, "unknown wallet")
		return
	}

	ctx := r.Context()
	outputs := []model.TxOut{{Amount: req.Amount, Address: model.Address(req.ToAddress)}}
	tx, err := h.payments.CreateTransaction(ctx, sender.Address, outputs)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.payments.SignTransaction(sender.PrivateKey, tx)
	if err := h.payments.CheckAgainstLedger(ctx, tx, h.wallets.SecretLookup(ctx)); err != nil {
		h.fail(w, err)
		return
	}

	if err := h.pool.Submit(ctx, tx); err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, PaymentAcceptedResponse{TxID: tx.TxID, Status: "accepted"})
}

func (h *LedgerHandler) mine(w http.ResponseWriter, r *http.Request) {
	var req MineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Wallet == "" {
		h.writeError(w, http.StatusBadRequest, "wallet is required")
		return
	}

	miner, ok := h.wallets.Get(req.Wallet)
	if !ok {
		h.writeError(w, http.StatusNotFound, "unknown wallet")
		return
	}

	block, err := h.producer.MineBlock(r.Context(), nil, string(miner.Address))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, blockToDTO(block))
}

// fail maps domain errors onto HTTP statuses and logs everything else.
func (h *LedgerHandler) fail(w http.ResponseWriter, err error) {
	var (
		insufficient *model.InsufficientFundsError
		doubleSpend  *model.DoubleSpendError
		badSig       *model.InvalidSignatureError
		invalidTx    *model.InvalidTransactionError
	)

	switch {
	case errors.As(err, &insufficient):
		h.writeError(w, http.StatusUnprocessableEntity, insufficient.Error())
	case errors.As(err, &doubleSpend):
		h.writeError(w, http.StatusConflict, doubleSpend.Error())
	case errors.As(err, &badSig):
		h.writeError(w, http.StatusBadRequest, badSig.Error())
	case errors.As(err, &invalidTx):
		h.writeError(w, http.StatusBadRequest, invalidTx.Error())
	default:
		h.logger.Error("request failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *LedgerHandler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, ErrorResponse{Error: msg})
}

func (h *LedgerHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}
