package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
	"github.com/goodnatureofminers/pocketledger/internal/wallet"
)

type stubLedger struct {
	blocks []*model.Block
	coins  []model.UTXO
	err    error
}

func (s *stubLedger) GetBlock(_ context.Context, height uint64) (*model.Block, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	if height >= uint64(len(s.blocks)) {
		return nil, false, nil
	}
	return s.blocks[height], true, nil
}

func (s *stubLedger) GetLatestBlock(context.Context) (*model.Block, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	if len(s.blocks) == 0 {
		return nil, false, nil
	}
	return s.blocks[len(s.blocks)-1], true, nil
}

func (s *stubLedger) Height(context.Context) (uint64, error) {
	return uint64(len(s.blocks)), s.err
}

func (s *stubLedger) AllUTXOs(context.Context) ([]model.UTXO, error) {
	return s.coins, s.err
}

type stubWallets struct {
	known    map[string]wallet.Wallet
	balances map[model.Address]uint64
	created  []string
}

func (s *stubWallets) Create(name string) wallet.Wallet {
	s.created = append(s.created, name)
	w := wallet.Wallet{
		Name:       name,
		PrivateKey: name + "_priv",
		PublicKey:  name + "_pub",
		Address:    model.Address(name + "_addr"),
	}
	if s.known == nil {
		s.known = make(map[string]wallet.Wallet)
	}
	s.known[name] = w
	return w
}

func (s *stubWallets) Get(name string) (wallet.Wallet, bool) {
	w, ok := s.known[name]
	return w, ok
}

func (s *stubWallets) Balance(_ context.Context, addr model.Address) (uint64, error) {
	return s.balances[addr], nil
}

func (s *stubWallets) SecretLookup(context.Context) model.SecretLookup {
	return func(model.TxIn) (string, error) { return "secret", nil }
}

type stubPayments struct {
	tx         *model.Transaction
	createErr  error
	checkErr   error
	signedWith string
}

func (s *stubPayments) CreateTransaction(context.Context, model.Address, []model.TxOut) (*model.Transaction, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.tx, nil
}

func (s *stubPayments) SignTransaction(secret string, _ *model.Transaction) {
	s.signedWith = secret
}

func (s *stubPayments) CheckAgainstLedger(context.Context, *model.Transaction, model.SecretLookup) error {
	return s.checkErr
}

type stubProducer struct {
	block     *model.Block
	err       error
	validator string
}

func (s *stubProducer) MineBlock(_ context.Context, _ []*model.Transaction, validator string) (*model.Block, error) {
	s.validator = validator
	if s.err != nil {
		return nil, s.err
	}
	return s.block, nil
}

type stubPool struct {
	submitted []*model.Transaction
	err       error
}

func (s *stubPool) Submit(_ context.Context, tx *model.Transaction) error {
	if s.err != nil {
		return s.err
	}
	s.submitted = append(s.submitted, tx)
	return nil
}

type handlerFixture struct {
	ledger   *stubLedger
	wallets  *stubWallets
	payments *stubPayments
	producer *stubProducer
	pool     *stubPool
	mux      *http.ServeMux
}

func newFixture(t *testing.T) *handlerFixture {
	t.Helper()

	f := &handlerFixture{
		ledger:   &stubLedger{},
		wallets:  &stubWallets{known: map[string]wallet.Wallet{}, balances: map[model.Address]uint64{}},
		payments: &stubPayments{},
		producer: &stubProducer{},
		pool:     &stubPool{},
		mux:      http.NewServeMux(),
	}

	h, err := NewLedgerHandler(f.ledger, f.wallets, f.payments, f.producer, f.pool, zap.NewNop())
	if err != nil {
		t.Fatalf("NewLedgerHandler() unexpected error: %v", err)
	}
	h.Register(f.mux)
	return f
}

func (f *handlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decodeInto[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func sampleBlock() *model.Block {
	tx := &model.Transaction{
		Inputs:  []model.TxIn{{PrevTxID: "aa", OutputIndex: 0}},
		Outputs: []model.TxOut{{Amount: 60, Address: "addr1"}},
	}
	tx.TxID = tx.Hash()
	tx.AddSignature(0, []byte{0xde, 0xad})

	b := &model.Block{
		Header: model.BlockHeader{
			Version:    model.HeaderVersion,
			PrevHash:   model.ZeroHash,
			Timestamp:  1700000000,
			Difficulty: 2,
		},
		Transactions: []*model.Transaction{tx},
	}
	b.ComputeMerkleRoot()
	return b
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := decodeInto[HealthResponse](t, rec); got.Status != "ok" {
		t.Fatalf("status field = %q, want %q", got.Status, "ok")
	}
}

func TestChainTip(t *testing.T) {
	t.Run("empty chain", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodGet, "/v1/chain/tip", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		got := decodeInto[TipResponse](t, rec)
		if got.Height != 0 || got.BlockHash != "" {
			t.Fatalf("unexpected tip for empty chain: %+v", got)
		}
	})

	t.Run("with blocks", func(t *testing.T) {
		f := newFixture(t)
		block := sampleBlock()
		f.ledger.blocks = []*model.Block{block}

		rec := f.do(t, http.MethodGet, "/v1/chain/tip", nil)
		got := decodeInto[TipResponse](t, rec)
		if got.Height != 1 {
			t.Fatalf("height = %d, want 1", got.Height)
		}
		if got.BlockHash != block.Hash() {
			t.Fatalf("block hash = %q, want %q", got.BlockHash, block.Hash())
		}
		if got.TxCount != 1 {
			t.Fatalf("tx count = %d, want 1", got.TxCount)
		}
	})
}

func TestBlockByHeight(t *testing.T) {
	f := newFixture(t)
	block := sampleBlock()
	f.ledger.blocks = []*model.Block{block}

	t.Run("found", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/blocks/0", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		got := decodeInto[BlockResponse](t, rec)
		if got.Hash != block.Hash() {
			t.Fatalf("hash = %q, want %q", got.Hash, block.Hash())
		}
		if len(got.Transactions) != 1 {
			t.Fatalf("transactions = %d, want 1", len(got.Transactions))
		}
		if got.Transactions[0].Inputs[0].Signature != "dead" {
			t.Fatalf("signature = %q, want hex-encoded bytes", got.Transactions[0].Inputs[0].Signature)
		}
	})

	t.Run("absent height", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/blocks/7", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("malformed height", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/blocks/abc", nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestListUTXOs(t *testing.T) {
	f := newFixture(t)
	f.ledger.coins = []model.UTXO{
		{TxID: "aa", Index: 0, Amount: 60, Owner: "addr1"},
		{TxID: "bb", Index: 1, Amount: 40, Owner: "addr2"},
	}

	rec := f.do(t, http.MethodGet, "/v1/utxos", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	got := decodeInto[[]UTXODTO](t, rec)
	if len(got) != 2 {
		t.Fatalf("utxos = %d, want 2", len(got))
	}
	if got[0].TxID != "aa" || got[0].Amount != 60 || got[0].Owner != "addr1" {
		t.Fatalf("unexpected first utxo: %+v", got[0])
	}
}

func TestBalance(t *testing.T) {
	f := newFixture(t)
	f.wallets.balances["addr1"] = 150_000_000

	rec := f.do(t, http.MethodGet, "/v1/addresses/addr1/balance", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	got := decodeInto[BalanceResponse](t, rec)
	if got.Balance != 150_000_000 {
		t.Fatalf("balance = %d, want 150000000", got.Balance)
	}
	if got.Coins != 1.5 {
		t.Fatalf("coins = %v, want 1.5", got.Coins)
	}
}

func TestCreateWallet(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/v1/wallets", CreateWalletRequest{Name: "alice"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
		}
		got := decodeInto[WalletResponse](t, rec)
		if got.Name != "alice" || got.Address != "alice_addr" {
			t.Fatalf("unexpected wallet response: %+v", got)
		}
	})

	t.Run("name required", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/v1/wallets", CreateWalletRequest{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/v1/wallets", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		f.mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestCreatePayment(t *testing.T) {
	pending := &model.Transaction{TxID: "tx1"}
	request := CreatePaymentRequest{FromWallet: "alice", ToAddress: "bob_addr", Amount: 40}

	t.Run("accepted", func(t *testing.T) {
		f := newFixture(t)
		f.wallets.Create("alice")
		f.payments.tx = pending

		rec := f.do(t, http.MethodPost, "/v1/transactions", request)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
		}
		got := decodeInto[PaymentAcceptedResponse](t, rec)
		if got.TxID != "tx1" || got.Status != "accepted" {
			t.Fatalf("unexpected response: %+v", got)
		}
		if f.payments.signedWith != "alice_priv" {
			t.Fatalf("signed with %q, want the sender's private key", f.payments.signedWith)
		}
		if len(f.pool.submitted) != 1 || f.pool.submitted[0] != pending {
			t.Fatalf("expected the transaction handed to the pool")
		}
	})

	t.Run("unknown wallet", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/v1/transactions", request)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("insufficient funds", func(t *testing.T) {
		f := newFixture(t)
		f.wallets.Create("alice")
		f.payments.createErr = &model.InsufficientFundsError{Address: "alice_addr", Required: 40}

		rec := f.do(t, http.MethodPost, "/v1/transactions", request)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
		}
	})

	t.Run("double spend", func(t *testing.T) {
		f := newFixture(t)
		f.wallets.Create("alice")
		f.payments.tx = pending
		f.payments.checkErr = &model.DoubleSpendError{UTXO: model.UTXO{TxID: "aa", Index: 0}}

		rec := f.do(t, http.MethodPost, "/v1/transactions", request)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
		}
		if len(f.pool.submitted) != 0 {
			t.Fatalf("rejected transaction must not reach the pool")
		}
	})

	t.Run("invalid signature", func(t *testing.T) {
		f := newFixture(t)
		f.wallets.Create("alice")
		f.payments.tx = pending
		f.payments.checkErr = &model.InvalidSignatureError{TxID: "tx1", InputIndex: 0}

		rec := f.do(t, http.MethodPost, "/v1/transactions", request)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("zero amount", func(t *testing.T) {
		f := newFixture(t)
		f.wallets.Create("alice")

		rec := f.do(t, http.MethodPost, "/v1/transactions", CreatePaymentRequest{
			FromWallet: "alice", ToAddress: "bob_addr",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestMine(t *testing.T) {
	t.Run("mined", func(t *testing.T) {
		f := newFixture(t)
		f.wallets.Create("miner")
		f.producer.block = sampleBlock()

		rec := f.do(t, http.MethodPost, "/v1/blocks/mine", MineRequest{Wallet: "miner"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
		}
		if f.producer.validator != "miner_addr" {
			t.Fatalf("validator = %q, want the miner's address", f.producer.validator)
		}
		got := decodeInto[BlockResponse](t, rec)
		if got.Hash != f.producer.block.Hash() {
			t.Fatalf("hash = %q, want %q", got.Hash, f.producer.block.Hash())
		}
	})

	t.Run("unknown wallet", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/v1/blocks/mine", MineRequest{Wallet: "ghost"})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("producer failure", func(t *testing.T) {
		f := newFixture(t)
		f.wallets.Create("miner")
		f.producer.err = errors.New("sealer offline")

		rec := f.do(t, http.MethodPost, "/v1/blocks/mine", MineRequest{Wallet: "miner"})
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
		}
	})
}
