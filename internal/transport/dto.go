package transport

import (
	"encoding/hex"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
	"github.com/goodnatureofminers/pocketledger/internal/utils"
)

// Amounts travel the wire in base units; coin-denominated floats appear
// only in balance responses for display.

type HealthResponse struct {
	Status string `json:"status"`
}

type TipResponse struct {
	Height    uint64 `json:"height"`
	BlockHash string `json:"block_hash,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	TxCount   int    `json:"tx_count,omitempty"`
}

type BlockResponse struct {
	Hash         string           `json:"hash"`
	Version      uint32           `json:"version"`
	PrevHash     string           `json:"prev_hash"`
	MerkleRoot   string           `json:"merkle_root"`
	Timestamp    int64            `json:"timestamp"`
	Nonce        uint64           `json:"nonce"`
	Difficulty   uint32           `json:"difficulty"`
	Validator    string           `json:"validator,omitempty"`
	Transactions []TransactionDTO `json:"transactions"`
}

type TransactionDTO struct {
	TxID    string     `json:"tx_id"`
	Inputs  []TxInDTO  `json:"inputs"`
	Outputs []TxOutDTO `json:"outputs"`
}

type TxInDTO struct {
	PrevTxID    string `json:"prev_tx_id"`
	OutputIndex uint32 `json:"output_index"`
	Signature   string `json:"signature,omitempty"`
}

type TxOutDTO struct {
	Amount     uint64 `json:"amount"`
	Address    string `json:"address"`
	LockScript string `json:"lock_script,omitempty"`
}

type UTXODTO struct {
	TxID       string `json:"tx_id"`
	Index      uint32 `json:"index"`
	Amount     uint64 `json:"amount"`
	Owner      string `json:"owner"`
	LockScript string `json:"lock_script,omitempty"`
}

type BalanceResponse struct {
	Address string  `json:"address"`
	Balance uint64  `json:"balance"`
	Coins   float64 `json:"coins"`
}

type CreateWalletRequest struct {
	Name string `json:"name"`
}

type WalletResponse struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	PublicKey string `json:"public_key"`
}

type CreatePaymentRequest struct {
	FromWallet string `json:"from_wallet"`
	ToAddress  string `json:"to_address"`
	Amount     uint64 `json:"amount"`
}

type PaymentAcceptedResponse struct {
	TxID   string `json:"tx_id"`
	Status string `json:"status"`
}

type MineRequest struct {
	Wallet string `json:"wallet"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func blockToDTO(b *model.Block) BlockResponse {
	txs := make([]TransactionDTO, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		txs = append(txs, txToDTO(tx))
	}
	return BlockResponse{
		Hash:         b.Hash(),
		Version:      b.Header.Version,
		PrevHash:     b.Header.PrevHash,
		MerkleRoot:   b.Header.MerkleRoot,
		Timestamp:    b.Header.Timestamp,
		Nonce:        b.Header.Nonce,
		Difficulty:   b.Header.Difficulty,
		Validator:    b.Header.Validator,
		Transactions: txs,
	}
}

func txToDTO(tx *model.Transaction) TransactionDTO {
	ins := make([]TxInDTO, 0, len(tx.Inputs))
	for idx, in := range tx.Inputs {
		dto := TxInDTO{PrevTxID: in.PrevTxID, OutputIndex: in.OutputIndex}
		if sig, ok := tx.Signatures[idx]; ok {
			dto.Signature = hex.EncodeToString(sig)
		}
		ins = append(ins, dto)
	}
	outs := make([]TxOutDTO, 0, len(tx.Outputs))
	for _, out := range tx.Outputs {
		outs = append(outs, TxOutDTO{
			Amount:     out.Amount,
			Address:    string(out.Address),
			LockScript: out.LockScript,
		})
	}
	return TransactionDTO{TxID: tx.TxID, Inputs: ins, Outputs: outs}
}

func utxoToDTO(coin model.UTXO) UTXODTO {
	return UTXODTO{
		TxID:       coin.TxID,
		Index:      coin.Index,
		Amount:     coin.Amount,
		Owner:      string(coin.Owner),
		LockScript: coin.LockScript,
	}
}

func balanceToDTO(addr model.Address, units uint64) BalanceResponse {
	return BalanceResponse{
		Address: string(addr),
		Balance: units,
		Coins:   utils.FromBaseUnits(units),
	}
}
