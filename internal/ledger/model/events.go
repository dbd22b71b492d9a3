package model

// Topic names a stream of ledger events on the bus.
type Topic string

const (
	TopicTxCreated   Topic = "tx.created"
	TopicTxSubmitted Topic = "tx.submitted"
	TopicBlockMined  Topic = "block.mined"
)

// TxCreated is published when a transaction has been assembled, before it
// is signed or committed to a block.
type TxCreated struct {
	TxID string
	Tx   *Transaction
}

// TxSubmitted is published when a transaction has been handed to a block
// producer.
type TxSubmitted struct {
	TxID string
}

// BlockMined is published after a sealed block and its UTXO set changes
// have been committed to the ledger.
type BlockMined struct {
	BlockHash string
	Block     *Block
}
