package model

// Network names the chain a node or simulator runs against. It only
// influences configuration and metrics labels, never consensus.
type Network string

var (
	Simnet Network = "simnet"
	Devnet Network = "devnet"
)
