// Package actors defines the typed messages exchanged between the cache
// coordinators and their peer actors, and the capability handles used to
// send them. A peer's identity is the send-end of its mailbox channel,
// nothing more.
package actors

// Kind names the long-running actors in the node.
type Kind uint8

const (
	KindRegistry Kind = iota
	KindRpcServer
	KindScheduler
	KindValidator
	KindEngine
	KindEoServer
	KindDaClient
	KindAccountCache
	KindBlobCache
	KindPendingTransactions
)

func (k Kind) String() string {
	switch k {
	case KindRegistry:
		return "registry"
	case KindRpcServer:
		return "rpc_server"
	case KindScheduler:
		return "scheduler"
	case KindValidator:
		return "validator"
	case KindEngine:
		return "engine"
	case KindEoServer:
		return "eo_server"
	case KindDaClient:
		return "da_client"
	case KindAccountCache:
		return "account_cache"
	case KindBlobCache:
		return "blob_cache"
	case KindPendingTransactions:
		return "pending_transactions"
	default:
		return "unknown"
	}
}
