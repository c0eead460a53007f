package sui

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Coin is a single coin object as returned by suix_getCoins.
type Coin struct {
	CoinType            string
	CoinObjectID        string
	Version             string
	Digest              string
	Balance             uint64
	PreviousTransaction string
}

// CoinPage is one page of suix_getCoins results.
type CoinPage struct {
	Data        []Coin  `json:"data"`
	NextCursor  *string `json:"nextCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

type coinJSON struct {
	CoinType            string `json:"coinType"`
	CoinObjectID        string `json:"coinObjectId"`
	Version             string `json:"version"`
	Digest              string `json:"digest"`
	Balance             string `json:"balance"`
	PreviousTransaction string `json:"previousTransaction"`
}

// UnmarshalJSON decodes the node's string-encoded u64 balance.
func (c *Coin) UnmarshalJSON(b []byte) error {
	var raw coinJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	balance, err := strconv.ParseUint(raw.Balance, 10, 64)
	if err != nil {
		return fmt.Errorf("coin %s: invalid balance %q: %w", raw.CoinObjectID, raw.Balance, err)
	}

	*c = Coin{
		CoinType:            raw.CoinType,
		CoinObjectID:        raw.CoinObjectID,
		Version:             raw.Version,
		Digest:              raw.Digest,
		Balance:             balance,
		PreviousTransaction: raw.PreviousTransaction,
	}
	return nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}
