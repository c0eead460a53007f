package wallet

import (
	"context"
	"fmt"
	"strings"

	"suibot/internal/sui"
)

const boardSeparator = "----------------------------------------------\n"

// GameState is the per-request snapshot rendered as a board.
type GameState struct {
	Address sui.Address
	SuiCoin *sui.Coin
	// GameToken has no source yet and is only rendered when set.
	GameToken *sui.Coin
}

// NewGameState selects the SUI coin of addr. Transport failures are returned;
// an address without a qualifying coin yields a state with a nil SuiCoin.
func NewGameState(ctx context.Context, lister CoinLister, addr sui.Address) (*GameState, error) {
	coin, err := SelectCoin(ctx, lister, addr)
	if err != nil {
		return nil, err
	}
	return &GameState{Address: addr, SuiCoin: coin}, nil
}

func (g *GameState) Board() string {
	return RenderBoard(g.Address.String(), g.SuiCoin, g.GameToken)
}

// RenderBoard writes the separator, the truncated address and one balance
// line per non-nil coin.
func RenderBoard(address string, coins ...*sui.Coin) string {
	var b strings.Builder
	b.WriteString(boardSeparator)
	fmt.Fprintf(&b, "address: %-30s\n", Truncate(address, AddressHalfWidth))
	for _, coin := range coins {
		if coin == nil {
			continue
		}
		fmt.Fprintf(&b, "balance: %-20d%-10s\n", coin.Balance, coin.CoinType)
	}
	return b.String()
}
