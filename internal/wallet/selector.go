package wallet

import (
	"context"
	"fmt"
	"iter"

	"suibot/internal/sui"
)

const (
	// DefaultCoinType is the native SUI coin.
	DefaultCoinType = "0x2::sui::SUI"
	// Threshold is the smallest balance, in MIST, a coin needs to be selected.
	Threshold uint64 = 5_000_000
)

// CoinLister streams the coins of one type owned by an address.
type CoinLister interface {
	Coins(ctx context.Context, owner sui.Address, coinType string) iter.Seq2[sui.Coin, error]
}

// SelectCoin returns the first SUI coin, in node order, whose balance reaches
// Threshold. Coins before it are skipped and no further pages are fetched once
// it is found. A nil coin with a nil error means the owner has no such coin.
func SelectCoin(ctx context.Context, lister CoinLister, owner sui.Address) (*sui.Coin, error) {
	for coin, err := range lister.Coins(ctx, owner, DefaultCoinType) {
		if err != nil {
			return nil, fmt.Errorf("list coins of %s: %w", owner, err)
		}
		if coin.Balance < Threshold {
			continue
		}
		return &coin, nil
	}
	return nil, nil
}
