package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	receiptPollInterval = 2 * time.Second
	receiptPollTries    = 150
)

// ErrTransactionReverted is returned when a mined transaction failed on-chain.
var ErrTransactionReverted = errors.New("transaction reverted")

// WaitMined polls until the transaction is mined or the context ends. It
// never resubmits or bumps fees; a stalled transaction simply keeps the
// caller waiting until cancellation.
func (w *Wallet) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	operation := func() (*types.Receipt, error) {
		receipt, err := w.client.TransactionReceipt(ctx, hash)
		if errors.Is(err, ethereum.NotFound) {
			return nil, err // not mined yet, keep polling
		}
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		return receipt, nil
	}

	receipt, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(receiptPollInterval)),
		backoff.WithMaxTries(receiptPollTries),
	)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for transaction %s: %w", hash.Hex(), err)
	}

	w.logger.Debug().
		Str("tx", hash.Hex()).
		Uint64("block", receipt.BlockNumber.Uint64()).
		Msg("transaction mined")

	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, ErrTransactionReverted
	}
	return receipt, nil
}
