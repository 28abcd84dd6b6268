// Package chain verifies that the connected network is the one the trade is
// built for before any transaction goes out.
package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/rs/zerolog"
)

// Reader reports the chain id of the connected network
type Reader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// Switcher moves the connection to the given chain. Implementations may
// refuse; a refusal is final for the invocation.
type Switcher interface {
	SwitchChain(ctx context.Context, chainID *big.Int) error
}

// Status is one gate evaluation
type Status struct {
	Connected *big.Int
	Required  *big.Int
	Match     bool
}

// Gate compares the connected chain against the required one and drives at
// most one switch attempt per invocation.
type Gate struct {
	reader   Reader
	switcher Switcher
	required *big.Int
	logger   zerolog.Logger
}

// NewGate creates a gate for the required chain id. The switcher may be nil
// when the environment has no way to change networks.
func NewGate(reader Reader, switcher Switcher, required int64, logger zerolog.Logger) *Gate {
	return &Gate{
		reader:   reader,
		switcher: switcher,
		required: big.NewInt(required),
		logger:   logger,
	}
}

// Check reads the connected chain id and compares it to the required one
func (g *Gate) Check(ctx context.Context) (Status, error) {
	connected, err := g.reader.ChainID(ctx)
	if err != nil {
		return Status{Required: g.required}, fmt.Errorf("failed to read chain id: %w", err)
	}
	return Status{
		Connected: connected,
		Required:  g.required,
		Match:     connected.Cmp(g.required) == 0,
	}, nil
}

// Ensure checks the connection and, on a mismatch, attempts exactly one
// switch. Whether the switch succeeds or is refused, the outcome of this
// invocation is final.
func (g *Gate) Ensure(ctx context.Context) (Status, error) {
	status, err := g.Check(ctx)
	if err != nil {
		return status, err
	}
	if status.Match {
		return status, nil
	}

	g.logger.Warn().
		Str("connected", status.Connected.String()).
		Str("required", status.Required.String()).
		Msg("wrong network")

	if g.switcher == nil {
		return status, fmt.Errorf("connected to chain %s, need %s", status.Connected, status.Required)
	}

	if err := g.switcher.SwitchChain(ctx, g.required); err != nil {
		return status, fmt.Errorf("network switch refused: %w", err)
	}

	// Re-read rather than trusting the switcher.
	status, err = g.Check(ctx)
	if err != nil {
		return status, err
	}
	if !status.Match {
		return status, fmt.Errorf("still on chain %s after switching, need %s", status.Connected, status.Required)
	}
	return status, nil
}
