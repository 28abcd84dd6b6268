package chain

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNetwork struct {
	chainID   *big.Int
	readErr   error
	switchErr error

	switchCalls int
}

func (f *fakeNetwork) ChainID(ctx context.Context) (*big.Int, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return new(big.Int).Set(f.chainID), nil
}

func (f *fakeNetwork) SwitchChain(ctx context.Context, chainID *big.Int) error {
	f.switchCalls++
	if f.switchErr != nil {
		return f.switchErr
	}
	f.chainID = new(big.Int).Set(chainID)
	return nil
}

func TestCheckMatch(t *testing.T) {
	network := &fakeNetwork{chainID: big.NewInt(10143)}
	gate := NewGate(network, network, 10143, zerolog.Nop())

	status, err := gate.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Match)
	assert.Equal(t, int64(10143), status.Connected.Int64())
}

func TestCheckMismatch(t *testing.T) {
	network := &fakeNetwork{chainID: big.NewInt(1)}
	gate := NewGate(network, network, 10143, zerolog.Nop())

	status, err := gate.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Match)
}

func TestEnsureSwitchesOnce(t *testing.T) {
	network := &fakeNetwork{chainID: big.NewInt(1)}
	gate := NewGate(network, network, 10143, zerolog.Nop())

	status, err := gate.Ensure(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Match)
	assert.Equal(t, 1, network.switchCalls)
}

func TestEnsureRefusalIsFinal(t *testing.T) {
	network := &fakeNetwork{chainID: big.NewInt(1), switchErr: fmt.Errorf("declined")}
	gate := NewGate(network, network, 10143, zerolog.Nop())

	_, err := gate.Ensure(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
	assert.Equal(t, 1, network.switchCalls, "a refusal must not be retried")
}

func TestEnsureWithoutSwitcher(t *testing.T) {
	network := &fakeNetwork{chainID: big.NewInt(1)}
	gate := NewGate(network, nil, 10143, zerolog.Nop())

	_, err := gate.Ensure(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, network.switchCalls)
}

func TestEnsureDistrustsSwitcher(t *testing.T) {
	// A switcher that claims success without actually moving.
	network := &fakeNetwork{chainID: big.NewInt(1)}
	liar := &stuckSwitcher{}
	gate := NewGate(network, liar, 10143, zerolog.Nop())

	_, err := gate.Ensure(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still on chain")
}

type stuckSwitcher struct{}

func (s *stuckSwitcher) SwitchChain(ctx context.Context, chainID *big.Int) error { return nil }

func TestCheckReadFailure(t *testing.T) {
	network := &fakeNetwork{readErr: fmt.Errorf("rpc down")}
	gate := NewGate(network, network, 10143, zerolog.Nop())

	_, err := gate.Check(context.Background())
	require.Error(t, err)
}
