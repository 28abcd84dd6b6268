package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// erc20ABI covers the three ERC-20 calls the swap flow needs.
const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"_owner","type":"address"},{"name":"_spender","type":"address"}],"name":"allowance","outputs":[{"name":"remaining","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

// MaxAllowance is the effectively-unlimited approval amount (2^256 - 1).
var MaxAllowance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Wallet signs and submits transactions for a single account over one RPC
// connection. It is the wallet-integration layer the swap orchestrator
// drives.
type Wallet struct {
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    *big.Int
	erc20      abi.ABI
	logger     zerolog.Logger
}

// New connects to the RPC endpoint and derives the account from the
// hex-encoded private key (with or without the 0x prefix).
func New(rpcURL, privateKeyHex string, chainID int64, logger zerolog.Logger) (*Wallet, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("RPC URL is required")
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}

	return &Wallet{
		client:     client,
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		chainID:    big.NewInt(chainID),
		erc20:      parsedABI,
		logger:     logger,
	}, nil
}

// Address returns the account address
func (w *Wallet) Address() common.Address {
	return w.address
}

// ChainID queries the connected node's chain id
func (w *Wallet) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := w.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	return id, nil
}

// NativeBalance returns the account's native-asset balance
func (w *Wallet) NativeBalance(ctx context.Context) (*big.Int, error) {
	balance, err := w.client.BalanceAt(ctx, w.address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// TokenBalance returns the account's balance of an ERC-20 token
func (w *Wallet) TokenBalance(ctx context.Context, token common.Address) (*big.Int, error) {
	return w.readUint256(ctx, token, "balanceOf", w.address)
}

// Allowance returns the amount the spender may currently move on the
// account's behalf.
func (w *Wallet) Allowance(ctx context.Context, token, spender common.Address) (*big.Int, error) {
	return w.readUint256(ctx, token, "allowance", w.address, spender)
}

func (w *Wallet) readUint256(ctx context.Context, contract common.Address, method string, args ...interface{}) (*big.Int, error) {
	data, err := w.erc20.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s data: %w", method, err)
	}

	result, err := w.client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	return new(big.Int).SetBytes(result), nil
}

// Approve submits an ERC-20 approval for the given spender and amount and
// returns the transaction hash. It does not wait for the receipt.
func (w *Wallet) Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (common.Hash, error) {
	data, err := w.erc20.Pack("approve", spender, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack approve data: %w", err)
	}

	hash, err := w.submit(ctx, token, data, 0, nil)
	if err != nil {
		return common.Hash{}, err
	}

	w.logger.Info().
		Str("token", token.Hex()).
		Str("spender", spender.Hex()).
		Str("tx", hash.Hex()).
		Msg("approval submitted")
	return hash, nil
}

// SendSwap broadcasts a swap transaction built from a firm quote. Gas of
// zero means estimate; a nil or zero value sends no native amount.
func (w *Wallet) SendSwap(ctx context.Context, to common.Address, callData []byte, gas uint64, value *big.Int) (common.Hash, error) {
	hash, err := w.submit(ctx, to, callData, gas, value)
	if err != nil {
		return common.Hash{}, err
	}

	w.logger.Info().
		Str("to", to.Hex()).
		Str("tx", hash.Hex()).
		Msg("swap submitted")
	return hash, nil
}

func (w *Wallet) submit(ctx context.Context, to common.Address, data []byte, gas uint64, value *big.Int) (common.Hash, error) {
	nonce, err := w.client.PendingNonceAt(ctx, w.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := w.client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get gas price: %w", err)
	}

	if value == nil {
		value = big.NewInt(0)
	}

	if gas == 0 {
		msg := ethereum.CallMsg{From: w.address, To: &to, Data: data, Value: value}
		estimated, err := w.client.EstimateGas(ctx, msg)
		if err != nil {
			return common.Hash{}, fmt.Errorf("failed to estimate gas: %w", err)
		}
		gas = estimated * 120 / 100 // 20% buffer
	}

	tx := types.NewTransaction(nonce, to, value, gas, gasPrice, data)

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(w.chainID), w.privateKey)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := w.client.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	return signedTx.Hash(), nil
}

// TransactionStatus describes a submitted transaction's confirmation state
type TransactionStatus struct {
	Hash        common.Hash
	Pending     bool
	Succeeded   bool
	BlockNumber uint64
	GasUsed     uint64
}

// TransactionStatus looks up the current state of a transaction by hash
func (w *Wallet) TransactionStatus(ctx context.Context, hash common.Hash) (*TransactionStatus, error) {
	return lookupTransaction(ctx, w.client, hash)
}

func lookupTransaction(ctx context.Context, client *ethclient.Client, hash common.Hash) (*TransactionStatus, error) {
	_, pending, err := client.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	status := &TransactionStatus{Hash: hash, Pending: pending}
	if pending {
		return status, nil
	}

	receipt, err := client.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction receipt: %w", err)
	}

	status.Succeeded = receipt.Status == types.ReceiptStatusSuccessful
	status.BlockNumber = receipt.BlockNumber.Uint64()
	status.GasUsed = receipt.GasUsed
	return status, nil
}

// Observer is a read-only RPC connection for transaction lookups. Unlike
// Wallet it needs no key material.
type Observer struct {
	client *ethclient.Client
}

// NewObserver connects to the RPC endpoint for read-only queries
func NewObserver(rpcURL string) (*Observer, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("RPC URL is required")
	}
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}
	return &Observer{client: client}, nil
}

// TransactionStatus looks up the current state of a transaction by hash
func (o *Observer) TransactionStatus(ctx context.Context, hash common.Hash) (*TransactionStatus, error) {
	return lookupTransaction(ctx, o.client, hash)
}

// Close closes the RPC connection
func (o *Observer) Close() {
	if o.client != nil {
		o.client.Close()
	}
}

// DecodeCallData parses the hex-encoded call data of a firm quote
func DecodeCallData(data string) ([]byte, error) {
	decoded, err := hexutil.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction data: %w", err)
	}
	return decoded, nil
}

// Close closes the RPC connection
func (w *Wallet) Close() {
	if w.client != nil {
		w.client.Close()
	}
}
