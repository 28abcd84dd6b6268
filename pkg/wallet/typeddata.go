package wallet

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// SignTypedData signs an EIP-712 payload exactly as delivered by the quote
// endpoint. The raw JSON is the upstream's permit2 eip712 object; it is
// never rebuilt or reordered before hashing.
func (w *Wallet) SignTypedData(raw json.RawMessage) ([]byte, error) {
	var typedData apitypes.TypedData
	if err := json.Unmarshal(raw, &typedData); err != nil {
		return nil, fmt.Errorf("invalid typed data payload: %w", err)
	}

	if _, exists := typedData.Types["EIP712Domain"]; !exists {
		typedData.Types["EIP712Domain"] = []apitypes.Type{
			{Name: "name", Type: "string"},
			{Name: "chainId", Type: "uint256"},
			{Name: "verifyingContract", Type: "address"},
		}
	}

	dataHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to hash struct: %w", err)
	}

	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("failed to hash domain: %w", err)
	}

	// EIP-712 digest: 0x19 0x01 <domainSeparator> <dataHash>
	rawData := []byte{0x19, 0x01}
	rawData = append(rawData, domainSeparator...)
	rawData = append(rawData, dataHash...)
	digest := crypto.Keccak256(rawData)

	signature, err := crypto.Sign(digest, w.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}

	// Recovery id 0/1 becomes the Ethereum v value 27/28.
	signature[64] += 27

	return signature, nil
}
