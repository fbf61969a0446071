package model

import (
	"encoding/json"
	"math/big"
)

// Transfer types.
const (
	TransferTypeERC20  = "erc20"
	TransferTypeNative = "native"
)

// Sentinel metadata for tokens that could not be resolved.
const (
	UnknownTokenName   = "Unknown Token"
	UnknownTokenSymbol = "UNKNOWN"
)

// TokenTransfer is one detected value movement, native or ERC-20.
// TokenAddress is set for ERC-20 transfers only.
type TokenTransfer struct {
	Type            string   `json:"type"`
	From            string   `json:"from"`
	To              string   `json:"to"`
	Amount          *big.Int `json:"-"`
	TokenAddress    string   `json:"tokenAddress,omitempty"`
	TokenName       string   `json:"tokenName,omitempty"`
	TokenSymbol     string   `json:"tokenSymbol,omitempty"`
	TokenDecimals   uint8    `json:"tokenDecimals"`
	FormattedAmount string   `json:"formattedAmount,omitempty"`
}

// MarshalJSON encodes the amount as a decimal string.
func (t TokenTransfer) MarshalJSON() ([]byte, error) {
	type Alias TokenTransfer
	return json.Marshal(struct {
		Alias
		Amount string `json:"amount"`
	}{Alias: Alias(t), Amount: BigString(t.Amount)})
}

// UnmarshalJSON decodes a transfer produced by MarshalJSON.
func (t *TokenTransfer) UnmarshalJSON(data []byte) error {
	type Alias TokenTransfer
	var aux struct {
		Alias
		Amount string `json:"amount"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = TokenTransfer(aux.Alias)
	t.Amount = bigFromString(aux.Amount)
	return nil
}

// UnknownTokenMeta returns the sentinel metadata used when a token
// contract cannot be resolved.
func UnknownTokenMeta(address string) TokenMeta {
	return TokenMeta{
		Address:  address,
		Name:     UnknownTokenName,
		Symbol:   UnknownTokenSymbol,
		Decimals: 18,
	}
}
