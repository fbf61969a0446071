package model

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"
)

func TestParsedCallFrameJSONRoundTrip(t *testing.T) {
	// Larger than what float64 can represent exactly.
	value, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	if !ok {
		t.Fatalf("build value")
	}

	frame := &ParsedCallFrame{
		Type:              CallTypeCall,
		From:              "0x1111111111111111111111111111111111111111",
		To:                "0x2222222222222222222222222222222222222222",
		Input:             "0x",
		Value:             value,
		Gas:               big.NewInt(21000),
		GasUsed:           big.NewInt(21000),
		GasPercentage:     100,
		FunctionSignature: "fallback()",
		FunctionName:      "fallback",
		Calls: []*ParsedCallFrame{
			{Type: CallTypeStaticCall, From: "0x22", To: "0x33", Input: "0x", Depth: 1,
				Value: new(big.Int), Gas: big.NewInt(100), GasUsed: big.NewInt(50)},
		},
	}

	data, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"value":"123456789012345678901234567890"`) {
		t.Fatalf("value not encoded as a decimal string: %s", data)
	}

	var decoded ParsedCallFrame
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Value.Cmp(value) != 0 {
		t.Fatalf("value precision lost: %s", decoded.Value)
	}
	if len(decoded.Calls) != 1 || decoded.Calls[0].GasUsed.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("nested frame not preserved: %+v", decoded.Calls)
	}
}

func TestTokenTransferJSONAmount(t *testing.T) {
	amount, ok := new(big.Int).SetString("99999999999999999999999999", 10)
	if !ok {
		t.Fatalf("build amount")
	}
	transfer := TokenTransfer{
		Type:   TransferTypeERC20,
		From:   "0x11",
		To:     "0x22",
		Amount: amount,
	}

	data, err := json.Marshal(transfer)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"amount":"99999999999999999999999999"`) {
		t.Fatalf("amount not encoded as a decimal string: %s", data)
	}

	var decoded TokenTransfer
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Amount.Cmp(amount) != 0 {
		t.Fatalf("amount precision lost: %s", decoded.Amount)
	}
}
