package trace

import (
	"math/big"
	"reflect"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"traceScope/internal/model"
	"traceScope/internal/registry"
)

const testErrorABIJSON = `[
  {"inputs": [{"name": "token", "type": "address"}], "name": "TokenNotSupported", "type": "error"}
]`

func newRegistry(t *testing.T, documents ...string) *registry.Registry {
	t.Helper()
	reg := registry.NewRegistry(zap.NewNop())
	reg.Load(documents...)
	return reg
}

func transferCalldata(t *testing.T, to common.Address, amount *big.Int) string {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(registry.ERC20ABIJSON))
	if err != nil {
		t.Fatalf("parse erc20 abi: %v", err)
	}
	data, err := parsed.Pack("transfer", to, amount)
	if err != nil {
		t.Fatalf("pack transfer: %v", err)
	}
	return hexutil.Encode(data)
}

func TestParseFrameBasics(t *testing.T) {
	reg := newRegistry(t, registry.ERC20ABIJSON)

	recipient := common.HexToAddress("0x2222222222222222222222222222222222222222")
	raw := &model.RawCallFrame{
		Type:    "CALL",
		From:    "0x1111111111111111111111111111111111111111",
		To:      "0x4444444444444444444444444444444444444444",
		Value:   "0xde0b6b3a7640000",
		Gas:     "0x2710",
		GasUsed: "0x1388",
		Input:   transferCalldata(t, recipient, big.NewInt(500000)),
	}

	parsed := Parse(raw, reg)
	if parsed.Depth != 0 {
		t.Fatalf("root depth mismatch: %d", parsed.Depth)
	}
	if parsed.Value.Cmp(big.NewInt(1000000000000000000)) != 0 {
		t.Fatalf("value mismatch: %s", parsed.Value)
	}
	if parsed.Gas.Cmp(big.NewInt(10000)) != 0 || parsed.GasUsed.Cmp(big.NewInt(5000)) != 0 {
		t.Fatalf("gas mismatch: gas=%s used=%s", parsed.Gas, parsed.GasUsed)
	}
	if parsed.GasPercentage != 50 {
		t.Fatalf("gas percentage mismatch: %v", parsed.GasPercentage)
	}
	if parsed.FunctionName != "transfer" {
		t.Fatalf("function mismatch: %s", parsed.FunctionName)
	}
	if len(parsed.DecodedInput) != 2 || parsed.DecodedInput[1] != "500000" {
		t.Fatalf("decoded input mismatch: %v", parsed.DecodedInput)
	}
}

func TestParseFrameChildrenAndDepth(t *testing.T) {
	reg := newRegistry(t)

	raw := &model.RawCallFrame{
		Type: "CALL", From: "0xaa", To: "0xbb", Gas: "0x100", GasUsed: "0x80", Input: "0x",
		Calls: []model.RawCallFrame{
			{Type: "STATICCALL", From: "0xbb", To: "0xcc", Gas: "0x40", GasUsed: "0x20", Input: "0x"},
			{
				Type: "CALL", From: "0xbb", To: "0xdd", Gas: "0x40", GasUsed: "0x30", Input: "0x",
				Calls: []model.RawCallFrame{
					{Type: "DELEGATECALL", From: "0xdd", To: "0xee", Gas: "0x20", GasUsed: "0x10", Input: "0x"},
				},
			},
		},
	}

	parsed := Parse(raw, reg)
	if len(parsed.Calls) != 2 {
		t.Fatalf("child count mismatch: %d", len(parsed.Calls))
	}
	if parsed.Calls[0].To != "0xcc" || parsed.Calls[1].To != "0xdd" {
		t.Fatalf("child order not preserved")
	}
	if parsed.Calls[0].Depth != 1 || parsed.Calls[1].Calls[0].Depth != 2 {
		t.Fatalf("depth assignment wrong")
	}
	if parsed.FunctionSignature != registry.FallbackSignature {
		t.Fatalf("empty input should decode as fallback: %s", parsed.FunctionSignature)
	}
}

func TestParseFrameMalformedNumericsDegradeToZero(t *testing.T) {
	reg := newRegistry(t)

	raw := &model.RawCallFrame{
		Type: "CALL", From: "0xaa", To: "0xbb",
		Gas: "0xzz", GasUsed: "not hex", Value: "", Input: "0x",
	}

	parsed := Parse(raw, reg)
	if parsed.Gas.Sign() != 0 || parsed.GasUsed.Sign() != 0 || parsed.Value.Sign() != 0 {
		t.Fatalf("malformed numerics should parse as zero")
	}
	if parsed.GasPercentage != 0 {
		t.Fatalf("gas percentage should be zero when gas is zero")
	}
}

func TestParseFrameErrorPrecedence(t *testing.T) {
	reg := newRegistry(t, registry.ERC20ABIJSON, testErrorABIJSON)

	parsed, err := abi.JSON(strings.NewReader(testErrorABIJSON))
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	errDef := parsed.Errors["TokenNotSupported"]
	payload, err := errDef.Inputs.Pack(common.HexToAddress("0x5555555555555555555555555555555555555555"))
	if err != nil {
		t.Fatalf("pack error: %v", err)
	}
	output := hexutil.Encode(append(errDef.ID.Bytes()[:4], payload...))

	recipient := common.HexToAddress("0x2222222222222222222222222222222222222222")
	raw := &model.RawCallFrame{
		Type: "CALL", From: "0xaa", To: "0xbb", Gas: "0x100", GasUsed: "0x80",
		Input:  transferCalldata(t, recipient, big.NewInt(1)),
		Output: output,
	}

	frame := Parse(raw, reg)
	if frame.DecodedError == nil {
		t.Fatalf("expected decoded error")
	}
	if frame.DecodedError.Name != "TokenNotSupported" {
		t.Fatalf("error name mismatch: %s", frame.DecodedError.Name)
	}
	if frame.DecodedOutput != nil {
		t.Fatalf("decoded output must be unset when the output is a known error")
	}
}

func TestParseFrameOutputOnSuccessPathOnly(t *testing.T) {
	reg := newRegistry(t, registry.ERC20ABIJSON)

	erc20, err := abi.JSON(strings.NewReader(registry.ERC20ABIJSON))
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	output, err := erc20.Methods["transfer"].Outputs.Pack(true)
	if err != nil {
		t.Fatalf("pack output: %v", err)
	}
	recipient := common.HexToAddress("0x2222222222222222222222222222222222222222")
	calldata := transferCalldata(t, recipient, big.NewInt(1))

	success := Parse(&model.RawCallFrame{
		Type: "CALL", From: "0xaa", To: "0xbb", Gas: "0x100", GasUsed: "0x80",
		Input: calldata, Output: hexutil.Encode(output),
	}, reg)
	if success.DecodedOutput == nil || success.DecodedOutput[0] != true {
		t.Fatalf("expected decoded output on success path: %v", success.DecodedOutput)
	}
	if success.DecodedError != nil {
		t.Fatalf("decoded error must be unset on success")
	}

	reverted := Parse(&model.RawCallFrame{
		Type: "CALL", From: "0xaa", To: "0xbb", Gas: "0x100", GasUsed: "0x80",
		Input: calldata, Output: hexutil.Encode(output), Error: "execution reverted",
	}, reg)
	if reverted.DecodedOutput != nil {
		t.Fatalf("decoded output must be skipped for errored frames")
	}
}

func TestParseIdempotent(t *testing.T) {
	reg := newRegistry(t, registry.ERC20ABIJSON)

	recipient := common.HexToAddress("0x2222222222222222222222222222222222222222")
	raw := &model.RawCallFrame{
		Type: "CALL", From: "0xaa", To: "0xbb", Gas: "0x5208", GasUsed: "0x5208",
		Input: transferCalldata(t, recipient, big.NewInt(123)),
		Calls: []model.RawCallFrame{
			{Type: "STATICCALL", From: "0xbb", To: "0xcc", Gas: "0x40", GasUsed: "0x20", Input: "0x"},
		},
	}

	first := Parse(raw, reg)
	second := Parse(raw, reg)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("parsing is not deterministic")
	}
}

func TestComputeStats(t *testing.T) {
	reg := newRegistry(t)

	raw := &model.RawCallFrame{
		Type: "CALL", From: "0xaa", To: "0xbb", Gas: "0x200", GasUsed: "0x150", Input: "0x",
		Calls: []model.RawCallFrame{
			{Type: "CALL", From: "0xbb", To: "0xcc", Gas: "0x80", GasUsed: "0x40", Input: "0x",
				Error: "execution reverted", RevertReason: "first failure"},
			{Type: "CALL", From: "0xbb", To: "0xdd", Gas: "0x80", GasUsed: "0x40", Input: "0x",
				Calls: []model.RawCallFrame{
					{Type: "CALL", From: "0xdd", To: "0xee", Gas: "0x20", GasUsed: "0x10", Input: "0x",
						Error: "out of gas"},
				}},
		},
	}

	stats := ComputeStats(Parse(raw, reg))
	if stats.TotalCalls != 4 {
		t.Fatalf("total calls mismatch: %d", stats.TotalCalls)
	}
	if stats.MaxDepth != 3 {
		t.Fatalf("max depth mismatch: %d", stats.MaxDepth)
	}
	if stats.TotalGasUsed.Cmp(big.NewInt(0x150)) != 0 {
		t.Fatalf("total gas must be the root's own gasUsed: %s", stats.TotalGasUsed)
	}
	if !stats.HasError {
		t.Fatalf("expected hasError")
	}
	if stats.ErrorMessage != "first failure" {
		t.Fatalf("error message must latch the first failing frame: %q", stats.ErrorMessage)
	}
}

func TestComputeStatsNoError(t *testing.T) {
	reg := newRegistry(t)

	raw := &model.RawCallFrame{Type: "CALL", From: "0xaa", To: "0xbb", Gas: "0x100", GasUsed: "0x80", Input: "0x"}
	stats := ComputeStats(Parse(raw, reg))
	if stats.HasError || stats.ErrorMessage != "" {
		t.Fatalf("unexpected error state: %+v", stats)
	}
	if stats.TotalCalls != 1 || stats.MaxDepth != 1 {
		t.Fatalf("single frame stats mismatch: %+v", stats)
	}
}
