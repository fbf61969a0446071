package model

import (
	"encoding/json"
	"math/big"
)

// ParsedCallFrame is the decoded form of one RawCallFrame. Hex numerics
// are parsed into exact integers, calldata and return data are decoded
// where an ABI is known, and children are parsed recursively. Frames are
// immutable once built.
type ParsedCallFrame struct {
	Type         string `json:"type"`
	From         string `json:"from"`
	To           string `json:"to,omitempty"`
	Input        string `json:"input"`
	Output       string `json:"output,omitempty"`
	Error        string `json:"error,omitempty"`
	RevertReason string `json:"revertReason,omitempty"`
	Depth        int    `json:"depth"`

	Value   *big.Int `json:"-"`
	Gas     *big.Int `json:"-"`
	GasUsed *big.Int `json:"-"`

	// GasUsed relative to the gas made available to the frame, rounded
	// to two decimal places. Zero when no gas was supplied.
	GasPercentage float64 `json:"gasPercentage"`

	FunctionSignature string `json:"functionSignature"`
	FunctionName      string `json:"functionName"`

	DecodedInput    []interface{} `json:"decodedInput,omitempty"`
	InputParamNames []string      `json:"inputParamNames,omitempty"`
	InputParamTypes []ParamType   `json:"inputParamTypes,omitempty"`

	// DecodedOutput and DecodedError are mutually exclusive: output bytes
	// that resolve to a known error are recorded as the error only.
	DecodedOutput    []interface{} `json:"decodedOutput,omitempty"`
	OutputParamNames []string      `json:"outputParamNames,omitempty"`
	OutputParamTypes []ParamType   `json:"outputParamTypes,omitempty"`
	DecodedError     *DecodedError `json:"decodedError,omitempty"`

	Calls []*ParsedCallFrame `json:"calls,omitempty"`
}

// parsedFrameJSON mirrors ParsedCallFrame with big integers as decimal
// strings so serialization never loses precision.
type parsedFrameJSON struct {
	Value   string `json:"value"`
	Gas     string `json:"gas"`
	GasUsed string `json:"gasUsed"`
}

// MarshalJSON encodes the frame with value/gas fields as decimal strings.
func (f ParsedCallFrame) MarshalJSON() ([]byte, error) {
	type Alias ParsedCallFrame
	return json.Marshal(struct {
		Alias
		parsedFrameJSON
	}{
		Alias: Alias(f),
		parsedFrameJSON: parsedFrameJSON{
			Value:   BigString(f.Value),
			Gas:     BigString(f.Gas),
			GasUsed: BigString(f.GasUsed),
		},
	})
}

// UnmarshalJSON decodes a frame produced by MarshalJSON.
func (f *ParsedCallFrame) UnmarshalJSON(data []byte) error {
	type Alias ParsedCallFrame
	var aux struct {
		Alias
		parsedFrameJSON
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*f = ParsedCallFrame(aux.Alias)
	f.Value = bigFromString(aux.parsedFrameJSON.Value)
	f.Gas = bigFromString(aux.parsedFrameJSON.Gas)
	f.GasUsed = bigFromString(aux.parsedFrameJSON.GasUsed)
	return nil
}

// TraceStats aggregates one parsed tree. TotalGasUsed is the root frame's
// own gasUsed; child gas is already included per tracer semantics.
type TraceStats struct {
	TotalGasUsed *big.Int `json:"-"`
	TotalCalls   int      `json:"totalCalls"`
	MaxDepth     int      `json:"maxDepth"`
	HasError     bool     `json:"hasError"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
}

// MarshalJSON encodes total gas as a decimal string.
func (s TraceStats) MarshalJSON() ([]byte, error) {
	type Alias TraceStats
	return json.Marshal(struct {
		Alias
		TotalGasUsed string `json:"totalGasUsed"`
	}{Alias: Alias(s), TotalGasUsed: BigString(s.TotalGasUsed)})
}

// UnmarshalJSON decodes stats produced by MarshalJSON.
func (s *TraceStats) UnmarshalJSON(data []byte) error {
	type Alias TraceStats
	var aux struct {
		Alias
		TotalGasUsed string `json:"totalGasUsed"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = TraceStats(aux.Alias)
	s.TotalGasUsed = bigFromString(aux.TotalGasUsed)
	return nil
}

// BigString renders a big integer as a decimal string, nil as "0".
func BigString(x *big.Int) string {
	if x == nil {
		return "0"
	}
	return x.String()
}

func bigFromString(s string) *big.Int {
	if s == "" {
		return new(big.Int)
	}
	value, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return new(big.Int)
	}
	return value
}
