package model

// Call frame types emitted by the callTracer.
const (
	CallTypeCall         = "CALL"
	CallTypeDelegateCall = "DELEGATECALL"
	CallTypeStaticCall   = "STATICCALL"
	CallTypeCreate       = "CREATE"
	CallTypeCreate2      = "CREATE2"
	CallTypeSelfDestruct = "SELFDESTRUCT"
)

// RawCallFrame is one node of the call tree returned by a
// debug_traceCall-style tracer. Numeric fields are 0x-prefixed hex strings.
type RawCallFrame struct {
	Type         string         `json:"type"`
	From         string         `json:"from"`
	To           string         `json:"to,omitempty"`
	Value        string         `json:"value,omitempty"`
	Gas          string         `json:"gas"`
	GasUsed      string         `json:"gasUsed"`
	Input        string         `json:"input"`
	Output       string         `json:"output,omitempty"`
	Error        string         `json:"error,omitempty"`
	RevertReason string         `json:"revertReason,omitempty"`
	Calls        []RawCallFrame `json:"calls,omitempty"`
}
