package model

// TraceRequest describes the call handed to the tracer.
type TraceRequest struct {
	From  string `json:"from"`
	To    string `json:"to,omitempty"`
	Value string `json:"value,omitempty"`
	Data  string `json:"data,omitempty"`
	Block string `json:"block,omitempty"`
}

// SimulationResult bundles everything produced for one simulated call.
type SimulationResult struct {
	ChainID       uint64               `json:"chain_id,omitempty"`
	Request       TraceRequest         `json:"request"`
	Trace         *ParsedCallFrame     `json:"trace"`
	Stats         TraceStats           `json:"stats"`
	Transfers     []TokenTransfer      `json:"transfers"`
	TokenMetadata map[string]TokenMeta `json:"token_metadata,omitempty"`
	CreatedAt     string               `json:"created_at"`
}
