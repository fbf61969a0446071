package model

// DecodedFunction identifies the function behind a 4-byte selector.
// An unresolved selector keeps its hex form as the signature with
// Name set to "Unknown".
type DecodedFunction struct {
	Signature string `json:"signature"`
	Name      string `json:"name"`
	Selector  string `json:"selector"`
}

// DecodedError identifies a custom error behind a 4-byte selector,
// with decoded arguments when the payload could be unpacked.
type DecodedError struct {
	Signature string        `json:"signature"`
	Name      string        `json:"name"`
	Selector  string        `json:"selector,omitempty"`
	Args      []interface{} `json:"args,omitempty"`
}

// Param type kinds.
const (
	ParamKindScalar = "scalar"
	ParamKindTuple  = "tuple"
	ParamKindArray  = "array"
)

// ParamType describes the shape of one ABI parameter so consumers can
// walk nested tuples and arrays without re-deriving shape from decoded
// runtime values.
type ParamType struct {
	Kind   string       `json:"kind"`
	Type   string       `json:"type"`
	Elem   *ParamType   `json:"elem,omitempty"`
	Fields []ParamField `json:"fields,omitempty"`
}

// ParamField is one named component of a tuple parameter.
type ParamField struct {
	Name string    `json:"name"`
	Type ParamType `json:"type"`
}
