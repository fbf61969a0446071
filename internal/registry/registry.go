package registry

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"go.uber.org/zap"

	"traceScope/internal/model"
)

// Names used when a selector or error payload cannot be resolved.
const (
	UnknownFunctionName = "Unknown"
	UnknownErrorName    = "Unknown error"
	FallbackSignature   = "fallback()"
)

// CallDecoding is the result of decoding calldata: the resolved function
// plus decoded parameters when the fragment is known and the bytes unpack.
type CallDecoding struct {
	Function   model.DecodedFunction
	Params     []interface{}
	ParamNames []string
	ParamTypes []model.ParamType
}

// OutputDecoding is a decoded return tuple.
type OutputDecoding struct {
	Values []interface{}
	Names  []string
	Types  []model.ParamType
}

// Registry maps 4-byte selectors to function and custom-error fragments
// collected from loaded ABI documents. It is built once per simulation
// run and read-only afterwards.
type Registry struct {
	functions map[[4]byte]abi.Method
	errors    map[[4]byte]abi.Error
	logger    *zap.Logger
}

// NewRegistry builds an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		functions: make(map[[4]byte]abi.Method),
		errors:    make(map[[4]byte]abi.Error),
		logger:    logger,
	}
}

// Load parses JSON ABI documents and registers every function and custom
// error selector. Malformed documents are skipped with a warning; the
// first registration wins on selector collision.
func (r *Registry) Load(documents ...string) {
	for i, doc := range documents {
		parsed, err := abi.JSON(strings.NewReader(doc))
		if err != nil {
			r.logger.Warn("skipping malformed abi document", zap.Int("index", i), zap.Error(err))
			continue
		}
		for _, method := range parsed.Methods {
			key := selectorKey(method.ID)
			if _, exists := r.functions[key]; exists {
				continue
			}
			r.functions[key] = method
		}
		for _, errDef := range parsed.Errors {
			key := selectorKey(errDef.ID.Bytes()[:4])
			if _, exists := r.errors[key]; exists {
				continue
			}
			r.errors[key] = errDef
		}
	}
}

// DecodeSelector resolves a 4-byte selector. A miss yields the Unknown
// sentinel with the hex selector as its signature.
func (r *Registry) DecodeSelector(selector []byte) model.DecodedFunction {
	hexSel := "0x" + hex.EncodeToString(selector)
	if len(selector) == 4 {
		if method, ok := r.functions[selectorKey(selector)]; ok {
			return model.DecodedFunction{
				Signature: method.Sig,
				Name:      method.Name,
				Selector:  hexSel,
			}
		}
	}
	return model.DecodedFunction{
		Signature: hexSel,
		Name:      UnknownFunctionName,
		Selector:  hexSel,
	}
}

// DecodeCall decodes calldata into the resolved function and, when the
// fragment is known, its parameter values, names, and type descriptors.
// Calldata shorter than a selector maps to the synthetic fallback
// function; parameter decode failures degrade to the bare function.
func (r *Registry) DecodeCall(calldata string) CallDecoding {
	data, ok := decodeHex(calldata)
	if !ok || len(data) < 4 {
		return CallDecoding{Function: model.DecodedFunction{
			Signature: FallbackSignature,
			Name:      "fallback",
		}}
	}

	selector := data[:4]
	decoding := CallDecoding{Function: r.DecodeSelector(selector)}

	method, known := r.functions[selectorKey(selector)]
	if !known {
		return decoding
	}

	values, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return decoding
	}

	decoding.Params = make([]interface{}, len(values))
	decoding.ParamNames = make([]string, len(values))
	decoding.ParamTypes = make([]model.ParamType, len(values))
	for i, arg := range method.Inputs {
		if i >= len(values) {
			break
		}
		decoding.Params[i] = normalizeValue(arg.Type, values[i])
		decoding.ParamNames[i] = argName(arg.Name, "param", i)
		decoding.ParamTypes[i] = typeDescriptor(arg.Type)
	}
	return decoding
}

// DecodeError decodes a revert payload. Registry errors are matched by
// selector; the standard Error(string) payload is handled without any
// loaded ABI. Everything else yields the Unknown-error sentinel.
func (r *Registry) DecodeError(errorData string) model.DecodedError {
	data, ok := decodeHex(errorData)
	if !ok || len(data) < 4 {
		return model.DecodedError{Name: UnknownErrorName}
	}

	selector := data[:4]
	hexSel := "0x" + hex.EncodeToString(selector)

	if errDef, known := r.errors[selectorKey(selector)]; known {
		decoded := model.DecodedError{
			Signature: errDef.Sig,
			Name:      errDef.Name,
			Selector:  hexSel,
		}
		if values, err := errDef.Inputs.Unpack(data[4:]); err == nil {
			decoded.Args = make([]interface{}, len(values))
			for i, arg := range errDef.Inputs {
				if i >= len(values) {
					break
				}
				decoded.Args[i] = normalizeValue(arg.Type, values[i])
			}
		}
		return decoded
	}

	if reason, err := abi.UnpackRevert(data); err == nil {
		return model.DecodedError{
			Signature: "Error(string)",
			Name:      "Error",
			Selector:  hexSel,
			Args:      []interface{}{reason},
		}
	}

	return model.DecodedError{
		Signature: hexSel,
		Name:      UnknownErrorName,
		Selector:  hexSel,
	}
}

// DecodeOutput decodes return data as the return tuple of the function
// identified by the calldata's selector. Unknown functions, empty output,
// and undecodable bytes all yield nil rather than an error.
func (r *Registry) DecodeOutput(calldata, outputData string) *OutputDecoding {
	output, ok := decodeHex(outputData)
	if !ok || len(output) == 0 {
		return nil
	}

	data, ok := decodeHex(calldata)
	if !ok || len(data) < 4 {
		return nil
	}

	method, known := r.functions[selectorKey(data[:4])]
	if !known {
		return nil
	}

	values, err := method.Outputs.Unpack(output)
	if err != nil || len(values) == 0 {
		return nil
	}

	decoded := &OutputDecoding{
		Values: make([]interface{}, len(values)),
		Names:  make([]string, len(values)),
		Types:  make([]model.ParamType, len(values)),
	}
	for i, arg := range method.Outputs {
		if i >= len(values) {
			break
		}
		decoded.Values[i] = normalizeValue(arg.Type, values[i])
		decoded.Names[i] = argName(arg.Name, "output", i)
		decoded.Types[i] = typeDescriptor(arg.Type)
	}
	return decoded
}

func selectorKey(id []byte) [4]byte {
	var key [4]byte
	copy(key[:], id)
	return key
}

func argName(name, prefix string, index int) string {
	if name != "" {
		return name
	}
	return prefix + strconv.Itoa(index)
}

func decodeHex(input string) ([]byte, bool) {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(strings.TrimPrefix(input, "0x"), "0X")
	if len(input)%2 != 0 {
		return nil, false
	}
	data, err := hex.DecodeString(input)
	if err != nil {
		return nil, false
	}
	return data, true
}
