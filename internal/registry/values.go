package registry

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"traceScope/internal/model"
)

// typeDescriptor converts an ABI type into the recursive shape descriptor
// consumers use for nested tuple and array rendering.
func typeDescriptor(t abi.Type) model.ParamType {
	switch t.T {
	case abi.TupleTy:
		fields := make([]model.ParamField, len(t.TupleElems))
		for i, elem := range t.TupleElems {
			fields[i] = model.ParamField{
				Name: argName(t.TupleRawNames[i], "field", i),
				Type: typeDescriptor(*elem),
			}
		}
		return model.ParamType{Kind: model.ParamKindTuple, Type: t.String(), Fields: fields}
	case abi.SliceTy, abi.ArrayTy:
		elem := typeDescriptor(*t.Elem)
		return model.ParamType{Kind: model.ParamKindArray, Type: t.String(), Elem: &elem}
	default:
		return model.ParamType{Kind: model.ParamKindScalar, Type: t.String()}
	}
}

// normalizeValue converts a decoded ABI value into a JSON-safe form:
// big integers become decimal strings, addresses and byte blobs hex
// strings, tuples name-keyed maps, arrays slices of normalized elements.
func normalizeValue(t abi.Type, value interface{}) interface{} {
	switch t.T {
	case abi.TupleTy:
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Struct {
			return fmt.Sprintf("%v", value)
		}
		out := make(map[string]interface{}, len(t.TupleElems))
		for i, elem := range t.TupleElems {
			if i >= rv.NumField() {
				break
			}
			out[argName(t.TupleRawNames[i], "field", i)] = normalizeValue(*elem, rv.Field(i).Interface())
		}
		return out
	case abi.SliceTy, abi.ArrayTy:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return fmt.Sprintf("%v", value)
		}
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = normalizeValue(*t.Elem, rv.Index(i).Interface())
		}
		return out
	}

	switch v := value.(type) {
	case *big.Int:
		return model.BigString(v)
	case common.Address:
		return v.Hex()
	case common.Hash:
		return v.Hex()
	case []byte:
		return hexutil.Encode(v)
	case bool, string:
		return v
	case uint8, uint16, uint32, uint64, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	}

	// Fixed-size byte arrays decode as [N]uint8.
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		buf := make([]byte, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			buf[i] = byte(rv.Index(i).Uint())
		}
		return hexutil.Encode(buf)
	}

	return fmt.Sprintf("%v", value)
}
