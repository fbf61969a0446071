package trace

import (
	"math/big"
	"strings"

	"traceScope/internal/model"
	"traceScope/internal/registry"
)

// Minimum output length carrying a 4-byte selector: "0x" plus 8 hex chars.
const minSelectorHexLen = 10

// Parse transforms a raw call-frame tree into its decoded form. The
// result is a pure function of the raw trace and the registry's loaded
// ABIs, so re-parsing with more ABIs is deterministic.
func Parse(raw *model.RawCallFrame, reg *registry.Registry) *model.ParsedCallFrame {
	if raw == nil {
		return nil
	}
	return parseFrame(raw, 0, reg)
}

func parseFrame(raw *model.RawCallFrame, depth int, reg *registry.Registry) *model.ParsedCallFrame {
	call := reg.DecodeCall(raw.Input)

	gas := parseHexBig(raw.Gas)
	gasUsed := parseHexBig(raw.GasUsed)

	frame := &model.ParsedCallFrame{
		Type:              raw.Type,
		From:              raw.From,
		To:                raw.To,
		Input:             raw.Input,
		Output:            raw.Output,
		Error:             raw.Error,
		RevertReason:      raw.RevertReason,
		Depth:             depth,
		Value:             parseHexBig(raw.Value),
		Gas:               gas,
		GasUsed:           gasUsed,
		GasPercentage:     gasPercentage(gasUsed, gas),
		FunctionSignature: call.Function.Signature,
		FunctionName:      call.Function.Name,
		DecodedInput:      call.Params,
		InputParamNames:   call.ParamNames,
		InputParamTypes:   call.ParamTypes,
	}

	// Output bytes that resolve to a known error are recorded as the
	// error; return-value decoding only happens on the success path.
	if len(raw.Output) >= minSelectorHexLen {
		if decodedErr := reg.DecodeError(raw.Output); decodedErr.Name != registry.UnknownErrorName {
			frame.DecodedError = &decodedErr
		} else if raw.Error == "" && raw.RevertReason == "" {
			if out := reg.DecodeOutput(raw.Input, raw.Output); out != nil {
				frame.DecodedOutput = out.Values
				frame.OutputParamNames = out.Names
				frame.OutputParamTypes = out.Types
			}
		}
	}

	if len(raw.Calls) > 0 {
		frame.Calls = make([]*model.ParsedCallFrame, len(raw.Calls))
		for i := range raw.Calls {
			frame.Calls[i] = parseFrame(&raw.Calls[i], depth+1, reg)
		}
	}

	return frame
}

// gasPercentage computes gasUsed/gas as a percentage rounded to two
// decimal places, zero when no gas was supplied.
func gasPercentage(gasUsed, gas *big.Int) float64 {
	if gas == nil || gas.Sign() <= 0 || gasUsed == nil {
		return 0
	}
	scaled := new(big.Int).Mul(gasUsed, big.NewInt(10000))
	half := new(big.Int).Rsh(gas, 1)
	scaled.Add(scaled, half)
	scaled.Quo(scaled, gas)
	return float64(scaled.Int64()) / 100
}

// parseHexBig converts a 0x-prefixed hex string to an integer. The
// tracer supplies well-formed values; anything unparsable degrades to
// zero rather than failing the parse.
func parseHexBig(input string) *big.Int {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(strings.TrimPrefix(input, "0x"), "0X")
	if input == "" {
		return new(big.Int)
	}
	value, ok := new(big.Int).SetString(input, 16)
	if !ok {
		return new(big.Int)
	}
	return value
}
