package trace

import (
	"math/big"

	"traceScope/internal/model"
)

// ComputeStats aggregates a parsed tree. TotalGasUsed is the root's own
// gasUsed since the tracer already includes child gas in the parent; the
// error message latches onto the first failing frame in pre-order.
func ComputeStats(root *model.ParsedCallFrame) model.TraceStats {
	stats := model.TraceStats{TotalGasUsed: new(big.Int)}
	if root == nil {
		return stats
	}
	if root.GasUsed != nil {
		stats.TotalGasUsed = new(big.Int).Set(root.GasUsed)
	}

	maxDepth := 0
	var walk func(frame *model.ParsedCallFrame)
	walk = func(frame *model.ParsedCallFrame) {
		stats.TotalCalls++
		if frame.Depth > maxDepth {
			maxDepth = frame.Depth
		}
		if frame.Error != "" || frame.RevertReason != "" {
			stats.HasError = true
			if stats.ErrorMessage == "" {
				stats.ErrorMessage = frameErrorMessage(frame)
			}
		}
		for _, child := range frame.Calls {
			walk(child)
		}
	}
	walk(root)

	stats.MaxDepth = maxDepth + 1
	return stats
}

func frameErrorMessage(frame *model.ParsedCallFrame) string {
	if frame.RevertReason != "" {
		return frame.RevertReason
	}
	return frame.Error
}
