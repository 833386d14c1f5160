// Package calculator provides the arithmetic tools.
package calculator

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
	"github.com/FreePeak/acceptance-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/acceptance-mcp-server/internal/usecases/tools"
)

// AddArgs are the arguments of the add tool.
type AddArgs struct {
	A float64 `json:"a" jsonschema:"description=First addend"`
	B float64 `json:"b" jsonschema:"description=Second addend"`
}

// CalculatorHandler implements the calculator tools.
type CalculatorHandler struct {
	logger *logging.Logger
}

// NewCalculatorHandler creates a new calculator handler.
func NewCalculatorHandler(logger *logging.Logger) *CalculatorHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CalculatorHandler{logger: logger.Named("calculator")}
}

// Register adds the calculator tools to the registry.
func (h *CalculatorHandler) Register(r *tools.Registry) error {
	return tools.Register(r, "add", tools.Metadata{
		Title:       "Addition Tool",
		Description: "Add two numbers",
	}, h.Add)
}

// Add returns the sum of a and b as text.
func (h *CalculatorHandler) Add(_ context.Context, args AddArgs) (domain.ContentEnvelope, error) {
	h.logger.Info("add called", logging.Fields{"a": args.A, "b": args.B})

	result := formatNumber(args.A + args.B)

	h.logger.Info("add returning", logging.Fields{"result": result})
	return domain.ToolTextEnvelope(result), nil
}

// formatNumber renders f the way JavaScript's Number#toString does: plain
// decimals for magnitudes in [1e-6, 1e21), shortest exponent form otherwise.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	// Go pads the exponent to two digits ("1.5e-07"); JavaScript does not.
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + digits
}
