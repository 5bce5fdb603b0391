package simulation

import (
	"log"

	"github.com/expr-lang/expr"

	"quantsim/internal/models"
)

// fallbackSidePrice substitutes for a pricing expression that fails to
// compile or evaluate. Pricing failures never propagate.
const fallbackSidePrice = 1.0

var sideTradeExpressions = []string{
	"aOxygen + bOxygen",
	"aLithium + bLithium",
	"(aOxygen + aLithium) / 2",
	"(bOxygen + bLithium) / 2",
	"aOxygen * 0.5 + bLithium * 0.5",
	"abs(aOxygen - bOxygen)",
}

func exprEnv(c models.Collections) map[string]interface{} {
	return map[string]interface{}{
		"aOxygen":  c.AOxygen,
		"aLithium": c.ALithium,
		"bOxygen":  c.BOxygen,
		"bLithium": c.BLithium,
	}
}

// priceSideTrade evaluates a pricing expression over the step's
// collection progress.
func priceSideTrade(expression string, c models.Collections) float64 {
	env := exprEnv(c)

	program, err := expr.Compile(expression, expr.Env(env))
	if err != nil {
		log.Printf("Side trade expression %q failed to compile: %v", expression, err)
		return fallbackSidePrice
	}

	out, err := expr.Run(program, env)
	if err != nil {
		log.Printf("Side trade expression %q failed to evaluate: %v", expression, err)
		return fallbackSidePrice
	}

	switch v := out.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		log.Printf("Side trade expression %q returned non-numeric %T", expression, out)
		return fallbackSidePrice
	}
}
