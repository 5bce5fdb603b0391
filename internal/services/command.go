package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"quantsim/internal/models"
)

// ErrInvalidCommand marks a malformed text trade command. Malformed
// input is a structured error to the caller, never a panic.
var ErrInvalidCommand = errors.New("invalid trade command")

// ParseTradeCommand parses the text shorthand: "m b" (market buy),
// "m s" (market sell), "s b <id>" / "s s <id>" (side trade by id).
func ParseTradeCommand(command string) (models.TradeType, models.TradeAction, int, error) {
	fields := strings.Fields(command)
	if len(fields) < 2 {
		return "", "", 0, fmt.Errorf("%w: %q", ErrInvalidCommand, command)
	}

	var tradeType models.TradeType
	switch fields[0] {
	case "m":
		tradeType = models.TradeTypeMarket
	case "s":
		tradeType = models.TradeTypeSide
	default:
		return "", "", 0, fmt.Errorf("%w: unknown trade type %q", ErrInvalidCommand, fields[0])
	}

	var action models.TradeAction
	switch fields[1] {
	case "b":
		action = models.TradeActionBuy
	case "s":
		action = models.TradeActionSell
	default:
		return "", "", 0, fmt.Errorf("%w: unknown action %q", ErrInvalidCommand, fields[1])
	}

	sideTradeID := 0
	if tradeType == models.TradeTypeSide {
		if len(fields) < 3 {
			return "", "", 0, fmt.Errorf("%w: missing side trade id in %q", ErrInvalidCommand, command)
		}
		id, err := strconv.Atoi(fields[2])
		if err != nil {
			return "", "", 0, fmt.Errorf("%w: bad side trade id %q", ErrInvalidCommand, fields[2])
		}
		sideTradeID = id
	}

	return tradeType, action, sideTradeID, nil
}
