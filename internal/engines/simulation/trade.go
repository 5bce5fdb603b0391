package simulation

import (
	"quantsim/internal/models"
)

// Fixed stake debited or credited per trade.
const marketStake = 100.0

// ProcessTrade validates and applies a single trade against the state.
// It reports false without mutating anything when the trade is not
// accepted: the simulation is inactive, trading is gated off, the trade
// type is unknown, or the side trade id is not currently offered.
func ProcessTrade(state *models.SimulationState, tradeType models.TradeType, action models.TradeAction, sideTradeID int) bool {
	if !state.Active || !state.TradeActive {
		return false
	}
	if action != models.TradeActionBuy && action != models.TradeActionSell {
		return false
	}

	switch tradeType {
	case models.TradeTypeMarket:
		trade := models.Trade{
			Type:   models.TradeTypeMarket,
			Action: action,
			Value:  state.CurrentMultiplier,
			Time:   state.CurrentTimeMinutes,
		}
		if action == models.TradeActionBuy {
			state.WalletBalance -= marketStake
		} else {
			state.WalletBalance += marketStake * state.CurrentMultiplier
		}
		state.UserTrades = append(state.UserTrades, trade)
		return true

	case models.TradeTypeSide:
		idx := -1
		for i, offer := range state.ActiveSideTrades {
			if offer.ID == sideTradeID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}
		offer := state.ActiveSideTrades[idx]

		trade := models.Trade{
			Type:        models.TradeTypeSide,
			Action:      action,
			Value:       offer.Value,
			Time:        state.CurrentTimeMinutes,
			SideTradeID: offer.ID,
		}
		if action == models.TradeActionBuy {
			state.WalletBalance -= marketStake * offer.Value
		} else {
			state.WalletBalance += marketStake * offer.Value * state.CurrentMultiplier
		}
		state.UserTrades = append(state.UserTrades, trade)

		// Side trades are single-use.
		state.ActiveSideTrades = append(state.ActiveSideTrades[:idx], state.ActiveSideTrades[idx+1:]...)
		return true

	default:
		return false
	}
}
