package simulation

import (
	"quantsim/internal/models"
)

// CalculateResults projects per-trade and aggregate profit/loss from the
// recorded trade log. Market trades settle against the final multiplier;
// side trades settle against the current multiplier. Results are
// computed on demand and never stored.
func CalculateResults(state *models.SimulationState) models.SimulationResult {
	result := models.SimulationResult{
		SessionID:       state.SessionID,
		Trades:          make([]models.TradeResult, 0, len(state.UserTrades)),
		FinalMultiplier: state.FinalMultiplier,
	}

	for _, trade := range state.UserTrades {
		entry := models.TradeResult{Trade: trade}

		switch trade.Type {
		case models.TradeTypeMarket:
			entry.ActualValue = state.FinalMultiplier
			if trade.Action == models.TradeActionBuy {
				entry.Profit = marketStake * (state.FinalMultiplier - trade.Value)
			} else {
				entry.Profit = marketStake * (trade.Value - state.FinalMultiplier)
			}
		case models.TradeTypeSide:
			entry.ActualValue = state.CurrentMultiplier
			if trade.Action == models.TradeActionBuy {
				entry.Profit = marketStake * trade.Value * (state.CurrentMultiplier - 1)
			} else {
				entry.Profit = marketStake * trade.Value * (1 - state.CurrentMultiplier)
			}
		}

		result.Trades = append(result.Trades, entry)
		result.NetProfit += entry.Profit
	}

	result.FinalWallet = state.WalletBalance + result.NetProfit
	return result
}
