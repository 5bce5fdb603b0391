package simulation

import (
	"testing"

	"quantsim/internal/models"
)

func TestProcessTrade_RejectedWhenInactive(t *testing.T) {
	state := activeState()
	Terminate(state)

	before := state.WalletBalance
	if ProcessTrade(state, models.TradeTypeMarket, models.TradeActionBuy, 0) {
		t.Fatal("trade accepted on inactive simulation")
	}
	if state.WalletBalance != before || len(state.UserTrades) != 0 {
		t.Fatal("rejected trade mutated state")
	}
}

func TestProcessTrade_RejectedWhenTradeGateClosed(t *testing.T) {
	state := activeState()
	state.TradeActive = false

	if ProcessTrade(state, models.TradeTypeMarket, models.TradeActionSell, 0) {
		t.Fatal("trade accepted while trade gate closed")
	}
}

func TestProcessTrade_MarketRoundTrip(t *testing.T) {
	state := activeState()
	m := state.CurrentMultiplier

	if !ProcessTrade(state, models.TradeTypeMarket, models.TradeActionBuy, 0) {
		t.Fatal("market buy rejected")
	}
	if state.WalletBalance != 1000-100 {
		t.Fatalf("wallet after buy = %f, want 900", state.WalletBalance)
	}

	if !ProcessTrade(state, models.TradeTypeMarket, models.TradeActionSell, 0) {
		t.Fatal("market sell rejected")
	}
	want := 1000 + 100*m - 100
	if state.WalletBalance != want {
		t.Fatalf("wallet after round trip = %f, want %f", state.WalletBalance, want)
	}

	if len(state.UserTrades) != 2 {
		t.Fatalf("expected 2 recorded trades, got %d", len(state.UserTrades))
	}
	for _, trade := range state.UserTrades {
		if trade.Value != m {
			t.Fatalf("trade recorded at %f, want current multiplier %f", trade.Value, m)
		}
		if trade.Time != state.CurrentTimeMinutes {
			t.Fatalf("trade recorded at time %f, want %f", trade.Time, state.CurrentTimeMinutes)
		}
	}
}

func TestProcessTrade_SideSingleUse(t *testing.T) {
	state := activeState()
	offer := models.SideTrade{ID: 77, Expression: "aOxygen", Price: 1.2, Expiry: 5, Value: 1.1}
	state.ActiveSideTrades = []models.SideTrade{offer}

	if !ProcessTrade(state, models.TradeTypeSide, models.TradeActionBuy, 77) {
		t.Fatal("side trade rejected")
	}
	if state.WalletBalance != 1000-100*offer.Value {
		t.Fatalf("wallet after side buy = %f, want %f", state.WalletBalance, 1000-100*offer.Value)
	}
	if len(state.ActiveSideTrades) != 0 {
		t.Fatal("traded side trade still offered")
	}

	if ProcessTrade(state, models.TradeTypeSide, models.TradeActionBuy, 77) {
		t.Fatal("side trade traded twice")
	}
}

func TestProcessTrade_SideSellCreditsAgainstMultiplier(t *testing.T) {
	state := activeState()
	state.CurrentMultiplier = 1.5
	state.ActiveSideTrades = []models.SideTrade{{ID: 3, Value: 0.9}}

	if !ProcessTrade(state, models.TradeTypeSide, models.TradeActionSell, 3) {
		t.Fatal("side sell rejected")
	}
	want := 1000 + 100*0.9*1.5
	if state.WalletBalance != want {
		t.Fatalf("wallet after side sell = %f, want %f", state.WalletBalance, want)
	}
	if state.UserTrades[0].SideTradeID != 3 {
		t.Fatalf("recorded side trade id %d, want 3", state.UserTrades[0].SideTradeID)
	}
}

func TestProcessTrade_UnknownSideID(t *testing.T) {
	state := activeState()
	state.ActiveSideTrades = []models.SideTrade{{ID: 1, Value: 1.0}}

	before := state.WalletBalance
	if ProcessTrade(state, models.TradeTypeSide, models.TradeActionBuy, 999) {
		t.Fatal("trade accepted for unknown side trade id")
	}
	if state.WalletBalance != before || len(state.ActiveSideTrades) != 1 {
		t.Fatal("rejected side trade mutated state")
	}
}

func TestProcessTrade_WalletMayGoNegative(t *testing.T) {
	state := activeState()
	state.WalletBalance = 50

	if !ProcessTrade(state, models.TradeTypeMarket, models.TradeActionBuy, 0) {
		t.Fatal("buy rejected despite no margin enforcement")
	}
	if state.WalletBalance != -50 {
		t.Fatalf("wallet = %f, want -50", state.WalletBalance)
	}
}
