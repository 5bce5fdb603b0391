package models

import (
	"time"
)

type TradeType string

const (
	TradeTypeMarket TradeType = "market"
	TradeTypeSide   TradeType = "side"
)

type TradeAction string

const (
	TradeActionBuy  TradeAction = "buy"
	TradeActionSell TradeAction = "sell"
)

// Collections holds one value per (team, resource) series: collection
// progress percentages, derived display means, or a step's snapshot.
type Collections struct {
	AOxygen  float64 `json:"aOxygen"`
	ALithium float64 `json:"aLithium"`
	BOxygen  float64 `json:"bOxygen"`
	BLithium float64 `json:"bLithium"`
}

// ResourceHistory holds the historical sample arrays generated at
// session creation, one array of `rounds` samples per (team, resource).
type ResourceHistory struct {
	AOxygen  []int `json:"aOxygen"`
	ALithium []int `json:"aLithium"`
	BOxygen  []int `json:"bOxygen"`
	BLithium []int `json:"bLithium"`
}

// SideTrade is a single-use offer to bet on a derived quantity of the
// collection variables. It is consumed the moment it is traded.
type SideTrade struct {
	ID         int         `json:"id"`
	Expression string      `json:"expression"`
	Price      float64     `json:"price"`
	Expiry     float64     `json:"expiry"`
	Value      float64     `json:"value"`
	Action     TradeAction `json:"action"`
}

// Trade is immutable once appended to the user trade log.
type Trade struct {
	Type        TradeType   `json:"type"`
	Action      TradeAction `json:"action"`
	Value       float64     `json:"value"`
	Time        float64     `json:"time"`
	SideTradeID int         `json:"sideTradeId,omitempty"`
}

// TimelineStep is one authoritative entry of the pre-generated timeline.
type TimelineStep struct {
	Time                float64     `json:"time"`
	Multiplier          float64     `json:"multiplier"`
	PredictedMultiplier float64     `json:"predictedMultiplier"`
	Collections         Collections `json:"collections"`
	SideTrades          []SideTrade `json:"sideTrades,omitempty"`
}

// SimulationState is the full in-memory state of one session. The
// timeline fields (PreGeneratedData, MultiplierValues, TimeValues) are
// written exactly once at creation and never mutated afterward.
type SimulationState struct {
	SessionID   string `json:"sessionId"`
	OwnerUserID string `json:"ownerUserId"`

	Active      bool `json:"active"`
	Paused      bool `json:"paused"`
	TradeActive bool `json:"tradeActive"`

	// Configuration, immutable after creation.
	Rounds             int     `json:"rounds"`
	SimulationMinutes  float64 `json:"simulationMinutes"`
	StepCount          int     `json:"stepCount"`
	RealTimeMultiplier float64 `json:"realTimeMultiplier"`

	// Timeline cursor.
	CurrentTimeMinutes       float64 `json:"currentTimeMinutes"`
	DisplayedTimeIndex       int     `json:"displayedTimeIndex"`
	CurrentMultiplier        float64 `json:"currentMultiplier"`
	PredictedFinalMultiplier float64 `json:"predictedFinalMultiplier"`

	ResourceHistory    ResourceHistory `json:"resourceHistory"`
	CollectionProgress Collections     `json:"collectionProgress"`
	ResourceMeans      Collections     `json:"resourceMeans"`

	MultiplierValues []float64      `json:"multiplierValues"`
	TimeValues       []float64      `json:"timeValues"`
	PreGeneratedData []TimelineStep `json:"preGeneratedData"`

	WalletBalance    float64     `json:"walletBalance"`
	UserTrades       []Trade     `json:"userTrades"`
	ActiveSideTrades []SideTrade `json:"activeSideTrades"`

	FinalCollectionProgress Collections `json:"finalCollectionProgress"`
	FinalMultiplier         float64     `json:"finalMultiplier"`

	// Archival record id when a database is configured, zero otherwise.
	RecordID uint `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

// Finished reports whether the cursor has reached the end of the
// simulated window. There is no explicit completed state.
func (s *SimulationState) Finished() bool {
	return s.CurrentTimeMinutes >= s.SimulationMinutes
}

// TradeResult is a derived, read-only projection of a recorded trade.
type TradeResult struct {
	Trade       Trade   `json:"trade"`
	ActualValue float64 `json:"actualValue"`
	Profit      float64 `json:"profit"`
}

// SimulationResult aggregates per-trade results at query time. It is
// never stored.
type SimulationResult struct {
	SessionID       string        `json:"sessionId"`
	Trades          []TradeResult `json:"trades"`
	NetProfit       float64       `json:"netProfit"`
	FinalWallet     float64       `json:"finalWallet"`
	FinalMultiplier float64       `json:"finalMultiplier"`
}
