package simulation

import (
	"math"
	"sync"
	"time"

	"quantsim/internal/engines/generator"
	"quantsim/internal/models"
)

const (
	DefaultRounds            = 20
	DefaultSimulationMinutes = 60.0
	DefaultSpeedMultiplier   = 6.0

	initialWalletBalance = 1000.0
	baseResourceMean     = 50.0

	// One timeline step per 30 simulated seconds.
	stepsPerMinute = 2.0

	weightAOxygen  = 0.2
	weightALithium = 0.3
	weightBOxygen  = 0.2
	weightBLithium = 0.3

	sideTradeProbability    = 0.2
	sideTradeExpiryMinutes  = 5.0
	baseProgressIncrement   = 4.0
	predictedMultiplierGain = 1.1
)

// Config is the immutable per-session configuration. Zero values fall
// back to the defaults above.
type Config struct {
	Rounds            int     `json:"rounds"`
	SimulationMinutes float64 `json:"simulationMinutes"`
	SpeedMultiplier   float64 `json:"speedMultiplier"`
}

func (c Config) withDefaults() Config {
	if c.Rounds <= 0 {
		c.Rounds = DefaultRounds
	}
	if c.SimulationMinutes <= 0 {
		c.SimulationMinutes = DefaultSimulationMinutes
	}
	if c.SpeedMultiplier <= 0 {
		c.SpeedMultiplier = DefaultSpeedMultiplier
	}
	return c
}

// Factory assembles new simulation states, including the fully
// pre-generated timeline. The mutex serializes draws from the shared
// random source when sessions are created concurrently.
type Factory struct {
	mu  sync.Mutex
	gen *generator.Generator
}

func NewFactory(gen *generator.Generator) *Factory {
	return &Factory{gen: gen}
}

// Create builds a complete SimulationState. The entire timeline exists
// before the state is returned; nothing is generated lazily.
func (f *Factory) Create(ownerUserID, sessionID string, cfg Config) *models.SimulationState {
	f.mu.Lock()
	defer f.mu.Unlock()

	cfg = cfg.withDefaults()
	stepCount := int(cfg.SimulationMinutes * stepsPerMinute)

	state := &models.SimulationState{
		SessionID:          sessionID,
		OwnerUserID:        ownerUserID,
		Rounds:             cfg.Rounds,
		SimulationMinutes:  cfg.SimulationMinutes,
		StepCount:          stepCount,
		RealTimeMultiplier: 1.0 / cfg.SpeedMultiplier,
		WalletBalance:      initialWalletBalance,
		CreatedAt:          time.Now(),
	}

	state.ResourceHistory = models.ResourceHistory{
		AOxygen:  f.gen.ResourceSamples(cfg.Rounds),
		ALithium: f.gen.ResourceSamples(cfg.Rounds),
		BOxygen:  f.gen.ResourceSamples(cfg.Rounds),
		BLithium: f.gen.ResourceSamples(cfg.Rounds),
	}

	progress := models.Collections{}
	state.CollectionProgress = progress
	state.ResourceMeans = resourceMeans(progress)

	steps := make([]models.TimelineStep, 0, stepCount+1)
	multipliers := make([]float64, 0, stepCount+1)
	times := make([]float64, 0, stepCount+1)

	for step := 0; step <= stepCount; step++ {
		ratio := float64(step) / float64(stepCount)

		progress.AOxygen = f.advanceProgress(progress.AOxygen, ratio)
		progress.ALithium = f.advanceProgress(progress.ALithium, ratio)
		progress.BOxygen = f.advanceProgress(progress.BOxygen, ratio)
		progress.BLithium = f.advanceProgress(progress.BLithium, ratio)

		multiplier := 1.0 +
			weightAOxygen*progress.AOxygen/100 +
			weightALithium*progress.ALithium/100 +
			weightBOxygen*progress.BOxygen/100 +
			weightBLithium*progress.BLithium/100

		stepTime := float64(step) / stepsPerMinute

		entry := models.TimelineStep{
			Time:                stepTime,
			Multiplier:          multiplier,
			PredictedMultiplier: multiplier * predictedMultiplierGain,
			Collections:         progress,
		}

		if f.gen.Float64() < sideTradeProbability {
			entry.SideTrades = f.spawnSideTrades(stepTime, progress)
		}

		steps = append(steps, entry)
		multipliers = append(multipliers, multiplier)
		times = append(times, stepTime)
	}

	state.PreGeneratedData = steps
	state.MultiplierValues = multipliers
	state.TimeValues = times

	final := steps[len(steps)-1]
	state.FinalCollectionProgress = final.Collections
	state.FinalMultiplier = final.Multiplier

	// Cursor starts at the first step.
	first := steps[0]
	state.CurrentTimeMinutes = first.Time
	state.CurrentMultiplier = first.Multiplier
	state.PredictedFinalMultiplier = first.PredictedMultiplier
	state.ActiveSideTrades = append([]models.SideTrade(nil), first.SideTrades...)

	return state
}

// advanceProgress moves one series forward by a random increment that
// grows with elapsed simulation time, capped at 100.
func (f *Factory) advanceProgress(current, ratio float64) float64 {
	increment := f.gen.Float64() * baseProgressIncrement * math.Sqrt(ratio) * (0.5 + f.gen.Float64())
	next := current + increment
	if next > 100 {
		next = 100
	}
	return next
}

func (f *Factory) spawnSideTrades(stepTime float64, c models.Collections) []models.SideTrade {
	count := 1 + f.gen.Intn(3)
	trades := make([]models.SideTrade, 0, count)
	for i := 0; i < count; i++ {
		expression := sideTradeExpressions[f.gen.Intn(len(sideTradeExpressions))]
		action := models.TradeActionBuy
		if f.gen.Float64() < 0.5 {
			action = models.TradeActionSell
		}
		trades = append(trades, models.SideTrade{
			ID:         f.gen.Intn(1_000_000),
			Expression: expression,
			Price:      priceSideTrade(expression, c),
			Expiry:     stepTime + sideTradeExpiryMinutes,
			Value:      0.8 + f.gen.Float64()*0.4,
			Action:     action,
		})
	}
	return trades
}

func resourceMeans(progress models.Collections) models.Collections {
	mean := func(p float64) float64 {
		return baseResourceMean * (1 + p/100)
	}
	return models.Collections{
		AOxygen:  mean(progress.AOxygen),
		ALithium: mean(progress.ALithium),
		BOxygen:  mean(progress.BOxygen),
		BLithium: mean(progress.BLithium),
	}
}
