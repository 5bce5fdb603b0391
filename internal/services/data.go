package services

import (
	"fmt"

	"quantsim/internal/engines/simulation"
	"quantsim/internal/models"
	"quantsim/internal/types"
)

// CurrentData is the live snapshot returned by the read path and by the
// WebSocket status request.
type CurrentData struct {
	SessionID                string             `json:"sessionId"`
	Active                   bool               `json:"active"`
	Paused                   bool               `json:"paused"`
	TradeActive              bool               `json:"tradeActive"`
	Finished                 bool               `json:"finished"`
	CurrentTimeMinutes       float64            `json:"currentTimeMinutes"`
	DisplayedTimeIndex       int                `json:"displayedTimeIndex"`
	CurrentMultiplier        float64            `json:"currentMultiplier"`
	PredictedFinalMultiplier float64            `json:"predictedFinalMultiplier"`
	SimulationMinutes        float64            `json:"simulationMinutes"`
	StepCount                int                `json:"stepCount"`
	WalletBalance            float64            `json:"walletBalance"`
	CollectionProgress       models.Collections `json:"collectionProgress"`
	ResourceMeans            models.Collections `json:"resourceMeans"`
	ActiveSideTrades         []models.SideTrade `json:"activeSideTrades"`
	TradeCount               int                `json:"tradeCount"`
}

// ensureActive reproduces the source's auto-start-on-read: any read of
// current data against an inactive session starts it first. Reports
// whether a start happened.
func (s *SessionService) ensureActive(state *models.SimulationState) bool {
	if state.Active {
		return false
	}
	simulation.Start(state)
	s.createRecord(state)
	return true
}

// CurrentData returns the live cursor snapshot for the requester's
// session, creating and starting it when necessary.
func (s *SessionService) CurrentData(userID string) (CurrentData, error) {
	var data CurrentData
	started := false

	err := s.mutate(userID, "", func(state *models.SimulationState) error {
		started = s.ensureActive(state)
		data = CurrentData{
			SessionID:                state.SessionID,
			Active:                   state.Active,
			Paused:                   state.Paused,
			TradeActive:              state.TradeActive,
			Finished:                 state.Finished(),
			CurrentTimeMinutes:       state.CurrentTimeMinutes,
			DisplayedTimeIndex:       state.DisplayedTimeIndex,
			CurrentMultiplier:        state.CurrentMultiplier,
			PredictedFinalMultiplier: state.PredictedFinalMultiplier,
			SimulationMinutes:        state.SimulationMinutes,
			StepCount:                state.StepCount,
			WalletBalance:            state.WalletBalance,
			CollectionProgress:       state.CollectionProgress,
			ResourceMeans:            state.ResourceMeans,
			ActiveSideTrades:         append([]models.SideTrade(nil), state.ActiveSideTrades...),
			TradeCount:               len(state.UserTrades),
		}
		return nil
	})
	if err != nil {
		return CurrentData{}, err
	}

	if started {
		s.hub.BroadcastToRoom(data.SessionID, types.EventSimulationStarted, map[string]interface{}{
			"stepCount":         data.StepCount,
			"simulationMinutes": data.SimulationMinutes,
			"walletBalance":     data.WalletBalance,
		})
	}
	return data, nil
}

// TimeRange returns the pre-generated steps in [startIndex, endIndex],
// inclusive.
func (s *SessionService) TimeRange(userID string, startIndex, endIndex int) ([]models.TimelineStep, error) {
	var steps []models.TimelineStep
	started := false
	sessionID := s.DeriveSessionID(userID)

	err := s.mutate(userID, "", func(state *models.SimulationState) error {
		if startIndex < 0 || endIndex < startIndex || endIndex >= len(state.PreGeneratedData) {
			return fmt.Errorf("%w: [%d, %d] outside 0..%d", ErrInvalidRange, startIndex, endIndex, len(state.PreGeneratedData)-1)
		}
		started = s.ensureActive(state)
		steps = append(steps, state.PreGeneratedData[startIndex:endIndex+1]...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if started {
		s.hub.BroadcastToRoom(sessionID, types.EventSimulationStarted, nil)
	}
	return steps, nil
}

// Results computes the profit/loss projection for the requester's
// session on demand.
func (s *SessionService) Results(userID string) (models.SimulationResult, error) {
	var result models.SimulationResult
	started := false
	sessionID := s.DeriveSessionID(userID)

	err := s.mutate(userID, "", func(state *models.SimulationState) error {
		started = s.ensureActive(state)
		result = simulation.CalculateResults(state)
		return nil
	})
	if err != nil {
		return models.SimulationResult{}, err
	}

	if started {
		s.hub.BroadcastToRoom(sessionID, types.EventSimulationStarted, nil)
	}
	return result, nil
}
