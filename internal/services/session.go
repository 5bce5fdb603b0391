package services

import (
	"errors"
	"log"

	"quantsim/internal/dao/record"
	"quantsim/internal/engines/simulation"
	"quantsim/internal/models"
	"quantsim/internal/store"
	"quantsim/internal/types"
)

var (
	// ErrForbidden marks a session owner mismatch. It aborts the whole
	// request; every other failure is reported as a structured result.
	ErrForbidden = errors.New("forbidden: session owner mismatch")

	// ErrInvalidRange marks an out-of-range time range query.
	ErrInvalidRange = errors.New("invalid time range")

	// ErrArchivalDisabled is returned for record queries when no
	// database is configured.
	ErrArchivalDisabled = errors.New("simulation archival is disabled")
)

// Broadcaster fans an event out to every member of a session room.
// Delivery is fire-and-forget and must never block the caller.
type Broadcaster interface {
	BroadcastToRoom(sessionID string, event types.EventType, payload map[string]interface{})
}

// SessionService orchestrates all session operations: it derives the
// session id from the requester, enforces ownership, runs the
// fetch-mutate-save sequence atomically through the store, and fans
// resulting events out to the session's room.
type SessionService struct {
	store    *store.SessionStore
	factory  *simulation.Factory
	hub      Broadcaster
	records  record.RecordDAOInterface // nil when archival is disabled
	defaults simulation.Config
}

func NewSessionService(sessions *store.SessionStore, factory *simulation.Factory, hub Broadcaster, records record.RecordDAOInterface, defaults simulation.Config) *SessionService {
	return &SessionService{
		store:    sessions,
		factory:  factory,
		hub:      hub,
		records:  records,
		defaults: defaults,
	}
}

// DeriveSessionID maps a user to their single session slot.
func (s *SessionService) DeriveSessionID(userID string) string {
	return "session:" + userID
}

// resolveSessionID rejects any externally supplied session id that does
// not match the requester's derived id.
func (s *SessionService) resolveSessionID(userID, explicitSessionID string) (string, error) {
	derived := s.DeriveSessionID(userID)
	if explicitSessionID != "" && explicitSessionID != derived {
		return "", ErrForbidden
	}
	return derived, nil
}

// mutate runs fn against the requester's session with the session lock
// held, creating the session with default configuration when absent.
func (s *SessionService) mutate(userID, explicitSessionID string, fn func(state *models.SimulationState) error) error {
	sessionID, err := s.resolveSessionID(userID, explicitSessionID)
	if err != nil {
		return err
	}
	create := func() *models.SimulationState {
		return s.factory.Create(userID, sessionID, s.defaults)
	}
	return s.store.Update(sessionID, create, func(state *models.SimulationState) error {
		if state.OwnerUserID != userID {
			return ErrForbidden
		}
		return fn(state)
	})
}

// Create builds a fresh, not-yet-started simulation for the requester,
// replacing any existing one wholesale.
func (s *SessionService) Create(userID, explicitSessionID string, cfg simulation.Config) (*models.SimulationState, error) {
	sessionID, err := s.resolveSessionID(userID, explicitSessionID)
	if err != nil {
		return nil, err
	}

	state, err := s.store.Swap(sessionID, func(old *models.SimulationState) (*models.SimulationState, error) {
		if old != nil && old.OwnerUserID != userID {
			return nil, ErrForbidden
		}
		return s.factory.Create(userID, sessionID, cfg), nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastToRoom(sessionID, types.EventSimulationDataUpdate, map[string]interface{}{
		"stepCount":     state.StepCount,
		"walletBalance": state.WalletBalance,
	})
	return state, nil
}

// Start activates the requester's session. Any prior session with the
// same id is terminated and replaced, never merged; the replacement
// keeps the prior configuration when one exists.
func (s *SessionService) Start(userID, explicitSessionID string) (*models.SimulationState, error) {
	sessionID, err := s.resolveSessionID(userID, explicitSessionID)
	if err != nil {
		return nil, err
	}

	var replaced *models.SimulationState
	state, err := s.store.Swap(sessionID, func(old *models.SimulationState) (*models.SimulationState, error) {
		if old != nil {
			if old.OwnerUserID != userID {
				return nil, ErrForbidden
			}
			simulation.Terminate(old)
			replaced = old
		}

		cfg := s.defaults
		if old != nil {
			cfg = simulation.Config{
				Rounds:            old.Rounds,
				SimulationMinutes: old.SimulationMinutes,
				SpeedMultiplier:   1.0 / old.RealTimeMultiplier,
			}
		}

		next := s.factory.Create(userID, sessionID, cfg)
		simulation.Start(next)
		s.createRecord(next)
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	if replaced != nil && replaced.RecordID != 0 {
		s.finalizeRecord(replaced)
	}

	s.hub.BroadcastToRoom(sessionID, types.EventSimulationStarted, map[string]interface{}{
		"stepCount":         state.StepCount,
		"simulationMinutes": state.SimulationMinutes,
		"walletBalance":     state.WalletBalance,
	})
	return state, nil
}

// Restart discards all trade history and regenerates the timeline.
func (s *SessionService) Restart(userID, explicitSessionID string) (*models.SimulationState, error) {
	return s.Start(userID, explicitSessionID)
}

// Pause marks the session paused. Idempotent.
func (s *SessionService) Pause(userID, explicitSessionID string) error {
	var recordID uint
	err := s.mutate(userID, explicitSessionID, func(state *models.SimulationState) error {
		simulation.Pause(state)
		recordID = state.RecordID
		return nil
	})
	if err != nil {
		return err
	}

	s.updateRecordStatus(recordID, models.RecordStatusPaused)
	s.hub.BroadcastToRoom(s.DeriveSessionID(userID), types.EventSimulationPaused, nil)
	return nil
}

// Resume clears the paused flag. A no-op on a non-paused session.
func (s *SessionService) Resume(userID, explicitSessionID string) error {
	var recordID uint
	err := s.mutate(userID, explicitSessionID, func(state *models.SimulationState) error {
		simulation.Resume(state)
		recordID = state.RecordID
		return nil
	})
	if err != nil {
		return err
	}

	s.updateRecordStatus(recordID, models.RecordStatusRunning)
	s.hub.BroadcastToRoom(s.DeriveSessionID(userID), types.EventSimulationResumed, nil)
	return nil
}

// Terminate deactivates the session and removes it from the store. The
// live state is lost permanently; only the archival record (when a
// database is configured) survives. Terminating an absent session is a
// no-op.
func (s *SessionService) Terminate(userID, explicitSessionID string) error {
	sessionID, err := s.resolveSessionID(userID, explicitSessionID)
	if err != nil {
		return err
	}

	var finished *models.SimulationState
	err = s.store.Remove(sessionID, func(state *models.SimulationState) error {
		if state.OwnerUserID != userID {
			return ErrForbidden
		}
		simulation.Terminate(state)
		finished = state
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNoSession) {
			return nil
		}
		return err
	}

	s.finalizeRecord(finished)

	s.hub.BroadcastToRoom(sessionID, types.EventSimulationTerminated, map[string]interface{}{
		"walletBalance": finished.WalletBalance,
		"tradeCount":    len(finished.UserTrades),
	})
	return nil
}

// ProcessTrade validates and applies one trade. A rejected trade
// reports false with no error and no state change.
func (s *SessionService) ProcessTrade(userID, explicitSessionID string, tradeType models.TradeType, action models.TradeAction, sideTradeID int) (bool, error) {
	accepted := false
	var applied models.Trade
	var wallet float64

	err := s.mutate(userID, explicitSessionID, func(state *models.SimulationState) error {
		accepted = simulation.ProcessTrade(state, tradeType, action, sideTradeID)
		if accepted {
			applied = state.UserTrades[len(state.UserTrades)-1]
			wallet = state.WalletBalance
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if accepted {
		s.hub.BroadcastToRoom(s.DeriveSessionID(userID), types.EventTradeProcessed, map[string]interface{}{
			"trade":         applied,
			"walletBalance": wallet,
		})
	}
	return accepted, nil
}

// ExecuteCommand parses the text command shorthand and applies the
// resulting trade.
func (s *SessionService) ExecuteCommand(userID, command string) (bool, error) {
	tradeType, action, sideTradeID, err := ParseTradeCommand(command)
	if err != nil {
		return false, err
	}
	return s.ProcessTrade(userID, "", tradeType, action, sideTradeID)
}

// SetDisplayTime moves the display cursor. An out-of-range index is
// silently ignored.
func (s *SessionService) SetDisplayTime(userID, explicitSessionID string, index int) (bool, error) {
	applied := false
	var state snapshotFields

	err := s.mutate(userID, explicitSessionID, func(st *models.SimulationState) error {
		applied = simulation.SetDisplayTime(st, index)
		if applied {
			state = snapshotOf(st)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if applied {
		s.hub.BroadcastToRoom(s.DeriveSessionID(userID), types.EventDisplayTimeUpdated, map[string]interface{}{
			"displayedTimeIndex": state.displayedTimeIndex,
			"currentTimeMinutes": state.currentTimeMinutes,
			"currentMultiplier":  state.currentMultiplier,
		})
	}
	return applied, nil
}

// Sync reconciles the server cursor with the client's reported clock.
func (s *SessionService) Sync(userID string, clientTime, clientDisplayedTime float64) (simulation.SyncResult, error) {
	var result simulation.SyncResult
	var state snapshotFields

	err := s.mutate(userID, "", func(st *models.SimulationState) error {
		result = simulation.SyncWithClient(st, clientTime, clientDisplayedTime)
		state = snapshotOf(st)
		return nil
	})
	if err != nil {
		return simulation.SyncResult{}, err
	}

	s.hub.BroadcastToRoom(s.DeriveSessionID(userID), types.EventClientSync, map[string]interface{}{
		"clientTime":         clientTime,
		"serverTime":         state.currentTimeMinutes,
		"displayedTimeIndex": state.displayedTimeIndex,
		"snapped":            result.Snapped,
	})
	return result, nil
}

type snapshotFields struct {
	currentTimeMinutes float64
	displayedTimeIndex int
	currentMultiplier  float64
}

func snapshotOf(state *models.SimulationState) snapshotFields {
	return snapshotFields{
		currentTimeMinutes: state.CurrentTimeMinutes,
		displayedTimeIndex: state.DisplayedTimeIndex,
		currentMultiplier:  state.CurrentMultiplier,
	}
}

func (s *SessionService) createRecord(state *models.SimulationState) {
	if s.records == nil {
		return
	}
	rec, err := s.records.CreateRecord(state)
	if err != nil {
		log.Printf("Failed to create simulation record for %s: %v", state.SessionID, err)
		return
	}
	state.RecordID = rec.ID
}

func (s *SessionService) updateRecordStatus(recordID uint, status models.RecordStatus) {
	if s.records == nil || recordID == 0 {
		return
	}
	if err := s.records.UpdateStatus(recordID, status); err != nil {
		log.Printf("Failed to update record %d status to %s: %v", recordID, status, err)
	}
}

func (s *SessionService) finalizeRecord(state *models.SimulationState) {
	if s.records == nil || state == nil || state.RecordID == 0 {
		return
	}
	result := simulation.CalculateResults(state)
	if err := s.records.FinalizeRecord(state.RecordID, result.FinalWallet, result.NetProfit, state.UserTrades); err != nil {
		log.Printf("Failed to finalize record %d: %v", state.RecordID, err)
	}
}

// Records lists the requester's archived simulations.
func (s *SessionService) Records(userID string, limit, offset int) ([]models.SimulationRecord, error) {
	if s.records == nil {
		return nil, ErrArchivalDisabled
	}
	return s.records.GetUserRecords(userID, limit, offset)
}

// RecordTrades returns the archived trade log of one of the
// requester's records.
func (s *SessionService) RecordTrades(userID string, recordID uint) ([]models.TradeRecord, error) {
	if s.records == nil {
		return nil, ErrArchivalDisabled
	}
	rec, err := s.records.GetRecord(recordID)
	if err != nil {
		return nil, err
	}
	if rec.OwnerUserID != userID {
		return nil, ErrForbidden
	}
	return s.records.GetRecordTrades(recordID)
}
