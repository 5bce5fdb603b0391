package services

import (
	"errors"
	"math/rand"
	"testing"

	"quantsim/internal/dao/record"
	"quantsim/internal/engines/generator"
	"quantsim/internal/engines/simulation"
	"quantsim/internal/models"
	"quantsim/internal/store"
	"quantsim/internal/types"
)

type recordedEvent struct {
	sessionID string
	event     types.EventType
	payload   map[string]interface{}
}

// fakeHub records broadcasts instead of fanning them out.
type fakeHub struct {
	events []recordedEvent
}

func (h *fakeHub) BroadcastToRoom(sessionID string, event types.EventType, payload map[string]interface{}) {
	h.events = append(h.events, recordedEvent{sessionID: sessionID, event: event, payload: payload})
}

func (h *fakeHub) last() recordedEvent {
	if len(h.events) == 0 {
		return recordedEvent{}
	}
	return h.events[len(h.events)-1]
}

func newTestService(seed int64) (*SessionService, *fakeHub) {
	hub := &fakeHub{}
	factory := simulation.NewFactory(generator.New(rand.New(rand.NewSource(seed))))
	defaults := simulation.Config{Rounds: 5, SimulationMinutes: 10, SpeedMultiplier: 1}
	svc := NewSessionService(store.NewSessionStore(), factory, hub, nil, defaults)
	return svc, hub
}

func TestDeriveSessionID(t *testing.T) {
	svc, _ := newTestService(1)
	if got := svc.DeriveSessionID("alice"); got != "session:alice" {
		t.Fatalf("DeriveSessionID = %q, want session:alice", got)
	}
}

func TestStart_CreatesAndBroadcasts(t *testing.T) {
	svc, hub := newTestService(1)

	state, err := svc.Start("alice", "")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !state.Active || state.Paused || !state.TradeActive {
		t.Fatalf("unexpected flags after start: active=%v paused=%v tradeActive=%v",
			state.Active, state.Paused, state.TradeActive)
	}
	if state.SessionID != "session:alice" {
		t.Fatalf("session id = %q", state.SessionID)
	}

	last := hub.last()
	if last.event != types.EventSimulationStarted || last.sessionID != "session:alice" {
		t.Fatalf("broadcast = %s to %s, want simulation-started to session:alice", last.event, last.sessionID)
	}
}

func TestStart_ReplacesExistingSession(t *testing.T) {
	svc, _ := newTestService(1)

	first, _ := svc.Start("alice", "")
	svc.ProcessTrade("alice", "", models.TradeTypeMarket, models.TradeActionBuy, 0)

	second, err := svc.Start("alice", "")
	if err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if second == first {
		t.Fatal("start reused the old state instead of replacing it")
	}
	if len(second.UserTrades) != 0 {
		t.Fatal("trade history survived a restart")
	}
	if second.WalletBalance != 1000 {
		t.Fatalf("wallet = %f after restart, want 1000", second.WalletBalance)
	}
	if first.Active {
		t.Fatal("replaced session still active")
	}
	if second.Rounds != first.Rounds || second.SimulationMinutes != first.SimulationMinutes {
		t.Fatal("restart did not keep the prior configuration")
	}
}

func TestOwnershipMismatchIsForbidden(t *testing.T) {
	svc, hub := newTestService(1)

	if _, err := svc.Start("alice", "session:bob"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Pause("alice", "session:bob"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(hub.events) != 0 {
		t.Fatal("forbidden request produced broadcasts")
	}
	if svc.store.Len() != 0 {
		t.Fatal("forbidden request left partial state behind")
	}
}

func TestRecords_DisabledWithoutDatabase(t *testing.T) {
	svc, _ := newTestService(1)
	if _, err := svc.Records("alice", 10, 0); !errors.Is(err, ErrArchivalDisabled) {
		t.Fatalf("expected ErrArchivalDisabled, got %v", err)
	}
	if _, err := svc.RecordTrades("alice", 1); !errors.Is(err, ErrArchivalDisabled) {
		t.Fatalf("expected ErrArchivalDisabled, got %v", err)
	}
}

// fakeRecordDAO backs archival tests without a database.
type fakeRecordDAO struct {
	records map[uint]*models.SimulationRecord
	trades  map[uint][]models.TradeRecord
}

func (d *fakeRecordDAO) CreateRecord(state *models.SimulationState) (*models.SimulationRecord, error) {
	rec := &models.SimulationRecord{
		ID:          uint(len(d.records) + 1),
		SessionID:   state.SessionID,
		OwnerUserID: state.OwnerUserID,
		Status:      models.RecordStatusRunning,
	}
	d.records[rec.ID] = rec
	return rec, nil
}

func (d *fakeRecordDAO) UpdateStatus(recordID uint, status models.RecordStatus) error {
	rec, ok := d.records[recordID]
	if !ok {
		return record.ErrRecordNotFound
	}
	rec.Status = status
	return nil
}

func (d *fakeRecordDAO) FinalizeRecord(recordID uint, finalWallet, netProfit float64, trades []models.Trade) error {
	rec, ok := d.records[recordID]
	if !ok {
		return record.ErrRecordNotFound
	}
	rec.Status = models.RecordStatusTerminated
	for _, trade := range trades {
		d.trades[recordID] = append(d.trades[recordID], models.TradeRecord{
			RecordID: recordID,
			Type:     string(trade.Type),
			Action:   string(trade.Action),
			Value:    trade.Value,
		})
	}
	return nil
}

func (d *fakeRecordDAO) GetRecord(recordID uint) (*models.SimulationRecord, error) {
	rec, ok := d.records[recordID]
	if !ok {
		return nil, record.ErrRecordNotFound
	}
	return rec, nil
}

func (d *fakeRecordDAO) GetUserRecords(ownerUserID string, limit, offset int) ([]models.SimulationRecord, error) {
	var out []models.SimulationRecord
	for _, rec := range d.records {
		if rec.OwnerUserID == ownerUserID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (d *fakeRecordDAO) GetRecordTrades(recordID uint) ([]models.TradeRecord, error) {
	return d.trades[recordID], nil
}

func newArchivalService(seed int64) (*SessionService, *fakeRecordDAO) {
	dao := &fakeRecordDAO{
		records: make(map[uint]*models.SimulationRecord),
		trades:  make(map[uint][]models.TradeRecord),
	}
	factory := simulation.NewFactory(generator.New(rand.New(rand.NewSource(seed))))
	defaults := simulation.Config{Rounds: 5, SimulationMinutes: 10, SpeedMultiplier: 1}
	svc := NewSessionService(store.NewSessionStore(), factory, &fakeHub{}, dao, defaults)
	return svc, dao
}

func TestRecordTrades_ReturnsArchivedLog(t *testing.T) {
	svc, dao := newArchivalService(1)
	state, _ := svc.Start("alice", "")
	svc.ProcessTrade("alice", "", models.TradeTypeMarket, models.TradeActionBuy, 0)
	svc.ProcessTrade("alice", "", models.TradeTypeMarket, models.TradeActionSell, 0)

	if err := svc.Terminate("alice", ""); err != nil {
		t.Fatalf("terminate failed: %v", err)
	}
	if dao.records[state.RecordID].Status != models.RecordStatusTerminated {
		t.Fatalf("record status = %s, want terminated", dao.records[state.RecordID].Status)
	}

	trades, err := svc.RecordTrades("alice", state.RecordID)
	if err != nil {
		t.Fatalf("record trades failed: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("archived %d trades, want 2", len(trades))
	}
}

func TestRecordTrades_OwnershipAndNotFound(t *testing.T) {
	svc, _ := newArchivalService(1)
	state, _ := svc.Start("alice", "")
	svc.Terminate("alice", "")

	if _, err := svc.RecordTrades("bob", state.RecordID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
	if _, err := svc.RecordTrades("alice", 999); !errors.Is(err, record.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestPauseResume_Broadcasts(t *testing.T) {
	svc, hub := newTestService(1)
	svc.Start("alice", "")

	if err := svc.Pause("alice", ""); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if hub.last().event != types.EventSimulationPaused {
		t.Fatalf("last event = %s, want simulation-paused", hub.last().event)
	}

	if err := svc.Resume("alice", ""); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if hub.last().event != types.EventSimulationResumed {
		t.Fatalf("last event = %s, want simulation-resumed", hub.last().event)
	}
}

func TestPause_DoesNotBlockTrading(t *testing.T) {
	svc, _ := newTestService(1)
	svc.Start("alice", "")
	svc.Pause("alice", "")

	accepted, err := svc.ProcessTrade("alice", "", models.TradeTypeMarket, models.TradeActionBuy, 0)
	if err != nil {
		t.Fatalf("trade failed: %v", err)
	}
	if !accepted {
		t.Fatal("paused session rejected a trade; pause only toggles the paused flag")
	}
}

func TestTerminate_RemovesSession(t *testing.T) {
	svc, hub := newTestService(1)
	state, _ := svc.Start("alice", "")

	if err := svc.Terminate("alice", ""); err != nil {
		t.Fatalf("terminate failed: %v", err)
	}
	if state.Active || state.TradeActive {
		t.Fatal("terminate left flags set")
	}
	if hub.last().event != types.EventSimulationTerminated {
		t.Fatalf("last event = %s, want simulation-terminated", hub.last().event)
	}

	// A subsequent read recreates from scratch.
	data, err := svc.CurrentData("alice")
	if err != nil {
		t.Fatalf("read after terminate failed: %v", err)
	}
	if data.WalletBalance != 1000 || data.TradeCount != 0 {
		t.Fatal("terminated session state leaked into the new session")
	}
}

func TestTerminate_AbsentSessionIsNoOp(t *testing.T) {
	svc, hub := newTestService(1)
	if err := svc.Terminate("ghost", ""); err != nil {
		t.Fatalf("terminate of absent session errored: %v", err)
	}
	if len(hub.events) != 0 {
		t.Fatal("terminate of absent session broadcast an event")
	}
}

func TestProcessTrade_BroadcastsOnlyWhenAccepted(t *testing.T) {
	svc, hub := newTestService(1)
	svc.Start("alice", "")

	accepted, err := svc.ProcessTrade("alice", "", models.TradeTypeMarket, models.TradeActionBuy, 0)
	if err != nil || !accepted {
		t.Fatalf("trade: accepted=%v err=%v", accepted, err)
	}
	if hub.last().event != types.EventTradeProcessed {
		t.Fatalf("last event = %s, want trade-processed", hub.last().event)
	}

	before := len(hub.events)
	accepted, err = svc.ProcessTrade("alice", "", models.TradeTypeSide, models.TradeActionBuy, 999999)
	if err != nil {
		t.Fatalf("unknown side trade errored: %v", err)
	}
	if accepted {
		t.Fatal("unknown side trade id was accepted")
	}
	if len(hub.events) != before {
		t.Fatal("rejected trade produced a broadcast")
	}
}

func TestCurrentData_AutoStarts(t *testing.T) {
	svc, hub := newTestService(1)

	data, err := svc.CurrentData("alice")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !data.Active {
		t.Fatal("read did not auto-start the session")
	}
	if data.WalletBalance != 1000 {
		t.Fatalf("wallet = %f, want 1000", data.WalletBalance)
	}
	if hub.last().event != types.EventSimulationStarted {
		t.Fatalf("last event = %s, want simulation-started", hub.last().event)
	}

	// Second read must not start again.
	before := len(hub.events)
	if _, err := svc.CurrentData("alice"); err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if len(hub.events) != before {
		t.Fatal("second read broadcast another start")
	}
}

func TestTimeRange(t *testing.T) {
	svc, _ := newTestService(1)
	state, _ := svc.Start("alice", "")

	steps, err := svc.TimeRange("alice", 0, 4)
	if err != nil {
		t.Fatalf("range failed: %v", err)
	}
	if len(steps) != 5 {
		t.Fatalf("got %d steps, want 5 (inclusive bounds)", len(steps))
	}

	if _, err := svc.TimeRange("alice", 5, 2); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("inverted range: got %v, want ErrInvalidRange", err)
	}
	if _, err := svc.TimeRange("alice", 0, state.StepCount+1); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("past-end range: got %v, want ErrInvalidRange", err)
	}
}

func TestExecuteCommand(t *testing.T) {
	svc, _ := newTestService(1)
	svc.Start("alice", "")

	accepted, err := svc.ExecuteCommand("alice", "m b")
	if err != nil || !accepted {
		t.Fatalf("command: accepted=%v err=%v", accepted, err)
	}

	if _, err := svc.ExecuteCommand("alice", "nonsense"); !errors.Is(err, ErrInvalidCommand) {
		t.Fatalf("malformed command: got %v, want ErrInvalidCommand", err)
	}
}

func TestSync_SnapsOnDrift(t *testing.T) {
	svc, hub := newTestService(1)
	svc.Start("alice", "")

	result, err := svc.Sync("alice", 3.0, 3.0)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if !result.Snapped {
		t.Fatal("3-minute drift did not snap")
	}
	if hub.last().event != types.EventClientSync {
		t.Fatalf("last event = %s, want client-sync", hub.last().event)
	}
}
