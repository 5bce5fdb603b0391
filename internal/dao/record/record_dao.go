package record

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"quantsim/internal/models"
)

// ErrRecordNotFound is returned when no simulation record exists for
// the requested id.
var ErrRecordNotFound = errors.New("simulation record not found")

// RecordDAO handles database operations for simulation archival records.
type RecordDAO struct {
	db *gorm.DB
}

// RecordDAOInterface defines the contract for simulation record access.
type RecordDAOInterface interface {
	CreateRecord(state *models.SimulationState) (*models.SimulationRecord, error)
	UpdateStatus(recordID uint, status models.RecordStatus) error
	FinalizeRecord(recordID uint, finalWallet, netProfit float64, trades []models.Trade) error
	GetRecord(recordID uint) (*models.SimulationRecord, error)
	GetUserRecords(ownerUserID string, limit, offset int) ([]models.SimulationRecord, error)
	GetRecordTrades(recordID uint) ([]models.TradeRecord, error)
}

// NewRecordDAO creates a new record DAO instance.
func NewRecordDAO(db *gorm.DB) RecordDAOInterface {
	return &RecordDAO{db: db}
}

// CreateRecord creates the archival row when a simulation starts.
func (r *RecordDAO) CreateRecord(state *models.SimulationState) (*models.SimulationRecord, error) {
	rec := &models.SimulationRecord{
		SessionID:         state.SessionID,
		OwnerUserID:       state.OwnerUserID,
		Rounds:            state.Rounds,
		SimulationMinutes: state.SimulationMinutes,
		StepCount:         state.StepCount,
		Status:            models.RecordStatusRunning,
	}

	if err := r.db.Create(rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create simulation record: %w", err)
	}

	log.Printf("Created simulation record: ID=%d, Session=%s, Steps=%d",
		rec.ID, rec.SessionID, rec.StepCount)
	return rec, nil
}

// UpdateStatus updates the status of a simulation record.
func (r *RecordDAO) UpdateStatus(recordID uint, status models.RecordStatus) error {
	result := r.db.Model(&models.SimulationRecord{}).
		Where("id = ?", recordID).
		Update("status", status)

	if result.Error != nil {
		return fmt.Errorf("failed to update record status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("simulation record not found: %d", recordID)
	}
	return nil
}

// FinalizeRecord marks a record terminated and archives the session's
// trade log alongside it in one transaction.
func (r *RecordDAO) FinalizeRecord(recordID uint, finalWallet, netProfit float64, trades []models.Trade) error {
	tx := r.db.Begin()
	defer func() {
		if rec := recover(); rec != nil {
			tx.Rollback()
		}
	}()

	updates := map[string]interface{}{
		"status":       models.RecordStatusTerminated,
		"final_wallet": finalWallet,
		"net_profit":   netProfit,
	}
	result := tx.Model(&models.SimulationRecord{}).
		Where("id = ?", recordID).
		Updates(updates)
	if result.Error != nil {
		tx.Rollback()
		return fmt.Errorf("failed to finalize record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return fmt.Errorf("simulation record not found: %d", recordID)
	}

	for _, trade := range trades {
		row := &models.TradeRecord{
			RecordID:    recordID,
			Type:        string(trade.Type),
			Action:      string(trade.Action),
			Value:       trade.Value,
			TradeTime:   trade.Time,
			SideTradeID: trade.SideTradeID,
		}
		if err := tx.Create(row).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to archive trade: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit record finalization: %w", err)
	}

	log.Printf("Finalized simulation record %d with %d trades, finalWallet=%.2f, netProfit=%.2f",
		recordID, len(trades), finalWallet, netProfit)
	return nil
}

// GetRecord retrieves one simulation record by id.
func (r *RecordDAO) GetRecord(recordID uint) (*models.SimulationRecord, error) {
	var rec models.SimulationRecord
	if err := r.db.First(&rec, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get simulation record: %w", err)
	}
	return &rec, nil
}

// GetUserRecords retrieves archived simulations for a user, newest
// first.
func (r *RecordDAO) GetUserRecords(ownerUserID string, limit, offset int) ([]models.SimulationRecord, error) {
	var records []models.SimulationRecord
	query := r.db.Where("owner_user_id = ?", ownerUserID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get user records: %w", err)
	}
	return records, nil
}

// GetRecordTrades retrieves the archived trade log for a record.
func (r *RecordDAO) GetRecordTrades(recordID uint) ([]models.TradeRecord, error) {
	var trades []models.TradeRecord
	if err := r.db.Where("record_id = ?", recordID).
		Order("id ASC").
		Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to get record trades: %w", err)
	}
	return trades, nil
}
