package models

import (
	"time"
)

type RecordStatus string

const (
	RecordStatusRunning    RecordStatus = "running"
	RecordStatusPaused     RecordStatus = "paused"
	RecordStatusTerminated RecordStatus = "terminated"
)

// SimulationRecord is the archival row written when a session starts and
// finalized when it terminates. Live simulation state never touches the
// database; records only summarize finished work.
type SimulationRecord struct {
	ID                uint         `json:"id" gorm:"primaryKey"`
	SessionID         string       `json:"session_id" gorm:"index;not null"`
	OwnerUserID       string       `json:"owner_user_id" gorm:"index;not null"`
	Rounds            int          `json:"rounds" gorm:"not null"`
	SimulationMinutes float64      `json:"simulation_minutes" gorm:"not null"`
	StepCount         int          `json:"step_count" gorm:"not null"`
	Status            RecordStatus `json:"status" gorm:"not null;default:running"`
	FinalWallet       *float64     `json:"final_wallet,omitempty"`
	NetProfit         *float64     `json:"net_profit,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

func (SimulationRecord) TableName() string {
	return "simulation_records"
}

// TradeRecord archives one entry of a session's trade log alongside its
// simulation record.
type TradeRecord struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RecordID    uint      `json:"record_id" gorm:"index;not null"`
	Type        string    `json:"type" gorm:"not null"`
	Action      string    `json:"action" gorm:"not null"`
	Value       float64   `json:"value" gorm:"not null"`
	TradeTime   float64   `json:"trade_time" gorm:"not null"`
	SideTradeID int       `json:"side_trade_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (TradeRecord) TableName() string {
	return "trade_records"
}
