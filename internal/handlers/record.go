package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quantsim/internal/dao/record"
	"quantsim/internal/services"
)

type RecordHandler struct {
	sessions *services.SessionService
}

func NewRecordHandler(sessions *services.SessionService) *RecordHandler {
	return &RecordHandler{
		sessions: sessions,
	}
}

// GET /api/v1/records?limit=&offset=
func (rh *RecordHandler) ListRecords(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, err := rh.sessions.Records(requesterID(c), limit, offset)
	if err != nil {
		if errors.Is(err, services.ErrArchivalDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records})
}

// GET /api/v1/records/:id/trades
func (rh *RecordHandler) GetRecordTrades(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	trades, err := rh.sessions.RecordTrades(requesterID(c), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrArchivalDisabled):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		case errors.Is(err, record.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			respondError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recordId": id,
		"trades":   trades,
	})
}

// RegisterRecordRoutes registers archival record routes.
func RegisterRecordRoutes(router *gin.RouterGroup, handler *RecordHandler) {
	router.GET("/records", handler.ListRecords)
	router.GET("/records/:id/trades", handler.GetRecordTrades)
}
