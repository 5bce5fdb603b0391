package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quantsim/internal/engines/simulation"
	"quantsim/internal/models"
	"quantsim/internal/services"
)

type SimulationHandler struct {
	sessions *services.SessionService
}

func NewSimulationHandler(sessions *services.SessionService) *SimulationHandler {
	return &SimulationHandler{
		sessions: sessions,
	}
}

type CreateSimulationRequest struct {
	SessionID         string  `json:"sessionId"`
	Rounds            int     `json:"rounds"`
	SimulationMinutes float64 `json:"simulationMinutes"`
	SpeedMultiplier   float64 `json:"speedMultiplier"`
}

type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

type TradeRequest struct {
	SessionID   string `json:"sessionId"`
	Type        string `json:"type" binding:"required"`
	Action      string `json:"action" binding:"required"`
	SideTradeID int    `json:"sideTradeId"`
}

type CommandRequest struct {
	Command string `json:"command" binding:"required"`
}

type DisplayTimeRequest struct {
	SessionID string `json:"sessionId"`
	Index     *int   `json:"index" binding:"required"`
}

type SyncRequest struct {
	ClientTime          float64 `json:"clientTime"`
	ClientDisplayedTime float64 `json:"clientDisplayedTime"`
}

// POST /api/v1/simulation/create
func (sh *SimulationHandler) CreateSimulation(c *gin.Context) {
	var req CreateSimulationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	state, err := sh.sessions.Create(requesterID(c), req.SessionID, simulation.Config{
		Rounds:            req.Rounds,
		SimulationMinutes: req.SimulationMinutes,
		SpeedMultiplier:   req.SpeedMultiplier,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Simulation created",
		"sessionId": state.SessionID,
		"stepCount": state.StepCount,
	})
}

// POST /api/v1/simulation/start
func (sh *SimulationHandler) StartSimulation(c *gin.Context) {
	req := sh.bindSessionRequest(c)
	if req == nil {
		return
	}

	state, err := sh.sessions.Start(requesterID(c), req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Simulation started",
		"sessionId":         state.SessionID,
		"stepCount":         state.StepCount,
		"simulationMinutes": state.SimulationMinutes,
		"walletBalance":     state.WalletBalance,
	})
}

// POST /api/v1/simulation/pause
func (sh *SimulationHandler) PauseSimulation(c *gin.Context) {
	req := sh.bindSessionRequest(c)
	if req == nil {
		return
	}

	if err := sh.sessions.Pause(requesterID(c), req.SessionID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Simulation paused"})
}

// POST /api/v1/simulation/resume
func (sh *SimulationHandler) ResumeSimulation(c *gin.Context) {
	req := sh.bindSessionRequest(c)
	if req == nil {
		return
	}

	if err := sh.sessions.Resume(requesterID(c), req.SessionID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Simulation resumed"})
}

// POST /api/v1/simulation/restart
func (sh *SimulationHandler) RestartSimulation(c *gin.Context) {
	req := sh.bindSessionRequest(c)
	if req == nil {
		return
	}

	state, err := sh.sessions.Restart(requesterID(c), req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Simulation restarted",
		"sessionId": state.SessionID,
		"stepCount": state.StepCount,
	})
}

// POST /api/v1/simulation/terminate
func (sh *SimulationHandler) TerminateSimulation(c *gin.Context) {
	req := sh.bindSessionRequest(c)
	if req == nil {
		return
	}

	if err := sh.sessions.Terminate(requesterID(c), req.SessionID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Simulation terminated"})
}

// POST /api/v1/simulation/trade
func (sh *SimulationHandler) ProcessTrade(c *gin.Context) {
	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tradeType := models.TradeType(req.Type)
	if tradeType != models.TradeTypeMarket && tradeType != models.TradeTypeSide {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be market or side"})
		return
	}
	action := models.TradeAction(req.Action)
	if action != models.TradeActionBuy && action != models.TradeActionSell {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be buy or sell"})
		return
	}

	accepted, err := sh.sessions.ProcessTrade(requesterID(c), req.SessionID, tradeType, action, req.SideTradeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accepted": accepted})
}

// POST /api/v1/simulation/command
func (sh *SimulationHandler) ExecuteCommand(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accepted, err := sh.sessions.ExecuteCommand(requesterID(c), req.Command)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accepted": accepted,
		"command":  req.Command,
	})
}

// POST /api/v1/simulation/display-time
func (sh *SimulationHandler) SetDisplayTime(c *gin.Context) {
	var req DisplayTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	applied, err := sh.sessions.SetDisplayTime(requesterID(c), req.SessionID, *req.Index)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

// POST /api/v1/simulation/sync
func (sh *SimulationHandler) SyncWithClient(c *gin.Context) {
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := sh.sessions.Sync(requesterID(c), req.ClientTime, req.ClientDisplayedTime)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GET /api/v1/simulation/data/current
func (sh *SimulationHandler) GetCurrentData(c *gin.Context) {
	data, err := sh.sessions.CurrentData(requesterID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// GET /api/v1/simulation/data/range?start=&end=
func (sh *SimulationHandler) GetTimeRange(c *gin.Context) {
	start, err := strconv.Atoi(c.DefaultQuery("start", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start index"})
		return
	}
	end, err := strconv.Atoi(c.DefaultQuery("end", "-1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end index"})
		return
	}

	steps, err := sh.sessions.TimeRange(requesterID(c), start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"start": start,
		"end":   end,
		"steps": steps,
	})
}

// GET /api/v1/simulation/results
func (sh *SimulationHandler) GetResults(c *gin.Context) {
	result, err := sh.sessions.Results(requesterID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (sh *SimulationHandler) bindSessionRequest(c *gin.Context) *SessionRequest {
	req := &SessionRequest{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil
		}
	}
	return req
}

// RegisterSimulationRoutes registers all simulation routes.
func RegisterSimulationRoutes(router *gin.RouterGroup, handler *SimulationHandler) {
	sim := router.Group("/simulation")
	{
		sim.POST("/create", handler.CreateSimulation)
		sim.POST("/start", handler.StartSimulation)
		sim.POST("/pause", handler.PauseSimulation)
		sim.POST("/resume", handler.ResumeSimulation)
		sim.POST("/restart", handler.RestartSimulation)
		sim.POST("/terminate", handler.TerminateSimulation)
		sim.POST("/trade", handler.ProcessTrade)
		sim.POST("/command", handler.ExecuteCommand)
		sim.POST("/display-time", handler.SetDisplayTime)
		sim.POST("/sync", handler.SyncWithClient)
		sim.GET("/data/current", handler.GetCurrentData)
		sim.GET("/data/range", handler.GetTimeRange)
		sim.GET("/results", handler.GetResults)
	}
}
