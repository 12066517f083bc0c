package handler

import (
	"strconv"

	"Omamori/internal/modules/monitoring/application/dto/request"
	"Omamori/internal/modules/monitoring/application/service"
	"Omamori/pkg/back"
	"Omamori/pkg/xerr"
	"Omamori/pkg/zlog"

	"github.com/gin-gonic/gin"
)

type MonitoringHandler struct {
	sessions service.WorkSessionService
	logs     service.SafetyLogService
	risk     service.RiskAssessmentService
}

func NewMonitoringHandler(sessions service.WorkSessionService, logs service.SafetyLogService, risk service.RiskAssessmentService) *MonitoringHandler {
	return &MonitoringHandler{sessions: sessions, logs: logs, risk: risk}
}

func (h *MonitoringHandler) StartWorkSession(c *gin.Context) {
	var req request.StartWorkSessionRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.sessions.Start(c.Request.Context(), c.GetString("uuid"), req)
	back.Result(c, data, err)
}

func (h *MonitoringHandler) GetWorkSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	data, err := h.sessions.Get(c.Request.Context(), c.GetString("uuid"), id)
	back.Result(c, data, err)
}

// ListOrganizationWorkSessions serves GET /organizations/:id/work_sessions.
func (h *MonitoringHandler) ListOrganizationWorkSessions(c *gin.Context) {
	orgID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req request.ListWorkSessionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.sessions.ListByOrganization(c.Request.Context(), c.GetString("uuid"), orgID, req)
	back.Result(c, data, err)
}

func (h *MonitoringHandler) FinishWorkSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	data, err := h.sessions.Finish(c.Request.Context(), c.GetString("uuid"), id)
	back.Result(c, data, err)
}

func (h *MonitoringHandler) CancelWorkSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	data, err := h.sessions.Cancel(c.Request.Context(), c.GetString("uuid"), id)
	back.Result(c, data, err)
}

func (h *MonitoringHandler) CreateSafetyLog(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req request.CreateSafetyLogRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.logs.Create(c.Request.Context(), c.GetString("uuid"), id, req)
	back.Result(c, data, err)
}

func (h *MonitoringHandler) ListSafetyLogs(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var page request.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.logs.List(c.Request.Context(), c.GetString("uuid"), id, page)
	back.Result(c, data, err)
}

func (h *MonitoringHandler) UndoSafetyLog(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	logID, ok := paramID(c, "log_id")
	if !ok {
		return
	}
	data, err := h.logs.Undo(c.Request.Context(), c.GetString("uuid"), id, logID)
	back.Result(c, data, err)
}

func (h *MonitoringHandler) AssessRisk(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	data, err := h.risk.AssessRisk(c.Request.Context(), c.GetString("uuid"), id)
	back.Result(c, data, err)
}

func (h *MonitoringHandler) LatestRisk(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	data, err := h.risk.LatestRisk(c.Request.Context(), c.GetString("uuid"), id)
	back.Result(c, data, err)
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return 0, false
	}
	return id, true
}
