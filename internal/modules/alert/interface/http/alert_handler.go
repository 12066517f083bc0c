package handler

import (
	"strconv"

	"Omamori/internal/modules/alert/application/dto/request"
	"Omamori/internal/modules/alert/application/service"
	"Omamori/pkg/back"
	"Omamori/pkg/xerr"
	"Omamori/pkg/zlog"

	"github.com/gin-gonic/gin"
)

type AlertHandler struct {
	svc service.AlertService
}

func NewAlertHandler(svc service.AlertService) *AlertHandler {
	return &AlertHandler{svc: svc}
}

func (h *AlertHandler) Create(c *gin.Context) {
	var req request.CreateAlertRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Create(c.Request.Context(), c.GetString("uuid"), req)
	back.Result(c, data, err)
}

func (h *AlertHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	data, err := h.svc.Get(c.Request.Context(), c.GetString("uuid"), id)
	back.Result(c, data, err)
}

// ListByOrganization serves GET /organizations/:id/alerts.
func (h *AlertHandler) ListByOrganization(c *gin.Context) {
	orgID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req request.ListAlertRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.List(c.Request.Context(), c.GetString("uuid"), orgID, req)
	back.Result(c, data, err)
}

func (h *AlertHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req request.UpdateAlertStatusRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.UpdateStatus(c.Request.Context(), c.GetString("uuid"), id, req.Status)
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
