package handler

import (
	"strconv"

	"Omamori/internal/modules/organization/application/dto/request"
	"Omamori/internal/modules/organization/application/service"
	"Omamori/pkg/back"
	"Omamori/pkg/xerr"
	"Omamori/pkg/zlog"

	"github.com/gin-gonic/gin"
)

type OrganizationHandler struct {
	svc service.OrganizationService
}

func NewOrganizationHandler(svc service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{svc: svc}
}

func (h *OrganizationHandler) Create(c *gin.Context) {
	var req request.CreateOrganizationRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Create(c.Request.Context(), c.GetString("uuid"), req)
	back.Result(c, data, err)
}

func (h *OrganizationHandler) AddMember(c *gin.Context) {
	orgID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	var req request.AddMemberRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.AddMember(c.Request.Context(), c.GetString("uuid"), orgID, req)
	back.Result(c, data, err)
}

func (h *OrganizationHandler) ListMine(c *gin.Context) {
	data, err := h.svc.ListMine(c.Request.Context(), c.GetString("uuid"))
	back.Result(c, data, err)
}

func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	orgID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.ListMembers(c.Request.Context(), c.GetString("uuid"), orgID)
	back.Result(c, data, err)
}
