package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/cfp/internal/logic"
	"github.com/gin-gonic/gin"
)

// AdminHandler 管理员处理器
type AdminHandler struct {
	adminLogic *logic.AdminLogic
}

// NewAdminHandler 创建管理员处理器
func NewAdminHandler(adminLogic *logic.AdminLogic) *AdminHandler {
	return &AdminHandler{adminLogic: adminLogic}
}

// GetFounders 获取待认证发起人列表
func (h *AdminHandler) GetFounders(c *gin.Context) {
	founders, err := h.adminLogic.ListPendingFounders()
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取发起人列表成功", gin.H{"founders": founders})
}

// ApproveFounder 发起人认证通过
func (h *AdminHandler) ApproveFounder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的用户ID")
		return
	}

	if err := h.adminLogic.ApproveFounder(id); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "发起人认证通过", nil)
}

// RejectRequest 驳回请求体
type RejectRequest struct {
	Reason string `json:"reason"`
}

// RejectFounder 发起人认证驳回
func (h *AdminHandler) RejectFounder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的用户ID")
		return
	}

	var req RejectRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.adminLogic.RejectFounder(id, req.Reason); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "发起人认证已驳回", nil)
}

// GetCampaigns 按状态获取活动列表（默认待审核）
func (h *AdminHandler) GetCampaigns(c *gin.Context) {
	campaigns, err := h.adminLogic.ListCampaigns(c.Query("status"))
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取活动列表成功", gin.H{"campaigns": campaigns})
}

// ApproveCampaign 活动审核通过
func (h *AdminHandler) ApproveCampaign(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	if err := h.adminLogic.ApproveCampaign(id); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "活动审核通过", nil)
}

// RejectCampaign 活动审核驳回
func (h *AdminHandler) RejectCampaign(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var req RejectRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.adminLogic.RejectCampaign(id, req.Reason); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "活动已驳回", nil)
}
