package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/cfp/internal/logic"
	"github.com/blues/cfp/internal/middleware"
	"github.com/gin-gonic/gin"
)

// PaymentHandler 支付处理器
type PaymentHandler struct {
	paymentLogic *logic.PaymentLogic
}

// NewPaymentHandler 创建支付处理器
func NewPaymentHandler(paymentLogic *logic.PaymentLogic) *PaymentHandler {
	return &PaymentHandler{paymentLogic: paymentLogic}
}

// InitializePayment 初始化支付
func (h *PaymentHandler) InitializePayment(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var input logic.InitializePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数不完整或格式错误")
		return
	}

	payment, err := h.paymentLogic.InitializePayment(input, user.Id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "支付初始化成功", gin.H{"payment": payment})
}

// VerifyPayment 按参考号结算支付
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		ErrorResponse(c, http.StatusBadRequest, "缺少支付参考号")
		return
	}

	payment, err := h.paymentLogic.VerifyByReference(reference)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "支付校验成功", gin.H{"payment": payment})
}

// AllocateRequest 里程碑分配请求体
type AllocateRequest struct {
	PaymentId   int64   `json:"payment_id" binding:"required"`
	MilestoneId int64   `json:"milestone_id" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
}

// AllocateToMilestone 将支付金额分配到里程碑
func (h *PaymentHandler) AllocateToMilestone(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数不完整或格式错误")
		return
	}

	allocation, err := h.paymentLogic.AllocateToMilestone(req.PaymentId, req.MilestoneId, req.Amount, user.Id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "分配成功", gin.H{"allocation": allocation})
}

// GetHistory 获取当前用户支付历史
func (h *PaymentHandler) GetHistory(c *gin.Context) {
	user := middleware.CurrentUser(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	payments, total, err := h.paymentLogic.GetUserPayments(user.Id, page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取支付历史成功", gin.H{
		"payments":   payments,
		"pagination": NewPagination(page, pageSize, total),
	})
}

// GetDetails 获取支付详情
func (h *PaymentHandler) GetDetails(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的支付ID")
		return
	}
	user := middleware.CurrentUser(c)

	payment, err := h.paymentLogic.GetById(id, user.Id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取支付详情成功", gin.H{"payment": payment})
}

// GetCampaignPayments 获取活动收到的支付，仅活动创建者可见
func (h *PaymentHandler) GetCampaignPayments(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("campaignId"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}
	user := middleware.CurrentUser(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	payments, total, err := h.paymentLogic.GetCampaignPayments(campaignId, user.Id, page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取活动支付记录成功", gin.H{
		"payments":   payments,
		"pagination": NewPagination(page, pageSize, total),
	})
}

// GetCampaignStats 获取活动投资统计
func (h *PaymentHandler) GetCampaignStats(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("campaignId"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	stats, err := h.paymentLogic.GetCampaignPaymentStats(campaignId)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取投资统计成功", gin.H{"stats": stats})
}
