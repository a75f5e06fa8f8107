package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/cfp/internal/logic"
	"github.com/blues/cfp/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CampaignHandler 活动处理器
type CampaignHandler struct {
	campaignLogic *logic.CampaignLogic
	trackingLogic *logic.TrackingLogic
}

// NewCampaignHandler 创建活动处理器
func NewCampaignHandler(campaignLogic *logic.CampaignLogic, trackingLogic *logic.TrackingLogic) *CampaignHandler {
	return &CampaignHandler{
		campaignLogic: campaignLogic,
		trackingLogic: trackingLogic,
	}
}

// GetCampaigns 获取活动分页列表
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	creatorId, _ := strconv.ParseInt(c.Query("creator_id"), 10, 64)
	filters := logic.CampaignFilters{
		Category:  c.Query("category"),
		Stage:     c.Query("stage"),
		CreatorId: creatorId,
		Status:    c.Query("status"),
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sort_by", "newest"),
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	campaigns, total, err := h.campaignLogic.GetCampaigns(filters, page, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取活动列表成功", gin.H{
		"campaigns":  campaigns,
		"pagination": NewPagination(page, limit, total),
	})
}

// GetCampaign 获取活动详情
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	campaign, err := h.campaignLogic.GetById(id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取活动成功", gin.H{"campaign": campaign})
}

// CreateCampaign 直接创建活动
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var input logic.CampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数不完整或格式错误")
		return
	}

	campaign, err := h.campaignLogic.Create(input, user.Id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "活动创建成功，等待审核", gin.H{"campaign": campaign})
}

// UpdateCampaign 更新活动
func (h *CampaignHandler) UpdateCampaign(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}
	user := middleware.CurrentUser(c)

	var input logic.CampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数不完整或格式错误")
		return
	}

	campaign, err := h.campaignLogic.Update(id, user.Id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "活动更新成功", gin.H{"campaign": campaign})
}

// DeleteCampaign 删除活动
func (h *CampaignHandler) DeleteCampaign(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}
	user := middleware.CurrentUser(c)

	if err := h.campaignLogic.Delete(id, user.Id); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "活动删除成功", nil)
}

// GetMyCampaigns 获取当前用户的活动
func (h *CampaignHandler) GetMyCampaigns(c *gin.Context) {
	user := middleware.CurrentUser(c)

	campaigns, err := h.campaignLogic.GetByCreator(user.Id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取我的活动成功", gin.H{"campaigns": campaigns})
}

// TrackView 记录一次活动浏览
func (h *CampaignHandler) TrackView(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	identity := middleware.ViewIdentityFrom(c)
	if err := h.trackingLogic.TrackView(id, identity); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "浏览记录成功", nil)
}

// GetMostViewed 获取热门活动
func (h *CampaignHandler) GetMostViewed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	campaigns, err := h.trackingLogic.GetMostViewed(limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取热门活动成功", gin.H{"campaigns": campaigns})
}

// ToggleFavorite 切换活动收藏状态
func (h *CampaignHandler) ToggleFavorite(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}
	user := middleware.CurrentUser(c)

	favorited, err := h.trackingLogic.ToggleFavorite(user.Id, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	message := "已取消收藏"
	if favorited {
		message = "收藏成功"
	}
	SuccessResponse(c, http.StatusOK, message, gin.H{"is_favorited": favorited})
}

// GetFavorites 获取当前用户收藏的活动
func (h *CampaignHandler) GetFavorites(c *gin.Context) {
	user := middleware.CurrentUser(c)

	campaigns, err := h.trackingLogic.GetUserFavorites(user.Id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取收藏列表成功", gin.H{"campaigns": campaigns})
}

// GetRecentlyViewed 获取当前用户最近浏览的活动
func (h *CampaignHandler) GetRecentlyViewed(c *gin.Context) {
	user := middleware.CurrentUser(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	campaigns, err := h.trackingLogic.GetRecentlyViewed(user.Id, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取最近浏览成功", gin.H{"campaigns": campaigns})
}
