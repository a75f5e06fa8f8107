package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/cfp/internal/logic"
	"github.com/blues/cfp/internal/middleware"
	"github.com/gin-gonic/gin"
)

// DraftHandler 草稿活动处理器
type DraftHandler struct {
	draftLogic   *logic.DraftLogic
	publishLogic *logic.PublishLogic
}

// NewDraftHandler 创建草稿活动处理器
func NewDraftHandler(draftLogic *logic.DraftLogic, publishLogic *logic.PublishLogic) *DraftHandler {
	return &DraftHandler{
		draftLogic:   draftLogic,
		publishLogic: publishLogic,
	}
}

// CreateDraft 创建草稿
func (h *DraftHandler) CreateDraft(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var payload logic.DraftPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数不完整或格式错误")
		return
	}

	draft, err := h.draftLogic.Create(payload, user.Id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "草稿创建成功", gin.H{"draft": draft})
}

// GetDrafts 获取当前用户的草稿列表
func (h *DraftHandler) GetDrafts(c *gin.Context) {
	user := middleware.CurrentUser(c)

	drafts, err := h.draftLogic.GetByUserId(user.Id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取草稿列表成功", gin.H{"drafts": drafts})
}

// GetDraft 获取草稿详情
func (h *DraftHandler) GetDraft(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的草稿ID")
		return
	}
	user := middleware.CurrentUser(c)

	draft, err := h.draftLogic.GetById(id, user.Id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取草稿成功", gin.H{"draft": draft})
}

// UpdateDraft 更新草稿
func (h *DraftHandler) UpdateDraft(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的草稿ID")
		return
	}
	user := middleware.CurrentUser(c)

	var payload logic.DraftPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数不完整或格式错误")
		return
	}

	draft, err := h.draftLogic.Update(id, user.Id, payload)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "草稿更新成功", gin.H{"draft": draft})
}

// DeleteDraft 删除草稿
func (h *DraftHandler) DeleteDraft(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的草稿ID")
		return
	}
	user := middleware.CurrentUser(c)

	if err := h.draftLogic.Delete(id, user.Id); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "草稿删除成功", nil)
}

// PublishDraft 发布草稿为待审核活动
func (h *DraftHandler) PublishDraft(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的草稿ID")
		return
	}
	user := middleware.CurrentUser(c)

	summary, err := h.publishLogic.Publish(id, user.Id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "草稿发布成功，等待审核", gin.H{"campaign": summary})
}
