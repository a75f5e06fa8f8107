package handler

import (
	"net/http"

	"github.com/blues/cfp/internal/logic"
	"github.com/blues/cfp/internal/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	userLogic *logic.UserLogic
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(userLogic *logic.UserLogic) *AuthHandler {
	return &AuthHandler{userLogic: userLogic}
}

// Register 注册
func (h *AuthHandler) Register(c *gin.Context) {
	var input logic.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数不完整或格式错误")
		return
	}

	user, err := h.userLogic.Register(input)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "注册成功", gin.H{"user": user})
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数不完整或格式错误")
		return
	}

	user, token, err := h.userLogic.Login(req.Email, req.Password)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "登录成功", gin.H{
		"user":  user,
		"token": token,
	})
}

// Me 获取当前登录用户
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	SuccessResponse(c, http.StatusOK, "获取用户信息成功", gin.H{"user": user})
}

// UpdateProfile 更新当前用户资料
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var input logic.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数不完整或格式错误")
		return
	}

	updated, err := h.userLogic.UpdateProfile(user.Id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "更新资料成功", gin.H{"user": updated})
}
