package handler

import (
	"github.com/gin-gonic/gin"

	appaccount "github.com/xiebiao/bookhub/internal/application/account"
	"github.com/xiebiao/bookhub/internal/interface/http/dto"
	"github.com/xiebiao/bookhub/internal/interface/http/middleware"
	"github.com/xiebiao/bookhub/pkg/response"
)

// AccountHandler 账号HTTP处理器
// 设计说明：
// 1. Handler只负责HTTP相关的事情：解析请求、调用应用层、返回响应
// 2. 密码加密、Token签发、会话维护都在应用层
type AccountHandler struct {
	registerUseCase *appaccount.RegisterUseCase
	loginUseCase    *appaccount.LoginUseCase
	logoutUseCase   *appaccount.LogoutUseCase
	refreshUseCase  *appaccount.RefreshUseCase
}

// NewAccountHandler 创建账号处理器
func NewAccountHandler(
	registerUseCase *appaccount.RegisterUseCase,
	loginUseCase *appaccount.LoginUseCase,
	logoutUseCase *appaccount.LogoutUseCase,
	refreshUseCase *appaccount.RefreshUseCase,
) *AccountHandler {
	return &AccountHandler{
		registerUseCase: registerUseCase,
		loginUseCase:    loginUseCase,
		logoutUseCase:   logoutUseCase,
		refreshUseCase:  refreshUseCase,
	}
}

// Register 注册
// @Summary      注册
// @Description  创建新账号，用户名在管理员名单中时角色为MODERATOR
// @Tags         账号
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      200 {object} response.Response{data=appaccount.RegisterResponse} "注册成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "用户名已存在"
// @Router       /api/v1/auth/register [post]
func (h *AccountHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.registerUseCase.Execute(c.Request.Context(), appaccount.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Login 登录
// @Summary      登录
// @Description  校验用户名密码，返回JWT Token
// @Tags         账号
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=appaccount.LoginResponse} "登录成功"
// @Failure      401 {object} response.Response "密码错误"
// @Failure      404 {object} response.Response "用户名不存在"
// @Router       /api/v1/auth/login [post]
func (h *AccountHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appaccount.LoginRequest{
		Username: req.Username,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Logout 登出，当前Access Token加入黑名单
// @Summary      登出
// @Tags         账号
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/auth/logout [post]
func (h *AccountHandler) Logout(c *gin.Context) {
	err := h.logoutUseCase.Execute(c.Request.Context(), middleware.GetPrincipal(c), middleware.GetToken(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Refresh 用Refresh Token换取新的Access Token
// @Summary      刷新Token
// @Tags         账号
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshRequest true "Refresh Token"
// @Success      200 {object} response.Response{data=dto.RefreshResponse}
// @Failure      401 {object} response.Response "Token无效或已过期"
// @Router       /api/v1/auth/refresh [post]
func (h *AccountHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	token, err := h.refreshUseCase.Execute(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.RefreshResponse{AccessToken: token})
}
