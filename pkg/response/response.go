package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookhub/pkg/errors"
	"github.com/xiebiao/bookhub/pkg/logger"
)

// Response 统一响应结构
// 设计说明：
// 1. Code是业务错误码，0表示成功
// 2. 失败时附带Family（业务域）与Kind（错误种类），客户端据此区分"去登录/不存在/无权限"
// 3. HTTP状态码由错误种类决定
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Family  string      `json:"family,omitempty"`
	Kind    string      `json:"kind,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应（Code=0表示成功）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	if err := commentService.Delete(ctx, principal, id); err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	// 内部错误只写日志，不返回给客户端
	if appErr.Err != nil || appErr.Kind() == apperrors.KindInternal {
		logger.C(c.Request.Context()).Error().
			Err(appErr.Err).
			Int("code", appErr.Code).
			Str("family", appErr.Family).
			Str("path", c.FullPath()).
			Msg(appErr.Message)
	}

	c.JSON(appErr.HTTPStatus(), Response{
		Code:    appErr.Code,
		Message: appErr.Message,
		Family:  appErr.Family,
		Kind:    appErr.Kind(),
	})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	Error(c, apperrors.New(code, message))
}

// BindError 参数绑定/校验失败
func BindError(c *gin.Context, err error) {
	Error(c, apperrors.ErrBindError.WithMessage("参数错误: "+err.Error()))
}
