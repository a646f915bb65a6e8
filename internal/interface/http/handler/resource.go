package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xiebiao/bookhub/internal/domain/query"
	"github.com/xiebiao/bookhub/internal/domain/resource"
	"github.com/xiebiao/bookhub/internal/interface/http/dto"
	"github.com/xiebiao/bookhub/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
	"github.com/xiebiao/bookhub/pkg/paging"
	"github.com/xiebiao/bookhub/pkg/response"
)

// crud 各资源Handler共用的列表/详情/保存/删除流程
// Handler只负责解析请求和组装响应，调用者（Principal）显式传给领域服务
type crud[E resource.Entity, F query.Filter, R any] struct {
	svc     *resource.Service[E, F]
	view    func(E) R
	maxSize int
}

func newCRUD[E resource.Entity, F query.Filter, R any](svc *resource.Service[E, F], view func(E) R, maxSize int) crud[E, F, R] {
	return crud[E, F, R]{svc: svc, view: view, maxSize: maxSize}
}

func (h crud[E, F, R]) list(c *gin.Context, filter F, q dto.PageQuery) {
	page, err := h.svc.List(c.Request.Context(), filter, q.Request(h.maxSize))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, paging.Map(page, h.view))
}

func (h crud[E, F, R]) get(c *gin.Context) {
	id, ok := pathID(c, h.svc.Family())
	if !ok {
		return
	}
	e, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.view(e))
}

// save 成功时返回保存后的实体
func (h crud[E, F, R]) save(c *gin.Context, e E) (E, bool) {
	saved, err := h.svc.Save(c.Request.Context(), middleware.GetPrincipal(c), e)
	if err != nil {
		response.Error(c, err)
		return saved, false
	}
	response.Success(c, h.view(saved))
	return saved, true
}

// delete 成功时返回被删除的ID
func (h crud[E, F, R]) delete(c *gin.Context) (uuid.UUID, bool) {
	id, ok := pathID(c, h.svc.Family())
	if !ok {
		return uuid.Nil, false
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		response.Error(c, err)
		return uuid.Nil, false
	}
	response.Success(c, nil)
	return id, true
}

// bindQuery 绑定查询参数，失败时写响应
func bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		response.BindError(c, err)
		return false
	}
	return true
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		response.BindError(c, err)
		return false
	}
	return true
}

// pathID 解析路径中的:id
func pathID(c *gin.Context, family string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperrors.ErrBindError.In(family).WithMessage("参数错误: id不是合法的UUID"))
		return uuid.Nil, false
	}
	return id, true
}
