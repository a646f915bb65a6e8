package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookhub/internal/domain/author"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/internal/interface/http/dto"
)

// AuthorHandler 作者HTTP处理器
type AuthorHandler struct {
	crud[*author.Author, author.Filter, *dto.AuthorResponse]
}

// NewAuthorHandler 创建作者处理器
func NewAuthorHandler(authors *author.Service, cfg *config.Config) *AuthorHandler {
	return &AuthorHandler{newCRUD(authors, dto.FromAuthor, cfg.Server.MaxPageSize)}
}

// List 作者列表
// @Summary      作者列表
// @Description  按姓名模糊搜索（忽略大小写，同时匹配名和姓），按创建时间倒序
// @Tags         作者
// @Produce      json
// @Param        index query int false "页码，从0开始" default(0)
// @Param        size query int false "每页条数" default(10)
// @Param        name query string false "姓名关键字"
// @Success      200 {object} response.Response{data=dto.AuthorPage}
// @Router       /api/v1/authors [get]
func (h *AuthorHandler) List(c *gin.Context) {
	var q dto.AuthorListQuery
	if !bindQuery(c, &q) {
		return
	}
	h.list(c, author.Filter{Name: q.Name}, q.PageQuery)
}

// Get 作者详情
// @Summary      作者详情
// @Tags         作者
// @Produce      json
// @Param        id path string true "作者ID"
// @Success      200 {object} response.Response{data=dto.AuthorResponse}
// @Failure      404 {object} response.Response "作者不存在"
// @Router       /api/v1/authors/{id} [get]
func (h *AuthorHandler) Get(c *gin.Context) {
	h.get(c)
}

// Save 新增或修改作者
// @Summary      保存作者
// @Description  带id时按id更新；不带id时按(名, 姓)匹配已有作者，匹配不到则新增
// @Tags         作者
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AuthorRequest true "作者信息"
// @Success      200 {object} response.Response{data=dto.AuthorResponse}
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "需要管理员权限"
// @Failure      422 {object} response.Response "参数校验失败"
// @Router       /api/v1/authors [put]
func (h *AuthorHandler) Save(c *gin.Context) {
	var req dto.AuthorRequest
	if !bindJSON(c, &req) {
		return
	}
	h.save(c, req.ToEntity())
}

// Delete 删除作者，作者不存在时也返回成功
// @Summary      删除作者
// @Tags         作者
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "作者ID"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /api/v1/authors/{id} [delete]
func (h *AuthorHandler) Delete(c *gin.Context) {
	h.delete(c)
}
