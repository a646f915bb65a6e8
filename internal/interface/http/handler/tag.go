package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookhub/internal/domain/tag"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/internal/interface/http/dto"
)

type TagHandler struct {
	crud[*tag.Tag, tag.Filter, *dto.TagResponse]
}

func NewTagHandler(tags *tag.Service, cfg *config.Config) *TagHandler {
	return &TagHandler{newCRUD(tags, dto.FromTag, cfg.Server.MaxPageSize)}
}

// List 标签列表
// @Summary      标签列表
// @Tags         标签
// @Produce      json
// @Param        index query int false "页码，从0开始" default(0)
// @Param        size query int false "每页条数" default(10)
// @Param        name query string false "名称关键字"
// @Success      200 {object} response.Response{data=dto.TagPage}
// @Router       /api/v1/tags [get]
func (h *TagHandler) List(c *gin.Context) {
	var q dto.TagListQuery
	if !bindQuery(c, &q) {
		return
	}
	h.list(c, tag.Filter{Name: q.Name}, q.PageQuery)
}

// Get 标签详情
// @Summary      标签详情
// @Tags         标签
// @Produce      json
// @Param        id path string true "标签ID"
// @Success      200 {object} response.Response{data=dto.TagResponse}
// @Router       /api/v1/tags/{id} [get]
func (h *TagHandler) Get(c *gin.Context) {
	h.get(c)
}

// Save 保存标签
// @Summary      保存标签
// @Tags         标签
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.TagRequest true "标签"
// @Success      200 {object} response.Response{data=dto.TagResponse}
// @Router       /api/v1/tags [put]
func (h *TagHandler) Save(c *gin.Context) {
	var req dto.TagRequest
	if !bindJSON(c, &req) {
		return
	}
	h.save(c, req.ToEntity())
}

// Delete 删除标签
// @Summary      删除标签
// @Tags         标签
// @Security     BearerAuth
// @Param        id path string true "标签ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/tags/{id} [delete]
func (h *TagHandler) Delete(c *gin.Context) {
	h.delete(c)
}
