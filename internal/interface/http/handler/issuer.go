package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookhub/internal/domain/issuer"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/internal/interface/http/dto"
)

// IssuerHandler 出版社HTTP处理器
type IssuerHandler struct {
	crud[*issuer.Issuer, issuer.Filter, *dto.IssuerResponse]
}

func NewIssuerHandler(issuers *issuer.Service, cfg *config.Config) *IssuerHandler {
	return &IssuerHandler{newCRUD(issuers, dto.FromIssuer, cfg.Server.MaxPageSize)}
}

// List 出版社列表
// @Summary      出版社列表
// @Tags         出版社
// @Produce      json
// @Param        index query int false "页码，从0开始" default(0)
// @Param        size query int false "每页条数" default(10)
// @Param        name query string false "名称关键字"
// @Success      200 {object} response.Response{data=dto.IssuerPage}
// @Router       /api/v1/issuers [get]
func (h *IssuerHandler) List(c *gin.Context) {
	var q dto.IssuerListQuery
	if !bindQuery(c, &q) {
		return
	}
	h.list(c, issuer.Filter{Name: q.Name}, q.PageQuery)
}

// Get 出版社详情
// @Summary      出版社详情
// @Tags         出版社
// @Produce      json
// @Param        id path string true "出版社ID"
// @Success      200 {object} response.Response{data=dto.IssuerResponse}
// @Failure      404 {object} response.Response "出版社不存在"
// @Router       /api/v1/issuers/{id} [get]
func (h *IssuerHandler) Get(c *gin.Context) {
	h.get(c)
}

// Save 保存出版社
// @Summary      保存出版社
// @Tags         出版社
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.IssuerRequest true "出版社信息"
// @Success      200 {object} response.Response{data=dto.IssuerResponse}
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /api/v1/issuers [put]
func (h *IssuerHandler) Save(c *gin.Context) {
	var req dto.IssuerRequest
	if !bindJSON(c, &req) {
		return
	}
	h.save(c, req.ToEntity())
}

// Delete 删除出版社
// @Summary      删除出版社
// @Tags         出版社
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "出版社ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/issuers/{id} [delete]
func (h *IssuerHandler) Delete(c *gin.Context) {
	h.delete(c)
}
