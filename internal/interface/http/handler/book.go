package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/internal/interface/http/dto"
)

// BookHandler 图书HTTP处理器
// 设计说明：
// 1. Handler只负责HTTP相关的事情：解析请求、调用领域服务、返回响应
// 2. 出版社/作者/标签的解析在图书服务的同一事务内完成
type BookHandler struct {
	crud[*book.Book, book.Filter, *dto.BookResponse]
}

// NewBookHandler 创建图书处理器
func NewBookHandler(books *book.Service, cfg *config.Config) *BookHandler {
	return &BookHandler{newCRUD(books, dto.FromBook, cfg.Server.MaxPageSize)}
}

// List 图书列表
// @Summary      图书列表
// @Description  keywords同时匹配书名、出版社名、作者名、标签名（忽略大小写）
// @Tags         图书
// @Produce      json
// @Param        index query int false "页码，从0开始" default(0)
// @Param        size query int false "每页条数" default(10)
// @Param        keywords query string false "关键字"
// @Success      200 {object} response.Response{data=dto.BookPage}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/books [get]
func (h *BookHandler) List(c *gin.Context) {
	var q dto.BookListQuery
	if !bindQuery(c, &q) {
		return
	}
	h.list(c, book.Filter{Keywords: q.Keywords}, q.PageQuery)
}

// Get 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
	h.get(c)
}

// Save 保存图书
// @Summary      保存图书
// @Description  出版社、作者、标签可以只传id引用已有记录，也可以传完整字段按名称新建或复用
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse} "保存成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "需要管理员权限"
// @Failure      409 {object} response.Response "书名与版次冲突"
// @Router       /api/v1/books [put]
func (h *BookHandler) Save(c *gin.Context) {
	var req dto.BookRequest
	if !bindJSON(c, &req) {
		return
	}
	h.save(c, req.ToEntity())
}

// Delete 删除图书
// @Summary      删除图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) Delete(c *gin.Context) {
	h.delete(c)
}
