package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookhub/internal/application/interaction"
	"github.com/xiebiao/bookhub/internal/domain/comment"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/internal/interface/http/dto"
	"github.com/xiebiao/bookhub/internal/interface/http/middleware"
	"github.com/xiebiao/bookhub/pkg/response"
)

// CommentHandler 评论HTTP处理器
// 保存和删除成功后发布interaction.comment.*事件
type CommentHandler struct {
	crud[*comment.Comment, comment.Filter, *dto.CommentResponse]
	notifier *interaction.Notifier
}

func NewCommentHandler(comments *comment.Service, notifier *interaction.Notifier, cfg *config.Config) *CommentHandler {
	return &CommentHandler{
		crud:     newCRUD(comments, dto.FromComment, cfg.Server.MaxPageSize),
		notifier: notifier,
	}
}

// List 评论列表
// @Summary      评论列表
// @Description  按父评论、图书、作者、出版社筛选，各条件精确匹配
// @Tags         评论
// @Produce      json
// @Param        index query int false "页码，从0开始" default(0)
// @Param        size query int false "每页条数" default(10)
// @Param        parentId query string false "父评论ID"
// @Param        bookId query string false "图书ID"
// @Param        authorId query string false "作者ID"
// @Param        issuerId query string false "出版社ID"
// @Success      200 {object} response.Response{data=dto.CommentPage}
// @Router       /api/v1/comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	var q dto.CommentListQuery
	if !bindQuery(c, &q) {
		return
	}
	filter, err := q.Filter()
	if err != nil {
		response.Error(c, err)
		return
	}
	h.list(c, filter, q.PageQuery)
}

// Get 评论详情
// @Summary      评论详情
// @Tags         评论
// @Produce      json
// @Param        id path string true "评论ID"
// @Success      200 {object} response.Response{data=dto.CommentResponse}
// @Failure      404 {object} response.Response "评论不存在"
// @Router       /api/v1/comments/{id} [get]
func (h *CommentHandler) Get(c *gin.Context) {
	h.get(c)
}

// Save 发表或修改评论
// @Summary      保存评论
// @Description  不带id时总是新增；带id时只有作者本人或管理员可以修改
// @Tags         评论
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CommentRequest true "评论内容"
// @Success      200 {object} response.Response{data=dto.CommentResponse}
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "无权限修改"
// @Router       /api/v1/comments [put]
func (h *CommentHandler) Save(c *gin.Context) {
	var req dto.CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	saved, ok := h.save(c, req.ToEntity())
	if !ok {
		return
	}

	targetType, targetID := "", saved.BookID
	switch {
	case saved.ParentID != nil:
		targetType, targetID = "COMMENT", saved.ParentID
	case saved.BookID != nil:
		targetType = "BOOK"
	case saved.AuthorID != nil:
		targetType, targetID = "AUTHOR", saved.AuthorID
	case saved.IssuerID != nil:
		targetType, targetID = "ISSUER", saved.IssuerID
	}
	h.notifier.Saved(c.Request.Context(), "comment", saved.ID, saved.AccountID, targetType, targetID)
}

// Delete 删除评论
// @Summary      删除评论
// @Description  依次检查：是否登录、评论是否存在、是否为作者本人或管理员
// @Tags         评论
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "评论ID"
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "无权限删除"
// @Failure      404 {object} response.Response "评论不存在"
// @Router       /api/v1/comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	if id, ok := h.delete(c); ok {
		h.notifier.Deleted(c.Request.Context(), "comment", id, middleware.GetPrincipal(c).ID)
	}
}
