package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookhub/internal/application/interaction"
	"github.com/xiebiao/bookhub/internal/domain/vote"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/internal/interface/http/dto"
	"github.com/xiebiao/bookhub/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
	"github.com/xiebiao/bookhub/pkg/response"
)

// VoteHandler 投票HTTP处理器
// 列表和状态查询都只针对当前登录账号
type VoteHandler struct {
	crud[*vote.Vote, vote.Filter, *dto.VoteResponse]
	notifier *interaction.Notifier
}

func NewVoteHandler(votes *vote.Service, notifier *interaction.Notifier, cfg *config.Config) *VoteHandler {
	return &VoteHandler{
		crud:     newCRUD(votes, dto.FromVote, cfg.Server.MaxPageSize),
		notifier: notifier,
	}
}

// List 我的投票
// @Summary      我的投票列表
// @Tags         投票
// @Produce      json
// @Security     BearerAuth
// @Param        index query int false "页码，从0开始" default(0)
// @Param        size query int false "每页条数" default(10)
// @Param        type query string true "对象类型" Enums(ISSUER, BOOK, AUTHOR, COMMENT)
// @Success      200 {object} response.Response{data=dto.VotePage}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/votes [get]
func (h *VoteHandler) List(c *gin.Context) {
	var q dto.VoteListQuery
	if !bindQuery(c, &q) {
		return
	}
	t, err := vote.ParseType(q.Type)
	if err != nil {
		response.Error(c, err)
		return
	}
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Error(c, apperrors.ErrNotAuthenticated.In(vote.Family))
		return
	}
	h.list(c, vote.Filter{AccountID: &p.ID, Type: t}, q.PageQuery)
}

// State 当前账号对某个对象的投票
// @Summary      投票状态
// @Description  未投票或未登录时data为null
// @Tags         投票
// @Produce      json
// @Param        issuerId query string false "出版社ID"
// @Param        bookId query string false "图书ID"
// @Param        authorId query string false "作者ID"
// @Param        commentId query string false "评论ID"
// @Success      200 {object} response.Response{data=dto.VoteResponse}
// @Router       /api/v1/votes/state [get]
func (h *VoteHandler) State(c *gin.Context) {
	var q dto.VoteStateQuery
	if !bindQuery(c, &q) {
		return
	}
	filter, err := q.Filter()
	if err != nil {
		response.Error(c, err)
		return
	}
	if !filter.HasTarget() {
		response.Error(c, vote.ErrTargetRequired)
		return
	}
	p := middleware.GetPrincipal(c)
	if p == nil {
		response.Success(c, nil)
		return
	}
	filter.AccountID = &p.ID

	v, err := h.svc.FindOne(c.Request.Context(), filter)
	if errors.Is(err, apperrors.ErrNotFound) {
		response.Success(c, nil)
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.FromVote(v))
}

// Save 投票
// @Summary      投票
// @Description  同一账号对同一对象重复投票不会新增记录
// @Tags         投票
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.VoteRequest true "投票对象，只能指定一个"
// @Success      200 {object} response.Response{data=dto.VoteResponse}
// @Failure      401 {object} response.Response "未登录"
// @Failure      422 {object} response.Response "必须且只能指定一个对象"
// @Router       /api/v1/votes [put]
func (h *VoteHandler) Save(c *gin.Context) {
	var req dto.VoteRequest
	if !bindJSON(c, &req) {
		return
	}
	saved, ok := h.save(c, req.ToEntity())
	if !ok {
		return
	}
	t, id, _ := saved.Target()
	h.notifier.Saved(c.Request.Context(), "vote", saved.ID, saved.AccountID, string(t), &id)
}

// Delete 取消投票
// @Summary      取消投票
// @Tags         投票
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "投票ID"
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "无权限"
// @Failure      404 {object} response.Response "投票不存在"
// @Router       /api/v1/votes/{id} [delete]
func (h *VoteHandler) Delete(c *gin.Context) {
	if id, ok := h.delete(c); ok {
		h.notifier.Deleted(c.Request.Context(), "vote", id, middleware.GetPrincipal(c).ID)
	}
}
