package auth

import (
	"github.com/google/uuid"

	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// Role 账号角色
type Role string

const (
	RoleModerator Role = "MODERATOR"
	RoleUser      Role = "USER"
)

// Valid 是否为已知角色
func (r Role) Valid() bool {
	return r == RoleModerator || r == RoleUser
}

// Principal 当前调用者
// 设计说明：
// 1. 由HTTP层从JWT解析后显式传入每个服务调用，领域层不读取任何全局上下文
// 2. 未登录请求传nil
type Principal struct {
	ID       uuid.UUID
	Username string
	Role     Role
}

// IsModerator 是否为管理员
func (p *Principal) IsModerator() bool {
	return p != nil && p.Role == RoleModerator
}

// Owned 有归属者的资源（评论、投票、收藏）
// 归属者创建时确定，之后不可修改
type Owned interface {
	OwnerID() uuid.UUID
	SetOwnerID(id uuid.UUID)
}

// Authorize 判断调用者能否修改/删除归属于ownerID的资源
// 规则：管理员放行；本人放行；其余拒绝
// 纯函数，无I/O
func Authorize(p *Principal, ownerID uuid.UUID) bool {
	if p == nil {
		return false
	}
	if p.Role == RoleModerator {
		return true
	}
	return p.ID != uuid.Nil && p.ID == ownerID
}

// FillOwner 归属者为空时用当前调用者填充
// 已有归属者时保持不变（即使与调用者不同）；两者都没有时返回NOT_AUTHENTICATED
func FillOwner(o Owned, p *Principal) error {
	if o.OwnerID() != uuid.Nil {
		return nil
	}
	if p == nil || p.ID == uuid.Nil {
		return apperrors.ErrNotAuthenticated
	}
	o.SetOwnerID(p.ID)
	return nil
}
