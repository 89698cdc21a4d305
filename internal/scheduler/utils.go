package scheduler

import "github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"

func isSeniorOrBlackCore(user *domain.User) bool {
	return (user.Role == domain.RoleSeniorAssistant || user.Role == domain.RoleBlackCore)
}
