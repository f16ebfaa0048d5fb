package moderation

import (
	"cam-guard/domain"

	"github.com/samber/lo"
)

// ExemptionChecker decides whether camera enforcement applies to a member.
type ExemptionChecker struct {
	roles []string
}

// NewExemptionChecker keeps the role names as given: matching is exact and case-sensitive.
func NewExemptionChecker(exemptRoles []string) ExemptionChecker {
	return ExemptionChecker{roles: lo.Uniq(lo.Compact(exemptRoles))}
}

// IsExempt reports whether the member is an administrator, may manage the guild,
// or holds one of the exempt roles.
func (c ExemptionChecker) IsExempt(member domain.Member) bool {
	if member.Permissions.Has(domain.PermissionAdministrator) || member.Permissions.Has(domain.PermissionManageGuild) {
		return true
	}
	return lo.Some(member.RoleNames, c.roles)
}
