package testcase

import (
	"regexp"
	"strings"
)

var (
	roleKeyword = regexp.MustCompile(`(?i)\b(super[\s_-]?users?|super[\s_-]?admins?|admins?|administrators?|managers?|users?|guests?|viewers?|editors?|owners?|moderators?|operators?|customers?|support|analysts?|auditors?|developers?|testers?|reviewers?|members?|agents?)\b`)

	roleHint = regexp.MustCompile(`(?i)\b(roles?|rbac|permissions?|access[\s_-]control)\b`)

	// DefaultRoles are used when a prompt asks for role coverage without naming roles.
	DefaultRoles = []string{"SUPER_USER", "MANAGER", "USER"}

	roleAliases = map[string]string{
		"ADMINISTRATOR": "ADMIN",
		"SUPERUSER":     "SUPER_USER",
		"SUPERADMIN":    "SUPER_ADMIN",
	}

	privilegedRoles = map[string]bool{"SUPER_USER": true, "SUPER_ADMIN": true, "ADMIN": true, "OWNER": true}
	readOnlyRoles   = map[string]bool{"GUEST": true, "VIEWER": true, "ANALYST": true, "AUDITOR": true}
)

// ExtractRoles returns the roles named in prompt, upper-cased with underscores,
// deduplicated in order of first mention.
func ExtractRoles(prompt string) []string {
	var roles []string
	seen := map[string]bool{}

	for _, match := range roleKeyword.FindAllString(prompt, -1) {
		role := normalizeRole(match)
		if !seen[role] {
			seen[role] = true
			roles = append(roles, role)
		}
	}

	if len(roles) == 0 && roleHint.MatchString(prompt) {
		return append([]string(nil), DefaultRoles...)
	}
	return roles
}

func normalizeRole(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_", "\t", "_").Replace(s)
	if strings.HasSuffix(s, "S") {
		s = strings.TrimSuffix(s, "S")
	}
	if alias, ok := roleAliases[s]; ok {
		return alias
	}
	return s
}

// roleStatus is the status a role should get on method: read-only roles are
// forbidden from mutations, USER may not delete, everyone else succeeds.
func roleStatus(role, method string, success int) int {
	if privilegedRoles[role] {
		return success
	}
	if readOnlyRoles[role] && isMutation(method) {
		return 403
	}
	if role == "USER" && method == "DELETE" {
		return 403
	}
	return success
}

func isMutation(method string) bool {
	switch method {
	case "POST", "PUT", "PATCH", "DELETE":
		return true
	}
	return false
}
