package travel

import "strings"

var (
	ksaKeywords = []string{"saudi", "riyadh", "jeddah", "dammam", "ksa", "arabia"}
	uaeKeywords = []string{"dubai", "abu dhabi", "uae", "emirates", "sharjah"}
)

// SuggestOperationsRole picks the regional operations team for a destination.
// KSA keywords are checked first and unmatched destinations go to KSA.
// The suggestion is advisory; approvers may override it.
func SuggestOperationsRole(destination string) Role {
	d := strings.ToLower(destination)
	for _, k := range ksaKeywords {
		if strings.Contains(d, k) {
			return RoleOperationsKSA
		}
	}
	for _, k := range uaeKeywords {
		if strings.Contains(d, k) {
			return RoleOperationsUAE
		}
	}
	return RoleOperationsKSA
}
