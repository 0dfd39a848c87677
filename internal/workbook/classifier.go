package workbook

import "strings"

// SheetRole names the logical sheet the importer is looking for.
type SheetRole string

const (
	RoleDeposits SheetRole = "deposits"
	RoleHoldings SheetRole = "holdings"
	RoleHistory  SheetRole = "history"
)

// Sheet names vary per export; Dutch files say "Stortingen", English ones
// "Deposits". Matching is by case-insensitive substring.
var roleKeywords = map[SheetRole][]string{
	RoleDeposits: {"storting", "deposit"},
	RoleHoldings: {"holding", "portfolio", "asset"},
	RoleHistory:  {"snapshot", "histor"},
}

// FindSheet picks the first sheet whose name contains a keyword for the
// role. Deposits and holdings fall back to the first sheet when nothing
// matches; that fallback is a heuristic carried over from the source
// files, not a guarantee. History has no fallback: a missing history
// sheet means the history extraction is skipped.
func FindSheet(names []string, role SheetRole) (string, bool) {
	for _, name := range names {
		lower := strings.ToLower(name)
		for _, kw := range roleKeywords[role] {
			if strings.Contains(lower, kw) {
				return name, true
			}
		}
	}
	if role == RoleHistory || len(names) == 0 {
		return "", false
	}
	return names[0], true
}
