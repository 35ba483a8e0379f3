// Package roster classifies on-duty personnel against the leadership-role
// hierarchy and resolves each leader to an internal identity.
package roster

import (
	"regexp"
	"sort"
	"strings"

	"github.com/opskitchen/shiftboard/internal/domain/model"
)

// Leadership priorities. Lower is higher authority.
const (
	PriorityGeneralManager = 1
	PriorityTeamLeader     = 2
	PrioritySupervisor     = 3
)

// titleEntry is one row of the exact-match title table.
type titleEntry struct {
	priority  int
	canonical string
}

// defaultTitleTable maps normalized role titles to their authority.
func defaultTitleTable() map[string]titleEntry {
	return map[string]titleEntry{
		"gm":              {PriorityGeneralManager, "General Manager"},
		"general manager": {PriorityGeneralManager, "General Manager"},
		"store manager":   {PriorityGeneralManager, "Store Manager"},
		"manager":         {PriorityGeneralManager, "Manager"},
		"team leader":     {PriorityTeamLeader, "Team Leader"},
		"team lead":       {PriorityTeamLeader, "Team Leader"},
		"shift lead":      {PriorityTeamLeader, "Shift Leader"},
		"shift leader":    {PriorityTeamLeader, "Shift Leader"},
		"shift manager":   {PriorityTeamLeader, "Shift Manager"},
	}
}

// patternRule is an ordered fallback rule for titles with no exact match.
type patternRule struct {
	pattern   *regexp.Regexp
	priority  int
	canonical string
}

// defaultPatternRules returns the fallback rules in fixed priority order:
// general-manager-like before manager-like before team-lead-like before
// supervisor-like. First match wins.
func defaultPatternRules() []patternRule {
	return []patternRule{
		{regexp.MustCompile(`\bgeneral\s+manager\b|\bgm\b`), PriorityGeneralManager, "General Manager"},
		{regexp.MustCompile(`\bmanager\b`), PriorityGeneralManager, "Manager"},
		{regexp.MustCompile(`\b(team|shift)\s*(lead|leader)\b`), PriorityTeamLeader, "Team Leader"},
		{regexp.MustCompile(`\bsupervisor\b`), PrioritySupervisor, "Supervisor"},
	}
}

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithTitlePriority adds or overrides an exact title mapping.
func WithTitlePriority(title string, priority int, canonical string) Option {
	return func(d *Detector) {
		if title != "" && priority > 0 {
			d.titles[normalizeTitle(title)] = titleEntry{priority, canonical}
		}
	}
}

// Detector classifies attendance records and resolves leader identities.
type Detector struct {
	titles   map[string]titleEntry
	patterns []patternRule
}

// NewDetector creates a detector with the fixed leadership hierarchy.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		titles:   defaultTitleTable(),
		patterns: defaultPatternRules(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// normalizeTitle trims and lowercases a role title for lookup.
func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// classify maps a role title to its leadership entry. The second return is
// false for titles that are not leadership roles at all.
func (d *Detector) classify(title string) (titleEntry, bool) {
	normalized := normalizeTitle(title)
	if entry, ok := d.titles[normalized]; ok {
		return entry, true
	}
	for _, rule := range d.patterns {
		if rule.pattern.MatchString(normalized) {
			return titleEntry{rule.priority, rule.canonical}, true
		}
	}
	return titleEntry{}, false
}

// DetectLeaders classifies each attendance record against the leadership
// hierarchy and resolves matched employees to internal identities.
//
// The result is sorted ascending by priority (best authority first), with
// external id as the tie-break so repeated runs produce identical output.
// Employees whose titles match no leadership rule are excluded entirely.
// An empty result is the canonical "no leader on duty" state, not an error.
func (d *Detector) DetectLeaders(attendance []model.AttendanceRecord, identities []model.Identity) []model.LeaderCandidate {
	candidates := make([]model.LeaderCandidate, 0, len(attendance))
	best := make(map[string]int) // external id -> index into candidates

	for _, record := range attendance {
		entry, ok := d.classify(record.RoleTitle)
		if !ok {
			continue
		}

		candidate := model.LeaderCandidate{
			Name:       record.EmployeeName,
			RoleTitle:  entry.canonical,
			Priority:   entry.priority,
			ExternalID: record.EmployeeID,
		}

		if identity, ok := ResolveIdentity(record.EmployeeName, record.EmployeeID, identities); ok {
			candidate.UserID = identity.ID
			candidate.Name = identity.Name
		} else {
			candidate.UserID = model.UnknownUserPrefix + record.EmployeeID
		}

		// One employee may hold several records on a shift; keep the best
		// (minimum) priority among all roles matched for that employee.
		if i, seen := best[record.EmployeeID]; seen {
			if candidate.Priority < candidates[i].Priority {
				candidates[i] = candidate
			}
			continue
		}
		best[record.EmployeeID] = len(candidates)
		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority < candidates[j].Priority
		}
		return candidates[i].ExternalID < candidates[j].ExternalID
	})

	return candidates
}
