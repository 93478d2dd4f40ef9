package usecase

import (
	"github.com/xavierca1/dealer-leads/internal/entity"
)

// AutoAssign is the form value meaning "let the engine pick".
const AutoAssign = "auto"

// InFlightCounts returns, per roster advisor, how many leads they own that
// are neither sold nor lost. Leads owned by unknown advisors are ignored.
func InFlightCounts(leads []entity.Lead, roster entity.Roster) map[string]int {
	counts := make(map[string]int, len(roster))
	for _, adv := range roster {
		counts[adv.ID] = 0
	}
	for _, l := range leads {
		if _, ok := counts[l.AdvisorID]; ok && l.InFlight() {
			counts[l.AdvisorID]++
		}
	}
	return counts
}

// SelectAdvisor picks the owner for a new lead. A manual override that
// resolves to the roster wins outright; otherwise the advisor with the fewest
// in-flight leads is chosen, earliest in roster order on ties.
func SelectAdvisor(activeLeads []entity.Lead, roster entity.Roster, override string) (entity.Advisor, error) {
	if len(roster) == 0 {
		return entity.Advisor{}, &DomainError{
			Code:    CodeConfiguration,
			Message: "advisor roster is empty",
		}
	}

	if override != "" && override != AutoAssign {
		adv, ok := roster.Find(override)
		if !ok {
			return entity.Advisor{}, newValidationError([]ValidationError{
				{"advisor_id", "is not a roster advisor"},
			})
		}
		return adv, nil
	}

	counts := InFlightCounts(activeLeads, roster)
	selected := roster[0]
	for _, adv := range roster[1:] {
		// strict < keeps the earliest advisor among ties
		if counts[adv.ID] < counts[selected.ID] {
			selected = adv
		}
	}
	return selected, nil
}
