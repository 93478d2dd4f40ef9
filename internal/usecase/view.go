package usecase

import (
	"sort"
	"strings"

	"github.com/xavierca1/dealer-leads/internal/entity"
)

type StatusCount struct {
	Status entity.Status `json:"status"`
	Label  string        `json:"label"`
	Count  int           `json:"count"`
}

type ModelCount struct {
	Model string `json:"model"`
	Count int    `json:"count"`
}

type Stats struct {
	Total        int           `json:"total"`
	Appointments int           `json:"appointments"`
	Visits       int           `json:"visits"`
	Sales        int           `json:"sales"`
	ByStatus     []StatusCount `json:"by_status"`
	ByModel      []ModelCount  `json:"by_model"`
}

// VisibleLeads is the slice a viewer may see: everything for the supervisor,
// otherwise only the viewer's own leads in their original order.
func VisibleLeads(all []entity.Lead, viewerID string) []entity.Lead {
	if viewerID == entity.SupervisorID {
		return all
	}
	visible := make([]entity.Lead, 0)
	for _, l := range all {
		if l.AdvisorID == viewerID {
			visible = append(visible, l)
		}
	}
	return visible
}

// Aggregate computes dashboard counters. Appointments deliberately leaves
// negotiation out while visits includes it.
func Aggregate(leads []entity.Lead) Stats {
	byStatus := make(map[entity.Status]int, len(entity.StatusFlow))
	modelCounts := make(map[string]int)
	var modelOrder []string

	for _, l := range leads {
		byStatus[l.Status]++
		if _, seen := modelCounts[l.ModelInterest]; !seen {
			modelOrder = append(modelOrder, l.ModelInterest)
		}
		modelCounts[l.ModelInterest]++
	}

	stats := Stats{
		Total:        len(leads),
		Sales:        byStatus[entity.StatusSold],
		Visits:       byStatus[entity.StatusVisit] + byStatus[entity.StatusNegotiation] + byStatus[entity.StatusSold],
		Appointments: byStatus[entity.StatusAppointment] + byStatus[entity.StatusVisit] + byStatus[entity.StatusSold],
		ByStatus:     make([]StatusCount, 0, len(entity.StatusFlow)),
		ByModel:      make([]ModelCount, 0, len(modelOrder)),
	}
	for _, info := range entity.StatusFlow {
		stats.ByStatus = append(stats.ByStatus, StatusCount{
			Status: info.Key,
			Label:  info.Label,
			Count:  byStatus[info.Key],
		})
	}
	for _, m := range modelOrder {
		stats.ByModel = append(stats.ByModel, ModelCount{Model: m, Count: modelCounts[m]})
	}
	sort.SliceStable(stats.ByModel, func(i, j int) bool {
		return stats.ByModel[i].Count > stats.ByModel[j].Count
	})
	return stats
}

// FilterLeads applies the list search box: case-insensitive substring on name
// or email, and an exact status unless status is empty or "all".
func FilterLeads(leads []entity.Lead, query, status string) []entity.Lead {
	q := strings.ToLower(strings.TrimSpace(query))
	filtered := make([]entity.Lead, 0, len(leads))
	for _, l := range leads {
		if status != "" && status != "all" && string(l.Status) != status {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(l.Name), q) &&
			!strings.Contains(strings.ToLower(l.Email), q) {
			continue
		}
		filtered = append(filtered, l)
	}
	return filtered
}
