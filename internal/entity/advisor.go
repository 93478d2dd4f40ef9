package entity

// SupervisorID is the viewer id that sees every lead.
const SupervisorID = "supervisor"

type Advisor struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// Roster is the fixed, ordered advisor registry. Order matters for tie-breaks.
type Roster []Advisor

func (r Roster) Find(id string) (Advisor, bool) {
	for _, a := range r {
		if a.ID == id {
			return a, true
		}
	}
	return Advisor{}, false
}

// IsViewer reports whether id may look at leads at all.
func (r Roster) IsViewer(id string) bool {
	if id == SupervisorID {
		return true
	}
	_, ok := r.Find(id)
	return ok
}

// DefaultRoster is the showroom team shipped with the app.
var DefaultRoster = Roster{
	{ID: "adv1", Name: "Alejandro Hurtado", Color: "#3B82F6"},
	{ID: "adv2", Name: "Triana Montes", Color: "#10B981"},
	{ID: "adv3", Name: "Jonathan Rodriguez", Color: "#F59E0B"},
	{ID: "adv4", Name: "Lucy Figueroa", Color: "#8B5CF6"},
	{ID: "adv5", Name: "Giovanni Gonzalez", Color: "#EC4899"},
}
