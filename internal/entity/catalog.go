package entity

type Status string

const (
	StatusNew         Status = "new"
	StatusContacted   Status = "contacted"
	StatusAppointment Status = "appointment"
	StatusVisit       Status = "visit"
	StatusNegotiation Status = "negotiation"
	StatusSold        Status = "sold"
	StatusLost        Status = "lost"
)

type StatusInfo struct {
	Key   Status `json:"key"`
	Label string `json:"label"`
}

// StatusFlow lists the funnel in display order. Any status may follow any other.
var StatusFlow = []StatusInfo{
	{StatusNew, "Nuevo"},
	{StatusContacted, "Contactado"},
	{StatusAppointment, "Cita Agendada"},
	{StatusVisit, "Visita Showroom"},
	{StatusNegotiation, "Negociación"},
	{StatusSold, "Vendido"},
	{StatusLost, "Perdido"},
}

func (s Status) Valid() bool {
	for _, info := range StatusFlow {
		if info.Key == s {
			return true
		}
	}
	return false
}

// InFlight is false only for sold and lost.
func (s Status) InFlight() bool {
	return s != StatusSold && s != StatusLost
}

func (s Status) Label() string {
	for _, info := range StatusFlow {
		if info.Key == s {
			return info.Label
		}
	}
	return string(s)
}

type Source string

const (
	SourceHDM         Source = "hdm"
	SourceRedes       Source = "redes"
	SourceProspeccion Source = "prospeccion"
	SourcePiso        Source = "piso"
	SourceWhatsApp    Source = "whatsapp"
	SourceLlamada     Source = "llamada"
	SourceGerencia    Source = "gerencia"
)

type SourceInfo struct {
	ID    Source `json:"id"`
	Label string `json:"label"`
}

var Sources = []SourceInfo{
	{SourceHDM, "HDM (Honda Digital)"},
	{SourceRedes, "Redes Sociales"},
	{SourceProspeccion, "Prospección"},
	{SourcePiso, "Piso / Showroom"},
	{SourceWhatsApp, "WhatsApp"},
	{SourceLlamada, "Llamada Entrante"},
	{SourceGerencia, "Gerencia"},
}

func (s Source) Valid() bool {
	for _, info := range Sources {
		if info.ID == s {
			return true
		}
	}
	return false
}

func (s Source) Label() string {
	for _, info := range Sources {
		if info.ID == s {
			return info.Label
		}
	}
	return string(s)
}

// DefaultModels is used when no catalog file overrides it.
var DefaultModels = []string{"City", "Civic", "Accord", "B-RV", "HR-V", "CR-V", "Pilot", "Odyssey", "Seminuevo"}
