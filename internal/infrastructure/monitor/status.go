package monitor

import "time"

// Status is the last snapshot taken by the monitor.
type Status struct {
	Components map[string]ComponentStatus `json:"components"`
	Online     bool                       `json:"online"`
	LastCheck  time.Time                  `json:"last_check"`
}

type ComponentStatus struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

func (s Status) clone() Status {
	out := Status{Online: s.Online, LastCheck: s.LastCheck, Components: make(map[string]ComponentStatus, len(s.Components))}
	for name, c := range s.Components {
		out.Components[name] = c
	}
	return out
}
