package models

// ActorView represents an actor and the orders in its working sets
type ActorView struct {
	Name    string      `json:"name"`
	Role    string      `json:"role"`
	Pending []OrderView `json:"pending,omitempty"`
	Ready   []OrderView `json:"ready,omitempty"`
	Failed  []OrderView `json:"failed,omitempty"`
	Seen    []OrderView `json:"seen,omitempty"`
	Claimed []OrderView `json:"claimed,omitempty"`
	Active  []OrderView `json:"active,omitempty"`
}

// ActorSummary is an actor listed by role and name.
type ActorSummary struct {
	Name string `json:"name"`
	Role string `json:"role"`
}
