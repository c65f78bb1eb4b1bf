package models

// MediaAction is a single requested mutation against the user's collection.
// Data holds a partial record of mutable entry fields keyed by their JSON
// names; for update/delete either ID or a resolvable Data["title"] is needed.
type MediaAction struct {
	Type string         `json:"type"` // create | update | delete
	ID   string         `json:"id,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

// ActionResult reports the outcome of one action. Exactly one of EntryID or
// Error is set once the action has been processed.
type ActionResult struct {
	Success bool        `json:"success"`
	Action  MediaAction `json:"action"`
	EntryID string      `json:"entryId,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type ActionSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// ExecuteActionsResponse carries one result per input action, in input order.
// Success is true only when no action failed.
type ExecuteActionsResponse struct {
	Success bool           `json:"success"`
	Results []ActionResult `json:"results"`
	Summary ActionSummary  `json:"summary"`
}
