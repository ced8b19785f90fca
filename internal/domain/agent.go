package domain

// AgentStatus is the GET /api/userbot/ payload. The field name drifted
// between backend revisions, so both spellings are decoded and Active
// is the single source of truth for callers.
type AgentStatus struct {
	Running   bool `json:"running"`
	IsRunning bool `json:"is_running"`
}

// Active reports whether the backend considers the agent running.
func (s AgentStatus) Active() bool {
	return s.Running || s.IsRunning
}

// AgentSettings mirrors /api/agent_status/.
type AgentSettings struct {
	AutoReply      bool   `json:"agent_auto_reply"`
	PinRequired    bool   `json:"pin_required"`
	TrainingStatus string `json:"agent_training_status,omitempty"`
}

// TelegramLink is the body of POST /api/telegram/ when connecting an
// account, and of the PATCH that submits the one-time PIN.
type TelegramLink struct {
	MobileNumber string `json:"telegram_mobile_number,omitempty"`
	APIID        string `json:"api_id,omitempty"`
	APIHash      string `json:"api_hash,omitempty"`
	Pin          string `json:"pin,omitempty"`
}

// DatasetResult is returned by dataset upload.
type DatasetResult struct {
	Status string `json:"status"`
	Added  int    `json:"added"`
}
