package audit

import "time"

// Actions recorded by the service.
const (
	ActionLogin          = "login"
	ActionLoginFailed    = "login_failed"
	ActionPasswordChange = "password_change"
	ActionAccountCreate  = "account_create"
)

// Sources identify which surface caused an entry.
const (
	SourceAPI = "api"
	SourceCLI = "cli"
)

// EntityAccount is the entity type for account-scoped entries.
const EntityAccount = "account"

// Page size bounds for List.
const (
	defaultLimit = 50
	maxLimit     = 200
)

// Entry is a single audit trail record.
type Entry struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id,omitempty"`
	AccountID  string         `json:"account_id,omitempty"`
	Source     string         `json:"source"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Action    string
	AccountID string
	Limit     int // default 50, max 200
	Offset    int
}

// Page is one page of List results, most recent first.
type Page struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}
