package store

// Dataset is a primary record as returned by storage, before relationship
// enrichment. Attributes use the public field names.
type Dataset struct {
	ID         string         `json:"id"`
	UserID     string         `json:"-"`
	Attributes map[string]any `json:"attributes"`
}
