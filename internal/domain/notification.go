package domain

// Notification mirrors one record from /api/notifications/. The backend
// creates these as side effects of message and training events; the client
// only marks them read or deletes them.
type Notification struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
	Read      bool   `json:"read"`
}

// AnyUnread reports whether at least one notification is unread.
func AnyUnread(in []Notification) bool {
	for _, n := range in {
		if !n.Read {
			return true
		}
	}
	return false
}
