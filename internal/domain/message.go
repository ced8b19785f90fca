// Package domain contains client-side mirrors of backend records. The
// backend owns all authoritative state; these types only carry what the
// client renders and patches back.
package domain

// Category buckets an incoming message for the dashboard tabs. A message
// belongs to exactly one category.
type Category string

const (
	CategoryImportant Category = "important"
	CategoryGeneral   Category = "general"
	CategoryFlagged   Category = "flagged"
)

// Message mirrors one record from /api/messages/.
type Message struct {
	ID              int64   `json:"id"`
	ContactUsername string  `json:"contact_username"`
	Timestamp       string  `json:"timestamp"`
	Body            string  `json:"message"`
	Sentiment       string  `json:"sentiment"`
	IsImportant     bool    `json:"is_important"`
	IsToxic         bool    `json:"is_toxic"`
	AIReply         string  `json:"ai_generated_message"`
	Score           float64 `json:"score"`
	ReplySent       bool    `json:"reply_sent"`
}

// Category returns the dashboard tab this message belongs to. Important
// wins over flagged when both classifier flags are set.
func (m Message) Category() Category {
	switch {
	case m.IsImportant:
		return CategoryImportant
	case m.IsToxic:
		return CategoryFlagged
	default:
		return CategoryGeneral
	}
}

// MessagePatch is the body of PATCH /api/messages/{id}/ when a reply is
// approved and sent.
type MessagePatch struct {
	ReplyMessage string  `json:"reply_message"`
	Score        float64 `json:"score"`
	Replied      bool    `json:"replied"`
}
