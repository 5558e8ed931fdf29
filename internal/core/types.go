package core

const (
	AppName       = "Mnemo"
	AppVersion    = "0.1.0"
	RepositoryURL = "https://github.com/sandevgo/mnemo"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Fact is a remembered key/value pair. Keys are not unique: telling the
// assistant the same thing twice produces two rows, and retrieval has to
// cope with that.
type Fact struct {
	ID        int64  `json:"id"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	CreatedAt int64  `json:"created_at"` // epoch millis
}

type Message struct {
	ID        int64  `json:"id"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"` // epoch millis
	Important bool   `json:"important"`
}

func (m Message) FromUser() bool {
	return m.Role == RoleUser
}

// Detection describes what a memory scan found in a piece of text.
type Detection struct {
	Detected bool
	Key      string
	Value    string
	FromJSON bool
}

// PromptContext is assembled once per turn, owned by that turn, and
// discarded when the request completes.
type PromptContext struct {
	Recent []Message
	Facts  []Fact
}
