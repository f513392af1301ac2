package models

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageType distinguishes plain chat text from file-upload markers.
type MessageType string

const (
	MessageTypeText MessageType = "text"
	MessageTypeFile MessageType = "file"
)

// Message is one immutable entry in a conversation. Timestamp is an
// RFC 3339 string so exports serialize without further conversion.
//
// Known metadata keys:
//
//	thinking_mode        string  - mode requested for this turn
//	enhanced_prompt_used bool    - whether a thinking template was applied
//	filename             string  - file messages only
//	file_content         string  - extracted text, file messages only
//	mime_type            string  - file messages only
//	size                 int     - extracted character count
//	search_used          bool    - assistant messages only
//	search_results       []SearchResult
//	token_usage          int     - output tokens reported by the model
type Message struct {
	ID        string         `json:"id"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Type      MessageType    `json:"type"`
	Timestamp string         `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
}

// FileRecord is what survives of an upload after extraction. The
// uploaded binary itself is deleted as soon as the text is pulled out.
type FileRecord struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	MimeType string `json:"mime_type,omitempty"`
	Size     int    `json:"size"`
	Error    bool   `json:"error,omitempty"`
}

// SearchResult is a single hit from a web-search provider.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// SearchRecord logs one search performed on behalf of a conversation.
type SearchRecord struct {
	Query     string         `json:"query"`
	Results   []SearchResult `json:"results"`
	Timestamp string         `json:"timestamp"`
}

// ChatMessage is the role/content projection sent to the model API.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ConversationSnapshot is the live view returned by GET /api/conversation.
type ConversationSnapshot struct {
	Messages      []Message      `json:"messages"`
	Files         []FileRecord   `json:"files"`
	SearchHistory []SearchRecord `json:"search_history"`
}

// ConversationExport is the full snapshot including conversation timestamps.
type ConversationExport struct {
	Messages      []Message      `json:"messages"`
	Files         []FileRecord   `json:"files"`
	SearchHistory []SearchRecord `json:"search_history"`
	CreatedAt     string         `json:"created_at"`
	LastUpdated   string         `json:"last_updated"`
}
