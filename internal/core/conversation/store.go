// Package conversation holds all per-session chat state. The store is
// the only owner of conversation data; handlers and the orchestrator go
// through it for every read and write. Nothing here touches disk - the
// whole registry lives and dies with the process.
package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/parley/internal/models"
)

// state is one session's conversation. Only the store touches it.
type state struct {
	messages    []models.Message
	files       []models.FileRecord
	searches    []models.SearchRecord
	createdAt   time.Time
	lastUpdated time.Time
}

// Store is an in-memory registry of conversations keyed by session id.
// A single mutex serializes every operation, so concurrent requests on
// the same session cannot interleave mid-append or observe a
// half-mutated conversation. Two whole turns racing on one session may
// still land in either order; that matches the HTTP semantics.
type Store struct {
	mu            sync.Mutex
	conversations map[string]*state
}

// NewStore returns an empty conversation registry.
func NewStore() *Store {
	return &Store{conversations: make(map[string]*state)}
}

// locked returns the conversation for sessionID, creating an empty one
// on first access. Callers must hold the store lock.
func (s *Store) locked(sessionID string) *state {
	conv, ok := s.conversations[sessionID]
	if !ok {
		now := time.Now()
		conv = &state{createdAt: now, lastUpdated: now}
		s.conversations[sessionID] = conv
	}
	return conv
}

// GetOrCreate registers an empty conversation for sessionID if none
// exists. It never fails and never resets an existing conversation.
func (s *Store) GetOrCreate(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked(sessionID)
}

// AppendMessage adds a message with a fresh id and timestamp and
// returns it by value. A nil metadata map is stored as an empty one.
func (s *Store) AppendMessage(sessionID string, role models.Role, content string, msgType models.MessageType, metadata map[string]any) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.locked(sessionID)
	if metadata == nil {
		metadata = map[string]any{}
	}
	now := time.Now()
	msg := models.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Type:      msgType,
		Timestamp: now.Format(time.RFC3339),
		Metadata:  metadata,
	}
	conv.messages = append(conv.messages, msg)
	conv.lastUpdated = now
	return msg
}

// AppendFile records an extracted upload against the conversation.
func (s *Store) AppendFile(sessionID string, file models.FileRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.locked(sessionID)
	conv.files = append(conv.files, file)
	conv.lastUpdated = time.Now()
}

// AppendSearch logs a search and its results with the current time.
func (s *Store) AppendSearch(sessionID string, query string, results []models.SearchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.locked(sessionID)
	now := time.Now()
	conv.searches = append(conv.searches, models.SearchRecord{
		Query:     query,
		Results:   results,
		Timestamp: now.Format(time.RFC3339),
	})
	conv.lastUpdated = now
}

// MessagesForModel projects the conversation into the role/content list
// the model API consumes. Only user and assistant messages survive.
// File messages carrying extracted text are rewritten so the model sees
// the file name and content ahead of the user's own words. The
// projection is rebuilt from live state on every call.
func (s *Store) MessagesForModel(sessionID string) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.locked(sessionID)
	out := make([]models.ChatMessage, 0, len(conv.messages))
	for _, msg := range conv.messages {
		if msg.Role != models.RoleUser && msg.Role != models.RoleAssistant {
			continue
		}
		content := msg.Content
		if msg.Type == models.MessageTypeFile {
			if fileContent, ok := msg.Metadata["file_content"].(string); ok {
				filename, _ := msg.Metadata["filename"].(string)
				content = "File: " + filename + "\nContent: " + fileContent + "\n\nUser query: " + msg.Content
			}
		}
		out = append(out, models.ChatMessage{Role: msg.Role, Content: content})
	}
	return out
}

// Snapshot returns the live messages/files/search view for the UI.
func (s *Store) Snapshot(sessionID string) models.ConversationSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.locked(sessionID)
	return models.ConversationSnapshot{
		Messages:      append([]models.Message{}, conv.messages...),
		Files:         append([]models.FileRecord{}, conv.files...),
		SearchHistory: append([]models.SearchRecord{}, conv.searches...),
	}
}

// Export returns the full conversation including its timestamps, all
// timestamps as RFC 3339 strings.
func (s *Store) Export(sessionID string) models.ConversationExport {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.locked(sessionID)
	return models.ConversationExport{
		Messages:      append([]models.Message{}, conv.messages...),
		Files:         append([]models.FileRecord{}, conv.files...),
		SearchHistory: append([]models.SearchRecord{}, conv.searches...),
		CreatedAt:     conv.createdAt.Format(time.RFC3339),
		LastUpdated:   conv.lastUpdated.Format(time.RFC3339),
	}
}

// Clear empties the conversation. The session keeps its id but reads as
// freshly created afterwards.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.conversations[sessionID] = &state{createdAt: now, lastUpdated: now}
}
