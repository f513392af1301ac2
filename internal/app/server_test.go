package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/parley/internal/config"
	"github.com/markdave123-py/parley/internal/core/chat"
	"github.com/markdave123-py/parley/internal/core/conversation"
	"github.com/markdave123-py/parley/internal/core/extract"
	"github.com/markdave123-py/parley/internal/models"
)

type fakeLLM struct {
	reply string
}

func (f *fakeLLM) GenerateChat(context.Context, []models.ChatMessage, int) (string, int, error) {
	return f.reply, 7, nil
}

type fakeSearcher struct {
	results []models.SearchResult
}

func (f *fakeSearcher) Search(context.Context, string, int) []models.SearchResult {
	return f.results
}

func (f *fakeSearcher) FetchPage(context.Context, string) string {
	return "fetched page text"
}

// newTestServer wires the full router against stubbed collaborators.
func newTestServer(t *testing.T, llmReply string, results []models.SearchResult) *httptest.Server {
	t.Helper()

	webDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html>parley</html>"), 0o644))

	cfg := &config.Config{
		Port:        "0",
		SecretKey:   "test-secret",
		MaxUploadMB: 16,
		WebDir:      webDir,
	}

	store := conversation.NewStore()
	searcher := &fakeSearcher{results: results}
	orchestrator := chat.NewOrchestrator(store, searcher, &fakeLLM{reply: llmReply})
	server := NewServer(cfg, store, orchestrator, searcher, searcher, extract.NewDocconvExtractor())

	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// newClient returns an http client that keeps the session cookie.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, client *http.Client, url string, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := client.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestIndexAssignsSessionCookie(t *testing.T) {
	srv := newTestServer(t, "", nil)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == "parley_session" && c.Value != "" {
			found = true
		}
	}
	assert.True(t, found, "expected a parley_session cookie to be set")
}

func TestChatEmptyMessageReturns400(t *testing.T) {
	srv := newTestServer(t, "Hi there", nil)
	client := newClient(t)

	resp, body := postJSON(t, client, srv.URL+"/api/chat", `{"message": ""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestChatReturnsStubbedReply(t *testing.T) {
	srv := newTestServer(t, "Hi there", nil)
	client := newClient(t)

	resp, body := postJSON(t, client, srv.URL+"/api/chat", `{"message": "Hello"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hi there", body["response"])
	assert.NotEmpty(t, body["message_id"])
	assert.Equal(t, "normal", body["thinking_mode"])
	assert.Equal(t, float64(7), body["token_usage"])
}

func TestChatConversationAccumulates(t *testing.T) {
	srv := newTestServer(t, "reply", nil)
	client := newClient(t)

	postJSON(t, client, srv.URL+"/api/chat", `{"message": "one"}`)
	postJSON(t, client, srv.URL+"/api/chat", `{"message": "two"}`)

	resp, err := client.Get(srv.URL + "/api/conversation")
	require.NoError(t, err)
	defer resp.Body.Close()

	var snap models.ConversationSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Len(t, snap.Messages, 4)
}

func TestSearchEmptyQueryReturns400(t *testing.T) {
	srv := newTestServer(t, "", nil)
	client := newClient(t)

	resp, body := postJSON(t, client, srv.URL+"/api/search", `{"query": ""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestSearchReturnsStubbedResults(t *testing.T) {
	stub := []models.SearchResult{{Title: "Cats", URL: "http://cats.example", Snippet: "all about cats", Source: "duckduckgo"}}
	srv := newTestServer(t, "", stub)
	client := newClient(t)

	resp, body := postJSON(t, client, srv.URL+"/api/search", `{"query": "cats"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	results, ok := body["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 1)
	first := results[0].(map[string]any)
	assert.Equal(t, "Cats", first["title"])
}

func TestFetchEmptyURLReturns400(t *testing.T) {
	srv := newTestServer(t, "", nil)
	client := newClient(t)

	resp, body := postJSON(t, client, srv.URL+"/api/fetch", `{"url": ""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestFetchReturnsContent(t *testing.T) {
	srv := newTestServer(t, "", nil)
	client := newClient(t)

	resp, body := postJSON(t, client, srv.URL+"/api/fetch", `{"url": "http://example.com"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "fetched page text", body["content"])
}

func TestUploadWithoutFileReturns400(t *testing.T) {
	srv := newTestServer(t, "", nil)
	client := newClient(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("something", "else"))
	require.NoError(t, w.Close())

	resp, err := client.Post(srv.URL+"/api/upload", w.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["error"])
}

func TestUploadTextFile(t *testing.T) {
	srv := newTestServer(t, "", nil)
	client := newClient(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("quarterly planning notes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp, err := client.Post(srv.URL+"/api/upload", w.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "notes.txt", body["filename"])
	assert.Equal(t, "quarterly planning notes", body["content_preview"])

	// The upload shows up in the conversation as a file record and a
	// file-type message.
	convResp, err := client.Get(srv.URL + "/api/conversation")
	require.NoError(t, err)
	defer convResp.Body.Close()

	var snap models.ConversationSnapshot
	require.NoError(t, json.NewDecoder(convResp.Body).Decode(&snap))
	require.Len(t, snap.Files, 1)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, models.MessageTypeFile, snap.Messages[0].Type)
}

func TestExportWithoutSessionReturns404(t *testing.T) {
	srv := newTestServer(t, "", nil)

	// No cookie jar: this request carries no established session.
	resp, err := http.Get(srv.URL + "/api/conversation/export")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportWithSession(t *testing.T) {
	srv := newTestServer(t, "reply", nil)
	client := newClient(t)

	postJSON(t, client, srv.URL+"/api/chat", `{"message": "hello"}`)

	resp, err := client.Get(srv.URL + "/api/conversation/export")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var export models.ConversationExport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&export))
	assert.Len(t, export.Messages, 2)
	assert.NotEmpty(t, export.CreatedAt)
	assert.NotEmpty(t, export.LastUpdated)
}

func TestClearEmptiesConversation(t *testing.T) {
	srv := newTestServer(t, "reply", nil)
	client := newClient(t)

	postJSON(t, client, srv.URL+"/api/chat", `{"message": "hello"}`)

	resp, body := postJSON(t, client, srv.URL+"/api/clear", `{}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	convResp, err := client.Get(srv.URL + "/api/conversation")
	require.NoError(t, err)
	defer convResp.Body.Close()

	var snap models.ConversationSnapshot
	require.NoError(t, json.NewDecoder(convResp.Body).Decode(&snap))
	assert.Empty(t, snap.Messages)
}
