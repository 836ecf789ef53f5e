package remoteagent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uicapture/internal/adapters/downloader"
	"uicapture/internal/adapters/localstorage"
	"uicapture/internal/core/ports"
)

var _ ports.Agent = (*Client)(nil)

// fakeService is an in-process agent service. Tasks named "fail" end in
// FAILED, everything else succeeds after one RUNNING poll.
type fakeService struct {
	mu       sync.Mutex
	headless bool
	deletes  int
	polls    map[string]int
	tasks    map[string]string
	lastBody map[string]interface{}
}

func newFakeService(t *testing.T) (*fakeService, *httptest.Server) {
	f := &fakeService{polls: map[string]int{}, tasks: map[string]string{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		var in struct {
			Headless bool `json:"headless"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		f.mu.Lock()
		f.headless = in.Headless
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"sess-1"}}`))
	})
	mux.HandleFunc("POST /sessions/sess-1/tasks", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		f.mu.Lock()
		f.lastBody = in
		runID := fmt.Sprintf("run-%d", len(f.tasks)+1)
		f.tasks[runID] = in["task"].(string)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"` + runID + `"}}`))
	})
	mux.HandleFunc("GET /tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		f.mu.Lock()
		f.polls[id]++
		polls := f.polls[id]
		task := f.tasks[id]
		f.mu.Unlock()

		switch {
		case polls < 2:
			_, _ = w.Write([]byte(`{"data":{"status":"RUNNING"}}`))
		case task == "fail":
			_, _ = w.Write([]byte(`{"data":{"status":"FAILED","error":"element not found"}}`))
		default:
			_, _ = w.Write([]byte(`{"data":{"status":"SUCCEEDED","manifest_url":"/files/` + id + `/manifest.json"}}`))
		}
	})
	mux.HandleFunc("GET /files/{id}/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"task":"` + r.PathValue("id") + `","total_steps":6}`))
	})
	mux.HandleFunc("DELETE /sessions/sess-1", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.deletes++
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func newTestClient(t *testing.T, url string) (*Client, string) {
	t.Helper()
	dir := t.TempDir()
	store := localstorage.NewLocalStorage(dir, filepath.Join(dir, "dataset_summary.json"))
	c, err := NewClient(url, "token", 5*time.Millisecond, downloader.NewHTTPDownloader("token"), store, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	return c, dir
}

func TestClient_ExecuteTask(t *testing.T) {
	svc, srv := newFakeService(t)
	c, dir := newTestClient(t, srv.URL)

	sess, err := c.Initialize(context.Background(), true)
	require.NoError(t, err)
	svc.mu.Lock()
	assert.True(t, svc.headless)
	svc.mu.Unlock()

	path, err := sess.ExecuteTask(context.Background(), ports.TaskRequest{
		Description: "Create a new page in Notion",
		StartURL:    "https://www.notion.so/",
		MaxSteps:    15,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "create_a_new_page_in_notion", "manifest.json"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"task":"run-1","total_steps":6}`, string(data))

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Equal(t, "https://www.notion.so/", svc.lastBody["start_url"])
	assert.EqualValues(t, 15, svc.lastBody["max_steps"])
	assert.Equal(t, 2, svc.polls["run-1"])
}

func TestClient_ExecuteTask_Failed(t *testing.T) {
	_, srv := newFakeService(t)
	c, _ := newTestClient(t, srv.URL)

	sess, err := c.Initialize(context.Background(), false)
	require.NoError(t, err)

	_, err = sess.ExecuteTask(context.Background(), ports.TaskRequest{Description: "fail", StartURL: "u", MaxSteps: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "element not found")
}

func TestClient_ExecuteTask_ContextCancelled(t *testing.T) {
	_, srv := newFakeService(t)
	c, _ := newTestClient(t, srv.URL)
	c.pollInterval = time.Hour

	sess, err := c.Initialize(context.Background(), false)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = sess.ExecuteTask(ctx, ports.TaskRequest{Description: "slow", StartURL: "u", MaxSteps: 1})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_CloseOnce(t *testing.T) {
	svc, srv := newFakeService(t)
	c, _ := newTestClient(t, srv.URL)

	sess, err := c.Initialize(context.Background(), false)
	require.NoError(t, err)

	require.NoError(t, sess.Close(context.Background()))
	require.NoError(t, sess.Close(context.Background()))
	svc.mu.Lock()
	assert.Equal(t, 1, svc.deletes)
	svc.mu.Unlock()
}

func TestClient_InitializeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no browsers available"))
	}))
	defer srv.Close()
	c, _ := newTestClient(t, srv.URL)

	_, err := c.Initialize(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "no browsers available")
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient("", "", 0, nil, nil, log.New(io.Discard, "", 0))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	c := &Client{baseURL: "http://agent:8080"}
	assert.Equal(t, "http://agent:8080/files/m.json", c.resolve("/files/m.json"))
	assert.Equal(t, "https://cdn.example.com/m.json", c.resolve("https://cdn.example.com/m.json"))
}
