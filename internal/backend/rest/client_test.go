package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskboard/internal/backend/rest"
	"taskboard/internal/config"
	"taskboard/internal/service"
	"taskboard/internal/testutil"
)

func newClient(t *testing.T) (*rest.Client, *testutil.FakeAPI) {
	t.Helper()
	api := testutil.NewFakeAPI()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := rest.NewWithHTTPClient(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	return c, api
}

func TestNewWithHTTPClient_InvalidURL(t *testing.T) {
	for _, u := range []string{"", "localhost:3000", "ftp://example.com", "http://"} {
		if _, err := rest.NewWithHTTPClient(u, http.DefaultClient); err == nil {
			t.Errorf("expected error for %q", u)
		}
	}
}

func TestListTasks(t *testing.T) {
	c, api := newClient(t)
	api.Seed(testutil.APIRecord{ID: "a1", Title: "Buy milk", Type: "errand", DueDate: "today", Priority: "Normal"})
	api.Seed(testutil.APIRecord{ID: "b2", Title: "File taxes", Type: "admin", DueDate: "April", Priority: "urgent", Completed: true})

	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []service.Task{
		{ID: "a1", Title: "Buy milk", Type: "errand", DueDate: "today", Priority: service.PriorityNormal},
		{ID: "b2", Title: "File taxes", Type: "admin", DueDate: "April", Priority: service.PriorityUrgent, Completed: true},
	}
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(tasks))
	}
	for i := range want {
		if tasks[i] != want[i] {
			t.Errorf("task %d: expected %+v, got %+v", i, want[i], tasks[i])
		}
	}

	req := api.LastRequest()
	if req.Method != http.MethodGet || req.Path != "/" {
		t.Errorf("expected GET /, got %s %s", req.Method, req.Path)
	}
}

func TestListTasks_Empty(t *testing.T) {
	c, _ := newClient(t)

	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected no tasks, got %d", len(tasks))
	}
}

func TestListTasks_IDFallbackAndUnknownPriority(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"plain","title":"t","type":"x","dueDate":"d","completed":false,"priority":"someday"}]`))
	}))
	defer srv.Close()

	c, err := rest.NewWithHTTPClient(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "plain" {
		t.Fatalf("expected id fallback, got %+v", tasks)
	}
	if tasks[0].Priority != service.PriorityNormal {
		t.Errorf("expected unknown priority to decode as normal, got %q", tasks[0].Priority)
	}
}

func TestCreateTask_WireFormat(t *testing.T) {
	c, api := newClient(t)

	task, err := c.CreateTask(context.Background(), service.Fields{
		Title: "Buy milk", Type: "errand", DueDate: "today", Priority: service.PriorityNormal,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID == "" || task.Title != "Buy milk" || task.Completed {
		t.Errorf("unexpected task: %+v", task)
	}

	req := api.LastRequest()
	if req.Method != http.MethodPost || req.Path != "/" {
		t.Errorf("expected POST /, got %s %s", req.Method, req.Path)
	}
	if req.ContentType != "application/json" {
		t.Errorf("expected JSON content type, got %q", req.ContentType)
	}

	var body map[string]any
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("invalid request body: %v", err)
	}
	want := map[string]any{
		"title": "Buy milk", "type": "errand", "dueDate": "today",
		"completed": false, "priority": "Normal",
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("body[%q]: expected %v, got %v", k, v, body[k])
		}
	}

	recs := api.Records()
	if len(recs) != 1 || recs[0].Priority != "Normal" {
		t.Errorf("expected stored priority Normal, got %+v", recs)
	}
}

func TestCreateTask_MissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"title":"Buy milk"}`))
	}))
	defer srv.Close()

	c, _ := rest.NewWithHTTPClient(srv.URL, srv.Client())
	_, err := c.CreateTask(context.Background(), service.Fields{Title: "Buy milk", Type: "x", DueDate: "d", Priority: service.PriorityNormal})

	var serr *service.ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
}

func TestUpdateTask_PartialBody(t *testing.T) {
	c, api := newClient(t)
	api.Seed(testutil.APIRecord{ID: "a1", Title: "Buy milk", Type: "errand", DueDate: "today", Priority: "Normal"})

	important := service.PriorityImportant
	task, err := c.UpdateTask(context.Background(), "a1", service.Patch{Priority: &important})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Priority != service.PriorityImportant || task.Title != "Buy milk" {
		t.Errorf("unexpected task: %+v", task)
	}

	req := api.LastRequest()
	if req.Method != http.MethodPut || req.Path != "/a1" {
		t.Errorf("expected PUT /a1, got %s %s", req.Method, req.Path)
	}
	if got := strings.TrimSpace(string(req.Body)); got != `{"priority":"Important"}` {
		t.Errorf("expected only priority in body, got %s", got)
	}
}

func TestUpdateTask_CompletedFalseIsSent(t *testing.T) {
	c, api := newClient(t)
	api.Seed(testutil.APIRecord{ID: "a1", Title: "Buy milk", Completed: true, Priority: "Normal"})

	open := false
	task, err := c.UpdateTask(context.Background(), "a1", service.Patch{Completed: &open})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Completed {
		t.Error("expected task to be reopened")
	}
	if got := strings.TrimSpace(string(api.LastRequest().Body)); got != `{"completed":false}` {
		t.Errorf("unexpected body %s", got)
	}
}

func TestUpdateTask_NotFound(t *testing.T) {
	c, _ := newClient(t)
	title := "x"

	_, err := c.UpdateTask(context.Background(), "nonexistent", service.Patch{Title: &title})

	var nf *service.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.ID != "nonexistent" {
		t.Errorf("expected ID nonexistent, got %q", nf.ID)
	}
}

func TestDeleteTask(t *testing.T) {
	c, api := newClient(t)
	api.Seed(testutil.APIRecord{ID: "a1", Title: "Buy milk"})
	ctx := context.Background()

	if err := c.DeleteTask(ctx, "a1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(api.Records()) != 0 {
		t.Error("expected record to be deleted")
	}

	var nf *service.NotFoundError
	if err := c.DeleteTask(ctx, "a1"); !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError on second delete, got %v", err)
	}
}

func TestServerError(t *testing.T) {
	c, api := newClient(t)
	api.FailStatus = http.StatusInternalServerError

	_, err := c.ListTasks(context.Background())

	var serr *service.ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if serr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", serr.StatusCode)
	}
	if serr.Message != "Internal Server Error" {
		t.Errorf("expected response text in message, got %q", serr.Message)
	}
}

func TestServerError_ListNotFoundIsServerError(t *testing.T) {
	c, api := newClient(t)
	api.FailStatus = http.StatusNotFound

	_, err := c.ListTasks(context.Background())

	var serr *service.ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ServerError for 404 on the collection, got %v", err)
	}
}

func TestServerError_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	c, _ := rest.NewWithHTTPClient(srv.URL, srv.Client())
	_, err := c.ListTasks(context.Background())

	var serr *service.ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := rest.NewWithHTTPClient(url, http.DefaultClient)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	_, err = c.ListTasks(context.Background())

	var nerr *service.NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestNetworkError_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c, _ := rest.NewWithHTTPClient(srv.URL, srv.Client(), rest.WithTimeout(20*time.Millisecond))
	_, err := c.ListTasks(context.Background())

	var nerr *service.NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestNew_BearerToken(t *testing.T) {
	api := testutil.NewFakeAPI()
	srv := httptest.NewServer(api)
	defer srv.Close()

	cfg, _ := config.New(t.TempDir())
	cfg.BaseURL = srv.URL
	cfg.Token = "secret"

	c, err := rest.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.ListTasks(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := api.LastRequest().Authorization; got != "Bearer secret" {
		t.Errorf("expected bearer token, got %q", got)
	}
}

func TestNew_NoCredentials(t *testing.T) {
	api := testutil.NewFakeAPI()
	srv := httptest.NewServer(api)
	defer srv.Close()

	cfg, _ := config.New(t.TempDir())
	cfg.BaseURL = srv.URL

	c, err := rest.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.ListTasks(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := api.LastRequest().Authorization; got != "" {
		t.Errorf("expected no Authorization header, got %q", got)
	}
}

func TestNew_ClientCredentials(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"cc-token","token_type":"bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	api := testutil.NewFakeAPI()
	srv := httptest.NewServer(api)
	defer srv.Close()

	cfg, _ := config.New(t.TempDir())
	cfg.BaseURL = srv.URL
	cfg.OAuth = config.OAuth{ClientID: "id", ClientSecret: "secret", TokenURL: tokenSrv.URL}

	c, err := rest.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.ListTasks(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := api.LastRequest().Authorization; got != "Bearer cc-token" {
		t.Errorf("expected client-credentials token, got %q", got)
	}
}

func TestNew_TokenEndpointRejects(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer tokenSrv.Close()

	api := testutil.NewFakeAPI()
	srv := httptest.NewServer(api)
	defer srv.Close()

	cfg, _ := config.New(t.TempDir())
	cfg.BaseURL = srv.URL
	cfg.OAuth = config.OAuth{ClientID: "id", ClientSecret: "bad", TokenURL: tokenSrv.URL}

	c, _ := rest.New(context.Background(), cfg, nil)
	_, err := c.ListTasks(context.Background())

	var serr *service.ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if serr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", serr.StatusCode)
	}
}
