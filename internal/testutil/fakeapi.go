package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// APIRecord is a task as the fake REST API stores it. Priority is kept
// exactly as received so tests can assert on the wire form.
type APIRecord struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	DueDate   string `json:"dueDate"`
	Completed bool   `json:"completed"`
	Priority  string `json:"priority"`
}

// APIRequest is a request received by FakeAPI.
type APIRequest struct {
	Method        string
	Path          string
	Body          []byte
	Authorization string
	ContentType   string
}

// FakeAPI is an http.Handler implementing the remote task collection:
// GET /, POST /, PUT /{id}, DELETE /{id}. Serve it with httptest.NewServer.
type FakeAPI struct {
	mu       sync.Mutex
	records  []APIRecord
	requests []APIRequest
	mux      *http.ServeMux

	// FailStatus, when non-zero, makes every request fail with this status.
	FailStatus int
}

// NewFakeAPI creates an empty FakeAPI.
func NewFakeAPI() *FakeAPI {
	a := &FakeAPI{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", a.handleList)
	mux.HandleFunc("POST /{$}", a.handleCreate)
	mux.HandleFunc("PUT /{id}", a.handleUpdate)
	mux.HandleFunc("DELETE /{id}", a.handleDelete)
	a.mux = mux
	return a
}

// Seed stores a record and returns it. An empty ID is replaced by a UUID.
func (a *FakeAPI) Seed(r APIRecord) APIRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	a.records = append(a.records, r)
	return r
}

// Records returns a snapshot of the stored records.
func (a *FakeAPI) Records() []APIRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]APIRecord, len(a.records))
	copy(out, a.records)
	return out
}

// Requests returns every request received so far.
func (a *FakeAPI) Requests() []APIRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]APIRequest, len(a.requests))
	copy(out, a.requests)
	return out
}

// LastRequest returns the most recent request.
func (a *FakeAPI) LastRequest() APIRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.requests) == 0 {
		return APIRequest{}
	}
	return a.requests[len(a.requests)-1]
}

func (a *FakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	a.mu.Lock()
	a.requests = append(a.requests, APIRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Body:          body,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
	})
	fail := a.FailStatus
	a.mu.Unlock()

	if fail != 0 {
		http.Error(w, http.StatusText(fail), fail)
		return
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	a.mux.ServeHTTP(w, r)
}

func (a *FakeAPI) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Records())
}

func (a *FakeAPI) handleCreate(w http.ResponseWriter, r *http.Request) {
	var rec APIRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	rec.ID = ""
	writeJSON(w, http.StatusCreated, a.Seed(rec))
}

func (a *FakeAPI) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.records {
		if a.records[i].ID != id {
			continue
		}
		rec := &a.records[i]
		for key, raw := range fields {
			var err error
			switch key {
			case "title":
				err = json.Unmarshal(raw, &rec.Title)
			case "type":
				err = json.Unmarshal(raw, &rec.Type)
			case "dueDate":
				err = json.Unmarshal(raw, &rec.DueDate)
			case "completed":
				err = json.Unmarshal(raw, &rec.Completed)
			case "priority":
				err = json.Unmarshal(raw, &rec.Priority)
			}
			if err != nil {
				http.Error(w, "invalid field "+key, http.StatusBadRequest)
				return
			}
		}
		writeJSON(w, http.StatusOK, *rec)
		return
	}
	http.Error(w, "task not found", http.StatusNotFound)
}

func (a *FakeAPI) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	a.mu.Lock()
	defer a.mu.Unlock()
	for i, rec := range a.records {
		if rec.ID == id {
			a.records = append(a.records[:i], a.records[i+1:]...)
			writeJSON(w, http.StatusOK, rec)
			return
		}
	}
	http.Error(w, "task not found", http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
