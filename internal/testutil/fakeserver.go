package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"

	"taskdash/internal/service"
)

type account struct {
	password string
	name     string
}

type injected struct {
	status  int
	message string
}

// FakeServer is an httptest-backed task service speaking the REST API.
// Tasks are scoped per user; login issues random UUID tokens.
type FakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]*account       // email -> account
	tokens   map[string]string         // token -> email
	tasks    map[string][]service.Task // email -> tasks
	failures map[string]injected       // "METHOD path" -> next failure
	auths    []string                  // Authorization header per request
	nextID   int
}

// NewFakeServer starts a server with one account: ada@example.com / secret.
// The server is closed when the test ends.
func NewFakeServer(t interface{ Cleanup(func()) }) *FakeServer {
	fs := &FakeServer{
		accounts: map[string]*account{"ada@example.com": {password: "secret", name: "Ada"}},
		tokens:   make(map[string]string),
		tasks:    make(map[string][]service.Task),
		failures: make(map[string]injected),
		nextID:   1,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/login", fs.login)
	mux.HandleFunc("POST /user/register", fs.register)
	mux.HandleFunc("GET /user/profile", fs.authed(fs.getProfile))
	mux.HandleFunc("PUT /user/profile", fs.authed(fs.putProfile))
	mux.HandleFunc("GET /tasks", fs.authed(fs.listTasks))
	mux.HandleFunc("POST /tasks", fs.authed(fs.createTask))
	mux.HandleFunc("PUT /tasks/{id}", fs.authed(fs.updateTask))
	mux.HandleFunc("DELETE /tasks/{id}", fs.authed(fs.deleteTask))

	fs.Server = httptest.NewServer(http.StripPrefix("/api", fs.record(mux)))
	t.Cleanup(fs.Close)
	return fs
}

// BaseURL returns the API root, which lives under /api like the real service.
func (fs *FakeServer) BaseURL() string {
	return fs.URL + "/api"
}

// FailNext makes the next request matching method and path fail once.
// path is relative to the API root, e.g. "/tasks/1".
func (fs *FakeServer) FailNext(method, path string, status int, message string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.failures[method+" "+path] = injected{status: status, message: message}
}

// ExpireSessions revokes every issued token.
func (fs *FakeServer) ExpireSessions() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.tokens = make(map[string]string)
}

// IssueToken registers token for email without a login call.
func (fs *FakeServer) IssueToken(token, email string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.tokens[token] = email
}

// Requests returns the number of requests served.
func (fs *FakeServer) Requests() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.auths)
}

// AuthHeaders returns the Authorization header of every request in order.
func (fs *FakeServer) AuthHeaders() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]string(nil), fs.auths...)
}

// Tasks returns the stored tasks for email.
func (fs *FakeServer) Tasks(email string) []service.Task {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]service.Task(nil), fs.tasks[email]...)
}

// SeedTask stores a task for email directly.
func (fs *FakeServer) SeedTask(email string, task service.Task) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.tasks[email] = append(fs.tasks[email], task)
}

func (fs *FakeServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		fs.auths = append(fs.auths, r.Header.Get("Authorization"))
		key := r.Method + " " + r.URL.Path
		fail, ok := fs.failures[key]
		if ok {
			delete(fs.failures, key)
		}
		fs.mu.Unlock()

		if ok {
			writeError(w, fail.status, fail.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (fs *FakeServer) authed(h func(w http.ResponseWriter, r *http.Request, email string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		fs.mu.Lock()
		email, known := fs.tokens[token]
		fs.mu.Unlock()
		if !ok || !known {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		h(w, r, email)
	}
}

func (fs *FakeServer) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	acct, ok := fs.accounts[body.Email]
	if !ok || acct.password != body.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	token := uuid.NewString()
	fs.tokens[token] = body.Email
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (fs *FakeServer) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, exists := fs.accounts[body.Email]; exists {
		writeError(w, http.StatusConflict, "User already exists")
		return
	}
	fs.accounts[body.Email] = &account{password: body.Password, name: body.Name}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered"})
}

func (fs *FakeServer) getProfile(w http.ResponseWriter, r *http.Request, email string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"user": service.Profile{Name: fs.accounts[email].name, Email: email},
	})
}

func (fs *FakeServer) putProfile(w http.ResponseWriter, r *http.Request, email string) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if _, sent := body["email"]; sent {
		writeError(w, http.StatusBadRequest, "Email cannot be changed")
		return
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.accounts[email].name = body["name"]
	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated"})
}

func (fs *FakeServer) listTasks(w http.ResponseWriter, r *http.Request, email string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	tasks := fs.tasks[email]
	if tasks == nil {
		tasks = []service.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (fs *FakeServer) createTask(w http.ResponseWriter, r *http.Request, email string) {
	var body service.Payload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Title) == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if body.Status == "" {
		body.Status = service.DefaultStatus
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	task := service.Task{ID: fmt.Sprintf("%d", fs.nextID), Title: body.Title, Status: body.Status}
	fs.nextID++
	fs.tasks[email] = append(fs.tasks[email], task)
	writeJSON(w, http.StatusCreated, task)
}

func (fs *FakeServer) updateTask(w http.ResponseWriter, r *http.Request, email string) {
	var body service.Payload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if body.Status != "" && !body.Status.Allowed(service.AllStatuses) {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	tasks := fs.tasks[email]
	for i := range tasks {
		if tasks[i].ID == r.PathValue("id") {
			if body.Title != "" {
				tasks[i].Title = body.Title
			}
			if body.Status != "" {
				tasks[i].Status = body.Status
			}
			writeJSON(w, http.StatusOK, tasks[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "Task not found")
}

func (fs *FakeServer) deleteTask(w http.ResponseWriter, r *http.Request, email string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	tasks := fs.tasks[email]
	for i := range tasks {
		if tasks[i].ID == r.PathValue("id") {
			fs.tasks[email] = append(tasks[:i], tasks[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Task not found")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
