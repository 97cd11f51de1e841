package testutil

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/dtroode/imagestudio/internal/model"
)

// PNG encodes a solid w x h image. Every generated image is PNG(1, 1).
func PNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 80, G: 70, B: 230, A: 255}}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

type storedUser struct {
	id       string
	password string
}

type storedImage struct {
	record model.ImageRecord
	owner  string
}

// Backend is an in-memory stand-in for the image service, served over
// httptest. It speaks the same JSON contract as the real API.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	users    map[string]storedUser
	images   map[string]storedImage
	nextID   int
	requests map[string]int
	failures map[string]failure
	now      func() time.Time
}

type failure struct {
	status int
	body   string
}

// NewBackend starts a fake image service. It is closed with the test.
func NewBackend(t interface{ Cleanup(func()) }) *Backend {
	b := &Backend{
		users:    make(map[string]storedUser),
		images:   make(map[string]storedImage),
		requests: make(map[string]int),
		failures: make(map[string]failure),
		now:      func() time.Time { return time.Now().UTC() },
	}

	r := mux.NewRouter()
	r.HandleFunc("/register", b.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", b.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/generate", b.handleGenerate).Methods(http.MethodGet)
	r.HandleFunc("/load", b.handleLoad).Methods(http.MethodPost)
	r.HandleFunc("/images", b.handleList).Methods(http.MethodGet)
	r.HandleFunc("/images/{id}", b.handleDelete).Methods(http.MethodDelete)
	r.Use(b.count)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)

	return b
}

// URL returns the base URL of the fake service.
func (b *Backend) URL() string {
	return b.Server.URL
}

// Requests returns how many times the route was called, e.g. "POST /login".
func (b *Backend) Requests(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[route]
}

// TotalRequests returns the number of requests served.
func (b *Backend) TotalRequests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.requests {
		n += c
	}
	return n
}

// FailNext makes the next call to route answer with status and body.
func (b *Backend) FailNext(route string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = failure{status: status, body: body}
}

// AddUser registers an account and returns its id.
func (b *Backend) AddUser(email, password string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(email, password)
}

// AddImage stores an image for owner and returns its id.
func (b *Backend) AddImage(owner, filename string, uploadedAt time.Time) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addImageLocked(owner, filename, uploadedAt)
}

// ImageCount returns the number of stored images of owner.
func (b *Backend) ImageCount(owner string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, img := range b.images {
		if img.owner == owner {
			n++
		}
	}
	return n
}

func (b *Backend) addUserLocked(email, password string) string {
	b.nextID++
	id := fmt.Sprintf("%024x", b.nextID)
	b.users[email] = storedUser{id: id, password: password}
	return id
}

func (b *Backend) addImageLocked(owner, filename string, uploadedAt time.Time) string {
	b.nextID++
	id := fmt.Sprintf("%024x", b.nextID)
	b.images[id] = storedImage{
		owner: owner,
		record: model.ImageRecord{
			ID:          id,
			Filename:    filename,
			ContentType: "image/png",
			ImageData:   base64.StdEncoding.EncodeToString(PNG(1, 1)),
			UploadedAt:  uploadedAt.UTC().Format("2006-01-02T15:04:05.000000"),
		},
	}
	return id
}

func (b *Backend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		if tmpl, err := mux.CurrentRoute(r).GetPathTemplate(); err == nil {
			route = r.Method + " " + tmpl
		}

		b.mu.Lock()
		b.requests[route]++
		f, failing := b.failures[route]
		delete(b.failures, route)
		b.mu.Unlock()

		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.users[creds.Email]; ok {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	id := b.addUserLocked(creds.Email, creds.Password)

	writeJSON(w, http.StatusOK, model.AuthResult{Email: creds.Email, UserID: id, Message: "User registered successfully"})
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	user, ok := b.users[creds.Email]
	if !ok || user.password != creds.Password {
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, model.AuthResult{Email: creds.Email, UserID: user.id, Message: "Login successful"})
}

func (b *Backend) handleGenerate(w http.ResponseWriter, r *http.Request) {
	prompt := r.URL.Query().Get("prompt")
	userID := r.URL.Query().Get("user_id")

	saved := false
	if userID != "" {
		b.mu.Lock()
		name := prompt
		if len(name) > 50 {
			name = name[:50]
		}
		b.addImageLocked(userID, "Generated: "+name+"...", b.now())
		b.mu.Unlock()
		saved = true
	}

	writeJSON(w, http.StatusOK, model.GenerateResult{
		ImageData:      base64.StdEncoding.EncodeToString(PNG(1, 1)),
		SavedToGallery: saved,
	})
}

func (b *Backend) handleLoad(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "failed to read file")
		return
	}

	writeJSON(w, http.StatusOK, model.DescribeResult{
		Description: fmt.Sprintf("A %s image named %s (%d bytes).", header.Header.Get("Content-Type"), header.Filename, len(data)),
	})
}

func (b *Backend) handleList(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	b.mu.Lock()
	records := make([]model.ImageRecord, 0)
	for _, img := range b.images {
		if img.owner == userID {
			records = append(records, img.record)
		}
	}
	b.mu.Unlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].UploadedAt > records[j].UploadedAt
	})

	writeJSON(w, http.StatusOK, records)
}

func (b *Backend) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	if len(id) != 24 {
		writeDetail(w, http.StatusBadRequest, "Invalid image ID format")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	img, ok := b.images[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Image not found")
		return
	}
	if img.owner != body.UserID {
		writeDetail(w, http.StatusForbidden, "Forbidden: You do not have permission to delete this image")
		return
	}
	delete(b.images, id)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Image deleted successfully"})
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
