package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"ledgerlight/backend/database"
	"ledgerlight/backend/services"
)

const (
	testEmail    = "test@example.com"
	testPassword = "test-password"
	testName     = "Test User"
)

// testEnv is a fully wired router over an in-memory store.
type testEnv struct {
	router *mux.Router
	store  *database.MemoryStore
	auth   *services.AuthService
	data   *services.DataService
}

func newTestEnv() *testEnv {
	store := database.NewMemoryStore()
	auth := services.NewAuthService(store)
	data := services.NewDataService(store)
	return &testEnv{
		router: NewRouter(auth, data),
		store:  store,
		auth:   auth,
		data:   data,
	}
}

// signup registers the standard test user and returns its session token.
func (e *testEnv) signup(t *testing.T) string {
	t.Helper()
	token, _, err := e.auth.Signup(context.Background(), testEmail, testPassword, testName)
	if err != nil {
		t.Fatalf("test signup failed: %v", err)
	}
	return token
}

// do runs a request through the router and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("X-Session-Token", token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// doJSON marshals body and posts it as JSON.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	return e.do(t, method, path, token, bytes.NewReader(encoded), "application/json")
}

// uploadFile posts content as a multipart file upload.
func (e *testEnv) uploadFile(t *testing.T, token, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	writer.Close()

	return e.do(t, http.MethodPost, "/data/upload", token, &buf, writer.FormDataContentType())
}

// decodeBody decodes a JSON response body into a generic map.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

// validCSV is a well-formed upload with all nine required columns.
var validCSV = []byte(`Date,Time,Transaction_ID,Customer_ID,Product_Service_Name,Category,Subcategory,Brand,Price
2024-01-01,09:00,T1,C1,Widget,Hardware,Tools,Acme,10.00
2024-01-01,10:00,T2,C2,Gadget,Hardware,Tools,Acme,20.00
2024-01-02,11:00,T3,C1,Service,Consulting,Advice,Self,30.00
`)
