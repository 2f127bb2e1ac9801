package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"

	"shoper/pkg/pipeline"
	"shoper/pkg/receipt"
)

// cannedExtractor makes the scan endpoint deterministic without a local
// recognizer install.
type cannedExtractor struct{ lines []string }

func (e cannedExtractor) Extract(ctx context.Context, _ image.Image) ([]receipt.RawTextLine, error) {
	out := make([]receipt.RawTextLine, len(e.lines))
	for i, txt := range e.lines {
		out[i] = receipt.RawTextLine{Text: txt, Position: i, Confidence: -1}
	}
	return out, nil
}

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	// allow callers to pass nil for body safely
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	initDB()
	tmp := t.TempDir()
	_ = os.Setenv("UPLOAD_BASE", tmp)
	seedDB()
	pipe = pipeline.New(pipeline.DefaultConfig(), cannedExtractor{lines: []string{
		"MEGA MART",
		"2 x Apple 1.00 2.00",
		"Bread 1.50",
		"TOTAL 3.50",
	}})
	r := gin.Default()
	setupRoutes(r)
	return r
}

// receiptPNG encodes a small placeholder bitmap the pipeline can open.
func receiptPNG(t *testing.T) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, 80, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 80; x++ {
			img.SetNRGBA(x, y, color.NRGBA{220, 220, 220, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)

	// 1. Register user
	regBody, _ := json.Marshal(map[string]string{"username": "user1", "password": "pass123"})
	resp := performRequest(r, http.MethodPost, "/register", bytes.NewBuffer(regBody), "", "application/json")
	if resp.Code != 200 && resp.Code != 409 {
		b := resp.Body.String()
		t.Fatalf("register failed status=%d body=%s", resp.Code, b)
	}

	// 2. Login
	loginBody, _ := json.Marshal(map[string]string{"username": "user1", "password": "pass123"})
	resp = performRequest(r, http.MethodPost, "/login", bytes.NewBuffer(loginBody), "", "application/json")
	if resp.Code != 200 {
		b := resp.Body.String()
		t.Fatalf("login failed status=%d body=%s", resp.Code, b)
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %+v", loginResp)
	}

	// 3. Create profile
	profBody, _ := json.Marshal(map[string]string{"name": "User One", "email": "u1@example.com"})
	resp = performRequest(r, http.MethodPost, "/profile", bytes.NewBuffer(profBody), token, "application/json")
	if resp.Code != 200 {
		b := resp.Body.String()
		t.Fatalf("create profile failed status=%d body=%s", resp.Code, b)
	}

	// 4. Scan receipt (multipart)
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	w, _ := mw.CreateFormFile("file", "sample.png")
	_, _ = w.Write(receiptPNG(t))
	_ = mw.Close()
	resp = performRequest(r, http.MethodPost, "/receipts", buf, token, mw.FormDataContentType())
	if resp.Code != 200 {
		b := resp.Body.String()
		t.Fatalf("scan failed status=%d body=%s", resp.Code, b)
	}
	var scanResp struct {
		ID      uint            `json:"id"`
		Receipt receipt.Receipt `json:"receipt"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &scanResp); err != nil {
		t.Fatalf("decode scan response: %v", err)
	}
	if len(scanResp.Receipt.Items) != 2 {
		t.Fatalf("expected 2 items, got %+v", scanResp.Receipt.Items)
	}

	// 5. List receipts
	resp = performRequest(r, http.MethodGet, "/receipts", nil, token, "")
	if resp.Code != 200 {
		b := resp.Body.String()
		t.Fatalf("list receipts failed status=%d body=%s", resp.Code, b)
	}

	// 6. Fetch single receipt with items
	resp = performRequest(r, http.MethodGet, "/receipts/"+strconv.FormatUint(uint64(scanResp.ID), 10), nil, token, "")
	if resp.Code != 200 {
		b := resp.Body.String()
		t.Fatalf("get receipt failed status=%d body=%s", resp.Code, b)
	}

	// 7. Monthly summary
	resp = performRequest(r, http.MethodGet, "/receipts/summary", nil, token, "")
	if resp.Code != 200 {
		b := resp.Body.String()
		t.Fatalf("receipt summary failed status=%d body=%s", resp.Code, b)
	}

	// 8. List uploads
	resp = performRequest(r, http.MethodGet, "/uploads", nil, token, "")
	if resp.Code != 200 {
		b := resp.Body.String()
		t.Fatalf("list uploads failed status=%d body=%s", resp.Code, b)
	}

	// 9. Unauthorized access to protected endpoint should be 401
	unauth := performRequest(r, http.MethodGet, "/receipts", nil, "", "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthorized list receipts got %d", unauth.Code)
	}
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	initDB()
}
