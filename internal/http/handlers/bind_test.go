package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/webtwist/internal/domain/blog"
	"github.com/geocoder89/webtwist/internal/http/handlers"
	"github.com/geocoder89/webtwist/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type bindErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			JSON   string                `json:"json"`
			Field  string                `json:"field"`
			Fields []handlers.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func newBindRouter(maxBody int64) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	if maxBody > 0 {
		r.Use(middlewares.MaxBodyBytes(maxBody))
	}
	r.POST("/posts", func(ctx *gin.Context) {
		var req blog.CreatePostRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})
	return r
}

func postBind(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, bindErrorResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/posts", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp bindErrorResponse
	if w.Code != http.StatusCreated {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
		}
	}
	return w, resp
}

func TestBindJSON_ValidationErrorsUseJSONFieldNames(t *testing.T) {
	w, resp := postBind(t, newBindRouter(0), `{"title":"go","tags":["ok",""]}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}
	if resp.Error.Code != "invalid_request" {
		t.Fatalf("unexpected code: %s", resp.Error.Code)
	}

	wantRules := map[string]string{
		"content": "required",
		"excerpt": "required",
		"tags[1]": "min",
	}

	found := map[string]handlers.FieldError{}
	for _, fieldErr := range resp.Error.Details.Fields {
		found[fieldErr.Field] = fieldErr
	}

	for field, rule := range wantRules {
		fieldErr, ok := found[field]
		if !ok {
			t.Fatalf("missing field error for %q: %+v", field, resp.Error.Details.Fields)
		}
		if fieldErr.Rule != rule {
			t.Fatalf("field %q rule mismatch: got %q want %q", field, fieldErr.Rule, rule)
		}
		if fieldErr.Message == "" {
			t.Fatalf("field %q should include a non-empty message", field)
		}
	}
}

func TestBindJSON_TypeMismatchUsesJSONFieldNames(t *testing.T) {
	body := `{"title":"Hello","content":"body","excerpt":"short","published":"yes"}`
	w, resp := postBind(t, newBindRouter(0), body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}
	if resp.Error.Details.JSON != "invalid_json_type" {
		t.Fatalf("expected invalid_json_type, got %q", resp.Error.Details.JSON)
	}
	if resp.Error.Details.Field != "published" {
		t.Fatalf("expected detail field to be published, got %q", resp.Error.Details.Field)
	}
	if len(resp.Error.Details.Fields) == 0 || resp.Error.Details.Fields[0].Rule != "type" {
		t.Fatalf("expected a type field error, got %+v", resp.Error.Details.Fields)
	}
}

func TestBindJSON_MalformedBodies(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantJSON string
	}{
		{name: "empty", body: "", wantJSON: "empty_body"},
		{name: "syntax", body: `{"title":`, wantJSON: "invalid_json_syntax"},
		{name: "garbage", body: `{nope}`, wantJSON: "invalid_json_syntax"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := postBind(t, newBindRouter(0), tt.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
			}
			if resp.Error.Details.JSON != tt.wantJSON {
				t.Fatalf("expected %q, got %q", tt.wantJSON, resp.Error.Details.JSON)
			}
		})
	}
}

func TestBindJSON_BodyTooLarge(t *testing.T) {
	body := `{"title":"` + strings.Repeat("a", 200) + `","content":"c","excerpt":"e"}`
	w, resp := postBind(t, newBindRouter(64), body)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("got status %d, want 413, body=%s", w.Code, w.Body.String())
	}
	if resp.Error.Code != "payload_too_large" {
		t.Fatalf("unexpected code %q", resp.Error.Code)
	}
}

func TestBindJSON_Valid(t *testing.T) {
	w, _ := postBind(t, newBindRouter(0), `{"title":"Hello","content":"body","excerpt":"short","tags":["go"]}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
}
