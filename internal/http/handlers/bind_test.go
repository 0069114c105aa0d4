package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/hospitalhub/internal/http/handlers"
)

type bindProbe struct {
	FirstName string `json:"firstName" binding:"required,min=2"`
	Email     string `json:"email" binding:"required,email"`
	Age       int    `json:"age" binding:"omitempty,min=0"`
}

func bindRouter() *gin.Engine {
	r := gin.New()

	r.POST("/probe", func(c *gin.Context) {
		var probe bindProbe

		if !handlers.BindJSON(c, &probe) {
			return
		}

		c.JSON(http.StatusOK, probe)
	})

	return r
}

type bindErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Fields []handlers.FieldError `json:"fields"`
			JSON   string                `json:"json"`
			Field  string                `json:"field"`
		} `json:"details"`
	} `json:"error"`
}

func postProbe(t *testing.T, body string) (*httptest.ResponseRecorder, bindErrorResponse) {
	t.Helper()

	r := bindRouter()

	req := httptest.NewRequest(http.MethodPost, "/probe", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp bindErrorResponse

	if w.Code != http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode error body: %v (body=%s)", err, w.Body.String())
		}
	}

	return w, resp
}

func TestBindJSONValidRequest(t *testing.T) {
	w, _ := postProbe(t, `{"firstName": "Jane", "email": "jane@example.com"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
}

// Field errors must report the JSON names, not the Go struct names.
func TestBindJSONValidationUsesJSONNames(t *testing.T) {
	w, resp := postProbe(t, `{"firstName": "J", "email": "not-an-email"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", w.Code)
	}

	fields := map[string]string{}

	for _, fe := range resp.Error.Details.Fields {
		fields[fe.Field] = fe.Rule
	}

	if fields["firstName"] != "min" {
		t.Fatalf("expected firstName/min, got %v", fields)
	}

	if fields["email"] != "email" {
		t.Fatalf("expected email/email, got %v", fields)
	}
}

// Truncated and empty bodies surface as EOF errors from the decoder, not as
// *json.SyntaxError; both must still map to the syntax marker.
func TestBindJSONSyntaxError(t *testing.T) {
	for _, body := range []string{`{"firstName": `, ``, `{`} {
		w, resp := postProbe(t, body)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: got status %d", body, w.Code)
		}

		if resp.Error.Details.JSON != "invalid_json_syntax" {
			t.Fatalf("body %q: expected a syntax marker, got %+v", body, resp.Error.Details)
		}
	}
}

func TestBindJSONTypeMismatch(t *testing.T) {
	w, resp := postProbe(t, `{"firstName": "Jane", "email": "jane@example.com", "age": "forty"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", w.Code)
	}

	if resp.Error.Details.JSON != "invalid_json_type" {
		t.Fatalf("expected a type marker, got %+v", resp.Error.Details)
	}

	if resp.Error.Details.Field != "age" {
		t.Fatalf("expected the json field name, got %q", resp.Error.Details.Field)
	}
}
