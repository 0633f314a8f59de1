package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/repairlab/repairhub/internal/http/handlers"
)

type bindTarget struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func bindProbe() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req bindTarget
		if !handlers.BindJSON(c, &req) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func TestBindJSONValidBody(t *testing.T) {
	r := setupRouter(http.MethodPost, "/probe", bindProbe())

	w := doJSON(t, r, http.MethodPost, "/probe",
		`{"email":"jo@example.com","password":"sup3rsecret"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestBindJSONValidationErrorsAre422(t *testing.T) {
	r := setupRouter(http.MethodPost, "/probe", bindProbe())

	w := doJSON(t, r, http.MethodPost, "/probe",
		`{"email":"not-an-email","password":"short"}`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Error struct {
			Details struct {
				Fields []handlers.FieldError `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(body.Error.Details.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %+v", body.Error.Details.Fields)
	}

	for _, fe := range body.Error.Details.Fields {
		if fe.Field != "email" && fe.Field != "password" {
			t.Fatalf("unexpected field name %q", fe.Field)
		}
	}
}

func TestBindJSONSyntaxErrorIs400(t *testing.T) {
	r := setupRouter(http.MethodPost, "/probe", bindProbe())

	w := doJSON(t, r, http.MethodPost, "/probe", `{"email": `)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestBindJSONTypeMismatchIs400(t *testing.T) {
	r := setupRouter(http.MethodPost, "/probe", bindProbe())

	w := doJSON(t, r, http.MethodPost, "/probe",
		`{"email":"jo@example.com","password":12345678}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}
