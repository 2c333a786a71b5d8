package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestValidatorCollectsSortedIssues(t *testing.T) {
	v := NewValidator()
	v.Required("quarterId", " ", "is required")
	v.Enum("status", "archived", []string{"pending", "completed"}, "must be pending or completed")
	start, _ := v.Date("startDate", "2025-04-01")
	end, _ := v.Date("endDate", "2025-03-31")
	v.DateOrder("startDate", start, "endDate", end)

	issues := v.Issues()
	if len(issues) != 4 {
		t.Fatalf("expected 4 issues, got %+v", issues)
	}
	if issues[0].Field != "endDate" || issues[len(issues)-1].Field != "status" {
		t.Fatalf("issues not sorted: %+v", issues)
	}

	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") || rec.Code != http.StatusBadRequest {
		t.Fatalf("expected rejection, got %d", rec.Code)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-01-02")
	if err != nil || !got.Equal(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v %v", got, err)
	}
	got, err = ParseDate("2025-01-02T10:00:00+02:00")
	if err != nil || got.Hour() != 8 {
		t.Fatalf("expected UTC conversion, got %v %v", got, err)
	}
	if _, err := ParseDate("02/01/2025"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	page := Paginate(items, Pagination{Limit: 2, Offset: 2})
	if len(page.Items) != 2 || page.Items[0] != 3 || page.Total != 5 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page := Paginate(items, Pagination{Limit: 2, Offset: 9}); len(page.Items) != 0 {
		t.Fatalf("expected empty page, got %+v", page)
	}

	req := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=-1", nil)
	p := ParsePagination(req, 50, 200)
	if p.Limit != 200 || p.Offset != 0 {
		t.Fatalf("unexpected pagination %+v", p)
	}
}

func TestDecodeJSON(t *testing.T) {
	var payload struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Jane"}`))
	if !DecodeJSON(httptest.NewRecorder(), req, &payload, "r") || payload.Name != "Jane" {
		t.Fatalf("expected decode to succeed, got %+v", payload)
	}

	rec := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"unknown":1}`))
	if DecodeJSON(rec, req, &payload, "r") || rec.Code != http.StatusBadRequest {
		t.Fatalf("expected unknown field rejection, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("x", 100)+`"}`))
	req.Body = http.MaxBytesReader(rec, req.Body, 16)
	if DecodeJSON(rec, req, &payload, "r") || rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}
