package scheduling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestServer(t *testing.T) (*echo.Echo, *Service) {
	t.Helper()
	svc, _, _ := newTestService()
	e := echo.New()
	NewHandler(svc).RegisterRoutes(e.Group("/api/v1"))
	return e, svc
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateAppointmentHandler(t *testing.T) {
	e, _ := newTestServer(t)

	body := `{
		"user_id": "` + uuid.New().String() + `",
		"patient_id": "` + uuid.New().String() + `",
		"patient_name": "Jane Doe",
		"primary_physician": "Green",
		"schedule": "2026-09-15T10:30:00Z"
	}`
	rec := doJSON(e, http.MethodPost, "/api/v1/appointments", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var a Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if a.ID == uuid.Nil || a.Status != StatusPending {
		t.Errorf("unexpected appointment: %+v", a)
	}
}

func TestCreateAppointmentHandler_MissingFields(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/v1/appointments", `{"patient_name":"Jane"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGetAppointmentHandler(t *testing.T) {
	e, svc := newTestServer(t)
	a := validAppointment()
	if err := svc.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := doJSON(e, http.MethodGet, "/api/v1/appointments/"+a.ID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(e, http.MethodGet, "/api/v1/appointments/"+uuid.New().String(), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", rec.Code)
	}

	rec = doJSON(e, http.MethodGet, "/api/v1/appointments/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestListAppointmentsHandler_RecentWithCounts(t *testing.T) {
	e, svc := newTestServer(t)
	for _, status := range []string{StatusPending, StatusScheduled, StatusCancelled} {
		a := validAppointment()
		a.Status = status
		if err := svc.CreateAppointment(context.Background(), a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	rec := doJSON(e, http.MethodGet, "/api/v1/appointments", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list RecentList
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if list.TotalCount != 3 || list.PendingCount != 1 || list.ScheduledCount != 1 || list.CancelledCount != 1 {
		t.Errorf("unexpected counts: %+v", list)
	}
}

func TestListAppointmentsHandler_ByUser(t *testing.T) {
	e, svc := newTestServer(t)
	uid := uuid.New()
	a := validAppointment()
	a.UserID = uid
	if err := svc.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other := validAppointment()
	if err := svc.CreateAppointment(context.Background(), other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := doJSON(e, http.MethodGet, "/api/v1/appointments?user_id="+uid.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Total int               `json:"total"`
		Data  []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 {
		t.Errorf("expected one appointment for user, got %+v", resp)
	}
}

func TestUpdateAppointmentHandler_Schedule(t *testing.T) {
	e, svc := newTestServer(t)
	a := validAppointment()
	if err := svc.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := `{"type":"schedule","schedule":"2026-09-20T14:00:00Z","primary_physician":"Powell"}`
	rec := doJSON(e, http.MethodPatch, "/api/v1/appointments/"+a.ID.String(), body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if got.Status != StatusScheduled || got.PrimaryPhysician != "Powell" {
		t.Errorf("unexpected appointment: %+v", got)
	}
	want := time.Date(2026, 9, 20, 14, 0, 0, 0, time.UTC)
	if !got.Schedule.Equal(want) {
		t.Errorf("expected schedule %v, got %v", want, got.Schedule)
	}
}

func TestUpdateAppointmentHandler_CancelWithoutReason(t *testing.T) {
	e, svc := newTestServer(t)
	a := validAppointment()
	if err := svc.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := doJSON(e, http.MethodPatch, "/api/v1/appointments/"+a.ID.String(), `{"type":"cancel"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
