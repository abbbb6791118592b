package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pawsit/pawsit-api/internal/domain/session"
	"github.com/pawsit/pawsit-api/internal/middleware"
	"github.com/pawsit/pawsit-api/internal/pkg/bookingapi"
)

func authedRequest(method, target, body string, userID int64, role string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
	ctx = context.WithValue(ctx, middleware.RoleKey, role)
	return r.WithContext(ctx)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	return env
}

func TestHandlerListRejectsUnknownScope(t *testing.T) {
	handler := session.NewHandler(newService(&fakeRepo{}))

	w := httptest.NewRecorder()
	handler.List(w, authedRequest(http.MethodGet, "/sessions?scope=everything", "", 7, middleware.RoleOwner))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandlerListOwnerScope(t *testing.T) {
	repo := &fakeRepo{owner: []bookingapi.BookingRecord{
		wireRecord(1, 10, 7, 1),
		wireRecord(2, 11, 7, 1),
	}}
	handler := session.NewHandler(newService(repo))

	w := httptest.NewRecorder()
	handler.List(w, authedRequest(http.MethodGet, "/sessions?scope=owner", "", 7, middleware.RoleOwner))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Fatal("expected success envelope")
	}

	var sessions []session.SessionResponse
	if err := json.Unmarshal(env.Data, &sessions); err != nil {
		t.Fatalf("invalid data payload: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("expected 1 session, got %d", len(sessions))
	}
}

func TestHandlerListStatusFilter(t *testing.T) {
	repo := &fakeRepo{owner: []bookingapi.BookingRecord{
		wireRecord(1, 10, 7, 1), // PENDING
		wireRecord(2, 11, 7, 4), // COMPLETED, different key via date
	}}
	repo.owner[1].BookingDate = "2026-09-02"
	handler := session.NewHandler(newService(repo))

	w := httptest.NewRecorder()
	handler.List(w, authedRequest(http.MethodGet, "/sessions?scope=owner&status=COMPLETED", "", 7, middleware.RoleOwner))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	env := decodeEnvelope(t, w)
	var sessions []session.SessionResponse
	if err := json.Unmarshal(env.Data, &sessions); err != nil {
		t.Fatalf("invalid data payload: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Status != session.StatusCompleted {
		t.Errorf("expected only the COMPLETED session, got %+v", sessions)
	}

	w = httptest.NewRecorder()
	handler.List(w, authedRequest(http.MethodGet, "/sessions?scope=owner&status=SHIPPED", "", 7, middleware.RoleOwner))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown status filter, got %d", w.Code)
	}
}

func TestHandlerListOwnerScopeRequiresOwnerRole(t *testing.T) {
	handler := session.NewHandler(newService(&fakeRepo{}))

	w := httptest.NewRecorder()
	handler.List(w, authedRequest(http.MethodGet, "/sessions?scope=owner", "", 42, middleware.RoleSitter))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestHandlerCreateRejectsInvalidJSON(t *testing.T) {
	repo := &fakeRepo{}
	handler := session.NewHandler(newService(repo))

	w := httptest.NewRecorder()
	handler.Create(w, authedRequest(http.MethodPost, "/sessions", "{not json", 7, middleware.RoleOwner))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(repo.createCalls) != 0 {
		t.Error("a malformed body must never reach the backend")
	}
}

func TestHandlerCreateValidatesBeforeDispatch(t *testing.T) {
	repo := &fakeRepo{}
	handler := session.NewHandler(newService(repo))

	// Missing pets and a malformed time
	body := `{"pet_ids": [], "booking_date": "2026-09-01", "start_time": "9am", "end_time": "17:00", "location": "12 Elm St"}`

	w := httptest.NewRecorder()
	handler.Create(w, authedRequest(http.MethodPost, "/sessions", body, 7, middleware.RoleOwner))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatal("expected a validation error envelope")
	}
	if _, ok := env.Error.Details["pet_ids"]; !ok {
		t.Errorf("expected pet_ids in details, got %v", env.Error.Details)
	}
	if _, ok := env.Error.Details["start_time"]; !ok {
		t.Errorf("expected start_time in details, got %v", env.Error.Details)
	}

	if len(repo.createCalls) != 0 {
		t.Error("validation failures must never reach the backend")
	}
}

func TestHandlerCreateReturnsCreated(t *testing.T) {
	repo := &fakeRepo{}
	handler := session.NewHandler(newService(repo))

	body := `{"pet_ids": [10, 11], "booking_date": "2026-09-01", "start_time": "09:00", "end_time": "17:00", "location": "12 Elm St"}`

	w := httptest.NewRecorder()
	handler.Create(w, authedRequest(http.MethodPost, "/sessions", body, 7, middleware.RoleOwner))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var result session.FanOutResponse
	env := decodeEnvelope(t, w)
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("invalid data payload: %v", err)
	}
	if result.Outcome != session.FullSuccess {
		t.Errorf("expected full_success, got %s", result.Outcome)
	}
}

func TestHandlerUpdateMapsRecordNotFound(t *testing.T) {
	repo := &fakeRepo{owner: []bookingapi.BookingRecord{wireRecord(1, 10, 7, 1)}}
	handler := session.NewHandler(newService(repo))

	body := `{"record_ids": [999], "location": "44 Oak Ave"}`

	w := httptest.NewRecorder()
	handler.Update(w, authedRequest(http.MethodPut, "/sessions", body, 7, middleware.RoleOwner))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHandlerUpdateMapsForbiddenEdits(t *testing.T) {
	repo := &fakeRepo{owner: []bookingapi.BookingRecord{wireRecord(1, 10, 7, 3)}} // IN_PROGRESS
	handler := session.NewHandler(newService(repo))

	body := `{"record_ids": [1], "location": "44 Oak Ave"}`

	w := httptest.NewRecorder()
	handler.Update(w, authedRequest(http.MethodPut, "/sessions", body, 7, middleware.RoleOwner))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestHandlerChangeStatusMapsInvalidTransition(t *testing.T) {
	repo := &fakeRepo{owner: []bookingapi.BookingRecord{wireRecord(1, 10, 7, 1)}} // PENDING
	handler := session.NewHandler(newService(repo))

	body := `{"record_ids": [1], "action": "cancel"}`

	w := httptest.NewRecorder()
	handler.ChangeStatus(w, authedRequest(http.MethodPatch, "/sessions/status", body, 7, middleware.RoleOwner))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

// Accept, decline, start, and complete belong to sitter-capable accounts;
// an owner-only account must be turned away before any record is touched.
func TestHandlerChangeStatusBlocksSitterActionsForOwners(t *testing.T) {
	repo := &fakeRepo{upcoming: []bookingapi.BookingRecord{wireRecord(1, 10, 7, 1)}}
	handler := session.NewHandler(newService(repo))

	body := `{"record_ids": [1], "action": "accept"}`

	w := httptest.NewRecorder()
	handler.ChangeStatus(w, authedRequest(http.MethodPatch, "/sessions/status", body, 7, middleware.RoleOwner))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
	if len(repo.statusCalls) != 0 {
		t.Error("an owner's accept must never reach the backend")
	}
}

func TestHandlerChangeStatusBlocksCancelForSitters(t *testing.T) {
	repo := &fakeRepo{owner: []bookingapi.BookingRecord{
		claimedBy(wireRecord(1, 10, 7, 2), 42),
	}}
	handler := session.NewHandler(newService(repo))

	body := `{"record_ids": [1], "action": "cancel"}`

	w := httptest.NewRecorder()
	handler.ChangeStatus(w, authedRequest(http.MethodPatch, "/sessions/status", body, 42, middleware.RoleSitter))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if len(repo.statusCalls) != 0 {
		t.Error("a sitter's cancel must never reach the backend")
	}
}

func TestHandlerChangeStatusAllowsDualCapacityAccounts(t *testing.T) {
	repo := &fakeRepo{upcoming: []bookingapi.BookingRecord{wireRecord(1, 10, 7, 1)}}
	handler := session.NewHandler(newService(repo))

	body := `{"record_ids": [1], "action": "accept"}`

	w := httptest.NewRecorder()
	handler.ChangeStatus(w, authedRequest(http.MethodPatch, "/sessions/status", body, 42, middleware.RoleBoth))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(repo.statusCalls) != 1 {
		t.Errorf("expected the accept to dispatch, got %d calls", len(repo.statusCalls))
	}
}

func TestHandlerChangeStatusMapsUnknownAction(t *testing.T) {
	handler := session.NewHandler(newService(&fakeRepo{}))

	body := `{"record_ids": [1], "action": "teleport"}`

	w := httptest.NewRecorder()
	handler.ChangeStatus(w, authedRequest(http.MethodPatch, "/sessions/status", body, 42, middleware.RoleSitter))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
