package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Temutjin2k/route-guard/internal/domain/models"
	"github.com/Temutjin2k/route-guard/internal/domain/types"
	"github.com/Temutjin2k/route-guard/pkg/logger"
	ws "github.com/Temutjin2k/route-guard/pkg/wsHub"
)

type fakeModerationService struct {
	verdict models.PlausibilityVerdict
	err     error
	routeID uuid.UUID
}

func (s *fakeModerationService) Recheck(_ context.Context, routeID uuid.UUID) (models.PlausibilityVerdict, error) {
	s.routeID = routeID
	return s.verdict, s.err
}

func TestRecheck(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		err      error
		wantCode int
	}{
		{name: "ok", id: uuid.NewString(), wantCode: http.StatusOK},
		{name: "invalid id", id: "42", wantCode: http.StatusBadRequest},
		{name: "unknown route", id: uuid.NewString(), err: types.ErrRouteNotFound, wantCode: http.StatusNotFound},
		{name: "database down", id: uuid.NewString(), err: types.ErrDatabaseFailed, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeModerationService{
				verdict: models.PlausibilityVerdict{IsImplausible: true, Reasons: []string{"Duration exceeds 24 hours"}},
				err:     tt.err,
			}
			h := NewModeration(svc, ws.NewConnHub(logger.NewNop()), "moderation-service", logger.NewNop())

			req := httptest.NewRequest(http.MethodPost, "/admin/routes/"+tt.id+"/recheck", nil)
			req.SetPathValue("route_id", tt.id)
			rec := httptest.NewRecorder()

			h.Recheck(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusOK {
				if svc.routeID.String() != tt.id {
					t.Errorf("route id = %s, want %s", svc.routeID, tt.id)
				}
				if !strings.Contains(rec.Body.String(), "Duration exceeds 24 hours") {
					t.Errorf("body = %s", rec.Body.String())
				}
			}
		})
	}
}

func TestHandleWS_ReceivesBroadcast(t *testing.T) {
	hub := ws.NewConnHub(logger.NewNop())
	h := NewModeration(&fakeModerationService{}, hub, "moderation-service", logger.NewNop())

	moderator := &models.User{ID: uuid.New(), Role: types.RoleModerator}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.HandleWS(w, r.WithContext(models.WithUser(r.Context(), moderator)))
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection was not registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	routeID := uuid.New()
	if sent := hub.Broadcast(context.Background(), models.RouteFlaggedMessage{Type: "route_flagged", RouteID: routeID}); sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.RouteFlaggedMessage
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.RouteID != routeID || got.Type != "route_flagged" {
		t.Fatalf("message = %+v", got)
	}
}
