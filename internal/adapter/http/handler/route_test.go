package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/Temutjin2k/route-guard/internal/domain/models"
	"github.com/Temutjin2k/route-guard/internal/domain/types"
	"github.com/Temutjin2k/route-guard/internal/service/plausibility"
	"github.com/Temutjin2k/route-guard/internal/service/route"
	"github.com/Temutjin2k/route-guard/pkg/logger"
)

type fakeRouteService struct {
	completed *route.CompleteRouteRequest
	getErr    error
	viewer    uuid.UUID
	limit     int
	routes    []models.Route
}

func (s *fakeRouteService) Complete(_ context.Context, req route.CompleteRouteRequest) (*models.Route, error) {
	s.completed = &req
	return &models.Route{
		ID:           uuid.New(),
		OwnerID:      req.OwnerID,
		RouteType:    req.RouteType,
		SharingLevel: req.SharingLevel,
		Trace:        req.Trace,
		ReviewStatus: types.ReviewPending,
		CreatedAt:    time.Now(),
	}, nil
}

func (s *fakeRouteService) Get(_ context.Context, routeID, viewerID uuid.UUID) (*models.Route, error) {
	s.viewer = viewerID
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &models.Route{ID: routeID, SharingLevel: types.SharingAnonymous}, nil
}

func (s *fakeRouteService) ListShared(_ context.Context, limit int) ([]models.Route, error) {
	s.limit = limit
	return s.routes, nil
}

func newRouteHandler() (*Route, *fakeRouteService) {
	svc := &fakeRouteService{}
	return NewRoute(svc, logger.NewNop()), svc
}

func withUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(models.WithUser(r.Context(), u))
}

const validRouteBody = `{
	"route_type": "running",
	"sharing_level": "anonymous",
	"title": "Morning run",
	"trace": [
		{"lat": 43.2389, "lng": 76.8897, "timestamp_ms": 0},
		{"lat": 43.2400, "lng": 76.8900, "timestamp_ms": 60000, "elevation": 850.5}
	]
}`

func TestCompleteRoute(t *testing.T) {
	h, svc := newRouteHandler()
	owner := &models.User{ID: uuid.New(), Role: types.RoleUser}

	req := withUser(httptest.NewRequest(http.MethodPost, "/routes", strings.NewReader(validRouteBody)), owner)
	rec := httptest.NewRecorder()

	h.CompleteRoute(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.completed == nil {
		t.Fatal("service was not called")
	}
	if svc.completed.OwnerID != owner.ID {
		t.Errorf("owner = %s, want %s", svc.completed.OwnerID, owner.ID)
	}
	if svc.completed.RouteType != types.RouteRunning || svc.completed.SharingLevel != types.SharingAnonymous {
		t.Errorf("unexpected request %+v", svc.completed)
	}
	if len(svc.completed.Trace) != 2 || svc.completed.Trace[1].Elevation == nil || *svc.completed.Trace[1].Elevation != 850.5 {
		t.Errorf("trace not converted: %+v", svc.completed.Trace)
	}

	var body struct {
		Route struct {
			ID           uuid.UUID `json:"id"`
			ReviewStatus string    `json:"review_status"`
		} `json:"route"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Route.ID == uuid.Nil || body.Route.ReviewStatus != "PENDING" {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestCompleteRoute_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantKey  string
	}{
		{
			name:     "empty body",
			body:     ``,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown field",
			body:     `{"route_type":"running","sharing_level":"public","trace":[{"lat":1,"lng":1}],"speed":5}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown route type",
			body:     `{"route_type":"flying","sharing_level":"public","trace":[{"lat":1,"lng":1}]}`,
			wantCode: http.StatusUnprocessableEntity,
			wantKey:  "route_type",
		},
		{
			name:     "empty trace",
			body:     `{"route_type":"running","sharing_level":"public","trace":[]}`,
			wantCode: http.StatusUnprocessableEntity,
			wantKey:  "trace",
		},
		{
			name:     "latitude out of range",
			body:     `{"route_type":"running","sharing_level":"public","trace":[{"lat":95,"lng":1}]}`,
			wantCode: http.StatusUnprocessableEntity,
			wantKey:  "trace[0].lat",
		},
		{
			name:     "missing longitude",
			body:     `{"route_type":"running","sharing_level":"public","trace":[{"lat":1}]}`,
			wantCode: http.StatusUnprocessableEntity,
			wantKey:  "trace[0].lng",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := newRouteHandler()
			req := withUser(httptest.NewRequest(http.MethodPost, "/routes", strings.NewReader(tt.body)),
				&models.User{ID: uuid.New(), Role: types.RoleUser})
			rec := httptest.NewRecorder()

			h.CompleteRoute(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if svc.completed != nil {
				t.Fatal("service must not be called")
			}
			if tt.wantKey == "" {
				return
			}

			var body struct {
				Error map[string]string `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if _, ok := body.Error[tt.wantKey]; !ok {
				t.Errorf("missing error for %q in %v", tt.wantKey, body.Error)
			}
		})
	}
}

func TestGetRoute(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		user       *models.User
		serviceErr error
		wantCode   int
		wantViewer bool
	}{
		{name: "invalid id", id: "nope", user: models.AnonymousUser(), wantCode: http.StatusBadRequest},
		{name: "anonymous viewer", id: uuid.NewString(), user: models.AnonymousUser(), wantCode: http.StatusOK},
		{name: "signed in viewer", id: uuid.NewString(), user: &models.User{ID: uuid.New(), Role: types.RoleUser}, wantCode: http.StatusOK, wantViewer: true},
		{name: "not found", id: uuid.NewString(), user: models.AnonymousUser(), serviceErr: types.ErrRouteNotFound, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := newRouteHandler()
			svc.getErr = tt.serviceErr

			req := httptest.NewRequest(http.MethodGet, "/routes/"+tt.id, nil)
			req.SetPathValue("route_id", tt.id)
			req = withUser(req, tt.user)
			rec := httptest.NewRecorder()

			h.GetRoute(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantViewer && svc.viewer != tt.user.ID {
				t.Errorf("viewer = %s, want %s", svc.viewer, tt.user.ID)
			}
			if !tt.wantViewer && svc.viewer != uuid.Nil {
				t.Errorf("anonymous viewer passed as %s", svc.viewer)
			}
		})
	}
}

func TestListShared(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantLimit int
	}{
		{name: "default limit", query: "", wantCode: http.StatusOK, wantLimit: route.DefaultListLimit},
		{name: "explicit limit", query: "?limit=5", wantCode: http.StatusOK, wantLimit: 5},
		{name: "not a number", query: "?limit=abc", wantCode: http.StatusBadRequest},
		{name: "too large", query: "?limit=500", wantCode: http.StatusUnprocessableEntity},
		{name: "zero", query: "?limit=0", wantCode: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := newRouteHandler()
			svc.routes = []models.Route{{ID: uuid.New(), SharingLevel: types.SharingPublic}}

			rec := httptest.NewRecorder()
			h.ListShared(rec, httptest.NewRequest(http.MethodGet, "/routes/shared"+tt.query, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusOK && svc.limit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", svc.limit, tt.wantLimit)
			}
		})
	}
}

func TestCheckPlausibility(t *testing.T) {
	h, _ := newRouteHandler()

	body := `{"route_type":"walking","distance_meters":20000,"duration_seconds":3600,"coordinate_count":500}`
	rec := httptest.NewRecorder()
	h.CheckPlausibility(rec, httptest.NewRequest(http.MethodPost, "/routes/plausibility", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var verdict models.PlausibilityVerdict
	if err := json.Unmarshal(rec.Body.Bytes(), &verdict); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !verdict.IsImplausible || len(verdict.Reasons) != 1 || verdict.Reasons[0] != plausibility.ReasonWalkingSpeed {
		t.Fatalf("verdict = %+v", verdict)
	}
}

func TestCheckPlausibility_MissingMetrics(t *testing.T) {
	h, _ := newRouteHandler()

	rec := httptest.NewRecorder()
	h.CheckPlausibility(rec, httptest.NewRequest(http.MethodPost, "/routes/plausibility",
		strings.NewReader(`{"route_type":"walking"}`)))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
}
