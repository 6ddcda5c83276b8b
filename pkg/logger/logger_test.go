package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	wrap "github.com/Temutjin2k/route-guard/pkg/logger/wrapper"
)

func TestLogger_InjectsContextFields(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "route-service", LevelDebug)

	ctx := wrap.WithAction(context.Background(), "complete_route")
	ctx = wrap.WithRequestID(ctx, "req-1")
	ctx = wrap.WithRouteID(ctx, "route-1")

	l.Info(ctx, "route stored", "points", 42)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}

	want := map[string]any{
		"message":    "route stored",
		"service":    "route-service",
		"action":     "complete_route",
		"request_id": "req-1",
		"route_id":   "route-1",
		"points":     float64(42),
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %v, want %v", k, rec[k], v)
		}
	}
	if _, ok := rec["timestamp"]; !ok {
		t.Error("timestamp field missing")
	}
}

func TestLogger_ErrorCarriesWrappedContext(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "svc", LevelDebug)

	inner := wrap.WithAction(context.Background(), "save_route")
	err := wrap.Error(inner, errors.New("boom"))

	outer := wrap.WithAction(context.Background(), "handler")
	l.Error(wrap.ErrorCtx(outer, err), "failed", err)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if rec["action"] != "save_route" {
		t.Fatalf("action = %v, want save_route", rec["action"])
	}
	if rec["message"] != "failed" {
		t.Fatalf("message = %v, want failed", rec["message"])
	}
	if e, _ := rec["error"].(map[string]any); e["msg"] != "boom" {
		t.Fatalf("error = %v", rec["error"])
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "svc", LevelWarn)

	l.Debug(context.Background(), "hidden")
	l.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below WARN, got %s", buf.String())
	}

	l.Warn(context.Background(), "shown")
	if buf.Len() == 0 {
		t.Fatal("expected WARN record")
	}
}

func TestValidateLogLevel(t *testing.T) {
	for _, lvl := range []string{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		if !ValidateLogLevel(lvl) {
			t.Errorf("%s should be valid", lvl)
		}
	}
	if ValidateLogLevel("TRACE") {
		t.Error("TRACE should be invalid")
	}
}
