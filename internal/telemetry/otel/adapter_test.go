package otel

import (
	"context"
	"strings"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/NaderBhrr/NodeBB/internal/hooks"
)

func TestNewHookEmitterNilProvider(t *testing.T) {
	d := NewHookEmitter(nil)
	if d == nil {
		t.Fatal("NewHookEmitter(nil) returned nil")
	}
	if err := d.Fire(context.Background(), hooks.Event{Name: "action:password.reset"}); err != nil {
		t.Errorf("noop Fire: %v", err)
	}
}

func TestNewHookEmitterWithProvider(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()
	d := NewHookEmitter(provider)
	if err := d.Fire(context.Background(), hooks.Event{Name: "action:user.follow", UID: 42}); err != nil {
		t.Errorf("Fire: %v", err)
	}
}

// recordCapture stores the last record passed to Emit for assertion.
type recordCapture struct {
	rec otellog.Record
}

func (r *recordCapture) Emit(ctx context.Context, rec otellog.Record) {
	r.rec = rec
}

func TestFireMapsEventToRecord(t *testing.T) {
	cap := &recordCapture{}
	d := NewHookEmitterWithLogger(cap)
	created := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	event := hooks.Event{
		Name:      "action:password.reset",
		UID:       42,
		Data:      map[string]any{"ip": "10.0.0.1"},
		CreatedAt: created,
	}
	if err := d.Fire(context.Background(), event); err != nil {
		t.Fatalf("Fire: %v", err)
	}

	rec := cap.rec
	if !rec.Timestamp().Equal(created) {
		t.Errorf("timestamp = %v, want %v", rec.Timestamp(), created)
	}
	body := string(rec.Body().AsBytes())
	if !strings.Contains(body, "action:password.reset") || !strings.Contains(body, "10.0.0.1") {
		t.Errorf("body = %q", body)
	}

	attrs := make(map[string]string)
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})
	if attrs["hook"] != "action:password.reset" || attrs["uid"] != "42" {
		t.Errorf("attributes = %v", attrs)
	}
}

func TestFireZeroTimestampSetsCurrentTime(t *testing.T) {
	cap := &recordCapture{}
	d := NewHookEmitterWithLogger(cap)
	before := time.Now().UTC()
	if err := d.Fire(context.Background(), hooks.Event{Name: "action:settings.save"}); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	ts := cap.rec.Timestamp()
	if ts.Before(before) || ts.After(time.Now().UTC().Add(time.Second)) {
		t.Errorf("timestamp = %v, want about now", ts)
	}
}
