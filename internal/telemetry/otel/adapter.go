package otel

import (
	"context"
	"log"
	"strconv"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/NaderBhrr/NodeBB/internal/hooks"
)

// NewHookEmitter returns a hooks.Dispatcher that emits hook events as OTel log
// records via the given LoggerProvider. Used when no Kafka broker is
// configured, so hook events still reach the collector. If provider is nil,
// returns a no-op dispatcher.
func NewHookEmitter(provider *sdklog.LoggerProvider) hooks.Dispatcher {
	if provider == nil {
		return noopDispatcher{}
	}
	return &hookEmitter{logger: provider.Logger("nodebb.hooks")}
}

type noopDispatcher struct{}

func (noopDispatcher) Fire(context.Context, hooks.Event) error { return nil }

// recordLogger is the slice of otellog.Logger the emitter needs; injectable in tests.
type recordLogger interface {
	Emit(ctx context.Context, record otellog.Record)
}

// NewHookEmitterWithLogger builds an emitter on an explicit logger.
func NewHookEmitterWithLogger(logger recordLogger) hooks.Dispatcher {
	return &hookEmitter{logger: logger}
}

type hookEmitter struct {
	logger recordLogger
}

// Fire converts the hook event to an OTel log record and emits it.
// Best-effort; a payload that fails to marshal is logged and dropped.
func (e *hookEmitter) Fire(ctx context.Context, event hooks.Event) error {
	rec := otellog.Record{}
	if event.CreatedAt.IsZero() {
		rec.SetTimestamp(time.Now().UTC())
	} else {
		rec.SetTimestamp(event.CreatedAt)
	}
	body, err := hooks.Marshal(event)
	if err != nil {
		log.Printf("telemetry: hook event %s not marshalable: %v", event.Name, err)
		return err
	}
	rec.SetBody(otellog.BytesValue(body))
	if event.Name != "" {
		rec.AddAttributes(otellog.String("hook", event.Name))
	}
	if event.UID > 0 {
		rec.AddAttributes(otellog.String("uid", strconv.FormatInt(event.UID, 10)))
	}
	e.logger.Emit(ctx, rec)
	return nil
}
