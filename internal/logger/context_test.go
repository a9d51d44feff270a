package logger

import (
	"context"
	"testing"
)

func TestExtractContextFields(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithUserID(ctx, "user-1")
	ctx = WithDay(ctx, "2026-03-05")

	got := map[string]any{}
	for _, f := range extractContextFields(ctx) {
		got[f.Key] = f.Value
	}

	if got["request_id"] != "req-1" || got["user_id"] != "user-1" || got["day"] != "2026-03-05" {
		t.Errorf("unexpected context fields: %v", got)
	}
}

func TestDayFromContextMissing(t *testing.T) {
	if d := DayFromContext(context.Background()); d != "" {
		t.Errorf("expected empty day, got %q", d)
	}
}
