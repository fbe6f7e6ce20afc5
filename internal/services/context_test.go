package services_test

import (
	"context"
	"testing"

	"github.com/whomstve123/mixing-api/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "fetching")
	ctx = services.WithRequestID(ctx, "req-123")
	ctx = services.WithStemIndex(ctx, 0)

	if stage, ok := services.StageFromContext(ctx); !ok || stage != "fetching" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
	if idx, ok := services.StemIndexFromContext(ctx); !ok || idx != 0 {
		t.Fatalf("unexpected stem index: %v %v", idx, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithRequestID(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id")
	}
	if _, ok := services.StemIndexFromContext(ctx); ok {
		t.Fatal("expected no stem index")
	}
}
