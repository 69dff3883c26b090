package warmlink

import (
	"context"
	"testing"

	resourceset "github.com/warmlink/warmlink/pkg/resource-set"
)

func TestRecordWithoutMiddlewareIsANoop(t *testing.T) {
	// must not panic when the request is not being tracked
	Record(context.Background(), "/a.css", "style")
}

func TestRecordReachesList(t *testing.T) {
	l := resourceset.New()
	ctx := withList(context.Background(), l)

	Record(ctx, "/a.css", "style")
	Record(ctx, "/a.css", "style")
	Record(ctx, "/b.js", "")

	s := l.Snapshot()
	if len(s) != 2 || s[0].URL != "/a.css" || s[1].URL != "/b.js" {
		t.Fatalf("Snapshot is %v", s)
	}
}

func TestAssetVersioning(t *testing.T) {
	l := resourceset.New()
	ctx := withList(context.Background(), l)

	if url := Asset(ctx, "/static/app.js", "42"); url != "/static/app.js?v=42" {
		t.Fatalf("URL is %q", url)
	}
	if url := Asset(ctx, "/static/base.css"); url != "/static/base.css" {
		t.Fatalf("URL is %q", url)
	}
	if l.Len() != 2 {
		t.Fatalf("Recorded %d resources", l.Len())
	}
	if l.Snapshot()[0].URL != "/static/app.js?v=42" {
		t.Fatalf("Recorded URL is %q", l.Snapshot()[0].URL)
	}
}

func TestNonceRoundTrip(t *testing.T) {
	ctx := WithNonce(context.Background(), "abc123")
	if NonceFromContext(ctx) != "abc123" {
		t.Fatalf("Nonce is %q", NonceFromContext(ctx))
	}
	if NonceFromContext(context.Background()) != "" {
		t.Fatalf("Nonce present on empty context")
	}
}
