package resourceset

import "testing"

func TestRecordPreservesOrder(t *testing.T) {
	l := New()
	l.Record("/static/css/base.css", "style")
	l.Record("/static/js/app.js", "script")
	l.Record("/static/img/logo.png", "")

	s := l.Snapshot()
	if len(s) != 3 {
		t.Fatalf("Got %d resources", len(s))
	}
	if s[0].URL != "/static/css/base.css" || s[1].URL != "/static/js/app.js" || s[2].URL != "/static/img/logo.png" {
		t.Fatalf("Order not preserved: %v", s)
	}
}

func TestRecordTwiceIsIdempotent(t *testing.T) {
	once := New()
	once.Record("/static/css/base.css", "style")

	twice := New()
	twice.Record("/static/css/base.css", "style")
	twice.Record("/static/css/base.css", "style")

	if once.Len() != 1 || twice.Len() != 1 {
		t.Fatalf("Lengths are %d and %d", once.Len(), twice.Len())
	}
	if once.Snapshot()[0] != twice.Snapshot()[0] {
		t.Fatalf("Lists differ")
	}
}

func TestRecordKeepsFirstHint(t *testing.T) {
	l := New()
	l.Record("/static/app.js", "script")
	l.Record("/static/app.js", "style")

	s := l.Snapshot()
	if len(s) != 1 || s[0].As != "script" {
		t.Fatalf("Got %v", s)
	}
}

func TestRecordIgnoresEmptyURL(t *testing.T) {
	l := New()
	l.Record("", "style")
	if l.Len() != 0 {
		t.Fatalf("Empty URL was recorded")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	l := New()
	l.Record("/a.css", "")
	s := l.Snapshot()
	s[0].URL = "/mutated.css"
	if l.Snapshot()[0].URL != "/a.css" {
		t.Fatalf("Snapshot mutation leaked into list")
	}
}
