// Package resourceset collects the static resources referenced while a
// single response is being rendered.
package resourceset

// Resource is one static asset discovered during rendering.
// As is the preload type hint (e.g. "style" or "script");
// when empty, the formatter derives it from the URL extension.
type Resource struct {
	URL string
	As  string
}

// List is an ordered, de-duplicated collection of resources.
// It belongs to exactly one in-flight request and is not safe for
// concurrent use.
type List struct {
	resources []Resource
	seen      map[string]struct{}
}

func New() *List {
	return &List{
		seen: make(map[string]struct{}),
	}
}

// Record appends the resource unless the same URL was already recorded.
// Recording the same URL twice (even with a different hint) is a no-op.
func (l *List) Record(url, as string) {
	if url == "" {
		return
	}
	if _, ok := l.seen[url]; ok {
		return
	}
	l.seen[url] = struct{}{}
	l.resources = append(l.resources, Resource{URL: url, As: as})
}

// Snapshot returns a copy of the recorded resources in recording order.
func (l *List) Snapshot() []Resource {
	resources := make([]Resource, len(l.resources))
	copy(resources, l.resources)
	return resources
}

// Len returns the number of distinct resources recorded so far.
func (l *List) Len() int {
	return len(l.resources)
}
