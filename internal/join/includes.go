package join

import (
	"strings"

	"DatasetCatalog/internal/apperr"
)

// Include names a relationship that can be embedded in a dataset.
type Include string

const (
	Widget     Include = "widget"
	Layer      Include = "layer"
	Vocabulary Include = "vocabulary"
	Metadata   Include = "metadata"
	User       Include = "user"
	Graph      Include = "graph"
)

var knownIncludes = map[Include]struct{}{
	Widget: {}, Layer: {}, Vocabulary: {}, Metadata: {}, User: {}, Graph: {},
}

// ParseIncludes reads a comma separated include list, keeping the caller's
// order and dropping repeats.
func ParseIncludes(raw string) ([]Include, error) {
	var out []Include
	seen := map[Include]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		inc := Include(name)
		if _, ok := knownIncludes[inc]; !ok {
			return nil, apperr.InvalidRequest("Invalid includes value: " + name)
		}
		if _, dup := seen[inc]; dup {
			continue
		}
		seen[inc] = struct{}{}
		out = append(out, inc)
	}
	return out, nil
}
