package collect

import (
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// ParseNames splits a comma separated project list, dropping blanks.
func ParseNames(csv string) []string {
	var out []string
	for _, n := range strings.Split(csv, ",") {
		n = strings.TrimSpace(n)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Filter keeps the projects named in names, in the order the service listed
// them. If names is empty, all projects are in scope. missing holds the
// requested names that do not exist, sorted.
func Filter(projects, names []string) (kept, missing []string) {
	if len(names) == 0 {
		return projects, nil
	}
	wanted := sets.New(names...)
	for _, p := range projects {
		if wanted.Has(p) {
			kept = append(kept, p)
		}
	}
	return kept, sets.List(wanted.Difference(sets.New(projects...)))
}
