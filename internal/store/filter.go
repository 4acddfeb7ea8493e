package store

import (
	"strings"

	"taskboard/internal/service"
)

// Filter returns the tasks whose title contains query, ignoring case.
// Order is preserved. An empty query returns tasks unchanged.
func Filter(tasks []service.Task, query string) []service.Task {
	if query == "" {
		return tasks
	}

	q := strings.ToLower(query)
	var out []service.Task
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), q) {
			out = append(out, t)
		}
	}
	return out
}
