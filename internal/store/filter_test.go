package store

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"taskboard/internal/service"
)

func titles(tasks []service.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestFilter(t *testing.T) {
	tasks := []service.Task{
		{ID: "1", Title: "Buy milk"},
		{ID: "2", Title: "Walk dog"},
		{ID: "3", Title: "buy MILK again"},
		{ID: "4", Title: "Milkshake"},
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query", "", []string{"Buy milk", "Walk dog", "buy MILK again", "Milkshake"}},
		{"case insensitive", "MILK", []string{"Buy milk", "buy MILK again", "Milkshake"}},
		{"mixed case query", "bUy", []string{"Buy milk", "buy MILK again"}},
		{"no match", "cat", nil},
		{"space is significant", " dog", []string{"Walk dog"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titles(Filter(tasks, tt.query))
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	tasks := []service.Task{{ID: "1", Title: "a"}, {ID: "2", Title: "b"}}
	Filter(tasks, "b")
	if tasks[0].Title != "a" || tasks[1].Title != "b" || len(tasks) != 2 {
		t.Errorf("input modified: %+v", tasks)
	}
}

func genTitles(t *rapid.T) []service.Task {
	titles := rapid.SliceOfN(rapid.StringMatching(`[a-cA-C ]{0,8}`), 0, 12).Draw(t, "titles")
	tasks := make([]service.Task, len(titles))
	for i, title := range titles {
		tasks[i] = service.Task{ID: string(rune('a' + i)), Title: title}
	}
	return tasks
}

func TestFilter_Property_Identity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tasks := genTitles(t)
		got := Filter(tasks, "")
		if len(got) != len(tasks) {
			t.Fatalf("expected %d tasks, got %d", len(tasks), len(got))
		}
		for i := range tasks {
			if got[i] != tasks[i] {
				t.Fatalf("task %d changed: %+v != %+v", i, got[i], tasks[i])
			}
		}
	})
}

func TestFilter_Property_MatchesAndOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tasks := genTitles(t)
		query := rapid.StringMatching(`[a-cA-C ]{1,3}`).Draw(t, "query")
		q := strings.ToLower(query)

		got := Filter(tasks, query)

		// Every result matches, and results are a subsequence of the input
		// containing every matching task.
		j := 0
		for _, task := range tasks {
			matches := strings.Contains(strings.ToLower(task.Title), q)
			if j < len(got) && got[j] == task {
				if !matches {
					t.Fatalf("task %q does not contain %q", task.Title, query)
				}
				j++
				continue
			}
			if matches {
				t.Fatalf("matching task %q missing or out of order", task.Title)
			}
		}
		if j != len(got) {
			t.Fatalf("result has %d tasks not found in input order", len(got)-j)
		}
	})
}
