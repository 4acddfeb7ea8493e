package googletasks

import (
	"testing"

	"taskboard/internal/service"
)

func TestEncodeNotes(t *testing.T) {
	task := service.Task{Type: "errand", DueDate: "next Friday", Priority: service.PriorityUrgent}

	tests := []struct {
		name  string
		extra string
		want  string
	}{
		{"fields only", "", "type: errand\ndue: next Friday\npriority: Urgent"},
		{"with free text", "call Bob at 555-1234", "call Bob at 555-1234\n---\ntype: errand\ndue: next Friday\npriority: Urgent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeNotes(task, tt.extra)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDecodeNotes(t *testing.T) {
	tests := []struct {
		name  string
		notes string
		want  taskNotes
	}{
		{"empty", "", taskNotes{}},
		{"encoded", "type: errand\ndue: today\npriority: Important", taskNotes{Type: "errand", Due: "today", Priority: "Important"}},
		{"free text", "remember the receipt", taskNotes{Extra: "remember the receipt"}},
		{"unrelated yaml", "color: blue", taskNotes{Extra: "color: blue"}},
		{"mixed keys", "type: errand\ncolor: blue", taskNotes{Extra: "type: errand\ncolor: blue"}},
		{"null document", "null", taskNotes{Extra: "null"}},
		{"quoted colon", "type: \"a: b\"", taskNotes{Type: "a: b"}},
		{"free text then block", "call Bob\nafter 5pm\n---\ntype: call\npriority: Urgent", taskNotes{Type: "call", Priority: "Urgent", Extra: "call Bob\nafter 5pm"}},
		{"separator in free text", "intro\n---\nnot ours: here", taskNotes{Extra: "intro\n---\nnot ours: here"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeNotes(tt.notes); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestNotes_SurviveGoogleConversion(t *testing.T) {
	task := service.Task{ID: "x", Title: "t", Type: "due: trap", DueDate: "- item", Priority: service.PriorityImportant, Completed: true}

	gt, err := toGoogle(task, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gt.Id = task.ID

	if got := fromGoogle(gt); got != task {
		t.Errorf("expected %+v, got %+v", task, got)
	}
}

func TestNotes_FreeTextRoundTrip(t *testing.T) {
	task := service.Task{Type: "call", DueDate: "today", Priority: service.PriorityNormal}
	extra := "line one\n---\nline two: with colon"

	notes, err := encodeNotes(task, extra)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := decodeNotes(notes)
	want := taskNotes{Type: "call", Due: "today", Priority: "Normal", Extra: extra}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
