package googletasks

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"taskboard/internal/service"
)

// notesSeparator divides free text from the YAML block when a task's notes
// carry both.
const notesSeparator = "\n---\n"

// taskNotes is the YAML document stored in a Google task's notes. Extra
// holds any text that is not ours, such as notes typed in another Google
// client; it is written back ahead of the YAML block.
type taskNotes struct {
	Type     string `yaml:"type,omitempty"`
	Due      string `yaml:"due,omitempty"`
	Priority string `yaml:"priority,omitempty"`
	Extra    string `yaml:"-"`
}

func encodeNotes(t service.Task, extra string) (string, error) {
	data, err := yaml.Marshal(taskNotes{
		Type:     t.Type,
		Due:      t.DueDate,
		Priority: t.Priority.Display(),
	})
	if err != nil {
		return "", fmt.Errorf("encoding task notes: %w", err)
	}
	block := strings.TrimSuffix(string(data), "\n")
	if extra == "" {
		return block, nil
	}
	return extra + notesSeparator + block, nil
}

// decodeNotes reads notes written by encodeNotes. Text that is not a YAML
// block of our keys is kept verbatim in Extra.
func decodeNotes(s string) taskNotes {
	if strings.TrimSpace(s) == "" {
		return taskNotes{}
	}

	if i := strings.LastIndex(s, notesSeparator); i >= 0 {
		if n, ok := parseBlock(s[i+len(notesSeparator):]); ok {
			n.Extra = s[:i]
			return n
		}
	}
	if n, ok := parseBlock(s); ok {
		return n
	}
	return taskNotes{Extra: s}
}

// parseBlock decodes a mapping that holds only our keys.
func parseBlock(s string) (taskNotes, bool) {
	if strings.TrimSpace(s) == "" {
		return taskNotes{}, true
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil {
		return taskNotes{}, false
	}
	if len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return taskNotes{}, false
	}

	var n taskNotes
	dec := yaml.NewDecoder(bytes.NewReader([]byte(s)))
	dec.KnownFields(true)
	if err := dec.Decode(&n); err != nil && !errors.Is(err, io.EOF) {
		return taskNotes{}, false
	}
	return n, true
}
