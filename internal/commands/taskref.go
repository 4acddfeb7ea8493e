package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// idPrefix marks a literal task ID, for IDs that consist only of digits.
const idPrefix = "id:"

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num int    // 1-based position in list order, 0 if ID is set
	ID  string // literal task ID, empty if Num is set
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
// 1. No args → error: task reference required
// 2. More than one arg → error: too many arguments
// 3. All digits → position in list order (as printed by list)
// 4. "id:<id>" → literal ID, for IDs made of digits only
// 5. Anything else → literal ID
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("too many arguments: %s", strings.Join(args[1:], " "))
	}

	arg := strings.TrimSpace(args[0])
	if arg == "" {
		return TaskRef{}, ErrTaskRefRequired
	}

	if isAllDigits(arg) {
		num, err := strconv.Atoi(arg)
		if err != nil || num < 1 {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
		return TaskRef{Num: num}, nil
	}

	if id, ok := strings.CutPrefix(arg, idPrefix); ok {
		if id == "" {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
		return TaskRef{ID: id}, nil
	}

	return TaskRef{ID: arg}, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
