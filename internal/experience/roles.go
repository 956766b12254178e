// Package experience loads imported work history and normalizes it before tailoring.
package experience

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/resume-review/internal/types"
)

// DecodeError is a malformed roles document. Line and Column are 1-based and
// zero when the decoder could not place the problem.
type DecodeError struct {
	Path   string
	Line   int
	Column int
	Cause  error
}

func (e *DecodeError) Error() string {
	where := e.Path
	if where == "" {
		where = "roles"
	}
	if e.Line > 0 {
		where = fmt.Sprintf("%s:%d:%d", where, e.Line, e.Column)
	}
	return where + ": " + e.Cause.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// LoadRoles reads and decodes a role set file.
func LoadRoles(path string) (*types.RoleSet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roles: %w", err)
	}
	set, err := ParseRoles(content)
	if err != nil {
		var derr *DecodeError
		if errors.As(err, &derr) {
			derr.Path = path
		}
		return nil, err
	}
	return set, nil
}

// ParseRoles decodes a role set from JSON.
func ParseRoles(content []byte) (*types.RoleSet, error) {
	var set types.RoleSet
	if err := json.Unmarshal(content, &set); err != nil {
		derr := &DecodeError{Cause: err}
		var syntax *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntax):
			derr.Line, derr.Column = position(content, syntax.Offset)
		case errors.As(err, &typeErr):
			derr.Line, derr.Column = position(content, typeErr.Offset)
		}
		return nil, derr
	}
	return &set, nil
}

// position locates the last byte the decoder read, given its offset count
func position(content []byte, offset int64) (int, int) {
	if offset <= 0 || offset > int64(len(content)) {
		return 0, 0
	}
	before := content[:offset-1]
	line := bytes.Count(before, []byte("\n")) + 1
	col := len(before) - bytes.LastIndexByte(before, '\n')
	return line, col
}
