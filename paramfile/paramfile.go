// Package paramfile reads and writes the instrument's plain-text parameter
// files. Every line is either a "# comment" or "Section::Key = value".
package paramfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

// Type is the stored representation of an Entry
type Type uint8

const (
	TypeString Type = iota
	TypeInt8
	TypeInt32
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt8:
		return "int8"
	case TypeInt32:
		return "int32"
	default:
		return "unknown"
	}
}

// Entry binds a key to the variable it is written from and read into
type Entry struct {
	Key    string
	Type   Type
	target any
}

func String(key string, target *string) Entry { return Entry{key, TypeString, target} }
func Int8(key string, target *int8) Entry     { return Entry{key, TypeInt8, target} }
func Int32(key string, target *int32) Entry   { return Entry{key, TypeInt32, target} }

// Key joins a section and a name the way they appear in the file
func Key(section, name string) string {
	return section + "::" + name
}

func (e Entry) value() string {
	switch t := e.target.(type) {
	case *string:
		return *t
	case *int8:
		return strconv.FormatInt(int64(*t), 10)
	case *int32:
		return strconv.FormatInt(int64(*t), 10)
	default:
		return ""
	}
}

func (e Entry) set(s string) error {
	switch t := e.target.(type) {
	case *string:
		*t = s
	case *int8:
		v, err := strconv.ParseInt(s, 10, 8)
		if err != nil {
			return fmt.Errorf("invalid %s for %q: %w", e.Type, e.Key, err)
		}
		*t = int8(v)
	case *int32:
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid %s for %q: %w", e.Type, e.Key, err)
		}
		*t = int32(v)
	default:
		return fmt.Errorf("unsupported target for %q", e.Key)
	}
	return nil
}

// Comment writes a single comment line
func Comment(w io.Writer, text string) error {
	_, err := fmt.Fprintf(w, "# %s\n", text)
	return err
}

// Write writes one "Key = value" line per entry
func Write(w io.Writer, entries ...Entry) error {
	for _, e := range entries {
		if strings.ContainsAny(e.Key, "=\n") {
			return fmt.Errorf("invalid key %q", e.Key)
		}
		if _, err := fmt.Fprintf(w, "%s = %s\n", e.Key, e.value()); err != nil {
			return err
		}
	}
	return nil
}

// ErrSyntax is returned by Parse for lines that are neither comments nor assignments
var ErrSyntax = errors.New("syntax error")

// Table holds every assignment of a parsed file, later keys overriding earlier ones
type Table map[string]string

// Parse reads all assignments from r
func Parse(r io.Reader) (Table, error) {
	t := Table{}

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		key, value, ok := strings.Cut(text, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: %w: %q", line, ErrSyntax, text)
		}
		t[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading parameters: %w", err)
	}

	return t, nil
}

// Read fills the target of every entry whose key is present. Targets of
// missing keys are left untouched. Conversion errors for individual entries
// are combined and do not stop the remaining entries from being read.
func (t Table) Read(entries ...Entry) error {
	var err error
	for _, e := range entries {
		s, ok := t[e.Key]
		if !ok {
			continue
		}
		err = multierr.Append(err, e.set(s))
	}
	return err
}
