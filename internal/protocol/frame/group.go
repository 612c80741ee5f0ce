package frame

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/teleinfo/internal/protocol"
)

// Group is one "KEY VALUE CHECKSUM" reading.
type Group struct {
	Key      string
	Value    string
	Checksum byte
}

// GroupError reports a line that could not be turned into a stored reading.
// Key and Value hold whatever was parsed before the failure.
// Every GroupError matches protocol.ErrMalformedGroup.
type GroupError struct {
	Line  string
	Key   string
	Value string
	Err   error
}

func (e *GroupError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("frame: line %q: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("frame: group %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *GroupError) Unwrap() error {
	return e.Err
}

func (e *GroupError) Is(target error) bool {
	return target == protocol.ErrMalformedGroup
}

// ParseGroup splits a raw line into its group and checks the checksum.
//
// The checksum is read at a fixed offset from the end of the line rather than
// from the third field: it may itself be a space, and the last group of a
// frame carries the ETX STX pair after it.
func ParseGroup(line string) (Group, error) {
	fields := strings.SplitN(line, protocol.FieldSeparator, 3)
	if len(fields) < 2 || fields[0] == "" {
		return Group{}, &GroupError{Line: line, Err: protocol.ErrMalformedGroup}
	}
	g := Group{Key: fields[0], Value: fields[1]}

	trimmed := strings.Replace(line, protocol.FrameBoundary, "", 1)
	idx := len(trimmed) - protocol.ChecksumOffset
	if idx < 0 {
		return Group{}, &GroupError{Line: line, Key: g.Key, Value: g.Value, Err: protocol.ErrMalformedGroup}
	}
	g.Checksum = trimmed[idx]

	if !protocol.ValidChecksum(g.payload(), g.Checksum) {
		return Group{}, &GroupError{
			Line:  line,
			Key:   g.Key,
			Value: g.Value,
			Err:   fmt.Errorf("%w: got %q want %q", protocol.ErrChecksumMismatch, g.Checksum, protocol.Checksum(g.payload())),
		}
	}
	return g, nil
}

func (g Group) payload() string {
	return g.Key + protocol.FieldSeparator + g.Value
}

// Typed converts the raw value: integers for numeric keys, strings otherwise.
func (g Group) Typed() (Value, error) {
	if !protocol.IsNumericKey(g.Key) {
		return StringValue(g.Value), nil
	}
	n, err := strconv.ParseInt(g.Value, 10, 64)
	if err != nil {
		return Value{}, &GroupError{Key: g.Key, Value: g.Value, Err: fmt.Errorf("%w: %v", protocol.ErrInvalidNumber, err)}
	}
	return IntValue(n), nil
}
