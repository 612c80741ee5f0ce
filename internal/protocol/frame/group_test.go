package frame

import (
	"errors"
	"testing"

	"github.com/danmuck/teleinfo/internal/protocol"
)

func groupLine(key, value string) string {
	return key + " " + value + " " + string(protocol.Checksum(key+" "+value)) + "\r\n"
}

func closingLine(key, value string) string {
	return key + " " + value + " " + string(protocol.Checksum(key+" "+value)) + "\r\x03\x02\n"
}

func TestParseGroupValid(t *testing.T) {
	g, err := ParseGroup("BASE 123456789 8\r\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if g.Key != "BASE" || g.Value != "123456789" || g.Checksum != '8' {
		t.Fatalf("unexpected group: %+v", g)
	}
}

func TestParseGroupFrameBoundarySuffix(t *testing.T) {
	g, err := ParseGroup("HCHC 040177099 +\r\x03\x02\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if g.Key != "HCHC" || g.Value != "040177099" || g.Checksum != '+' {
		t.Fatalf("unexpected group: %+v", g)
	}
}

func TestParseGroupSpaceChecksum(t *testing.T) {
	g, err := ParseGroup("PTEC HP..  \r\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if g.Key != "PTEC" || g.Value != "HP.." || g.Checksum != ' ' {
		t.Fatalf("unexpected group: %+v", g)
	}
}

func TestParseGroupChecksumMismatch(t *testing.T) {
	_, err := ParseGroup("BASE 123456789 9\r\n")
	if !errors.Is(err, protocol.ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
	if !errors.Is(err, protocol.ErrMalformedGroup) {
		t.Fatalf("checksum mismatch should be a malformed group: %v", err)
	}
	var gerr *GroupError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *GroupError, got %T", err)
	}
	if gerr.Key != "BASE" || gerr.Value != "123456789" || gerr.Line != "BASE 123456789 9\r\n" {
		t.Fatalf("unexpected error context: %+v", gerr)
	}
}

func TestParseGroupMalformed(t *testing.T) {
	for _, line := range []string{"", "\r\n", "NOSPACE\r\n", "\x02\n", " leading\r\n", "A "} {
		_, err := ParseGroup(line)
		if !errors.Is(err, protocol.ErrMalformedGroup) {
			t.Fatalf("line %q: expected ErrMalformedGroup, got %v", line, err)
		}
	}
}

func TestGroupTyped(t *testing.T) {
	v, err := Group{Key: "PAPP", Value: "01289"}.Typed()
	if err != nil {
		t.Fatalf("typed: %v", err)
	}
	if !v.IsNumeric() || v.Int() != 1289 {
		t.Fatalf("unexpected value: %+v", v)
	}

	v, err = Group{Key: "OPTARIF", Value: "HC.."}.Typed()
	if err != nil {
		t.Fatalf("typed: %v", err)
	}
	if v.IsNumeric() || v.Any() != "HC.." {
		t.Fatalf("unexpected value: %+v", v)
	}

	_, err = Group{Key: "IINST", Value: "0x5"}.Typed()
	if !errors.Is(err, protocol.ErrInvalidNumber) {
		t.Fatalf("expected ErrInvalidNumber, got %v", err)
	}
}
