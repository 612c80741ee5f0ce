package frame

import (
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Value is a decoded reading, either an integer or an opaque string.
type Value struct {
	num     int64
	str     string
	numeric bool
}

func IntValue(n int64) Value {
	return Value{num: n, numeric: true}
}

func StringValue(s string) Value {
	return Value{str: s}
}

func (v Value) IsNumeric() bool { return v.numeric }

func (v Value) Int() int64 { return v.num }

// Any returns the value as int64 or string.
func (v Value) Any() any {
	if v.numeric {
		return v.num
	}
	return v.str
}

func (v Value) String() string {
	if v.numeric {
		return strconv.FormatInt(v.num, 10)
	}
	return v.str
}

// Snapshot is one complete meter reading cycle.
type Snapshot struct {
	Values    map[string]Value
	Timestamp time.Time
}

// Keys returns the snapshot keys in lexical order.
func (s *Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.Values))
	for k := range s.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Snapshot) Len() int {
	return len(s.Values)
}

func (s *Snapshot) MarshalZerologObject(e *zerolog.Event) {
	for _, k := range s.Keys() {
		v := s.Values[k]
		if v.numeric {
			e.Int64(k, v.num)
		} else {
			e.Str(k, v.str)
		}
	}
	e.Int64("timestamp", s.Timestamp.Unix())
}
