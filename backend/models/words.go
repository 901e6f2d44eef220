package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// Words stores packed flag words as comma separated decimals so values with
// the high bit set round-trip through drivers that only accept int64.
type Words []uint64

func (w Words) Value() (driver.Value, error) {
	parts := make([]string, len(w))
	for i, v := range w {
		parts[i] = strconv.FormatUint(v, 10)
	}
	return strings.Join(parts, ","), nil
}

func (w *Words) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*w = Words{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Words", src)
	}

	out := Words{}
	for _, part := range strings.Split(s, ",") {
		if part == "" {
			continue
		}
		v, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid flag word %q: %w", part, err)
		}
		out = append(out, v)
	}
	*w = out
	return nil
}
