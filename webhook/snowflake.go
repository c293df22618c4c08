package webhook

import (
	"bytes"
	"fmt"
	"strconv"
)

var null = []byte("null")

// Snowflake is a Discord id. It is encoded as a JSON string.
type Snowflake int64

func (s *Snowflake) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, null) {
		*s = 0
		return nil
	}

	if len(b) >= 2 && b[0] == '"' {
		b = b[1 : len(b)-1]
	}

	i, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("failed to unmarshal snowflake: %w", err)
	}

	*s = Snowflake(i)

	return nil
}

func (s Snowflake) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 21)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, int64(s), 10)
	buf = append(buf, '"')

	return buf, nil
}

func (s Snowflake) String() string {
	return strconv.FormatInt(int64(s), 10)
}

// ParseSnowflake parses a decimal id.
func ParseSnowflake(s string) (Snowflake, error) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q: %w", s, err)
	}

	return Snowflake(i), nil
}
