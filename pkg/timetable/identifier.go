package timetable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

var integerIdentifier = regexp.MustCompile(`^(0|-?[1-9][0-9]*)$`)

// Identifier is an opaque portal identifier. The portal is not consistent about
// sending these as numbers or strings so both are accepted, and plain integers are
// written back out as numbers.
type Identifier string

func (i Identifier) String() string {
	return string(i)
}

func (i Identifier) MarshalJSON() ([]byte, error) {
	if integerIdentifier.MatchString(string(i)) {
		return []byte(i), nil
	}

	return json.Marshal(string(i))
}

func (i *Identifier) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}

		*i = Identifier(value)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("identifier %s is neither a string nor a number: %w", data, err)
	}

	*i = Identifier(number.String())
	return nil
}
