package types

import (
	"encoding/json"
)

// FlexStrings is a string slice that can be unmarshaled from either a JSON
// array of strings or a single JSON string. The legacy frontend sends the
// tags field both ways.
type FlexStrings []string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] == '[' {
		var slice []string
		if err := json.Unmarshal(data, &slice); err != nil {
			return err
		}
		*f = FlexStrings(slice)
		return nil
	}

	var item string
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*f = FlexStrings{item}
	return nil
}

// Slice converts FlexStrings back to []string.
func (f FlexStrings) Slice() []string {
	return []string(f)
}
