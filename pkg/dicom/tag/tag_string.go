package tag

import "fmt"

// Key formats a group/element pair as 8 uppercase hex digits, e.g. "00100010"
func Key(group, element uint16) string {
	return fmt.Sprintf("%04X%04X", group, element)
}

// Key returns the 8 hex digit key of the tag
func (t Tag) Key() string {
	return Key(t.Group, t.Element)
}
