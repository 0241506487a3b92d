package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ComandaStatus is the lifecycle state of a tab. Closed and cancelled are terminal.
type ComandaStatus int

const (
	ComandaStatusOpen      ComandaStatus = 0
	ComandaStatusClosed    ComandaStatus = 1
	ComandaStatusCancelled ComandaStatus = 2
)

func (s ComandaStatus) String() string {
	names := [...]string{"open", "closed", "cancelled"}
	if int(s) < 0 || int(s) >= len(names) {
		return "unknown"
	}
	return names[s]
}

// IsTerminal reports whether no further transition is allowed
func (s ComandaStatus) IsTerminal() bool {
	return s == ComandaStatusClosed || s == ComandaStatusCancelled
}

// ParseComandaStatus parses the textual form used in query strings
func ParseComandaStatus(str string) (ComandaStatus, error) {
	switch str {
	case "open":
		return ComandaStatusOpen, nil
	case "closed":
		return ComandaStatusClosed, nil
	case "cancelled":
		return ComandaStatusCancelled, nil
	}
	return ComandaStatusOpen, fmt.Errorf("unknown comanda status %q", str)
}

func (s ComandaStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ComandaStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = ComandaStatus(i)
		return nil
	}
	parsed, err := ParseComandaStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s ComandaStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ComandaStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ComandaStatusOpen
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = ComandaStatus(v)
	case int:
		*s = ComandaStatus(v)
	}
	return nil
}
