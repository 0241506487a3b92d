package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ItemKind selects which catalog a line item resolves against
type ItemKind string

const (
	ItemKindService ItemKind = "service"
	ItemKindProduct ItemKind = "product"
	ItemKindPackage ItemKind = "package"
)

func (k ItemKind) String() string {
	return string(k)
}

func (k ItemKind) IsValid() bool {
	switch k {
	case ItemKindService, ItemKindProduct, ItemKindPackage:
		return true
	}
	return false
}

func (k ItemKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(k))
}

func (k *ItemKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	kind := ItemKind(str)
	if !kind.IsValid() {
		return fmt.Errorf("unknown item kind %q", str)
	}
	*k = kind
	return nil
}

func (k ItemKind) Value() (driver.Value, error) {
	return string(k), nil
}

func (k *ItemKind) Scan(value interface{}) error {
	if value == nil {
		*k = ItemKindService
		return nil
	}
	switch v := value.(type) {
	case string:
		*k = ItemKind(v)
	case []byte:
		*k = ItemKind(string(v))
	}
	return nil
}
