package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DiscountKind is how a promotion transforms an amount
type DiscountKind string

const (
	DiscountKindPercentage  DiscountKind = "percentage"
	DiscountKindFixedAmount DiscountKind = "fixed_amount"
	DiscountKindFixedPrice  DiscountKind = "fixed_price"
)

func (k DiscountKind) String() string {
	return string(k)
}

func (k DiscountKind) IsValid() bool {
	switch k {
	case DiscountKindPercentage, DiscountKindFixedAmount, DiscountKindFixedPrice:
		return true
	}
	return false
}

func (k DiscountKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(k))
}

func (k *DiscountKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	kind := DiscountKind(str)
	if !kind.IsValid() {
		return fmt.Errorf("unknown discount kind %q", str)
	}
	*k = kind
	return nil
}

func (k DiscountKind) Value() (driver.Value, error) {
	return string(k), nil
}

func (k *DiscountKind) Scan(value interface{}) error {
	if value == nil {
		*k = DiscountKindPercentage
		return nil
	}
	switch v := value.(type) {
	case string:
		*k = DiscountKind(v)
	case []byte:
		*k = DiscountKind(string(v))
	}
	return nil
}
