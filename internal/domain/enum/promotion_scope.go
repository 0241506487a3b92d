package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PromotionScope restricts which line kinds a promotion applies to
type PromotionScope string

const (
	PromotionScopeServices PromotionScope = "services"
	PromotionScopeProducts PromotionScope = "products"
	PromotionScopeBoth     PromotionScope = "both"
)

func (s PromotionScope) String() string {
	return string(s)
}

func (s PromotionScope) IsValid() bool {
	switch s {
	case PromotionScopeServices, PromotionScopeProducts, PromotionScopeBoth:
		return true
	}
	return false
}

// Covers reports whether a line of the given kind falls under the scope.
// Packages bundle services and products, so only "both" covers them.
func (s PromotionScope) Covers(kind ItemKind) bool {
	switch kind {
	case ItemKindService:
		return s == PromotionScopeServices || s == PromotionScopeBoth
	case ItemKindProduct:
		return s == PromotionScopeProducts || s == PromotionScopeBoth
	case ItemKindPackage:
		return s == PromotionScopeBoth
	}
	return false
}

// ScopesFor lists the scopes that cover a kind, for repository filters
func ScopesFor(kind ItemKind) []PromotionScope {
	switch kind {
	case ItemKindService:
		return []PromotionScope{PromotionScopeServices, PromotionScopeBoth}
	case ItemKindProduct:
		return []PromotionScope{PromotionScopeProducts, PromotionScopeBoth}
	}
	return []PromotionScope{PromotionScopeBoth}
}

func (s PromotionScope) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *PromotionScope) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	scope := PromotionScope(str)
	if !scope.IsValid() {
		return fmt.Errorf("unknown promotion scope %q", str)
	}
	*s = scope
	return nil
}

func (s PromotionScope) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *PromotionScope) Scan(value interface{}) error {
	if value == nil {
		*s = PromotionScopeBoth
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = PromotionScope(v)
	case []byte:
		*s = PromotionScope(string(v))
	}
	return nil
}
