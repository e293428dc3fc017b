package apiconfig

import (
	"fmt"
	"slices"

	"github.com/vk/predictgen/internal/compileerr"
)

// Merge combines a primary and zero or more additional authorization
// variants. Additional variants keep the caller's order.
//
// It fails with a DuplicateAuthTypeError when an additional variant repeats
// the primary or another additional one, and with a ConfigError when a
// variant lacks mandatory settings.
func Merge(primary AuthTypeConfig, additional []AuthTypeConfig) (*AuthConfig, error) {
	if primary == nil {
		return nil, &compileerr.ConfigError{Variant: "auth", Missing: []string{"primary"}}
	}
	if err := checkVariant(primary); err != nil {
		return nil, err
	}

	seen := map[AuthType]bool{primary.Type(): true}
	merged := make([]AuthTypeConfig, 0, len(additional))
	for _, a := range additional {
		if a == nil {
			return nil, &compileerr.ConfigError{Variant: "auth", Err: fmt.Errorf("empty additional auth entry")}
		}
		if seen[a.Type()] {
			return nil, &compileerr.DuplicateAuthTypeError{Variant: string(a.Type())}
		}
		if err := checkVariant(a); err != nil {
			return nil, err
		}
		seen[a.Type()] = true
		merged = append(merged, a)
	}

	return &AuthConfig{Primary: primary, Additional: merged}, nil
}

func checkVariant(c AuthTypeConfig) error {
	if !slices.Contains(AllAuthTypes, c.Type()) {
		return &compileerr.ConfigError{Variant: string(c.Type()), Err: fmt.Errorf("unknown auth type")}
	}
	if missing := c.missing(); len(missing) > 0 {
		return &compileerr.ConfigError{Variant: string(c.Type()), Missing: missing}
	}
	return nil
}
