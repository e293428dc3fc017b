package apiconfig

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/predictgen/internal/compileerr"
	"github.com/vk/predictgen/internal/ctyval"
)

// DecodeAuth reads an auth block of the form
//
//	{ primary = { type = "API_KEY", ... }, additional = [{ type = "AWS_IAM" }, ...] }
//
// and merges it. A null block yields nil. Errors carry at as their location.
func DecodeAuth(at compileerr.Location, v cty.Value) (*AuthConfig, error) {
	if !ctyval.IsSet(v) {
		return nil, nil
	}
	cfg, err := decodeAuth(v)
	if err != nil {
		return nil, locate(at, err)
	}
	return cfg, nil
}

func decodeAuth(v cty.Value) (*AuthConfig, error) {
	if !v.Type().IsObjectType() && !v.Type().IsMapType() {
		return nil, &compileerr.ConfigError{Variant: "auth", Err: fmt.Errorf("expected an object, got %s", v.Type().FriendlyName())}
	}
	primaryVal, ok := ctyval.Attr(v, "primary")
	if !ok {
		return nil, &compileerr.ConfigError{Variant: "auth", Missing: []string{"primary"}}
	}
	primary, err := DecodeAuthType(primaryVal)
	if err != nil {
		return nil, err
	}

	var additional []AuthTypeConfig
	if addVal, ok := ctyval.Attr(v, "additional"); ok {
		elems, err := ctyval.Elements(addVal)
		if err != nil {
			return nil, &compileerr.ConfigError{Variant: "auth", Err: fmt.Errorf("additional: %w", err)}
		}
		for _, e := range elems {
			a, err := DecodeAuthType(e)
			if err != nil {
				return nil, err
			}
			additional = append(additional, a)
		}
	}
	return Merge(primary, additional)
}

// DecodeAuthType reads one variant. The "type" attribute selects the
// variant; the remaining attributes are its settings.
func DecodeAuthType(v cty.Value) (AuthTypeConfig, error) {
	typ, ok, err := ctyval.String(v, "type")
	if err != nil {
		return nil, &compileerr.ConfigError{Variant: "auth", Err: err}
	}
	if !ok {
		return nil, &compileerr.ConfigError{Variant: "auth", Missing: []string{"type"}}
	}

	r := reader{obj: v}
	var cfg AuthTypeConfig
	switch AuthType(typ) {
	case APIKey:
		c := APIKeyConfig{
			Description:    r.str("description"),
			ExpirationDays: r.num("expiration_days"),
		}
		if c.ExpirationDays == 0 {
			c.ExpirationDays = DefaultAPIKeyExpirationDays
		}
		cfg = c
	case UserPool:
		cfg = UserPoolConfig{UserPoolID: r.str("user_pool_id")}
	case IAM:
		cfg = IAMConfig{}
	case OIDC:
		cfg = OIDCConfig{
			ProviderName:  r.str("provider_name"),
			Issuer:        r.str("domain"),
			ClientID:      r.str("client_id"),
			IATTTLMillis:  r.num("iat_ttl_ms"),
			AuthTTLMillis: r.num("auth_ttl_ms"),
		}
	default:
		return nil, &compileerr.ConfigError{Variant: typ, Err: fmt.Errorf("unknown auth type")}
	}
	if r.err != nil {
		return nil, &compileerr.ConfigError{Variant: typ, Err: r.err}
	}
	if missing := cfg.missing(); len(missing) > 0 {
		return nil, &compileerr.ConfigError{Variant: typ, Missing: missing}
	}
	return cfg, nil
}

// reader accumulates the first conversion error so variant decoding reads
// as a flat list of fields.
type reader struct {
	obj cty.Value
	err error
}

func (r *reader) str(name string) string {
	s, _, err := ctyval.String(r.obj, name)
	if err != nil && r.err == nil {
		r.err = err
	}
	return s
}

func (r *reader) num(name string) int64 {
	n, _, err := ctyval.Int(r.obj, name)
	if err != nil && r.err == nil {
		r.err = err
	}
	return n
}

// locate stamps at onto a ConfigError that does not carry a location yet.
func locate(at compileerr.Location, err error) error {
	var ce *compileerr.ConfigError
	if errors.As(err, &ce) && ce.At == (compileerr.Location{}) {
		ce.At = at
	}
	return err
}
