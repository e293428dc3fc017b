// Package apiconfig models the API-level settings a schema is compiled with:
// the primary and additional authorization types and conflict detection.
package apiconfig

// AuthType names an authorization variant.
type AuthType string

const (
	APIKey   AuthType = "API_KEY"
	UserPool AuthType = "AMAZON_COGNITO_USER_POOLS"
	IAM      AuthType = "AWS_IAM"
	OIDC     AuthType = "OPENID_CONNECT"
)

// AllAuthTypes is the fixed candidate set, in the order they are offered.
var AllAuthTypes = []AuthType{APIKey, UserPool, IAM, OIDC}

// DefaultAPIKeyExpirationDays is used when an API key omits its expiry.
const DefaultAPIKeyExpirationDays = 7

// AuthTypeConfig is one authorization variant with only the settings it
// needs.
type AuthTypeConfig interface {
	Type() AuthType
	// missing lists mandatory settings that were not provided.
	missing() []string
}

// APIKeyConfig configures API key authorization.
type APIKeyConfig struct {
	Description    string
	ExpirationDays int64
}

// UserPoolConfig configures Cognito user pool authorization. An empty
// UserPoolID refers to the user pool of the project's auth resource.
type UserPoolConfig struct {
	UserPoolID string
}

// IAMConfig configures IAM authorization. It has no settings.
type IAMConfig struct{}

// OIDCConfig configures OpenID Connect authorization. Every field is
// mandatory.
type OIDCConfig struct {
	ProviderName  string
	Issuer        string
	ClientID      string
	IATTTLMillis  int64
	AuthTTLMillis int64
}

func (APIKeyConfig) Type() AuthType   { return APIKey }
func (UserPoolConfig) Type() AuthType { return UserPool }
func (IAMConfig) Type() AuthType      { return IAM }
func (OIDCConfig) Type() AuthType     { return OIDC }

func (APIKeyConfig) missing() []string   { return nil }
func (UserPoolConfig) missing() []string { return nil }
func (IAMConfig) missing() []string      { return nil }

func (c OIDCConfig) missing() []string {
	var m []string
	if c.ProviderName == "" {
		m = append(m, "provider_name")
	}
	if c.Issuer == "" {
		m = append(m, "domain")
	}
	if c.ClientID == "" {
		m = append(m, "client_id")
	}
	if c.IATTTLMillis <= 0 {
		m = append(m, "iat_ttl_ms")
	}
	if c.AuthTTLMillis <= 0 {
		m = append(m, "auth_ttl_ms")
	}
	return m
}

// AuthConfig is the merged authorization configuration of an API.
type AuthConfig struct {
	Primary    AuthTypeConfig
	Additional []AuthTypeConfig
}

// Types lists the configured variants, primary first.
func (c *AuthConfig) Types() []AuthType {
	out := []AuthType{c.Primary.Type()}
	for _, a := range c.Additional {
		out = append(out, a.Type())
	}
	return out
}
