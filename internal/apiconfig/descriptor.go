package apiconfig

import (
	"github.com/vk/predictgen/internal/cfn"
	"github.com/vk/predictgen/internal/naming"
)

// AuthUserPoolParam is the parameter holding the project's user pool ID.
const AuthUserPoolParam = "AuthCognitoUserPoolId"

// AuthSettings is the advanced-settings descriptor of a merged AuthConfig,
// shaped like the authentication properties of the API resource.
type AuthSettings struct {
	AuthenticationType                string            `yaml:"AuthenticationType" json:"AuthenticationType"`
	APIKeyConfig                      *APIKeySettings   `yaml:"ApiKeyConfig,omitempty" json:"ApiKeyConfig,omitempty"`
	UserPoolConfig                    *UserPoolSettings `yaml:"UserPoolConfig,omitempty" json:"UserPoolConfig,omitempty"`
	OpenIDConnectConfig               *OIDCSettings     `yaml:"OpenIDConnectConfig,omitempty" json:"OpenIDConnectConfig,omitempty"`
	AdditionalAuthenticationProviders []Provider        `yaml:"AdditionalAuthenticationProviders,omitempty" json:"AdditionalAuthenticationProviders,omitempty"`
}

// Provider is one additional authentication provider.
type Provider struct {
	AuthenticationType  string            `yaml:"AuthenticationType" json:"AuthenticationType"`
	UserPoolConfig      *UserPoolSettings `yaml:"UserPoolConfig,omitempty" json:"UserPoolConfig,omitempty"`
	OpenIDConnectConfig *OIDCSettings     `yaml:"OpenIDConnectConfig,omitempty" json:"OpenIDConnectConfig,omitempty"`
}

// APIKeySettings describes the API key to create.
type APIKeySettings struct {
	Description    string `yaml:"Description,omitempty" json:"Description,omitempty"`
	ExpirationDays int64  `yaml:"ExpirationDays" json:"ExpirationDays"`
}

// UserPoolSettings points at a Cognito user pool.
type UserPoolSettings struct {
	UserPoolID    cfn.Expr `yaml:"UserPoolId" json:"UserPoolId"`
	AWSRegion     cfn.Expr `yaml:"AwsRegion" json:"AwsRegion"`
	DefaultAction string   `yaml:"DefaultAction,omitempty" json:"DefaultAction,omitempty"`
}

// OIDCSettings describes an OpenID Connect provider.
type OIDCSettings struct {
	Issuer   string `yaml:"Issuer" json:"Issuer"`
	ClientID string `yaml:"ClientId" json:"ClientId"`
	IATTTL   int64  `yaml:"IatTTL" json:"IatTTL"`
	AuthTTL  int64  `yaml:"AuthTTL" json:"AuthTTL"`
}

// AdvancedSettings renders cfg as an AuthSettings descriptor. Additional
// providers keep the order they were merged in.
func AdvancedSettings(cfg *AuthConfig) *AuthSettings {
	if cfg == nil {
		return nil
	}
	s := &AuthSettings{AuthenticationType: string(cfg.Primary.Type())}
	switch p := cfg.Primary.(type) {
	case APIKeyConfig:
		s.APIKeyConfig = &APIKeySettings{Description: p.Description, ExpirationDays: p.ExpirationDays}
	case UserPoolConfig:
		s.UserPoolConfig = userPoolSettings(p)
		s.UserPoolConfig.DefaultAction = "ALLOW"
	case OIDCConfig:
		s.OpenIDConnectConfig = oidcSettings(p)
	}

	for _, a := range cfg.Additional {
		prov := Provider{AuthenticationType: string(a.Type())}
		switch c := a.(type) {
		case UserPoolConfig:
			prov.UserPoolConfig = userPoolSettings(c)
		case OIDCConfig:
			prov.OpenIDConnectConfig = oidcSettings(c)
		case APIKeyConfig:
			if s.APIKeyConfig == nil {
				s.APIKeyConfig = &APIKeySettings{Description: c.Description, ExpirationDays: c.ExpirationDays}
			}
		}
		s.AdditionalAuthenticationProviders = append(s.AdditionalAuthenticationProviders, prov)
	}
	return s
}

func userPoolSettings(c UserPoolConfig) *UserPoolSettings {
	var id cfn.Expr = cfn.Ref{Name: AuthUserPoolParam}
	if c.UserPoolID != "" {
		id = cfn.String(c.UserPoolID)
	}
	return &UserPoolSettings{
		UserPoolID: id,
		AWSRegion:  cfn.Ref{Name: naming.RegionPseudoParam},
	}
}

func oidcSettings(c OIDCConfig) *OIDCSettings {
	return &OIDCSettings{
		Issuer:   c.Issuer,
		ClientID: c.ClientID,
		IATTTL:   c.IATTTLMillis,
		AuthTTL:  c.AuthTTLMillis,
	}
}

// SyncSettings is the conflict-detection descriptor of one resolver scope.
type SyncSettings struct {
	ConflictDetection string          `yaml:"ConflictDetection" json:"ConflictDetection"`
	ConflictHandler   string          `yaml:"ConflictHandler" json:"ConflictHandler"`
	LambdaConfig      *LambdaSettings `yaml:"LambdaConflictHandlerConfig,omitempty" json:"LambdaConflictHandlerConfig,omitempty"`
}

// LambdaSettings names the conflict handler function.
type LambdaSettings struct {
	LambdaConflictHandlerArn string `yaml:"LambdaConflictHandlerArn" json:"LambdaConflictHandlerArn"`
}

// ConflictSettings is the conflict-detection descriptor of an API.
type ConflictSettings struct {
	Default  SyncSettings            `yaml:"Default" json:"Default"`
	PerModel map[string]SyncSettings `yaml:"PerModel,omitempty" json:"PerModel,omitempty"`
}

// Settings renders cd as a ConflictSettings descriptor.
func (cd *ConflictDetection) Settings() *ConflictSettings {
	if cd == nil {
		return nil
	}
	out := &ConflictSettings{Default: syncSettings(cd.Default)}
	if len(cd.PerModel) > 0 {
		out.PerModel = make(map[string]SyncSettings, len(cd.PerModel))
		for _, m := range cd.PerModel {
			out.PerModel[m.Model] = syncSettings(m.Resolution)
		}
	}
	return out
}

func syncSettings(r Resolution) SyncSettings {
	s := SyncSettings{ConflictDetection: "VERSION", ConflictHandler: string(r.Strategy)}
	if r.Strategy == LambdaResolution {
		s.LambdaConfig = &LambdaSettings{LambdaConflictHandlerArn: r.LambdaARN}
	}
	return s
}
