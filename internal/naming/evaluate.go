package naming

import (
	"github.com/vk/predictgen/internal/cfn"
)

// Scope returns the evaluation scope a deployment with the given environment
// and stack name would see. An empty env means the environment parameter is
// left at its "NONE" default. apiID stands in for the API's ApiId attribute.
func Scope(env, stackName, apiID string) cfn.Scope {
	envValue := env
	if envValue == "" {
		envValue = NoEnvValue
	}
	return cfn.Scope{
		Refs: map[string]string{
			EnvParam:             envValue,
			StackNamePseudoParam: stackName,
			RegionPseudoParam:    "us-east-1",
			AppSyncAPIIDParam:    apiID,
		},
		Attrs: map[string]string{
			GraphQLAPILogicalID + ".ApiId": apiID,
		},
		Conditions: map[string]bool{
			HasEnvironmentCondition: env != "",
		},
	}
}

// Resolve evaluates a name or ARN expression for one concrete deployment.
func Resolve(e cfn.Expr, env, stackName string) (string, error) {
	return cfn.Eval(e, Scope(env, stackName, "api"))
}
