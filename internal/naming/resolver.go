// Package naming computes environment-aware resource names and storage ARNs.
//
// Everything here is a pure function of its inputs. Names that depend on the
// deployment environment are returned as a two-branch cfn.If on the
// HasEnvironmentParameter condition, so both forms survive into the compiled
// document.
package naming

import (
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"

	"github.com/vk/predictgen/internal/cfn"
)

var (
	envRefRegex      = regexp.MustCompile(`\$\{env\}`)
	envSegmentRegex  = regexp.MustCompile(`-?\$\{env\}`)
	placeholderRegex = regexp.MustCompile(`\$\{[A-Za-z0-9_:.]+\}`)
)

// Env describes the deployment environment of one compilation.
type Env struct {
	Name string
}

// Configured reports whether an environment parameter is in use.
func (e Env) Configured() bool {
	return e.Name != ""
}

// ResolveName joins baseTokens with the separator. When envConfigured it
// returns the two-branch form whose true branch appends the env parameter.
func ResolveName(baseTokens []cfn.Expr, envConfigured bool) cfn.Expr {
	plain := cfn.Join{Sep: ResourceNameSeparator, Parts: baseTokens}
	if !envConfigured {
		return plain
	}
	withEnv := make([]cfn.Expr, 0, len(baseTokens)+1)
	withEnv = append(withEnv, baseTokens...)
	withEnv = append(withEnv, cfn.Ref{Name: EnvParam})
	return cfn.If{
		Cond: HasEnvironmentCondition,
		Then: cfn.Join{Sep: ResourceNameSeparator, Parts: withEnv},
		Else: plain,
	}
}

// ResolveStorageArn returns the object ARN for every key in bucket.
//
// The stack hash is always substituted. When envConfigured and bucket embeds
// the env placeholder, the result is a two-branch expression: the live env
// value in one branch, the placeholder segment stripped in the other.
func ResolveStorageArn(bucket string, envConfigured bool) cfn.Expr {
	return withEnvBranches(bucket, envConfigured, storageArn)
}

// StashBucket returns the template line that stores the resolved bucket name
// in the per-request stash, built with the same two-branch rule as
// ResolveStorageArn.
func StashBucket(bucket string, envConfigured bool) cfn.Expr {
	return withEnvBranches(bucket, envConfigured, func(name string) string {
		return `$util.qr($ctx.stash.put("s3Bucket", "` + name + `"))`
	})
}

func withEnvBranches(bucket string, envConfigured bool, render func(string) string) cfn.Expr {
	stripped := RemoveEnvReference(bucket)
	if !envConfigured || !ReferencesEnv(bucket) {
		return sub(render(stripped), false)
	}
	return cfn.If{
		Cond: HasEnvironmentCondition,
		Then: sub(render(bucket), true),
		Else: sub(render(stripped), false),
	}
}

// sub wraps template in an Fn::Sub carrying only the substitutions it uses.
// A template without placeholders is returned as a literal.
func sub(template string, withEnv bool) cfn.Expr {
	if !placeholderRegex.MatchString(template) {
		return cfn.String(template)
	}
	vars := map[string]cfn.Expr{}
	if strings.Contains(template, StackHashPlaceholder) {
		vars["hash"] = StackHash()
	}
	if withEnv {
		vars["env"] = cfn.Ref{Name: EnvParam}
	}
	return cfn.Sub{Template: template, Vars: vars}
}

// StackHash is the short hash token derived from the stack name.
func StackHash() cfn.Expr {
	return cfn.Select{
		Index: StackNameHashTokenOffset,
		List: cfn.Split{
			Sep:    ResourceNameSeparator,
			Source: cfn.Ref{Name: StackNamePseudoParam},
		},
	}
}

func storageArn(bucket string) string {
	return arn.ARN{
		Partition: "aws",
		Service:   "s3",
		Resource:  bucket + "/*",
	}.String()
}

// ReferencesEnv reports whether value embeds the env placeholder.
func ReferencesEnv(value string) bool {
	return envRefRegex.MatchString(value)
}

// RemoveEnvReference strips the env placeholder, together with the separator
// in front of it, from value.
func RemoveEnvReference(value string) string {
	return envSegmentRegex.ReplaceAllString(value, "")
}
