package synth

import (
	"github.com/vk/predictgen/internal/cfn"
	"github.com/vk/predictgen/internal/naming"
)

const policyVersion = "2012-10-17"

// Policy names that are not derived from an action.
const (
	StorageAccessPolicy = "PredictionsStorageAccess"
	LambdaAccessPolicy  = "PredictionsLambdaAccess"
)

// Statement is one permission statement.
type Statement struct {
	Action   []string
	Effect   string
	Resource cfn.Expr
}

// PolicyDocument is a named inline role policy.
type PolicyDocument struct {
	Name       string
	Statements []Statement
}

// Property renders p as an inline policy of a role resource.
func (p PolicyDocument) Property() map[string]any {
	statements := make([]any, 0, len(p.Statements))
	for _, s := range p.Statements {
		statements = append(statements, map[string]any{
			"Action":   s.Action,
			"Effect":   s.Effect,
			"Resource": s.Resource,
		})
	}
	return map[string]any{
		"PolicyName":     p.Name,
		"PolicyDocument": map[string]any{
			"Version":   policyVersion,
			"Statement": statements,
		},
	}
}

// ActionPolicyName is the name of the policy granting action's permissions.
func ActionPolicyName(action string) string {
	return action + "Access"
}

// Policies accumulates role policies keyed by the action that produced them.
// Documents keep insertion order.
type Policies struct {
	byKey map[string]PolicyDocument
	order []string
}

const invokeKey = "\x00invoke"

// NewPolicies returns an empty accumulator.
func NewPolicies() *Policies {
	return &Policies{byKey: make(map[string]PolicyDocument)}
}

// Accumulate adds the policy for action unless one exists already. Actions
// without permissions add nothing.
func (p *Policies) Accumulate(action string, permissions []string) *Policies {
	if _, ok := p.byKey[action]; ok || len(permissions) == 0 {
		return p
	}
	p.add(action, PolicyDocument{
		Name: ActionPolicyName(action),
		Statements: []Statement{{
			Action:   append([]string(nil), permissions...),
			Effect:   "Allow",
			Resource: cfn.String("*"),
		}},
	})
	return p
}

// AccumulateInvoke adds the policy that lets the service role invoke the
// generated function. It is added at most once.
func (p *Policies) AccumulateInvoke() *Policies {
	if _, ok := p.byKey[invokeKey]; ok {
		return p
	}
	p.add(invokeKey, PolicyDocument{
		Name: LambdaAccessPolicy,
		Statements: []Statement{{
			Action:   []string{"lambda:InvokeFunction"},
			Effect:   "Allow",
			Resource: cfn.GetAtt{Resource: naming.LambdaID, Attribute: "Arn"},
		}},
	})
	return p
}

func (p *Policies) add(key string, doc PolicyDocument) {
	p.byKey[key] = doc
	p.order = append(p.order, key)
}

// Len returns the number of accumulated documents.
func (p *Policies) Len() int { return len(p.order) }

// Has reports whether a document exists for action.
func (p *Policies) Has(action string) bool {
	_, ok := p.byKey[action]
	return ok
}

// HasInvoke reports whether the invoke policy was added.
func (p *Policies) HasInvoke() bool { return p.Has(invokeKey) }

// Documents returns the accumulated documents in insertion order.
func (p *Policies) Documents() []PolicyDocument {
	out := make([]PolicyDocument, 0, len(p.order))
	for _, k := range p.order {
		out = append(out, p.byKey[k])
	}
	return out
}
