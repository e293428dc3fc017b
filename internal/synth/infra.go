package synth

import (
	"fmt"
	"slices"

	"github.com/vk/predictgen/internal/catalog"
	"github.com/vk/predictgen/internal/cfn"
	"github.com/vk/predictgen/internal/compileerr"
	"github.com/vk/predictgen/internal/naming"
)

// Resource types.
const (
	RoleType       = "AWS::IAM::Role"
	DataSourceType = "AWS::AppSync::DataSource"
	FunctionType   = "AWS::AppSync::FunctionConfiguration"
	ResolverType   = "AWS::AppSync::Resolver"
	LambdaType     = "AWS::Lambda::Function"
)

const mappingTemplateVersion = "2018-05-29"

// Plan validates the action chain requested by at and records what it
// needs: policies, data sources and whether the generated function is used.
// It must run for every field before DefineInfrastructure.
func (c *Context) Plan(at compileerr.Location, actions []string) error {
	var prev *catalog.Entry
	for i, action := range actions {
		if slices.Contains(actions[:i], action) {
			return &compileerr.ConfigError{
				At:      at,
				Variant: "predictions",
				Err:     fmt.Errorf("action %q requested more than once", action),
			}
		}
		entry, err := c.catalog.Lookup(action)
		if err != nil {
			return &compileerr.UnsupportedActionError{At: at, Action: action}
		}
		if prev != nil && entry.ConsumesPrevious && !prev.ProducesResult {
			return &compileerr.DependencyResolutionError{
				Missing:  naming.FunctionID(prev.Action) + ".result",
				Referrer: naming.FunctionID(action),
				Err:      fmt.Errorf("%s produces no result for %s to consume", prev.Action, action),
			}
		}

		c.policies.Accumulate(action, entry.Permissions)
		if entry.InvokesFunction {
			c.needsLambda = true
			c.policies.AccumulateInvoke()
		}
		if !slices.Contains(c.dataSources, entry.DataSource) {
			c.dataSources = append(c.dataSources, entry.DataSource)
		}
		prev = &entry
	}
	c.logger.Debug("Planned actions.", "at", at.String(), "actions", actions)
	return nil
}

// DefineInfrastructure defines the service role, the generated function
// with its role when any planned action invokes it, and every planned data
// source.
func (c *Context) DefineInfrastructure() error {
	if err := c.Define(c.serviceRole()); err != nil {
		return err
	}
	if c.needsLambda {
		if err := c.Define(c.lambdaRole()); err != nil {
			return err
		}
		if err := c.Define(c.lambda()); err != nil {
			return err
		}
	}
	for _, id := range c.dataSources {
		ds, ok := c.catalog.DataSource(id)
		if !ok {
			return &compileerr.DependencyResolutionError{Missing: id, Referrer: "catalog"}
		}
		if err := c.Define(dataSource(ds)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) envName(prefix string) cfn.Expr {
	return naming.ResolveName([]cfn.Expr{
		cfn.String(prefix),
		cfn.GetAtt{Resource: naming.GraphQLAPILogicalID, Attribute: "ApiId"},
	}, c.env.Configured())
}

func assumeRole(service string) map[string]any {
	return map[string]any{
		"Version":   policyVersion,
		"Statement": []any{map[string]any{
			"Effect":    "Allow",
			"Principal": map[string]any{"Service": service},
			"Action":    "sts:AssumeRole",
		}},
	}
}

func (c *Context) storagePolicy(name string, actions ...string) PolicyDocument {
	return PolicyDocument{
		Name: name,
		Statements: []Statement{{
			Action:   actions,
			Effect:   "Allow",
			Resource: naming.ResolveStorageArn(c.bucket, c.env.Configured()),
		}},
	}
}

func (c *Context) serviceRole() Resource {
	policies := []any{c.storagePolicy(StorageAccessPolicy, "s3:GetObject", "s3:PutObject").Property()}
	for _, doc := range c.policies.Documents() {
		policies = append(policies, doc.Property())
	}
	var deps []string
	if c.policies.HasInvoke() {
		// The invoke policy grants on the function's ARN.
		deps = append(deps, naming.LambdaID)
	}
	return Resource{
		LogicalID: naming.IAMRoleID,
		Type:      RoleType,
		Properties: map[string]any{
			"RoleName":                 c.envName(naming.IAMRoleName),
			"AssumeRolePolicyDocument": assumeRole("appsync.amazonaws.com"),
			"Policies":                 policies,
		},
		DependsOn: deps,
	}
}

func (c *Context) lambdaRole() Resource {
	polly := PolicyDocument{
		Name: "PollyAccess",
		Statements: []Statement{{
			Action:   []string{"polly:SynthesizeSpeech"},
			Effect:   "Allow",
			Resource: cfn.String("*"),
		}},
	}
	return Resource{
		LogicalID: naming.LambdaIAMRoleID,
		Type:      RoleType,
		Properties: map[string]any{
			"RoleName":                 c.envName(naming.LambdaIAMRoleName),
			"AssumeRolePolicyDocument": assumeRole("lambda.amazonaws.com"),
			"Policies":                 []any{
				c.storagePolicy("StorageAccess", "s3:PutObject", "s3:GetObject").Property(),
				polly.Property(),
			},
		},
	}
}

func (c *Context) lambda() Resource {
	return Resource{
		LogicalID: naming.LambdaID,
		Type:      LambdaType,
		Properties: map[string]any{
			"Code": map[string]any{
				"S3Bucket": cfn.Ref{Name: naming.DeploymentBucketParam},
				"S3Key":    cfn.Join{Sep: "/", Parts: []cfn.Expr{
					cfn.Ref{Name: naming.DeploymentRootKeyParam},
					cfn.String("functions"),
					cfn.Join{Sep: ".", Parts: []cfn.Expr{cfn.String(naming.LambdaID), cfn.String("zip")}},
				}},
			},
			"FunctionName": c.envName(naming.LambdaName),
			"Handler":      naming.LambdaHandler,
			"Role":         cfn.GetAtt{Resource: naming.LambdaIAMRoleID, Attribute: "Arn"},
			"Runtime":      naming.LambdaRuntime,
		},
		DependsOn: []string{naming.LambdaIAMRoleID},
	}
}

func dataSource(ds catalog.DataSource) Resource {
	props := map[string]any{
		"ApiId":          cfn.Ref{Name: naming.AppSyncAPIIDParam},
		"Name":           ds.ID,
		"Type":           string(ds.Kind),
		"ServiceRoleArn": cfn.GetAtt{Resource: naming.IAMRoleID, Attribute: "Arn"},
	}
	deps := []string{naming.IAMRoleID}
	switch ds.Kind {
	case catalog.HTTP:
		props["HttpConfig"] = map[string]any{
			"Endpoint":            cfn.Sub{Template: "https://" + ds.Service + ".${AWS::Region}.amazonaws.com"},
			"AuthorizationConfig": map[string]any{
				"AuthorizationType": "AWS_IAM",
				"AwsIamConfig":      map[string]any{
					"SigningRegion":      cfn.Sub{Template: "${AWS::Region}"},
					"SigningServiceName": ds.Service,
				},
			},
		}
	case catalog.Lambda:
		props["LambdaConfig"] = map[string]any{
			"LambdaFunctionArn": cfn.GetAtt{Resource: naming.LambdaID, Attribute: "Arn"},
		}
		deps = append(deps, naming.LambdaID)
	}
	return Resource{LogicalID: ds.ID, Type: DataSourceType, Properties: props, DependsOn: deps}
}
