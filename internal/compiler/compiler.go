// Package compiler runs one compilation: it walks the annotated schema,
// drives the synthesizer over every field carrying the predictions directive
// and assembles the output Document.
//
// A Compiler holds only the frozen action catalog, so one Compiler may run
// any number of compilations, concurrently or not. Each compilation gets a
// fresh synthesis context. On failure no document is returned.
package compiler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vk/predictgen/internal/apiconfig"
	"github.com/vk/predictgen/internal/catalog"
	"github.com/vk/predictgen/internal/cfn"
	"github.com/vk/predictgen/internal/compileerr"
	"github.com/vk/predictgen/internal/config"
	"github.com/vk/predictgen/internal/ctxlog"
	"github.com/vk/predictgen/internal/directive"
	"github.com/vk/predictgen/internal/naming"
	"github.com/vk/predictgen/internal/synth"
)

// Options are the per-compilation inputs that do not come from the schema.
type Options struct {
	// Env is the deployment environment. Empty means none is configured.
	Env string
	// StackName is the stack-name token the storage hash is derived from.
	StackName string
	// Bucket overrides the storage bucket of the API settings.
	Bucket string
	// Evaluate fills Document.Evaluated for Env and StackName.
	Evaluate bool
}

// Compiler compiles schemas against a frozen catalog.
type Compiler struct {
	catalog *catalog.Catalog
}

// New returns a Compiler using cat. A nil cat selects catalog.Default().
func New(cat *catalog.Catalog) *Compiler {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Compiler{catalog: cat}
}

type annotatedField struct {
	at  compileerr.Location
	cfg *directive.Config
}

// Compile compiles model. Identical inputs always yield identical documents.
func (c *Compiler) Compile(ctx context.Context, model *config.Model, opts Options) (*Document, error) {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	if model == nil {
		model = &config.Model{}
	}
	api := model.API
	if api == nil {
		api = &config.API{}
	}

	fields, err := c.extract(model.Schema)
	if err != nil {
		return nil, err
	}

	bucket := opts.Bucket
	if bucket == "" {
		bucket = api.Storage
	}
	if len(fields) > 0 && bucket == "" {
		return nil, &compileerr.ConfigError{Variant: "storage", Missing: []string{"storage"}}
	}

	env := naming.Env{Name: opts.Env}
	sctx := synth.NewContext(ctx, c.catalog, env, bucket)

	for _, f := range fields {
		if err := sctx.Plan(f.at, f.cfg.Actions); err != nil {
			return nil, err
		}
	}
	if len(fields) > 0 {
		if err := sctx.DefineInfrastructure(); err != nil {
			return nil, err
		}
	}

	doc := &Document{
		Parameters: parameters(env),
	}
	var fragments []string
	for _, f := range fields {
		stages, err := sctx.SynthesizeChain(f.at, f.cfg.Actions)
		if err != nil {
			return nil, err
		}
		resolver, err := sctx.DefineResolver(f.at.Type, f.at.Field, stages)
		if err != nil {
			return nil, err
		}
		doc.Resolvers = append(doc.Resolvers, resolver)

		if f.cfg.Auth != nil {
			if doc.FieldAuth == nil {
				doc.FieldAuth = make(map[string]*apiconfig.AuthSettings)
			}
			doc.FieldAuth[f.at.String()] = apiconfig.AdvancedSettings(f.cfg.Auth)
		}
		if s := f.cfg.FilterSchema.String(); s != "" {
			fragments = append(fragments, s)
		}
	}
	doc.Schema = strings.Join(fragments, "\n")

	resources, err := sctx.Resources()
	if err != nil {
		return nil, err
	}
	doc.Resources = resources

	if env.Configured() {
		doc.Conditions = map[string]cfn.Expr{
			naming.HasEnvironmentCondition: cfn.Not{Cond: cfn.Equals{
				Left:  cfn.Ref{Name: naming.EnvParam},
				Right: cfn.String(naming.NoEnvValue),
			}},
		}
	}

	auth, err := apiconfig.DecodeAuth(compileerr.Location{}, api.Auth)
	if err != nil {
		return nil, err
	}
	doc.Auth = apiconfig.AdvancedSettings(auth)
	if usesDefaultUserPool(auth) || anyUsesDefaultUserPool(fieldsAuth(fields)) {
		doc.Parameters[apiconfig.AuthUserPoolParam] = Parameter{Type: "String", Description: "The user pool the API authorizes against."}
	}

	conflict, err := apiconfig.DecodeConflict(api.Conflict)
	if err != nil {
		return nil, err
	}
	doc.ConflictResolution = conflict.Settings()

	if opts.Evaluate {
		if doc.Evaluated, err = evaluate(doc.Resources, bucket, opts); err != nil {
			return nil, err
		}
	}

	logger.Info("Compiled schema.",
		"api", api.Name,
		"env", opts.Env,
		"resolvers", len(doc.Resolvers),
		"resources", len(doc.Resources),
		"policies", sctx.Policies().Len(),
		"duration", time.Since(start),
	)
	return doc, nil
}

// extract collects the predictions directives in declaration order.
func (c *Compiler) extract(schema *config.Schema) ([]annotatedField, error) {
	if schema == nil {
		return nil, nil
	}
	var out []annotatedField
	for _, t := range schema.Types {
		for _, f := range t.Fields {
			d := f.Directive(directive.Name)
			if d == nil {
				continue
			}
			cfg, err := directive.Extract(t.Name, f.Name, d, c.catalog)
			if err != nil {
				return nil, err
			}
			out = append(out, annotatedField{at: compileerr.Location{Type: t.Name, Field: f.Name}, cfg: cfg})
		}
	}
	return out, nil
}

func parameters(env naming.Env) map[string]Parameter {
	envParam := Parameter{Type: "String", Default: naming.NoEnvValue}
	if env.Configured() {
		envParam.Default = env.Name
	}
	return map[string]Parameter{
		naming.EnvParam:               envParam,
		naming.AppSyncAPIIDParam:      {Type: "String", Description: "The id of the AppSync API associated with this project."},
		naming.DeploymentBucketParam:  {Type: "String", Description: "The S3 bucket containing all deployment assets for the project."},
		naming.DeploymentRootKeyParam: {Type: "String", Description: "An S3 key relative to the S3DeploymentBucket that points to the root of the deployment directory."},
	}
}

func fieldsAuth(fields []annotatedField) []*apiconfig.AuthConfig {
	var out []*apiconfig.AuthConfig
	for _, f := range fields {
		if f.cfg.Auth != nil {
			out = append(out, f.cfg.Auth)
		}
	}
	return out
}

func anyUsesDefaultUserPool(cfgs []*apiconfig.AuthConfig) bool {
	for _, cfg := range cfgs {
		if usesDefaultUserPool(cfg) {
			return true
		}
	}
	return false
}

func usesDefaultUserPool(cfg *apiconfig.AuthConfig) bool {
	if cfg == nil {
		return false
	}
	variants := append([]apiconfig.AuthTypeConfig{cfg.Primary}, cfg.Additional...)
	for _, v := range variants {
		if up, ok := v.(apiconfig.UserPoolConfig); ok && up.UserPoolID == "" {
			return true
		}
	}
	return false
}

// evaluate resolves the storage ARN and every env-dependent name for one
// concrete deployment.
func evaluate(resources Resources, bucket string, opts Options) (map[string]string, error) {
	out := make(map[string]string)
	if bucket != "" {
		arn, err := naming.Resolve(naming.ResolveStorageArn(bucket, opts.Env != ""), opts.Env, opts.StackName)
		if err != nil {
			return nil, fmt.Errorf("evaluating storage ARN: %w", err)
		}
		out["StorageArn"] = arn
	}
	for _, r := range resources {
		for _, prop := range []string{"RoleName", "FunctionName"} {
			e, ok := r.Properties[prop].(cfn.Expr)
			if !ok {
				continue
			}
			v, err := naming.Resolve(e, opts.Env, opts.StackName)
			if err != nil {
				return nil, fmt.Errorf("evaluating %s.%s: %w", r.LogicalID, prop, err)
			}
			out[r.LogicalID+"."+prop] = v
		}
	}
	return out, nil
}
