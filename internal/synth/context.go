// Package synth turns validated directive configurations into resource
// descriptors and resolver artifacts.
//
// All state of one compilation lives in a Context: the defined resources, the
// dependency graph over them, and the accumulated role policies. A Context is
// created per compilation and discarded afterwards.
package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vk/predictgen/internal/catalog"
	"github.com/vk/predictgen/internal/compileerr"
	"github.com/vk/predictgen/internal/ctxlog"
	"github.com/vk/predictgen/internal/dag"
	"github.com/vk/predictgen/internal/naming"
)

// ResourceRef is the logical ID of a role, data source, function or
// resolver. Holding one does not define the resource.
type ResourceRef string

// Resource is one infrastructure resource descriptor.
type Resource struct {
	LogicalID  string         `yaml:"-" json:"-"`
	Type       string         `yaml:"Type" json:"Type"`
	Properties map[string]any `yaml:"Properties" json:"Properties"`
	DependsOn  []string       `yaml:"DependsOn,omitempty" json:"DependsOn,omitempty"`
}

// Context is the private synthesis state of one compilation.
type Context struct {
	catalog   *catalog.Catalog
	env       naming.Env
	bucket    string
	logger    *slog.Logger
	graph     *dag.Graph
	resources map[string]*Resource
	policies  *Policies
	// dataSources lists the data sources the planned actions run against,
	// in first-use order.
	dataSources []string
	// resolvers maps a resolver logical ID to the field that produced it.
	resolvers   map[string]compileerr.Location
	needsLambda bool
	linked      bool
}

// NewContext creates the synthesis state for one compilation against bucket
// in env.
func NewContext(ctx context.Context, cat *catalog.Catalog, env naming.Env, bucket string) *Context {
	return &Context{
		catalog:   cat,
		env:       env,
		bucket:    bucket,
		logger:    ctxlog.FromContext(ctx),
		graph:     dag.New(),
		resources: make(map[string]*Resource),
		policies:  NewPolicies(),
		resolvers: make(map[string]compileerr.Location),
	}
}

// Env returns the environment the context compiles for.
func (c *Context) Env() naming.Env { return c.env }

// Bucket returns the storage bucket expression.
func (c *Context) Bucket() string { return c.bucket }

// Policies returns the policies accumulated so far.
func (c *Context) Policies() *Policies { return c.policies }

// Define registers r. Defining the same logical ID twice is an error.
func (c *Context) Define(r Resource) error {
	if r.LogicalID == "" {
		return errors.New("resource without logical ID")
	}
	if _, exists := c.resources[r.LogicalID]; exists {
		return fmt.Errorf("resource %q defined more than once", r.LogicalID)
	}
	c.logger.Debug("Defining resource.", "id", r.LogicalID, "type", r.Type, "depends_on", r.DependsOn)
	res := r
	c.resources[r.LogicalID] = &res
	c.graph.AddNode(r.LogicalID)
	c.linked = false
	return nil
}

// Defined reports whether ref names a resource defined in this compilation.
func (c *Context) Defined(ref ResourceRef) bool {
	return c.graph.Has(string(ref))
}

// link adds one edge per DependsOn entry. A dependency on an undefined
// resource is a DependencyResolutionError naming the referrer.
func (c *Context) link() error {
	if c.linked {
		return nil
	}
	order, err := c.graph.TopologicalOrder()
	if err != nil {
		return err
	}
	for _, id := range order {
		for _, dep := range c.resources[id].DependsOn {
			if err := c.graph.AddEdge(dep, id); err != nil {
				if errors.Is(err, dag.ErrNodeNotFound) {
					return &compileerr.DependencyResolutionError{Missing: dep, Referrer: id}
				}
				return fmt.Errorf("linking %s: %w", id, err)
			}
		}
	}
	c.linked = true
	return nil
}

// Resources returns every defined resource, dependencies first. Identical
// compilations return identical orders.
func (c *Context) Resources() ([]Resource, error) {
	if err := c.link(); err != nil {
		return nil, err
	}
	order, err := c.graph.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("ordering resources: %w", err)
	}
	out := make([]Resource, 0, len(order))
	for _, id := range order {
		out = append(out, *c.resources[id])
	}
	return out, nil
}
