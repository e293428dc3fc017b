// Package catalog is the table of supported actions.
//
// Each entry maps an action name to the request/response templates of its
// pipeline function, the IAM actions the service role needs for it, the data
// source it runs against and how it chains with its neighbours. A Catalog is
// populated once, frozen, and then handed to the synthesizer; nothing reads a
// package-level table.
package catalog

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"golang.org/x/exp/maps"

	"github.com/vk/predictgen/internal/compileerr"
	"github.com/vk/predictgen/internal/sdl"
	"github.com/vk/predictgen/internal/vtl"
)

// DataSourceKind is the transport a data source uses.
type DataSourceKind string

const (
	HTTP   DataSourceKind = "HTTP"
	Lambda DataSourceKind = "AWS_LAMBDA"
)

// DataSource describes a data source that actions run against.
type DataSource struct {
	ID   string
	Kind DataSourceKind
	// Service is the signing service name and endpoint prefix for HTTP
	// data sources.
	Service string
}

// Entry is the catalog record for one action.
type Entry struct {
	Action   string
	Request  vtl.Node
	Response vtl.Node
	// Permissions are IAM actions granted to the service role.
	Permissions []string
	DataSource  string
	// Inputs are the members of the action's generated input type.
	Inputs []sdl.Field
	// ConsumesPrevious marks actions that read $ctx.prev.result.
	ConsumesPrevious bool
	// ProducesResult marks actions whose result can feed a later stage.
	ProducesResult bool
	// InvokesFunction marks actions served by the generated function.
	InvokesFunction bool
}

// Descriptor is the printed, immutable view of an entry.
type Descriptor struct {
	Name                string   `yaml:"Name" json:"Name"`
	RequestTemplate     string   `yaml:"RequestTemplate" json:"RequestTemplate"`
	ResponseTemplate    string   `yaml:"ResponseTemplate" json:"ResponseTemplate"`
	RequiredPermissions []string `yaml:"RequiredPermissions,omitempty" json:"RequiredPermissions,omitempty"`
}

// Catalog holds the registered entries and data sources.
type Catalog struct {
	entries     map[string]Entry
	dataSources map[string]DataSource
	frozen      bool
}

// New creates an empty, writable Catalog.
func New() *Catalog {
	return &Catalog{
		entries:     make(map[string]Entry),
		dataSources: make(map[string]DataSource),
	}
}

// RegisterDataSource adds a data source. It panics on a duplicate ID or a
// frozen catalog.
func (c *Catalog) RegisterDataSource(ds DataSource) {
	c.mustBeWritable()
	if _, exists := c.dataSources[ds.ID]; exists {
		panic(fmt.Sprintf("data source '%s' already registered", ds.ID))
	}
	slog.Debug("Registering data source.", "id", ds.ID, "kind", ds.Kind)
	c.dataSources[ds.ID] = ds
}

// Register adds an action entry. It panics on a duplicate action, an unknown
// data source, or a frozen catalog.
func (c *Catalog) Register(e Entry) {
	c.mustBeWritable()
	if _, exists := c.entries[e.Action]; exists {
		panic(fmt.Sprintf("action '%s' already registered", e.Action))
	}
	if _, ok := c.dataSources[e.DataSource]; !ok {
		panic(fmt.Sprintf("action '%s' uses unregistered data source '%s'", e.Action, e.DataSource))
	}
	slog.Debug("Registering action.", "action", e.Action, "data_source", e.DataSource)
	c.entries[e.Action] = e
}

// Freeze makes the catalog read-only and returns it.
func (c *Catalog) Freeze() *Catalog {
	c.frozen = true
	return c
}

func (c *Catalog) mustBeWritable() {
	if c.frozen {
		panic("catalog is frozen")
	}
}

// Lookup returns the entry for action, or an UnsupportedActionError.
func (c *Catalog) Lookup(action string) (Entry, error) {
	e, ok := c.entries[action]
	if !ok {
		return Entry{}, &compileerr.UnsupportedActionError{Action: action}
	}
	e.Permissions = slices.Clone(e.Permissions)
	e.Inputs = slices.Clone(e.Inputs)
	return e, nil
}

// Descriptor returns the printed descriptor for action.
func (c *Catalog) Descriptor(action string) (Descriptor, error) {
	e, err := c.Lookup(action)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{
		Name:                e.Action,
		RequestTemplate:     vtl.Print(e.Request),
		ResponseTemplate:    vtl.Print(e.Response),
		RequiredPermissions: e.Permissions,
	}, nil
}

// DataSource returns the data source registered under id.
func (c *Catalog) DataSource(id string) (DataSource, bool) {
	ds, ok := c.dataSources[id]
	return ds, ok
}

// InputFields returns the input members of action's generated input type.
func (c *Catalog) InputFields(action string) ([]sdl.Field, bool) {
	e, ok := c.entries[action]
	if !ok {
		return nil, false
	}
	return slices.Clone(e.Inputs), true
}

// Actions lists the registered action names in sorted order.
func (c *Catalog) Actions() []string {
	names := maps.Keys(c.entries)
	sort.Strings(names)
	return names
}
