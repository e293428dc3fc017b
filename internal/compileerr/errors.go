// Package compileerr defines the terminal errors a compilation can fail with.
//
// Every error here aborts the whole compilation. None of them is retried or
// recovered from, and the compiler never returns a partial document alongside
// one. Callers match them with errors.As.
package compileerr

import (
	"errors"
	"fmt"
	"strings"
)

// Location names the type/field a directive was attached to. It is empty for
// API-level settings that do not belong to any field.
type Location struct {
	Type  string
	Field string
}

func (l Location) String() string {
	if l.Type == "" && l.Field == "" {
		return "api"
	}
	return l.Type + "." + l.Field
}

// ConfigError reports a selected variant that is missing settings it cannot
// do without, or a directive argument with the wrong shape.
type ConfigError struct {
	At      Location
	Variant string
	Missing []string
	Err     error
}

func (e *ConfigError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: invalid %s configuration", e.At, e.Variant)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&sb, ": missing %s", strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// UnsupportedActionError reports an action name the catalog has no entry for.
type UnsupportedActionError struct {
	At     Location
	Action string
}

func (e *UnsupportedActionError) Error() string {
	return fmt.Sprintf("%s: unsupported action %q", e.At, e.Action)
}

// DuplicateAuthTypeError reports an auth variant configured more than once.
type DuplicateAuthTypeError struct {
	Variant string
}

func (e *DuplicateAuthTypeError) Error() string {
	return fmt.Sprintf("auth type %s is configured more than once", e.Variant)
}

// DependencyResolutionError reports a reference to a resource that was never
// defined in the current compilation.
type DependencyResolutionError struct {
	Missing  string
	Referrer string
	Err      error
}

func (e *DependencyResolutionError) Error() string {
	msg := fmt.Sprintf("%s references undefined resource %q", e.Referrer, e.Missing)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DependencyResolutionError) Unwrap() error { return e.Err }

// IsConfig reports whether err (or any error in its chain) is a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsUnsupportedAction reports whether err (or any error in its chain) is an
// UnsupportedActionError.
func IsUnsupportedAction(err error) bool {
	var ue *UnsupportedActionError
	return errors.As(err, &ue)
}

// IsDuplicateAuthType reports whether err (or any error in its chain) is a
// DuplicateAuthTypeError.
func IsDuplicateAuthType(err error) bool {
	var de *DuplicateAuthTypeError
	return errors.As(err, &de)
}

// IsDependencyResolution reports whether err (or any error in its chain) is
// a DependencyResolutionError.
func IsDependencyResolution(err error) bool {
	var de *DependencyResolutionError
	return errors.As(err, &de)
}
