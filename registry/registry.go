// ABOUTME: Registry resolves a dotted handler name ("a.b.c.name") to an invokable
// ABOUTME: Handler, the sole module-system coupling the core engine has (spec.md §4.3).
package registry

import "fmt"

// Flavor identifies which of the three calling conventions a handler uses.
type Flavor int

const (
	FlavorSimple Flavor = iota
	FlavorSubmitter
	FlavorMutable
)

func (f Flavor) String() string {
	switch f {
	case FlavorSimple:
		return "simple"
	case FlavorSubmitter:
		return "submitter"
	case FlavorMutable:
		return "mutable"
	default:
		return "unknown"
	}
}

// Handler is what the registry hands back for a resolved name. The
// executor (package jobexec) always calls through Invoke — the broadest
// signature — and the adapter wrapper that produced Invoke discards
// whatever its flavor doesn't need. This mirrors
// original_source/antz/infrastructure/config/job_decorators.py: three thin
// decorators narrowing one broad call down to each flavor's declared
// shape, rather than the executor special-casing three call sites.
type Handler struct {
	Name   string
	Flavor Flavor
	Invoke InvokeFunc
}

// InvokeFunc is the single broadened signature every flavor adapts to.
// jobexec fills in the same Args regardless of flavor (jobexec.Run leaves
// Pipeline nil); an adapter built by Simple, SubmitterHandler,
// MutableHandler or MutableHandlerWithPipeline in adapt.go discards what
// its underlying function doesn't declare.
type InvokeFunc func(Args) Result

// Args bundles everything a handler invocation might need, widest first.
type Args struct {
	Parameters Parameters
	Submit     SubmitFunc
	Scope      Scope
	Pipeline   PipelineNode
	Logger     Logger
}

// Result is what every flavor's adapter normalizes its return value to.
// Status is always populated; Scope/Pipeline are only meaningful for the
// mutable flavor (jobexec.RunMutable reads them, jobexec.Run ignores them).
type Result struct {
	Status   StatusCode
	Scope    Scope
	Pipeline PipelineNode
}

// The types below are declared as narrow interfaces/aliases rather than
// importing package config directly, so that registering a handler never
// requires importing the config package just to describe its shape; a
// handler author only needs to know a Scope is a map and a PipelineNode is
// an opaque value it can hand back unchanged or request a rewrite of.
type (
	Parameters   = map[string]any
	Scope        = map[string]any
	PipelineNode = any
	StatusCode   = int
	SubmitFunc   = func(cfg any) error
	Logger       interface {
		Printf(format string, args ...any)
	}
)

// Registry maps dotted handler names to Handlers.
type Registry struct {
	handlers map[string]Handler
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds h under its Name, replacing any existing registration.
func (r *Registry) Register(h Handler) {
	r.handlers[h.Name] = h
}

// Get returns the Handler registered for name.
func (r *Registry) Get(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Resolve confirms name is registered, returning an error otherwise. This
// is what config.ValidateHandlers calls at construction time so an
// unresolvable dotted name is a configuration error, never an execution
// surprise (spec.md §3, §4.3).
func (r *Registry) Resolve(name string) error {
	if _, ok := r.handlers[name]; !ok {
		return fmt.Errorf("handler %q not found", name)
	}
	return nil
}
