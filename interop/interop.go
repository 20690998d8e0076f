// Package interop converts tools from foreign ecosystems into native tools
// that agents can register and call.
package interop

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"

	"github.com/agentis-ai/agentis/pkg/metricskey"
	"github.com/agentis-ai/agentis/tools"
)

var logger = xlog.NewPackageLogger("github.com/agentis-ai/agentis", "interop")

// Type identifies a foreign tool ecosystem.
type Type string

const (
	// TypeLangChain converts langchaingo tools.
	TypeLangChain Type = "langchain"
	// TypeMCP converts tools exposed by an MCP server.
	TypeMCP Type = "mcp"
	// TypeFuncs converts plain Go functions.
	TypeFuncs Type = "funcs"
)

var (
	// ErrUnsupportedType is returned when no converter is registered for the
	// requested type.
	ErrUnsupportedType = errors.New("interop: unsupported tool type")
	// ErrNotConvertible is returned when a converter cannot handle the given
	// tool value.
	ErrNotConvertible = errors.New("interop: tool is not convertible")
)

// Converter turns a foreign tool value into a native tool.
type Converter interface {
	// Type returns the ecosystem this converter handles.
	Type() Type
	// CanConvert reports whether the converter can handle the given value.
	CanConvert(tool any) bool
	// Convert returns a native tool wrapping the given value.
	Convert(tool any) (tools.ITool, error)
}

// Registry holds converters keyed by their type.
type Registry struct {
	mu         sync.RWMutex
	converters map[Type]Converter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		converters: make(map[Type]Converter),
	}
}

// Register adds a converter, replacing any converter of the same type.
func (r *Registry) Register(c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.converters[c.Type()] = c
}

// Types returns the registered types, sorted.
func (r *Registry) Types() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]Type, 0, len(r.converters))
	for typ := range r.converters {
		list = append(list, typ)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

// Convert converts the given foreign tool using the converter registered for
// typ.
func (r *Registry) Convert(tool any, typ Type) (tools.ITool, error) {
	r.mu.RLock()
	c, ok := r.converters[typ]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.WithMessagef(ErrUnsupportedType, "%q", typ)
	}
	if !c.CanConvert(tool) {
		return nil, errors.WithMessagef(ErrNotConvertible, "type %q: %T", typ, tool)
	}
	converted, err := c.Convert(tool)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to convert %T", tool)
	}
	metricskey.StatsToolsConverted.IncrCounter(1, string(typ))
	logger.KV(xlog.DEBUG, "converted", typ, "tool", converted.Name())
	return converted, nil
}

// ConvertAny tries every registered converter and returns the first native
// tool produced.
func (r *Registry) ConvertAny(tool any) (tools.ITool, error) {
	for _, typ := range r.Types() {
		r.mu.RLock()
		c := r.converters[typ]
		r.mu.RUnlock()
		if c.CanConvert(tool) {
			return r.Convert(tool, typ)
		}
	}
	return nil, errors.WithMessagef(ErrNotConvertible, "%T", tool)
}

// defaultRegistry holds converters registered by the converter packages.
var defaultRegistry = NewRegistry()

// Register adds a converter to the default registry.
func Register(c Converter) {
	defaultRegistry.Register(c)
}

// Convert converts a foreign tool using the default registry.
func Convert(tool any, typ Type) (tools.ITool, error) {
	return defaultRegistry.Convert(tool, typ)
}

// ConvertAny converts a foreign tool using the default registry, trying every
// registered converter.
func ConvertAny(tool any) (tools.ITool, error) {
	return defaultRegistry.ConvertAny(tool)
}

// ConvertTools converts a batch of foreign tools of the same type.
func ConvertTools(foreign []any, typ Type) ([]tools.ITool, error) {
	list := make([]tools.ITool, 0, len(foreign))
	for _, t := range foreign {
		converted, err := Convert(t, typ)
		if err != nil {
			return nil, err
		}
		list = append(list, converted)
	}
	return list, nil
}
