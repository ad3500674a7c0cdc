package allowlists

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Tables is the data form of a Registry.
type Tables struct {
	Builtins             []string `json:"builtins"`
	InsecureFunctions    []string `json:"insecure_functions"`
	DisallowedAttributes []string `json:"disallowed_attributes"`
	Imports              []string `json:"imports"`
}

// Registry is the process-wide allow-list. It is immutable after New returns;
// widening it means shipping a new config, not calling a method.
type Registry struct {
	builtins   map[string]struct{}
	insecure   map[string]struct{}
	attributes map[string]struct{}
	// dotted entries, matched as path suffixes
	dottedAttributes []string
	imports          map[string]struct{}
}

var ErrInvalidTables = errors.New("invalid allow-list tables")

func New(tables Tables) (*Registry, error) {
	for name, names := range map[string][]string{
		"builtins":              tables.Builtins,
		"insecure_functions":    tables.InsecureFunctions,
		"disallowed_attributes": tables.DisallowedAttributes,
		"imports":               tables.Imports,
	} {
		for _, n := range names {
			if strings.TrimSpace(n) == "" || n != strings.TrimSpace(n) {
				return nil, fmt.Errorf("%w: %s: bad entry %q", ErrInvalidTables, name, n)
			}
		}
	}

	if overlap := lo.Intersect(tables.Builtins, tables.InsecureFunctions); len(overlap) > 0 {
		slices.Sort(overlap)
		return nil, fmt.Errorf("%w: insecure functions also allowed as builtins: %s",
			ErrInvalidTables, strings.Join(overlap, ", "))
	}

	r := &Registry{
		builtins:   toSet(tables.Builtins),
		insecure:   toSet(tables.InsecureFunctions),
		attributes: toSet(tables.DisallowedAttributes),
		imports:    toSet(tables.Imports),
	}
	for _, attr := range tables.DisallowedAttributes {
		if strings.Contains(attr, ".") {
			r.dottedAttributes = append(r.dottedAttributes, attr)
		}
	}
	return r, nil
}

// MustNew is New for startup code, where a malformed allow-list is fatal.
func MustNew(tables Tables) *Registry {
	r, err := New(tables)
	if err != nil {
		panic(err)
	}
	return r
}

func toSet(names []string) map[string]struct{} {
	return lo.SliceToMap(names, func(name string) (string, struct{}) {
		return name, struct{}{}
	})
}

func (r *Registry) IsBuiltinAllowed(name string) bool {
	_, ok := r.builtins[name]
	return ok
}

func (r *Registry) IsFunctionInsecure(name string) bool {
	_, ok := r.insecure[name]
	return ok
}

func (r *Registry) IsImportAllowed(name string) bool {
	_, ok := r.imports[name]
	return ok
}

// IsAttributePathDisallowed reports whether a reconstructed dotted path hits
// the attribute table. Single-segment entries match any segment of the path,
// so "session_state" blocks st.session_state and client.session_state.x
// alike. Dotted entries match the whole path or a suffix of it.
func (r *Registry) IsAttributePathDisallowed(path string) bool {
	if _, ok := r.attributes[path]; ok {
		return true
	}
	for segment := range strings.SplitSeq(path, ".") {
		if _, ok := r.attributes[segment]; ok {
			return true
		}
	}
	for _, entry := range r.dottedAttributes {
		if strings.HasSuffix(path, "."+entry) {
			return true
		}
	}
	return false
}

func (r *Registry) Builtins() []string {
	return sortedKeys(r.builtins)
}

func (r *Registry) Imports() []string {
	return sortedKeys(r.imports)
}

func (r *Registry) Tables() Tables {
	return Tables{
		Builtins:             sortedKeys(r.builtins),
		InsecureFunctions:    sortedKeys(r.insecure),
		DisallowedAttributes: sortedKeys(r.attributes),
		Imports:              sortedKeys(r.imports),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
