package configs

import (
	"fmt"
	"iter"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Loader reads values from a list of CUE documents, most specific first.
// Every document is checked against the schema on first use.
type Loader struct {
	roots func() ([]root, error)
}

// Source is an in-memory CUE document, for embedded defaults.
type Source struct {
	Name    string
	Content []byte
}

type root struct {
	name  string
	value cue.Value
}

func NewLoader(filePaths []string, schemaSrc string) Loader {
	return newLoader(func() ([]Source, error) {
		sources := make([]Source, 0, len(filePaths))
		for _, filePath := range filePaths {
			content, err := os.ReadFile(filePath)
			if err != nil {
				return nil, err
			}
			sources = append(sources, Source{
				Name:    filePath,
				Content: content,
			})
		}
		return sources, nil
	}, schemaSrc)
}

func NewSourceLoader(sources []Source, schemaSrc string) Loader {
	return newLoader(func() ([]Source, error) {
		return sources, nil
	}, schemaSrc)
}

func newLoader(getSources func() ([]Source, error), schemaSrc string) Loader {
	return Loader{
		roots: sync.OnceValues(func() ([]root, error) {
			ctx := cuecontext.New()

			var schema cue.Value
			if schemaSrc != "" {
				// closed, so unknown keys are errors
				schema = ctx.CompileString("close({" + schemaSrc + "})")
				if err := schema.Err(); err != nil {
					return nil, fmt.Errorf("schema: %w", err)
				}
			}

			sources, err := getSources()
			if err != nil {
				return nil, err
			}
			roots := make([]root, 0, len(sources))
			for _, source := range sources {
				value, err := compile(ctx, schema, source)
				if err != nil {
					return nil, err
				}
				roots = append(roots, root{
					name:  source.Name,
					value: value,
				})
			}
			return roots, nil
		}),
	}
}

func compile(ctx *cue.Context, schema cue.Value, source Source) (cue.Value, error) {
	value := ctx.CompileBytes(source.Content, cue.Filename(source.Name))
	if err := value.Err(); err != nil {
		return value, err
	}
	if schema.Exists() {
		if err := schema.Unify(value).Validate(); err != nil {
			return value, err
		}
	}
	return value, nil
}

// Paths returns the names of the loaded documents.
func (l Loader) Paths() ([]string, error) {
	roots, err := l.roots()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(roots))
	for _, r := range roots {
		paths = append(paths, r.name)
	}
	return paths, nil
}

// IterCueValues yields the value at path of every document that sets it.
func (l Loader) IterCueValues(path string) iter.Seq2[*cue.Value, error] {
	return func(yield func(*cue.Value, error) bool) {
		roots, err := l.roots()
		if err != nil {
			yield(nil, err)
			return
		}
		cuePath := cue.ParsePath(path)
		for _, r := range roots {
			value := r.value.LookupPath(cuePath)
			if !value.Exists() || value.Err() != nil {
				continue
			}
			if !yield(&value, nil) {
				return
			}
		}
	}
}

// AssignFirst decodes the most specific value at path into target.
func (l Loader) AssignFirst(path string, target any) error {
	for value, err := range l.IterCueValues(path) {
		if err != nil {
			return err
		}
		return value.Decode(target)
	}
	return ErrValueNotFound
}
