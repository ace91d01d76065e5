// Package prompts builds the prompt catalog from a directory of markdown
// files and renders individual prompts.
package prompts

import (
	"fmt"
	"path"
	"strings"
	"time"

	"shinkuro/internal/filemanager"
	"shinkuro/internal/logging"
	"shinkuro/internal/variables"
)

// Options controls how files become prompts.
type Options struct {
	// SkipFrontmatter treats every file as plain body text.
	SkipFrontmatter bool

	// AutoDiscoverArgs adds an argument for every undeclared placeholder.
	AutoDiscoverArgs bool

	// AutoDiscoverRequired makes discovered arguments required at render time.
	AutoDiscoverRequired bool
}

// Catalog is the immutable set of prompts served for one process lifetime.
type Catalog struct {
	formatter *variables.Formatter
	byName    map[string]int
	prompts   []Prompt
}

// Build scans the file manager's root and parses every markdown file. Any
// read or parse failure aborts the whole build. A prompt whose name is
// already taken is dropped with a warning; the first one discovered wins.
func Build(fm *filemanager.FileManager, f *variables.Formatter, opts Options, logger *logging.AppLogger) (*Catalog, error) {
	if logger == nil {
		logger = logging.GetDefault()
	}
	start := time.Now()
	defer logger.LogPerformance("catalog_build", start)

	items, err := fm.ScanMarkdown()
	if err != nil {
		return nil, err
	}

	c := newCatalog(f)
	for _, item := range items {
		content, err := fm.ReadFile(item)
		if err != nil {
			return nil, err
		}

		p, err := buildPrompt(item, content, f, opts)
		if err != nil {
			return nil, err
		}

		if existing, ok := c.Get(p.Name); ok {
			logger.Warn("Duplicate prompt name, skipping file",
				"name", p.Name,
				"path", p.Path,
				"kept", existing.Path)
			continue
		}
		c.add(p)
		logger.Debug("Loaded prompt", "name", p.Name, "path", p.Path, "arguments", len(p.Arguments))
	}

	logger.Info("Prompt catalog built", "prompts", c.Len(), "files", len(items))
	return c, nil
}

// New assembles a catalog from prompts that are already built, applying the
// same first-wins rule as Build. It is meant for embedding and tests.
func New(f *variables.Formatter, prompts ...Prompt) *Catalog {
	c := newCatalog(f)
	for _, p := range prompts {
		if _, ok := c.byName[p.Name]; ok {
			continue
		}
		c.add(p)
	}
	return c
}

func newCatalog(f *variables.Formatter) *Catalog {
	return &Catalog{
		formatter: f,
		byName:    make(map[string]int),
	}
}

func (c *Catalog) add(p Prompt) {
	c.byName[p.Name] = len(c.prompts)
	c.prompts = append(c.prompts, p)
}

// Get returns the prompt registered under name.
func (c *Catalog) Get(name string) (Prompt, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Prompt{}, false
	}
	return c.prompts[i], true
}

// List returns all prompts in discovery order.
func (c *Catalog) List() []Prompt {
	out := make([]Prompt, len(c.prompts))
	copy(out, c.prompts)
	return out
}

// Len reports the number of prompts.
func (c *Catalog) Len() int {
	return len(c.prompts)
}

// Render looks up name and renders it with args. Unknown names yield
// ErrPromptNotFound; missing arguments a *variables.MissingArgumentError.
func (c *Catalog) Render(name string, args map[string]string) (Prompt, string, error) {
	p, ok := c.Get(name)
	if !ok {
		return Prompt{}, "", fmt.Errorf("%w: %q", ErrPromptNotFound, name)
	}
	text, err := p.Render(c.formatter, args)
	if err != nil {
		return p, "", err
	}
	return p, text, nil
}

func buildPrompt(item filemanager.FileItem, content []byte, f *variables.Formatter, opts Options) (Prompt, error) {
	fm, body, err := ParseFrontmatter(item.Path, content, opts.SkipFrontmatter)
	if err != nil {
		return Prompt{}, err
	}

	stem := item.Stem()
	p := Prompt{
		Name:        valueOr(fm.Name, stem),
		Title:       valueOr(fm.Title, stem),
		Description: valueOr(fm.Description, path.Clean(item.Path)),
		Body:        body,
		Path:        item.Path,
	}

	declared := make([]string, 0, len(fm.Arguments))
	for _, spec := range fm.Arguments {
		p.Arguments = append(p.Arguments, Argument{
			Name:        spec.Name,
			Description: spec.Description,
			Default:     spec.Default,
			Required:    spec.Default == nil,
		})
		declared = append(declared, spec.Name)
	}

	if opts.AutoDiscoverArgs {
		for _, name := range f.Undeclared(body, declared) {
			p.Arguments = append(p.Arguments, Argument{
				Name:        name,
				Description: fmt.Sprintf("Auto-discovered argument %q", name),
				Discovered:  true,
				Required:    opts.AutoDiscoverRequired,
			})
		}
	}

	return p, nil
}

// valueOr returns *v unless it is nil or blank.
func valueOr(v *string, fallback string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fallback
	}
	return *v
}
