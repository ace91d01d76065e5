package prompts

import (
	"shinkuro/internal/variables"
)

// Argument is a declared or discovered prompt parameter.
type Argument struct {
	Name        string
	Description string
	Default     *string
	Discovered  bool
	Required    bool
}

// Prompt is one markdown file turned into a template. Prompts are built once
// by the catalog and never modified afterwards.
type Prompt struct {
	Name        string
	Title       string
	Description string
	Arguments   []Argument
	Body        string
	Path        string // relative to the scanned root, slash separated
}

// Argument looks up a parameter by name.
func (p Prompt) Argument(name string) (Argument, bool) {
	for _, a := range p.Arguments {
		if a.Name == name {
			return a, true
		}
	}
	return Argument{}, false
}

// Render validates that every required argument is supplied and substitutes
// args into the body. The first missing name is reported as a
// *variables.MissingArgumentError.
func (p Prompt) Render(f *variables.Formatter, args map[string]string) (string, error) {
	for _, a := range p.Arguments {
		if !a.Required {
			continue
		}
		if _, ok := args[a.Name]; !ok {
			return "", &variables.MissingArgumentError{Name: a.Name}
		}
	}
	return f.Render(p.Body, p.bindings(args))
}

func (p Prompt) bindings(args map[string]string) variables.Bindings {
	b := variables.Bindings{
		Args:     args,
		Defaults: make(map[string]string),
		Optional: make(map[string]bool),
	}
	for _, a := range p.Arguments {
		if a.Default != nil {
			b.Defaults[a.Name] = *a.Default
		}
		if !a.Required && a.Default == nil {
			b.Optional[a.Name] = true
		}
	}
	return b
}
