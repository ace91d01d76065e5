package prompts

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

const fence = "---"

// yamlFormat is the only accepted metadata syntax: YAML between "---" lines.
var yamlFormat = frontmatter.NewFormat(fence, fence, yaml.Unmarshal)

// ArgumentSpec is one entry of the "arguments" list.
type ArgumentSpec struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Default     *string `yaml:"default"`
}

// Frontmatter is the fixed metadata schema. Keys outside it are ignored.
type Frontmatter struct {
	Name        *string        `yaml:"name"`
	Title       *string        `yaml:"title"`
	Description *string        `yaml:"description"`
	Arguments   []ArgumentSpec `yaml:"arguments"`
}

// ParseFrontmatter splits content into metadata and a trimmed body. Content
// without a leading fence, or any content when skip is set, yields an empty
// Frontmatter and the whole trimmed content as body. Errors are *ParseError
// values naming path.
func ParseFrontmatter(path string, content []byte, skip bool) (Frontmatter, string, error) {
	var fm Frontmatter

	if skip || !hasOpeningFence(content) {
		return fm, strings.TrimSpace(string(content)), nil
	}
	line, rest, ok := closingFence(content)
	if !ok {
		return fm, "", &ParseError{Path: path, Err: ErrUnclosedFrontmatter}
	}

	body, err := frontmatter.Parse(bytes.NewReader(content), &fm, yamlFormat)
	if err != nil {
		return Frontmatter{}, "", &ParseError{Path: path, Err: fmt.Errorf("invalid metadata: %w", err)}
	}
	// The parser also closes on indented fences; the metadata must end
	// exactly where the first unindented one is.
	if strings.TrimSpace(string(body)) != strings.TrimSpace(string(rest)) {
		return Frontmatter{}, "", &ParseError{
			Path: path,
			Err:  fmt.Errorf("%w: metadata must end at line %d", ErrIndentedFence, line),
		}
	}

	if err := validateArguments(fm.Arguments); err != nil {
		return Frontmatter{}, "", &ParseError{Path: path, Err: err}
	}

	return fm, strings.TrimSpace(string(rest)), nil
}

func hasOpeningFence(content []byte) bool {
	line, _, _ := bytes.Cut(content, []byte("\n"))
	return string(bytes.TrimRight(line, " \t\r")) == fence
}

// closingFence finds the first line after the opening one that is exactly
// a fence, give or take trailing blanks. It returns the 1-based line number
// and the content following that line.
func closingFence(content []byte) (int, []byte, bool) {
	_, rest, found := bytes.Cut(content, []byte("\n"))
	if !found {
		return 0, nil, false
	}
	for n := 2; ; n++ {
		line, after, more := bytes.Cut(rest, []byte("\n"))
		if string(bytes.TrimRight(line, " \t\r")) == fence {
			return n, after, true
		}
		if !more {
			return 0, nil, false
		}
		rest = after
	}
}

func validateArguments(args []ArgumentSpec) error {
	seen := make(map[string]bool, len(args))
	for i, arg := range args {
		if arg.Name == "" {
			return fmt.Errorf("%w: argument %d has no name", ErrInvalidArgument, i+1)
		}
		if !isIdentifier(arg.Name) {
			return fmt.Errorf("%w: %q is not a valid name (letters, digits and underscores only)", ErrInvalidArgument, arg.Name)
		}
		if seen[arg.Name] {
			return fmt.Errorf("%w: %q declared more than once", ErrInvalidArgument, arg.Name)
		}
		seen[arg.Name] = true
	}
	return nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '_' && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
