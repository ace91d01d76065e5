package filemanager

// FileItem is one markdown file discovered under the scan root.
type FileItem struct {
	Name string // base name, e.g. "commit.md"
	Path string // slash separated path relative to the root, e.g. "dev/commit.md"
	Size int64
}

// Stem returns the base name without its extension.
func (i FileItem) Stem() string {
	for j := len(i.Name) - 1; j > 0; j-- {
		if i.Name[j] == '.' {
			return i.Name[:j]
		}
	}
	return i.Name
}
