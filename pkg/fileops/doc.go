// Package fileops holds the filesystem helpers shared by the source resolver,
// the repository cache and the prompt scanner.
//
// # Path handling
//
// User supplied paths go through ExpandPath ("~" and "~/...") and then
// ResolvePath, which anchors relative paths at the working directory:
//
//	root, err := fileops.ResolvePath("~/prompts")
//	if err != nil {
//	    return err
//	}
//	if err := fileops.ValidateDirectory(root); err != nil {
//	    return err
//	}
//
// # Containment
//
// ValidatePathWithin rejects paths that escape a base directory, either
// lexically ("../") or through symlinks. It is used when a subfolder is
// selected inside a git checkout.
//
// # Scanning
//
// ScanFiles walks a directory tree inside an os.Root, skips hidden
// directories, and returns matching files sorted by their slash separated
// relative path so repeated scans of the same tree yield the same order.
package fileops
