// Package repository resolves the configured prompt source to a local
// directory.
//
// A source is either a local folder (LocalSource) or a remote git repository
// (GitSource). Remote repositories are kept in a Cache: one working tree per
// remote URL at a deterministic location below the cache directory,
//
//	<cache-dir>/git/<host>/<owner>/<repo>
//
// so that SSH and HTTPS spellings of the same repository share an entry.
//
// Cache.Ensure clones missing entries (shallow, depth 1), leaves existing
// entries alone unless refresh is enabled, and in that case fetches origin and
// hard resets the checked out branch to the fetched tip. Entries that are not
// valid working trees, or that point at another remote, are removed and
// cloned again.
//
// Git access goes through the two-method GitClient interface. GoGitClient is
// the go-git implementation; it tries public access first and retries HTTPS
// operations with a token from the OS keyring (CredentialManager) when the
// server asks for authentication. SSH URLs use go-git's ssh-agent defaults.
//
// The cache is not safe for several processes writing the same entry at once.
package repository
