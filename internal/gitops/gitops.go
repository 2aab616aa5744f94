// Package gitops records exported ledgers in the repo's git history.
package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Init initializes a new git repository at dir.
func Init(dir string) error {
	if out, err := git(dir, "init", "--quiet"); err != nil {
		return fmt.Errorf("git init: %s: %w", out, err)
	}
	return nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// CommitPaths stages paths, which may be files or directories relative to
// dir, and commits them. It returns the short commit hash, or "" when the
// paths hold no changes.
func CommitPaths(dir, message, authorName, authorEmail string, paths ...string) (string, error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("nothing to commit")
	}
	add := append([]string{"add", "--"}, paths...)
	if out, err := git(dir, add...); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	diff := append([]string{"diff", "--cached", "--quiet", "--"}, paths...)
	if _, err := git(dir, diff...); err == nil {
		return "", nil
	}

	author := fmt.Sprintf("%s <%s>", authorName, authorEmail)
	commit := append([]string{"commit", "--quiet", "-m", message, "--author", author, "--"}, paths...)
	if out, err := git(dir, commit...); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	out, err := git(dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func git(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	// Commits need a committer identity even when --author is given.
	cmd.Env = append(os.Environ(),
		"GIT_COMMITTER_NAME=farmledger",
		"GIT_COMMITTER_EMAIL=farmledger@localhost",
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}
