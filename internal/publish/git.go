// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-feed/pkg/types"
)

const binGit = "git"

// pushRejectedMarkers appear in git push output when the remote ref moved
// and the push was not a fast-forward.
var pushRejectedMarkers = []string{
	"[rejected]",
	"non-fast-forward",
	"fetch first",
	"stale info",
}

// GitLog implements Log on a git working copy. The remote branch is the
// log; the working copy is where commits are prepared. The page file in
// the working copy always reflects the last successful push or the state
// before a failed one.
type GitLog struct {
	dir      string
	pagePath string // slash-separated, relative to dir
	remote   string
	branch   string
	env      []string
	exec     executor
}

// NewGitLog returns a GitLog for the working copy at cfg.RepoDir. It fails
// when git is not installed or the directory does not exist.
func NewGitLog(cfg types.PublishConfig) (*GitLog, error) {
	return newGitLog(cfg, defaultExec)
}

func newGitLog(cfg types.PublishConfig, exec executor) (*GitLog, error) {
	if _, err := exec.LookPath(binGit); err != nil {
		return nil, fmt.Errorf("git not found on PATH: %w", err)
	}

	pagePath, err := cleanPagePath(cfg.PagePath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(cfg.RepoDir)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository %s is not a directory", cfg.RepoDir)
	}

	g := &GitLog{
		dir:      cfg.RepoDir,
		pagePath: pagePath,
		remote:   cfg.Remote,
		branch:   cfg.Branch,
		exec:     exec,
	}
	if g.remote == "" {
		g.remote = "origin"
	}
	if g.branch == "" {
		g.branch = "main"
	}
	g.env = gitEnv(cfg)
	return g, nil
}

// cleanPagePath validates a page path relative to the repository root and
// returns it in slash form.
func cleanPagePath(p string) (string, error) {
	if p == "" {
		return "", errors.New("page path is empty")
	}
	if filepath.IsAbs(p) {
		return "", fmt.Errorf("page path %s must be relative to the repository", p)
	}
	clean := path.Clean(filepath.ToSlash(p))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("page path %s escapes the repository", p)
	}
	return clean, nil
}

// gitEnv sets the commit identity and, when a token is configured, an
// HTTP authorization header. Passing the header through GIT_CONFIG_*
// keeps it off the command line.
func gitEnv(cfg types.PublishConfig) []string {
	env := []string{"GIT_TERMINAL_PROMPT=0"}
	if cfg.AuthorName != "" {
		env = append(env, "GIT_AUTHOR_NAME="+cfg.AuthorName, "GIT_COMMITTER_NAME="+cfg.AuthorName)
	}
	if cfg.AuthorEmail != "" {
		env = append(env, "GIT_AUTHOR_EMAIL="+cfg.AuthorEmail, "GIT_COMMITTER_EMAIL="+cfg.AuthorEmail)
	}
	if cfg.Token != "" {
		cred := base64.StdEncoding.EncodeToString([]byte("x-access-token:" + cfg.Token))
		env = append(env,
			"GIT_CONFIG_COUNT=1",
			"GIT_CONFIG_KEY_0=http.extraHeader",
			"GIT_CONFIG_VALUE_0=Authorization: Basic "+cred,
		)
	}
	return env
}

func (g *GitLog) git(ctx context.Context, args ...string) (string, error) {
	out, err := g.exec.Run(ctx, g.dir, g.env, binGit, args...)
	return string(out), err
}

func (g *GitLog) fullPath() string {
	return filepath.Join(g.dir, filepath.FromSlash(g.pagePath))
}

// CurrentHead fetches the remote branch and returns its commit. A remote
// without the branch has no head yet.
func (g *GitLog) CurrentHead(ctx context.Context) (Revision, error) {
	ref := "refs/heads/" + g.branch
	out, err := g.git(ctx, "ls-remote", "--heads", g.remote, ref)
	if err != nil {
		return "", fmt.Errorf("listing %s on %s: %w", ref, g.remote, err)
	}
	if strings.TrimSpace(out) == "" {
		return "", nil
	}

	if _, err := g.git(ctx, "fetch", "--quiet", "--no-tags", g.remote, ref); err != nil {
		return "", fmt.Errorf("fetching %s from %s: %w", ref, g.remote, err)
	}
	rev, err := g.git(ctx, "rev-parse", "--verify", "FETCH_HEAD^{commit}")
	if err != nil {
		return "", fmt.Errorf("resolving fetched head: %w", err)
	}
	return Revision(strings.TrimSpace(rev)), nil
}

// Read returns the page file as committed at rev.
func (g *GitLog) Read(ctx context.Context, rev Revision) (types.RenderedPage, error) {
	if rev == "" {
		return types.RenderedPage{}, nil
	}
	ok, err := g.hasPage(ctx, rev)
	if err != nil {
		return types.RenderedPage{}, err
	}
	if !ok {
		return types.RenderedPage{}, nil
	}

	out, err := g.exec.Run(ctx, g.dir, g.env, binGit, "cat-file", "blob", string(rev)+":"+g.pagePath)
	if err != nil {
		return types.RenderedPage{}, fmt.Errorf("reading %s at %s: %w", g.pagePath, rev.Short(), err)
	}
	return types.RenderedPage{Content: out}, nil
}

func (g *GitLog) hasPage(ctx context.Context, rev Revision) (bool, error) {
	out, err := g.git(ctx, "ls-tree", "--name-only", string(rev), "--", g.pagePath)
	if err != nil {
		return false, fmt.Errorf("listing %s at %s: %w", g.pagePath, rev.Short(), err)
	}
	return strings.TrimSpace(out) != "", nil
}

// localHead returns the commit checked out in the working copy, or "" on
// an unborn branch.
func (g *GitLog) localHead(ctx context.Context) Revision {
	out, err := g.git(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
	if err != nil {
		return ""
	}
	return Revision(strings.TrimSpace(out))
}

// Push commits change on top of base and pushes it to the remote branch
// without forcing. When base is empty (the remote branch does not exist)
// the commit goes on top of the local HEAD. If anything fails after the
// page is written, the page file and HEAD return to their base state.
func (g *GitLog) Push(ctx context.Context, change Change, base Revision) (Revision, error) {
	parent := base
	if parent == "" {
		parent = g.localHead(ctx)
	} else if _, err := g.git(ctx, "reset", "--quiet", "--keep", string(base)); err != nil {
		return "", fmt.Errorf("moving working copy to %s: %w", base.Short(), err)
	}

	rev, err := g.commitAndPush(ctx, change)
	if err != nil {
		if rbErr := g.rollback(ctx, parent); rbErr != nil {
			return "", errors.Join(err, fmt.Errorf("restoring working copy to %s: %w", parent.Short(), rbErr))
		}
		return "", err
	}
	return rev, nil
}

func (g *GitLog) commitAndPush(ctx context.Context, change Change) (Revision, error) {
	if err := writeFileAtomic(g.fullPath(), change.Content); err != nil {
		return "", err
	}
	if _, err := g.git(ctx, "add", "--", g.pagePath); err != nil {
		return "", fmt.Errorf("staging %s: %w", g.pagePath, err)
	}
	if _, err := g.git(ctx, "commit", "--quiet", "--no-verify", "--no-gpg-sign", "-m", change.Message); err != nil {
		return "", fmt.Errorf("committing %s: %w", g.pagePath, err)
	}

	if _, err := g.git(ctx, "push", g.remote, "HEAD:refs/heads/"+g.branch); err != nil {
		if isPushRejected(err) {
			return "", fmt.Errorf("pushing to %s/%s: %w: %w", g.remote, g.branch, ErrConflict, err)
		}
		return "", fmt.Errorf("pushing to %s/%s: %w", g.remote, g.branch, err)
	}

	rev, err := g.git(ctx, "rev-parse", "--verify", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolving pushed commit: %w", err)
	}
	return Revision(strings.TrimSpace(rev)), nil
}

// rollback resets HEAD and the page file to parent. An empty parent means
// the branch was unborn before the push attempt.
func (g *GitLog) rollback(ctx context.Context, parent Revision) error {
	if parent == "" {
		if _, err := g.git(ctx, "rm", "--cached", "--quiet", "--ignore-unmatch", "--", g.pagePath); err != nil {
			return err
		}
		if g.localHead(ctx) != "" {
			if _, err := g.git(ctx, "update-ref", "-d", "HEAD"); err != nil {
				return err
			}
		}
		return removeIfExists(g.fullPath())
	}

	if _, err := g.git(ctx, "reset", "--quiet", "--mixed", string(parent)); err != nil {
		return err
	}
	ok, err := g.hasPage(ctx, parent)
	if err != nil {
		return err
	}
	if !ok {
		return removeIfExists(g.fullPath())
	}
	_, err = g.git(ctx, "checkout", string(parent), "--", g.pagePath)
	return err
}

func isPushRejected(err error) bool {
	var cmdErr *commandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	for _, marker := range pushRejectedMarkers {
		if strings.Contains(cmdErr.Stderr, marker) {
			return true
		}
	}
	return false
}

func removeIfExists(p string) error {
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
