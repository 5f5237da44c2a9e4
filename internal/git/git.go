// Package git provides repository introspection for clpack: current branch
// detection and mapping of branch names onto release channels, versions and
// issue identifiers through the configured patterns. It uses go-git so no git
// binary is required on the host.
package git

import (
	"fmt"
	"os"
	"regexp"

	gogit "github.com/go-git/go-git/v5"

	"github.com/raveheart1/clpack/internal/config"
)

// openRepo opens the git repository containing path, traversing up the
// directory tree to find the repository root. If path is empty, the current
// working directory is used.
func openRepo(path string) (*gogit.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return repo, nil
}

// CurrentBranch returns the name of the branch checked out in the repository
// containing root. It returns the empty string, without error, when root is
// not inside a git repository or HEAD is detached; callers fall back to
// prompting in that case.
func CurrentBranch(root string) (string, error) {
	repo, err := openRepo(root)
	if err != nil {
		return "", nil
	}

	head, err := repo.Head()
	if err != nil {
		// Freshly initialized repository with no commits.
		return "", nil
	}

	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

// IsRepository reports whether root is inside a git repository.
func IsRepository(root string) bool {
	_, err := openRepo(root)
	return err == nil
}

// channelMatcher matches branch names against one configured channel. Exactly
// one of re and literal is set.
type channelMatcher struct {
	id      string
	re      *regexp.Regexp
	literal string
}

// Resolver derives channel, version and issue information from branch names
// using the patterns declared in the configuration.
type Resolver struct {
	channels  []channelMatcher
	issueRe   *regexp.Regexp
	versionRe *regexp.Regexp
}

// NewResolver compiles the branch patterns from cfg. Configuration loading
// already validates the patterns, so a compile failure here indicates the
// config changed underneath us.
func NewResolver(cfg *config.Config) (*Resolver, error) {
	r := &Resolver{}

	for _, ch := range cfg.Channels {
		m := channelMatcher{id: ch.ID}
		if expr, ok := config.AsRegexPattern(ch.Branch); ok {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("compiling branch pattern for channel %q: %w", ch.ID, err)
			}
			m.re = re
		} else {
			m.literal = ch.Branch
		}
		r.channels = append(r.channels, m)
	}

	var err error
	r.issueRe, err = compilePattern(cfg.BranchIssuePattern, "branch_issue_pattern")
	if err != nil {
		return nil, err
	}
	r.versionRe, err = compilePattern(cfg.BranchVersionPattern, "branch_version_pattern")
	if err != nil {
		return nil, err
	}
	return r, nil
}

// compilePattern compiles a slash-encased extraction pattern. An empty value
// disables the extraction and yields a nil regexp.
func compilePattern(value, name string) (*regexp.Regexp, error) {
	if value == "" {
		return nil, nil
	}
	expr, ok := config.AsRegexPattern(value)
	if !ok {
		return nil, fmt.Errorf("%s must be a /slash-encased/ regular expression, got %q", name, value)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	return re, nil
}

// Channel returns the id of the first configured channel whose branch pattern
// matches branch. Declaration order decides ties. The second return is false
// when no channel matches.
func (r *Resolver) Channel(branch string) (string, bool) {
	if branch == "" {
		return "", false
	}
	for _, m := range r.channels {
		if m.re != nil {
			if m.re.MatchString(branch) {
				return m.id, true
			}
			continue
		}
		if m.literal == branch {
			return m.id, true
		}
	}
	return "", false
}

// Version extracts a version number from branch using the configured
// branch_version_pattern. The second return is false when the branch does not
// carry a version.
func (r *Resolver) Version(branch string) (string, bool) {
	return extractGroup(r.versionRe, branch)
}

// Issue extracts an issue identifier from branch using the configured
// branch_issue_pattern.
func (r *Resolver) Issue(branch string) (string, bool) {
	return extractGroup(r.issueRe, branch)
}

// IssueFromName extracts an issue identifier from a change entry name. Entry
// names default to the branch they were created on, so the same pattern
// applies.
func (r *Resolver) IssueFromName(name string) (string, bool) {
	return extractGroup(r.issueRe, name)
}

func extractGroup(re *regexp.Regexp, s string) (string, bool) {
	if re == nil || s == "" {
		return "", false
	}
	m := re.FindStringSubmatch(s)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}
