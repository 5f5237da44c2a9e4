package youtrack

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/sync/errgroup"

	"github.com/raveheart1/clpack/internal/config"
)

// issueUpdateConcurrency caps parallel issue updates so a large release does
// not hammer the server.
const issueUpdateConcurrency = 4

// ExtractIssueFunc maps a change entry name to the issue it references. The
// second return is false when the name carries no issue id.
type ExtractIssueFunc func(name string) (string, bool)

// Syncer drives the post-release YouTrack update for one configured project.
type Syncer struct {
	cfg          *config.Config
	extractIssue ExtractIssueFunc
	out          io.Writer
}

// NewSyncer returns a Syncer using cfg's integration settings. extractIssue
// is usually git.(*Resolver).IssueFromName.
func NewSyncer(cfg *config.Config, extractIssue ExtractIssueFunc, out io.Writer) *Syncer {
	return &Syncer{
		cfg:          cfg,
		extractIssue: extractIssue,
		out:          out,
	}
}

// Enabled reports whether releases on channel should be synced to YouTrack.
func (s *Syncer) Enabled(channel string) bool {
	yt := s.cfg.Integrations.YouTrack
	if !yt.Enabled {
		return false
	}
	for _, ch := range yt.Channels {
		if ch == channel {
			return true
		}
	}
	return false
}

// SyncRelease updates every issue referenced by the released entries: the
// release version is ensured in the project's version bundle, then each issue
// gets the version stamped and is moved to the released state. Individual
// issue failures do not stop the remaining updates; they are collected into
// the returned error.
func (s *Syncer) SyncRelease(ctx context.Context, channel, version string, entryNames []string, releaseDate time.Time) error {
	yt := s.cfg.Integrations.YouTrack
	if yt.VersionField == "" || yt.ReleasedState == "" {
		return fmt.Errorf("youtrack integration needs version_field and released_state configured")
	}

	baseURL := yt.URL
	if env := os.Getenv(config.EnvYouTrackURL); env != "" {
		baseURL = env
	}
	token := os.Getenv(config.EnvYouTrackToken)
	if token == "" {
		return fmt.Errorf("missing %s in environment", config.EnvYouTrackToken)
	}

	issues := s.collectIssues(entryNames)
	if len(issues) == 0 {
		fmt.Fprintln(s.out, "No issue references in released changes, skipping YouTrack update.")
		return nil
	}

	client := NewClient(baseURL, token)

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(s.out))
	spin.Suffix = fmt.Sprintf(" Updating %d YouTrack issue(s)...", len(issues))
	spin.Start()
	defer spin.Stop()

	projectID, err := client.FindProjectID(ctx, issues[0])
	if err != nil {
		return fmt.Errorf("finding YouTrack project: %w", err)
	}
	if err := client.EnsureVersion(ctx, projectID, yt.VersionField, version, releaseDate); err != nil {
		return err
	}

	var (
		mu       sync.Mutex
		failures []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(issueUpdateConcurrency)
	for _, issue := range issues {
		issue := issue
		g.Go(func() error {
			if err := client.SetIssueVersionAndState(gctx, issue, yt.VersionField, version, yt.ReleasedState); err != nil {
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", issue, err))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(failures) > 0 {
		return fmt.Errorf("failed to update %d of %d issue(s):\n  %s",
			len(failures), len(issues), strings.Join(failures, "\n  "))
	}
	return nil
}

// collectIssues extracts issue ids from entry names, deduplicated and in
// first-seen order.
func (s *Syncer) collectIssues(entryNames []string) []string {
	seen := make(map[string]bool)
	var issues []string
	for _, name := range entryNames {
		id, ok := s.extractIssue(name)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		issues = append(issues, id)
	}
	return issues
}
