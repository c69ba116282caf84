package ps

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/storage/filesystem"
	"github.com/go-git/go-git/v6/storage/memory"

	"github.com/helidb/helidb/core"
)

// Revision identifies one recorded snapshot.
type Revision struct {
	Id      string
	When    time.Time
	Session string
	Message string
}

func (revision Revision) String() string {
	return fmt.Sprintf("Revision{Id: %s, When: %s, Session: %s}", revision.Id, revision.When, revision.Session)
}

// History records catalog snapshots as commits in a git repository,
// one commit per save. The snapshot file itself stays the source of
// truth; the history is an audit trail that can be inspected with
// ordinary git tooling when file-backed.
type History struct {
	repo *git.Repository
	wt   billy.Filesystem
}

// NewMemoryHistory keeps the repository entirely in memory.
func NewMemoryHistory() (*History, error) {
	wt := memfs.New()
	storer := memory.NewStorage()

	repo, err := git.Init(storer, git.WithWorkTree(wt))
	if err != nil {
		return nil, core.Errorf(core.IOError, "failed to initialize history: %v", err)
	}
	return &History{repo: repo, wt: wt}, nil
}

// NewFileHistory opens (or initializes) a repository rooted at dir.
func NewFileHistory(dir string) (*History, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, core.Errorf(core.IOError, "failed to create history directory: %v", err)
	}

	wt := osfs.New(dir)
	fs, err := wt.Chroot(".git")
	if err != nil {
		return nil, core.Errorf(core.IOError, "failed to open history directory: %v", err)
	}

	storer := filesystem.NewStorageWithOptions(
		fs,
		cache.NewObjectLRUDefault(),
		filesystem.Options{ExclusiveAccess: true})

	var repo *git.Repository
	if _, statErr := os.Stat(fs.Root()); statErr != nil {
		repo, err = git.Init(storer, git.WithWorkTree(wt))
	} else {
		repo, err = git.Open(storer, wt)
	}
	if err != nil {
		return nil, core.Errorf(core.IOError, "failed to open history repository: %v", err)
	}

	return &History{repo: repo, wt: wt}, nil
}

// Commit records a snapshot under the given file name. The session
// id goes into the commit message so revisions can be traced back to
// the session that wrote them.
func (history *History) Commit(name string, data []byte, session string) (Revision, error) {
	file, err := history.wt.Create(name)
	if err != nil {
		return Revision{}, core.Errorf(core.IOError, "failed to stage snapshot: %v", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return Revision{}, core.Errorf(core.IOError, "failed to stage snapshot: %v", err)
	}
	if err := file.Close(); err != nil {
		return Revision{}, core.Errorf(core.IOError, "failed to stage snapshot: %v", err)
	}

	worktree, err := history.repo.Worktree()
	if err != nil {
		return Revision{}, core.Errorf(core.IOError, "failed to open worktree: %v", err)
	}
	if _, err := worktree.Add(name); err != nil {
		return Revision{}, core.Errorf(core.IOError, "failed to add snapshot: %v", err)
	}

	when := time.Now()
	message := "snapshot " + session
	// Identical snapshots still get a revision each.
	hash, err := worktree.Commit(message, &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  "helidb",
			Email: "helidb@localhost",
			When:  when,
		},
	})
	if err != nil {
		return Revision{}, core.Errorf(core.IOError, "failed to commit snapshot: %v", err)
	}

	return Revision{
		Id:      hash.String(),
		When:    when,
		Session: session,
		Message: message,
	}, nil
}

// Latest returns the most recent revision, or the zero Revision when
// nothing has been committed yet.
func (history *History) Latest() Revision {
	headRef, err := history.repo.Head()
	if err != nil || headRef == nil {
		return Revision{}
	}

	commit, err := history.repo.CommitObject(headRef.Hash())
	if err != nil {
		return Revision{}
	}

	return Revision{
		Id:      headRef.Hash().String(),
		When:    commit.Committer.When,
		Session: sessionFromMessage(commit.Message),
		Message: strings.TrimSpace(commit.Message),
	}
}

// Log lists revisions newest first.
func (history *History) Log() ([]Revision, error) {
	iter, err := history.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, core.Errorf(core.IOError, "failed to read history: %v", err)
	}

	var revisions []Revision
	err = iter.ForEach(func(commit *object.Commit) error {
		revisions = append(revisions, Revision{
			Id:      commit.Hash.String(),
			When:    commit.Committer.When,
			Session: sessionFromMessage(commit.Message),
			Message: strings.TrimSpace(commit.Message),
		})
		return nil
	})
	if err != nil {
		return nil, core.Errorf(core.IOError, "failed to read history: %v", err)
	}
	return revisions, nil
}

func sessionFromMessage(message string) string {
	message = strings.TrimSpace(message)
	if rest, ok := strings.CutPrefix(message, "snapshot "); ok {
		return rest
	}
	return ""
}
