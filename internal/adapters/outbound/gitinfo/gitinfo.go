// Package gitinfo reads the HEAD of the repository enclosing a project so
// run reports and history entries can be tied to a commit.
package gitinfo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Reader implements domain.GitInfo with go-git. Paths inside a working
// tree resolve to the enclosing repository.
type Reader struct{}

func New() *Reader { return &Reader{} }

func (g *Reader) IsGitRepo(projectPath string) bool {
	_, err := open(projectPath)
	return err == nil
}

// CommitHash returns the full SHA-1 of HEAD.
func (g *Reader) CommitHash(projectPath string) (string, error) {
	ref, err := head(projectPath)
	if err != nil {
		return "", err
	}
	return ref.Hash().String(), nil
}

// Branch returns the short name of the checked-out branch, or "" on a
// detached HEAD.
func (g *Reader) Branch(projectPath string) (string, error) {
	ref, err := head(projectPath)
	if err != nil {
		return "", err
	}
	if !ref.Name().IsBranch() {
		return "", nil
	}
	return ref.Name().Short(), nil
}

func open(path string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
}

// head fails on an unborn branch (a repository without commits).
func head(path string) (*plumbing.Reference, error) {
	repo, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("opening git repo at %s: %w", path, err)
	}
	ref, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}
	return ref, nil
}
