package githubapi

import (
	"regexp"
	"strings"

	apperrors "github.com/liugu2023/nekro-github-analyzer/internal/errors"
)

// GitHub owner names are alphanumeric with hyphens; repository names also
// allow dots and underscores. The owner rule doubles as a foreign-host
// rejection: "gitlab.com" never matches.
var (
	ownerPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)
	repoPattern  = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)
)

// ParseRepoURL resolves a user-supplied repository reference into owner and
// name. Accepted forms: full GitHub URLs (with or without scheme), the
// owner/repo shorthand, and either with a trailing ".git" or path noise.
func ParseRepoURL(input string) (owner, repo string, err error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", "", apperrors.NewValidationError("repository reference cannot be empty")
	}

	// Drop scheme and host when present.
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimPrefix(s, "github.com/")
	s = strings.TrimPrefix(s, "git@github.com:")

	// Drop query strings and fragments.
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}

	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) < 2 {
		return "", "", apperrors.NewValidationError("cannot parse repository reference: " + input)
	}

	owner = parts[0]
	repo = strings.TrimSuffix(parts[1], ".git")

	if owner == "" || repo == "" || !ownerPattern.MatchString(owner) || !repoPattern.MatchString(repo) {
		return "", "", apperrors.NewValidationError("invalid repository reference: " + input)
	}
	if strings.Contains(owner, "..") || strings.Contains(repo, "..") {
		return "", "", apperrors.NewValidationError("invalid repository reference: " + input)
	}

	return owner, repo, nil
}
