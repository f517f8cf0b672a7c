package policies

import (
	"regexp"
	"strings"
	"time"

	"github.com/blang/semver/v4"

	"gnmi-yang-bridge/internal/types"
)

// RevisionLayout is the YANG revision-date format.
const RevisionLayout = "2006-01-02"

var revisionPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ClassifyVersion assigns a discipline to a raw version string. Precedence
// is fixed: semantic version first, then revision date, then versionless.
// "2021.3.12" is therefore a semantic version and "2021-03-12" a revision.
// Strings matching neither grammar stay versionless but keep their text.
func ClassifyVersion(raw string) types.Version {
	value := strings.TrimSpace(raw)
	if value == "" {
		return types.NoVersion()
	}
	if IsSemVer(value) {
		return types.SemVer(value)
	}
	if IsRevision(value) {
		return types.Revision(value)
	}
	return types.Version{Kind: types.VersionNone, Value: value}
}

// IsSemVer reports whether value is MAJOR.MINOR.PATCH with optional
// pre-release and build metadata.
func IsSemVer(value string) bool {
	_, err := semver.Parse(value)
	return err == nil
}

// IsRevision reports whether value is a valid YYYY-MM-DD date.
func IsRevision(value string) bool {
	if !revisionPattern.MatchString(value) {
		return false
	}
	_, err := time.Parse(RevisionLayout, value)
	return err == nil
}

// LatestRevision returns the most recent valid revision in revisions.
func LatestRevision(revisions []string) string {
	latest := ""
	for _, revision := range revisions {
		if IsRevision(revision) && revision > latest {
			latest = revision
		}
	}
	return latest
}
