package policies

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"gnmi-yang-bridge/internal/types"
)

func TestClassifyVersionPrecedence(t *testing.T) {
	cases := []struct {
		raw  string
		want types.Version
	}{
		{raw: "", want: types.NoVersion()},
		{raw: "  ", want: types.NoVersion()},
		{raw: "2.4.3", want: types.SemVer("2.4.3")},
		{raw: "1.0.0-beta.1+build.5", want: types.SemVer("1.0.0-beta.1+build.5")},
		{raw: "2021.3.12", want: types.SemVer("2021.3.12")},
		{raw: "2021-03-12", want: types.Revision("2021-03-12")},
		{raw: "2021-02-30", want: types.Version{Kind: types.VersionNone, Value: "2021-02-30"}},
		{raw: "1.0", want: types.Version{Kind: types.VersionNone, Value: "1.0"}},
		{raw: "v1.2.3", want: types.Version{Kind: types.VersionNone, Value: "v1.2.3"}},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, ClassifyVersion(tc.raw)); diff != "" {
				t.Fatalf("unexpected version (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRevisionIsNeverSemVer(t *testing.T) {
	for _, raw := range []string{"2017-07-14", "2023-12-01", "1999-01-31"} {
		assert.False(t, IsSemVer(raw), raw)
		assert.True(t, IsRevision(raw), raw)
	}
}

func TestLatestRevision(t *testing.T) {
	got := LatestRevision([]string{"2019-01-01", "bogus", "2021-04-06", "2020-12-31"})
	assert.Equal(t, "2021-04-06", got)
	assert.Empty(t, LatestRevision(nil))
}
