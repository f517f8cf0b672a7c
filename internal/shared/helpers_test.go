package shared

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireValue(t *testing.T) {
	got, err := RequireValue("  models.db ", "store path")
	require.NoError(t, err)
	assert.Equal(t, "models.db", got)

	_, err = RequireValue(" \t", "store path")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), "store path is required")
}

func TestSplitVersioned(t *testing.T) {
	tests := []struct {
		raw         string
		name        string
		version     string
		wantVersion bool
	}{
		{raw: "openconfig-interfaces@3.0.0", name: "openconfig-interfaces", version: "3.0.0", wantVersion: true},
		{raw: " example-system @ 2023-05-01 ", name: "example-system", version: "2023-05-01", wantVersion: true},
		{raw: "ietf-inet-types", name: "ietf-inet-types"},
		{raw: "broken@", name: "broken", wantVersion: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			name, version, hasVersion := SplitVersioned(tt.raw)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.version, version)
			assert.Equal(t, tt.wantVersion, hasVersion)
		})
	}
}
