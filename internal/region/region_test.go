package region

import (
	"testing"

	adminErrors "github.com/conduitllm/admin/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIsComplete(t *testing.T) {
	all := All()
	require.Len(t, all, 14)

	names := make(map[string]bool)
	ids := make(map[string]bool)
	for i, r := range all {
		assert.Equal(t, Region(i), r)
		assert.True(t, r.Valid())
		assert.NotEmpty(t, r.DisplayName())
		assert.NotEqual(t, "*", r.KeyPattern())

		assert.False(t, names[r.DisplayName()], "duplicate display name %s", r.DisplayName())
		assert.False(t, ids[r.String()], "duplicate id %s", r.String())
		names[r.DisplayName()] = true
		ids[r.String()] = true
	}
}

func TestSensitiveRegions(t *testing.T) {
	var sensitive []Region
	for _, r := range All() {
		if r.Sensitive() {
			sensitive = append(sensitive, r)
		}
	}
	assert.ElementsMatch(t, []Region{AuthTokens, ProviderCredentials}, sensitive)
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Region
		wantOK bool
	}{
		{name: "canonical", input: "VirtualKeys", want: VirtualKeys, wantOK: true},
		{name: "lower case", input: "ratelimits", want: RateLimits, wantOK: true},
		{name: "upper case", input: "MODELCOSTS", want: ModelCosts, wantOK: true},
		{name: "snake case", input: "provider_credentials", want: ProviderCredentials, wantOK: true},
		{name: "kebab case", input: "audio-streams", want: AudioStreams, wantOK: true},
		{name: "surrounding space", input: "  IpFilters ", want: IPFilters, wantOK: true},
		{name: "unknown", input: "bogus", wantOK: false},
		{name: "empty", input: "", wantOK: false},
		{name: "all is not a region", input: "all", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Lookup(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseRoundTripsEveryRegion(t *testing.T) {
	for _, r := range All() {
		got, err := Parse(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse("bogus")
	require.Error(t, err)
	assert.True(t, adminErrors.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "bogus")
}

func TestInvalidRegion(t *testing.T) {
	r := Region(99)
	assert.False(t, r.Valid())
	assert.Equal(t, "Unknown", r.String())
	assert.Equal(t, "Unknown", r.DisplayName())
	assert.False(t, r.Sensitive())
}
