package leaguedomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_KeyRoundTrip(t *testing.T) {
	for _, s := range []Scope{GlobalScope(), CompanyScope("42"), CompanyScope("acme")} {
		parsed, err := ParseScope(s.Key())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
		assert.True(t, parsed.Valid())
	}

	for _, bad := range []string{"", "company_", "team_1", "GLOBAL"} {
		_, err := ParseScope(bad)
		assert.Error(t, err, bad)
	}
}

func TestScopesFor(t *testing.T) {
	assert.Equal(t, []Scope{GlobalScope()}, ScopesFor(""))
	assert.Equal(t, []Scope{GlobalScope(), CompanyScope("7")}, ScopesFor("7"))
}

func TestChannels(t *testing.T) {
	assert.Equal(t, "cohort:global:12", CohortChannel(GlobalScope(), 12))
	assert.Equal(t, "cohort:company_7:3", CohortChannel(CompanyScope("7"), 3))
	assert.Equal(t, "status:company_7:u-1", StatusChannel(CompanyScope("7"), "u-1"))
}
