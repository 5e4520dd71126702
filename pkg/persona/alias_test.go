package persona

import (
	"testing"

	"github.com/coreagentic/swarm/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestResolveName_Canonical(t *testing.T) {
	got, ok := ResolveName("TechnicalArchitect")
	assert.True(t, ok)
	assert.Equal(t, domain.PersonaTechnicalArchitect, got)
}

func TestResolveName_ToleratesCaseAndSeparators(t *testing.T) {
	for _, in := range []string{"senior_developer", "Senior-Developer", "  SENIOR DEVELOPER  "} {
		got, ok := ResolveName(in)
		assert.True(t, ok, "input %q", in)
		assert.Equal(t, domain.PersonaSeniorDeveloper, got, "input %q", in)
	}
}

func TestResolveName_Aliases(t *testing.T) {
	cases := map[string]domain.PersonaName{
		"BA":        domain.PersonaBusinessAnalyst,
		"TA":        domain.PersonaTechnicalArchitect,
		"SrDev":     domain.PersonaSeniorDeveloper,
		"JrDev":     domain.PersonaJuniorDeveloper,
		"SrQA":      domain.PersonaSeniorQA,
		"JrQA":      domain.PersonaJuniorQA,
		"UX":        domain.PersonaUXEngineer,
		"UI":        domain.PersonaUIEngineer,
		"Doc":       domain.PersonaDocumentWriter,
		"Docs":      domain.PersonaDocumentWriter,
		"DocWriter": domain.PersonaDocumentWriter,
	}
	for alias, want := range cases {
		got, ok := ResolveName(alias)
		assert.True(t, ok, "alias %q", alias)
		assert.Equal(t, want, got, "alias %q", alias)
	}
}

func TestResolveName_Unknown(t *testing.T) {
	_, ok := ResolveName("NotAPersona")
	assert.False(t, ok)
}

func TestResolveName_Empty(t *testing.T) {
	_, ok := ResolveName("")
	assert.False(t, ok)
}
