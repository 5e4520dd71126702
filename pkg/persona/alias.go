package persona

import (
	"strings"

	"github.com/coreagentic/swarm/pkg/domain"
)

// aliases maps tolerant, abbreviated spellings of a persona name (as typed
// by a model inside a [DELEGATE:<name>] tag) to the canonical PersonaName.
// Keys are normalized (lower-cased, underscores/hyphens stripped) before
// lookup by ResolveName. Grounded on spec.md §4.1's fixed alias table.
var aliases = map[string]domain.PersonaName{
	"ba":       domain.PersonaBusinessAnalyst,
	"ta":       domain.PersonaTechnicalArchitect,
	"srdev":    domain.PersonaSeniorDeveloper,
	"jrdev":    domain.PersonaJuniorDeveloper,
	"srqa":     domain.PersonaSeniorQA,
	"jrqa":     domain.PersonaJuniorQA,
	"ux":       domain.PersonaUXEngineer,
	"ui":       domain.PersonaUIEngineer,
	"doc":      domain.PersonaDocumentWriter,
	"docs":     domain.PersonaDocumentWriter,
	"docwriter": domain.PersonaDocumentWriter,
}

// normalize lower-cases name and removes whitespace, underscores, and
// hyphens so "Senior_Developer", "senior-developer", and "SeniorDeveloper"
// all collapse to the same lookup key.
func normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '\t', '\n', '\r', '_', '-':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// canonicalByNormalized is built once from the fixed roster so exact
// (case/whitespace/separator-insensitive) persona names resolve without
// relying on the alias table.
var canonicalByNormalized = func() map[string]domain.PersonaName {
	m := make(map[string]domain.PersonaName, len(domain.Personas))
	for _, p := range domain.Personas {
		m[normalize(string(p))] = p
	}
	return m
}()

// ResolveName resolves a tolerant persona-name spelling to its canonical
// PersonaName. It tolerates case, whitespace, underscores, hyphens, and the
// fixed alias table. An unrecognized name returns ("", false) — callers
// (pkg/parser) must treat that as a malformed delegation target (spec.md
// §4.1: "Unknown name ⇒ delegateToPersona=null").
func ResolveName(name string) (domain.PersonaName, bool) {
	key := normalize(name)
	if key == "" {
		return "", false
	}
	if canonical, ok := canonicalByNormalized[key]; ok {
		return canonical, true
	}
	if canonical, ok := aliases[key]; ok {
		return canonical, true
	}
	return "", false
}
