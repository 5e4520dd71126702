package orchestrator

import (
	"fmt"
	"strings"

	"github.com/coreagentic/swarm/pkg/domain"
)

const titleMaxLen = 50

const partialSolutionPreamble = "This session did not reach a complete solution. Below is a compilation of the contributions made so far:"

const partialSolutionFooter = "---\nThis solution is incomplete. You can:\n1. Provide clarification to help the team move forward.\n2. Split the problem into smaller, more specific pieces.\n3. Try a different approach or restate the problem."

const partialSolutionEmpty = "No persona produced a usable contribution before the session became stuck."

// compilePartialSolution implements spec.md §4.4's partial-solution rule:
// concatenate, in chronological order, every non-User message whose type is
// neither Stuck nor Decline and whose content is non-empty, rendered as
// "**<fromPersona>:**\n<content>", wrapped in a fixed preamble/footer.
func compilePartialSolution(history []*domain.Message) string {
	var contributions strings.Builder
	any := false
	for _, m := range history {
		if m.FromPersona == domain.PersonaUser {
			continue
		}
		if m.Type == domain.MessageStuck || m.Type == domain.MessageDecline {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		if any {
			contributions.WriteString("\n\n")
		}
		fmt.Fprintf(&contributions, "**%s:**\n%s", m.FromPersona, m.Content)
		any = true
	}
	if !any {
		return partialSolutionEmpty
	}
	return partialSolutionPreamble + "\n\n" + contributions.String() + "\n\n" + partialSolutionFooter
}

// titleFromProblemStatement implements spec.md §4.4's title-generation rule:
// the substring up to the first sentence-ending punctuation or 50
// characters, whichever is shorter, with "..." appended if anything was cut.
func titleFromProblemStatement(s string) string {
	cut := len(s)
	chars := 0
	for i, r := range s {
		if r == '.' || r == '?' || r == '!' || r == '\n' || chars == titleMaxLen {
			cut = i
			break
		}
		chars++
	}
	title := strings.TrimSpace(s[:cut])
	if cut < len(s) {
		title += "..."
	}
	return title
}
