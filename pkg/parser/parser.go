// Package parser implements the ResponseParser (spec.md §4.1): a pure,
// idempotent translation from raw model text into a structured
// PersonaResponse. It never throws on malformed input — unrecognized or
// broken tags degrade to an Answer response with the original text
// preserved in RawResponse. A DELEGATE tag whose name is empty or does not
// resolve still yields a Delegation, with a nil DelegateToPersona.
//
// The technique — compiled-once package-level regexes, multi-tier tag
// detection, stripping as you go — is grounded on the teacher's
// react_parser.go, adapted from a line-prefix ReAct grammar to the
// bracket-tag grammar this protocol uses.
package parser

import (
	"regexp"
	"strings"

	"github.com/coreagentic/swarm/pkg/domain"
	"github.com/coreagentic/swarm/pkg/persona"
)

var (
	reasoningTagRe = regexp.MustCompile(`(?is)\[REASONING\](.*?)\[/REASONING\]`)
	fileTagRe      = regexp.MustCompile(`(?is)\[FILE:([^\]]*)\](.*?)\[/FILE\]`)
	storeTagRe     = regexp.MustCompile(`(?i)\[STORE:([^\]]*)\]`)
	rememberTagRe  = regexp.MustCompile(`(?i)\[REMEMBER:([^\]]*)\]`)
	delegateTagRe  = regexp.MustCompile(`(?i)\[DELEGATE:([^\]]*)\]`)
	clarifyTagRe   = regexp.MustCompile(`(?i)\[CLARIFY\]`)
	solutionTagRe  = regexp.MustCompile(`(?i)\[SOLUTION\]`)
	stuckTagRe     = regexp.MustCompile(`(?i)\[STUCK\]`)
	declineTagRe   = regexp.MustCompile(`(?i)\[DECLINE\]`)

	// anyTagRe bounds a directive's payload: everything up to the next
	// recognized tag (of any kind) belongs to the current directive.
	anyTagRe = regexp.MustCompile(`(?i)\[(/?REASONING|DELEGATE:[^\]]*|CLARIFY|SOLUTION|STUCK|DECLINE|STORE:[^\]]*|REMEMBER:[^\]]*|FILE:[^\]]*|/FILE)\]`)

	collapseNewlinesRe = regexp.MustCompile(`\n{3,}`)
)

// Parse translates one raw model response into a PersonaResponse. It is
// pure (no I/O, no side effects beyond populating the returned side-effect
// slices) and safe to call repeatedly on the same input.
func Parse(raw string) *PersonaResponse {
	resp := &PersonaResponse{RawResponse: raw}
	body := raw

	if m := reasoningTagRe.FindStringSubmatchIndex(body); m != nil {
		reasoning := strings.TrimSpace(body[m[2]:m[3]])
		resp.InternalReasoning = &reasoning
		body = body[:m[0]] + body[m[1]:]
	}

	for {
		m := fileTagRe.FindStringSubmatchIndex(body)
		if m == nil {
			break
		}
		path := strings.TrimSpace(body[m[2]:m[3]])
		content := strings.TrimSpace(body[m[4]:m[5]])
		resp.FileDirectives = append(resp.FileDirectives, FileDirective{Path: path, Content: content})
		body = body[:m[0]] + body[m[1]:]
	}

	for {
		m := storeTagRe.FindStringSubmatchIndex(body)
		if m == nil {
			break
		}
		id := strings.TrimSpace(body[m[2]:m[3]])
		rest := body[m[1]:]
		end := nextTagOffset(rest)
		content := strings.TrimSpace(rest[:end])
		resp.StoreDirectives = append(resp.StoreDirectives, StoreDirective{Identifier: id, Content: content})
		body = body[:m[0]] + rest[end:]
	}

	for {
		m := rememberTagRe.FindStringSubmatchIndex(body)
		if m == nil {
			break
		}
		id := strings.TrimSpace(body[m[2]:m[3]])
		resp.RecallRequests = append(resp.RecallRequests, id)
		body = body[:m[0]] + body[m[1]:]
	}

	switch {
	case delegateTagRe.MatchString(body):
		m := delegateTagRe.FindStringSubmatchIndex(body)
		name := strings.TrimSpace(body[m[2]:m[3]])
		preceding := strings.TrimSpace(body[:m[0]])
		payload := strings.TrimSpace(takeUntilNextTag(body[m[1]:]))

		resp.ResponseType = domain.MessageDelegation
		resp.DelegationContext = &payload
		if resolved, ok := persona.ResolveName(name); ok {
			resp.DelegateToPersona = &resolved
		}
		resp.Content = firstNonEmpty(preceding, payload)

	case clarifyTagRe.MatchString(body):
		m := clarifyTagRe.FindStringIndex(body)
		preceding := strings.TrimSpace(body[:m[0]])
		payload := strings.TrimSpace(takeUntilNextTag(body[m[1]:]))

		resp.ResponseType = domain.MessageClarification
		resp.ClarificationQuestion = &payload
		resp.Content = firstNonEmpty(preceding, payload)

	case solutionTagRe.MatchString(body):
		m := solutionTagRe.FindStringIndex(body)
		preceding := strings.TrimSpace(body[:m[0]])
		payload := strings.TrimSpace(takeUntilNextTag(body[m[1]:]))

		resp.ResponseType = domain.MessageSolution
		resp.Content = concatenatePrecedingAndPayload(preceding, payload)

	case stuckTagRe.MatchString(body):
		m := stuckTagRe.FindStringIndex(body)
		preceding := strings.TrimSpace(body[:m[0]])
		payload := strings.TrimSpace(takeUntilNextTag(body[m[1]:]))

		resp.ResponseType = domain.MessageStuck
		resp.IsStuck = true
		resp.Content = concatenatePrecedingAndPayload(preceding, payload)

	case declineTagRe.MatchString(body):
		m := declineTagRe.FindStringIndex(body)
		preceding := strings.TrimSpace(body[:m[0]])
		payload := strings.TrimSpace(takeUntilNextTag(body[m[1]:]))

		resp.ResponseType = domain.MessageDecline
		resp.Content = firstNonEmpty(preceding, payload)

	default:
		resp.ResponseType = domain.MessageAnswer
		resp.Content = strings.TrimSpace(body)
	}

	resp.Content = collapseNewlinesRe.ReplaceAllString(resp.Content, "\n\n")
	resp.Content = strings.TrimSpace(resp.Content)
	return resp
}

// nextTagOffset returns the byte offset of the next recognized tag in s,
// or len(s) if none remain.
func nextTagOffset(s string) int {
	if loc := anyTagRe.FindStringIndex(s); loc != nil {
		return loc[0]
	}
	return len(s)
}

// takeUntilNextTag returns the prefix of s up to (not including) the next
// recognized tag — a directive's payload runs until whatever follows it.
func takeUntilNextTag(s string) string {
	return s[:nextTagOffset(s)]
}

func firstNonEmpty(preceding, payload string) string {
	if preceding != "" {
		return preceding
	}
	return payload
}

// concatenatePrecedingAndPayload implements the Solution/Stuck content rule:
// preceding text and payload are joined by a blank line when both are
// present; otherwise whichever one is non-empty stands alone.
func concatenatePrecedingAndPayload(preceding, payload string) string {
	if preceding == "" {
		return payload
	}
	if payload == "" {
		return preceding
	}
	return preceding + "\n\n" + payload
}
