package parser

import "github.com/coreagentic/swarm/pkg/domain"

// PersonaResponse is the structured result of parsing one raw model response
// (spec.md §4.1). Payload fields are meaningful only for the matching
// ResponseType, mirroring domain.Message's tagged-sum shape.
type PersonaResponse struct {
	ResponseType          domain.MessageType
	Content               string
	InternalReasoning     *string
	DelegateToPersona     *domain.PersonaName
	DelegationContext     *string
	ClarificationQuestion *string
	IsStuck               bool
	RawResponse           string

	// Side effects. These are independent of ResponseType: a Delegation
	// response can still carry STORE/REMEMBER/FILE directives.
	StoreDirectives []StoreDirective
	RecallRequests  []string
	FileDirectives  []FileDirective
}

// StoreDirective is a [STORE:<id>] <content> side effect.
type StoreDirective struct {
	Identifier string
	Content    string
}

// FileDirective is a [FILE:<path>] <body> [/FILE] side effect.
type FileDirective struct {
	Path    string
	Content string
}
