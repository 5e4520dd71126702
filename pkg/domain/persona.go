package domain

// PersonaName identifies one of the fixed personas, or User for message
// origin attribution.
type PersonaName string

// Persona roster, fixed per spec. User is not a persona but a valid
// fromPersona attribution on messages.
const (
	PersonaUser              PersonaName = "User"
	PersonaCoordinator        PersonaName = "Coordinator"
	PersonaBusinessAnalyst    PersonaName = "BusinessAnalyst"
	PersonaTechnicalArchitect PersonaName = "TechnicalArchitect"
	PersonaSeniorDeveloper    PersonaName = "SeniorDeveloper"
	PersonaJuniorDeveloper    PersonaName = "JuniorDeveloper"
	PersonaSeniorQA           PersonaName = "SeniorQA"
	PersonaJuniorQA           PersonaName = "JuniorQA"
	PersonaUXEngineer         PersonaName = "UXEngineer"
	PersonaUIEngineer         PersonaName = "UIEngineer"
	PersonaDocumentWriter     PersonaName = "DocumentWriter"
)

// Personas lists every non-User persona in a fixed, stable order (the same
// order as the built-in PersonaConfiguration.SortOrder values); its length
// bounds the loop's "all personas exhausted" stuck check.
var Personas = []PersonaName{
	PersonaCoordinator,
	PersonaBusinessAnalyst,
	PersonaTechnicalArchitect,
	PersonaSeniorDeveloper,
	PersonaJuniorDeveloper,
	PersonaSeniorQA,
	PersonaJuniorQA,
	PersonaUXEngineer,
	PersonaUIEngineer,
	PersonaDocumentWriter,
}

// IsValid reports whether name is a recognized persona (not including User).
func (n PersonaName) IsValid() bool {
	for _, p := range Personas {
		if p == n {
			return true
		}
	}
	return false
}

// PersonaConfiguration is the seeded, administratively-mutable configuration
// backing one persona.
type PersonaConfiguration struct {
	Persona      PersonaName
	DisplayName  string
	ModelName    string
	SystemPrompt string
	Temperature  float64 // 0-1
	MaxTokens    int
	Enabled      bool
	SortOrder    int
	Description  string
}
