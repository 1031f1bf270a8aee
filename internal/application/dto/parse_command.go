package dto

import "code-agent-guard/internal/domain/shell"

// ParseCommandRequest asks for the structure of a command line.
type ParseCommandRequest struct {
	Command string `json:"command"`
}

// Validate checks that the request carries a usable command line.
func (r *ParseCommandRequest) Validate() error {
	return validateCommand(r.Command)
}

// ParseCommandResponse holds the lexer and parser output for a command line.
type ParseCommandResponse struct {
	Tokens   []TokenSummary   `json:"tokens"`
	Commands []CommandSummary `json:"commands"`
}

// TokenSummary is the serialisable form of a lexical token.
type TokenSummary struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// NewParseCommandResponse builds a response from tokens and the list parsed from them.
func NewParseCommandResponse(tokens []shell.Token, list shell.CommandList) *ParseCommandResponse {
	resp := &ParseCommandResponse{
		Tokens:   make([]TokenSummary, 0, len(tokens)),
		Commands: SummarizeCommands(list),
	}
	for _, tok := range tokens {
		resp.Tokens = append(resp.Tokens, TokenSummary{Type: tok.Type.String(), Value: tok.Value})
	}
	if resp.Commands == nil {
		resp.Commands = []CommandSummary{}
	}
	return resp
}
