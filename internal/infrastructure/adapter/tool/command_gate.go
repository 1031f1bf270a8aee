// Package tool adapts the command check to agent tool calls.
package tool

import (
	"code-agent-guard/internal/domain/safety"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/invopop/jsonschema"
)

// BashToolName is the name of the tool the gate reviews.
const BashToolName = "bash"

const bashToolDescription = "Run a shell command in the project directory. " +
	"Only allowlisted commands are executed; pipes, &&, || and ; are supported, " +
	"but command substitution, variables, subshells and globs in file arguments are rejected."

// ErrEmptyCommand is returned when a bash tool call carries no command.
var ErrEmptyCommand = errors.New("command is required")

// BashInput is the input of the bash tool.
type BashInput struct {
	Command string `json:"command" jsonschema_description:"The shell command to run, relative to the current working directory."`
}

// BashInputSchema is the reflected input schema of the bash tool.
var BashInputSchema = GenerateSchema[BashInput]()

// GenerateSchema reflects T into a tool input schema.
func GenerateSchema[T any]() anthropic.ToolInputSchemaParam {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	return anthropic.ToolInputSchemaParam{
		Properties: schema.Properties,
	}
}

// OptionsFunc supplies the check options at review time, so the gate follows
// a working directory that changes between tool calls.
type OptionsFunc func() (safety.Options, error)

// CommandGate decides whether bash tool calls may run.
type CommandGate struct {
	validator safety.CommandValidator
	options   OptionsFunc
}

// NewCommandGate creates a gate that checks commands with validator.
func NewCommandGate(validator safety.CommandValidator, options OptionsFunc) *CommandGate {
	return &CommandGate{
		validator: validator,
		options:   options,
	}
}

// ToolParam returns the bash tool definition to send with a request.
func (g *CommandGate) ToolParam() anthropic.ToolUnionParam {
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        BashToolName,
			Description: anthropic.String(bashToolDescription),
			InputSchema: BashInputSchema,
		},
	}
}

// DecodeInput extracts the command from a bash tool call input.
func DecodeInput(rawInput json.RawMessage) (string, error) {
	var input BashInput
	if err := json.Unmarshal(rawInput, &input); err != nil {
		return "", fmt.Errorf("invalid %s input: %w", BashToolName, err)
	}
	if strings.TrimSpace(input.Command) == "" {
		return "", ErrEmptyCommand
	}
	return input.Command, nil
}

// Review checks one bash tool call. When the command may not run it returns
// false and an error tool_result block explaining why, ready to be sent back
// to the model in place of the command output.
func (g *CommandGate) Review(toolUseID string, rawInput json.RawMessage) (bool, anthropic.ContentBlockParamUnion) {
	command, err := DecodeInput(rawInput)
	if err != nil {
		return false, anthropic.NewToolResultBlock(toolUseID, err.Error(), true)
	}

	opts, err := g.options()
	if err != nil {
		return false, anthropic.NewToolResultBlock(toolUseID, "command check unavailable: "+err.Error(), true)
	}

	verdict := g.validator.Validate(command, opts)
	if verdict.Allowed {
		return true, anthropic.ContentBlockParamUnion{}
	}
	return false, anthropic.NewToolResultBlock(toolUseID, denialMessage(verdict), true)
}

func denialMessage(v safety.Verdict) string {
	msg := "command not allowed: " + v.Reason
	if v.IsDangerous {
		msg += " (flagged as dangerous: " + v.Danger + ")"
	}
	return msg
}
