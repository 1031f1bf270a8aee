package cmd

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"
)

var toolCmd = &cobra.Command{
	Use:   "tool",
	Short: "Gate bash tool calls of an Anthropic agent",
	Long: `Tool exposes the bash tool gate used by agent integrations: the tool
definition to send to the model, and the review of a tool_use input.`,
}

var toolSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the bash tool definition as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		container, err := GetContainer(cmd)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), container.Gate().ToolParam())
	},
}

var toolReviewCmd = &cobra.Command{
	Use:   "review [tool input JSON]",
	Short: "Review a bash tool_use input",
	Long: `Review checks the command of a bash tool_use input such as
{"command": "ls src"}. Without an argument the input is read from stdin.

When the command may not run, the tool_result block to return to the model is
printed and the exit status is 1.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runToolReview,
}

// toolReview is printed by tool review.
type toolReview struct {
	Allowed    bool                             `json:"allowed"`
	ToolResult *anthropic.ContentBlockParamUnion `json:"tool_result,omitempty"`
}

func init() {
	toolReviewCmd.Flags().String("id", "toolu_review", "tool_use id to answer in the tool_result block")
	toolCmd.AddCommand(toolSchemaCmd, toolReviewCmd)
	rootCmd.AddCommand(toolCmd)
}

func runToolReview(cmd *cobra.Command, args []string) error {
	container, err := GetContainer(cmd)
	if err != nil {
		return err
	}

	input, err := commandLine(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(input) == "" {
		return errors.New("tool input is empty")
	}

	id, _ := cmd.Flags().GetString("id")
	allowed, block := container.Gate().Review(id, json.RawMessage(input))

	review := toolReview{Allowed: allowed}
	if !allowed {
		review.ToolResult = &block
	}
	if err := writeJSON(cmd.OutOrStdout(), review); err != nil {
		return err
	}
	if !allowed {
		return ErrCommandDenied
	}
	return nil
}
