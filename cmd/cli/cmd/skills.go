package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var skillsCmd = &cobra.Command{
	Use:   "skills [name]",
	Short: "List discovered skills whose scripts may always run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSkills,
}

func init() {
	skillsCmd.Flags().Bool("json", false, "Print skills as JSON")
	rootCmd.AddCommand(skillsCmd)
}

func runSkills(cmd *cobra.Command, args []string) error {
	container, err := GetContainer(cmd)
	if err != nil {
		return err
	}
	skills := container.SkillService()
	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		info, err := skills.GetSkillByName(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(out, info)
		}
		fmt.Fprintf(out, "%s\n  %s\n  directory: %s\n", info.Name, info.Description, info.DirectoryPath)
		return nil
	}

	result, err := skills.DiscoverSkills(cmd.Context())
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(out, result)
	}
	if result.TotalCount == 0 {
		fmt.Fprintln(out, "No skills found")
		return nil
	}
	for _, s := range result.Skills {
		fmt.Fprintf(out, "%s: %s\n  %s\n", s.Name, s.Description, s.DirectoryPath)
	}
	return nil
}
