package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vsariola/traverso/commands"
	"github.com/vsariola/traverso/input"
)

var keysTemplate string

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Print the keyboard cheat sheet",
	Long: `Print the key bindings, including the user key map, grouped by the kind of
object they act on. --template renders a text/template file instead; it is
executed on the list of sections and has the sprig functions available.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := loadKeyMap(keyMapFile())
		if err != nil {
			return err
		}
		f := commands.NewFactory(nil, newLogger())
		if keysTemplate == "" {
			return input.WriteCheatSheet(cmd.OutOrStdout(), km, f)
		}
		text, err := os.ReadFile(keysTemplate)
		if err != nil {
			return fmt.Errorf("could not read template: %w", err)
		}
		return input.WriteCheatSheetTemplate(cmd.OutOrStdout(), km, f, string(text))
	},
}

func init() {
	keysCmd.Flags().StringVarP(&keysTemplate, "template", "t", "", "cheat sheet template file")
}
