package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/snappy-loop/promptchain/internal/llm"
	"github.com/snappy-loop/promptchain/internal/recipes"
	"github.com/spf13/cobra"
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "List the built-in recipes and their inputs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Listing needs no provider credentials.
		return printRecipes(cmd, recipes.Default(&llm.Client{}, cfg.AgentMaxIterations))
	},
}

func printRecipes(cmd *cobra.Command, reg *recipes.Registry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tINPUTS\tDESCRIPTION")
	for _, rc := range reg.List() {
		var params []string
		for _, p := range rc.Params {
			switch {
			case p.Required:
				params = append(params, p.Name+"*")
			case p.Default != "":
				params = append(params, fmt.Sprintf("%s=%q", p.Name, p.Default))
			default:
				params = append(params, p.Name)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", rc.Name, strings.Join(params, " "), rc.Description)
	}
	return w.Flush()
}
