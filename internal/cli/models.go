package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List LLM models available on the llama-stack distribution",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func runModels(cmd *cobra.Command, args []string) error {
	client, err := stackClient()
	if err != nil {
		return err
	}

	models, err := client.ListLLMs(cmd.Context())
	if err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(models)
	}

	if len(models) == 0 {
		if !flagQuiet {
			fmt.Println("No LLM models available")
		}
		return nil
	}
	for _, m := range models {
		fmt.Println(m.Identifier)
	}
	return nil
}
