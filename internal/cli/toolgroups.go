package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ansible-mcp/ansiblemcp/internal/llamastack"
)

var toolgroupsEndpoint string

var toolgroupsCmd = &cobra.Command{
	Use:   "toolgroups",
	Short: "Manage MCP toolgroups on the llama-stack distribution",
}

var toolgroupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered toolgroups",
	Args:  cobra.NoArgs,
	RunE:  runToolgroupsList,
}

var toolgroupsRegisterCmd = &cobra.Command{
	Use:   "register <toolgroup-id>",
	Short: "Register an MCP toolgroup",
	Long: `Registers a toolgroup backed by an MCP endpoint.

The toolgroup id conventionally follows mcp::<name> (e.g. mcp::ansible).`,
	Args: cobra.ExactArgs(1),
	RunE: runToolgroupsRegister,
}

var toolgroupsUnregisterCmd = &cobra.Command{
	Use:   "unregister <toolgroup-id>",
	Short: "Unregister a toolgroup",
	Args:  cobra.ExactArgs(1),
	RunE:  runToolgroupsUnregister,
}

func init() {
	toolgroupsRegisterCmd.Flags().StringVar(&toolgroupsEndpoint, "endpoint", "", "MCP SSE endpoint URI (required)")
	_ = toolgroupsRegisterCmd.MarkFlagRequired("endpoint")

	toolgroupsCmd.AddCommand(toolgroupsListCmd)
	toolgroupsCmd.AddCommand(toolgroupsRegisterCmd)
	toolgroupsCmd.AddCommand(toolgroupsUnregisterCmd)
}

func stackClient() (*llamastack.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return llamastack.NewClient(cfg.Stack, nil), nil
}

func runToolgroupsList(cmd *cobra.Command, args []string) error {
	client, err := stackClient()
	if err != nil {
		return err
	}

	groups, err := client.ListToolgroups(cmd.Context())
	if err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(groups)
	}

	if len(groups) == 0 {
		if !flagQuiet {
			fmt.Println("No toolgroups registered")
		}
		return nil
	}
	for _, g := range groups {
		if g.MCPEndpoint != nil {
			fmt.Printf("%s\t%s\t%s\n", g.Identifier, g.ProviderID, g.MCPEndpoint.URI)
		} else {
			fmt.Printf("%s\t%s\n", g.Identifier, g.ProviderID)
		}
	}
	return nil
}

func runToolgroupsRegister(cmd *cobra.Command, args []string) error {
	client, err := stackClient()
	if err != nil {
		return err
	}

	id := args[0]
	if err := client.RegisterToolgroup(cmd.Context(), id, toolgroupsEndpoint); err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(map[string]string{
			"toolgroup_id": id,
			"endpoint":     toolgroupsEndpoint,
			"status":       "registered",
		})
	}
	if !flagQuiet {
		fmt.Printf("Registered toolgroup %s -> %s\n", id, toolgroupsEndpoint)
	}
	return nil
}

func runToolgroupsUnregister(cmd *cobra.Command, args []string) error {
	client, err := stackClient()
	if err != nil {
		return err
	}

	id := args[0]
	if err := client.UnregisterToolgroup(cmd.Context(), id); err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(map[string]string{
			"toolgroup_id": id,
			"status":       "unregistered",
		})
	}
	if !flagQuiet {
		fmt.Printf("Unregistered toolgroup %s\n", id)
	}
	return nil
}
