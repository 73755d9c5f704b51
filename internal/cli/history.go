package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ansible-mcp/ansiblemcp/internal/chatlog"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved chat conversations",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved conversations",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a saved conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Export a saved conversation as Markdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryExport,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyDeleteCmd)
}

func openChatlog() (*chatlog.Store, error) {
	path, err := chatlogPath()
	if err != nil {
		return nil, err
	}
	return chatlog.Open(path)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openChatlog()
	if err != nil {
		return err
	}
	defer store.Close()

	conversations, err := store.List(cmd.Context())
	if err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(conversations)
	}

	if len(conversations) == 0 {
		if !flagQuiet {
			fmt.Println("No saved conversations")
		}
		return nil
	}
	for _, c := range conversations {
		fmt.Printf("%s\t%s\t%d messages\t%s\n",
			c.Name, c.Model, c.MessageCount, c.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openChatlog()
	if err != nil {
		return err
	}
	defer store.Close()

	conversation, messages, err := store.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(map[string]any{
			"conversation": conversation,
			"messages":     messages,
		})
	}

	fmt.Printf("%s (%s, %d messages)\n\n", conversation.Name, conversation.Model, len(messages))
	for _, m := range messages {
		fmt.Printf("[%s] %s\n", m.Role, m.Content)
	}
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	store, err := openChatlog()
	if err != nil {
		return err
	}
	defer store.Close()

	_, messages, err := store.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Print(chatlog.ExportMarkdown(messages))
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	store, err := openChatlog()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Printf("Deleted conversation %q\n", args[0])
	}
	return nil
}
