package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ansible-mcp/ansiblemcp/internal/chatlog"
	"github.com/ansible-mcp/ansiblemcp/internal/errors"
	"github.com/ansible-mcp/ansiblemcp/internal/llamastack"
	"github.com/ansible-mcp/ansiblemcp/internal/otelsdk"
)

const defaultInstructions = "You are a helpful assistant for managing Ansible " +
	"automation. Use the available tools to answer questions about inventories, " +
	"job templates, rulebook activations, and Red Hat Insights."

var (
	chatModel        string
	chatInstructions string
	chatToolgroups   []string
	chatTemperature  float64
	chatTopP         float64
	chatContext      string
	chatSave         string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with an agent backed by the registered Ansible toolgroups",
	Long: `Starts a chat session against the llama-stack distribution.

On a terminal this is an interactive loop; /save <name> stores the
conversation and /quit exits. With piped input the prompt is read from
stdin and a single turn runs.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "Model identifier (default: first available LLM)")
	chatCmd.Flags().StringVar(&chatInstructions, "instructions", defaultInstructions, "System instructions for the agent")
	chatCmd.Flags().StringArrayVar(&chatToolgroups, "toolgroup", nil, "Toolgroup to attach (repeatable; default: all registered)")
	chatCmd.Flags().Float64Var(&chatTemperature, "temperature", 0.7, "Sampling temperature")
	chatCmd.Flags().Float64Var(&chatTopP, "top-p", 0.9, "Top-p sampling value")
	chatCmd.Flags().StringVar(&chatContext, "context", "", "Extra context appended to the first message")
	chatCmd.Flags().StringVar(&chatSave, "save", "", "Save the conversation under this name on exit")
}

// chatSession holds the per-run agent state and transcript.
type chatSession struct {
	client    *llamastack.Client
	agentID   string
	sessionID string
	model     string
	messages  []chatlog.Message
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	shutdownTracing, err := otelsdk.Setup(ctx, "ansiblemcp-chat")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("failed to shut down tracing", "error", err)
		}
	}()

	client, err := stackClient()
	if err != nil {
		return err
	}
	if err := client.Health(ctx); err != nil {
		return err
	}

	session, err := newChatSession(ctx, client)
	if err != nil {
		return err
	}

	if isTerminal(os.Stdin) {
		err = session.interactive(ctx, os.Stdin)
	} else {
		err = session.singleShot(ctx, os.Stdin)
	}
	if err != nil {
		return err
	}

	if chatSave != "" {
		return saveConversation(ctx, chatSave, session)
	}
	return nil
}

func newChatSession(ctx context.Context, client *llamastack.Client) (*chatSession, error) {
	model := chatModel
	if model == "" {
		llms, err := client.ListLLMs(ctx)
		if err != nil {
			return nil, err
		}
		if len(llms) == 0 {
			return nil, errors.New(errors.CodeStackUnavailable, "no LLM models available on the stack")
		}
		model = llms[0].Identifier
	}

	toolgroups := chatToolgroups
	if len(toolgroups) == 0 {
		registered, err := client.ListToolgroups(ctx)
		if err != nil {
			return nil, err
		}
		for _, g := range registered {
			toolgroups = append(toolgroups, g.Identifier)
		}
	}

	agentConfig := llamastack.NewAgentConfig(model, chatInstructions, toolgroups, chatTemperature, chatTopP)
	agentID, err := client.CreateAgent(ctx, agentConfig)
	if err != nil {
		return nil, err
	}
	sessionID, err := client.CreateSession(ctx, agentID, "chat-session")
	if err != nil {
		return nil, err
	}

	slog.Info("chat session created",
		"model", model,
		"toolgroups", strings.Join(toolgroups, ","),
		"agent_id", agentID)

	return &chatSession{
		client:    client,
		agentID:   agentID,
		sessionID: sessionID,
		model:     model,
	}, nil
}

// turn sends one user message, streaming assistant output to stdout.
func (s *chatSession) turn(ctx context.Context, message string) error {
	if len(s.messages) == 0 && chatContext != "" {
		message = message + "\n\nContext: " + chatContext
	}
	s.messages = append(s.messages, chatlog.Message{Role: "user", Content: message})

	reply, err := s.client.StreamTurn(ctx, s.agentID, s.sessionID, message, func(delta string) {
		fmt.Print(delta)
	})
	if err != nil {
		return err
	}
	fmt.Println()

	s.messages = append(s.messages, chatlog.Message{Role: "assistant", Content: reply})
	return nil
}

func (s *chatSession) interactive(ctx context.Context, in io.Reader) error {
	fmt.Printf("Chatting with %s. Type /save <name> to store the conversation, /quit to exit.\n", s.model)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit" || line == "/exit":
			return nil
		case strings.HasPrefix(line, "/save"):
			name := strings.TrimSpace(strings.TrimPrefix(line, "/save"))
			if name == "" {
				fmt.Fprintln(os.Stderr, "usage: /save <name>")
				continue
			}
			if err := saveConversation(ctx, name, s); err != nil {
				printError(err)
				continue
			}
			fmt.Printf("Saved conversation %q\n", name)
		default:
			if err := s.turn(ctx, line); err != nil {
				printError(err)
			}
		}
	}
}

func (s *chatSession) singleShot(ctx context.Context, in io.Reader) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	message := strings.TrimSpace(string(data))
	if message == "" {
		return errors.InvalidParams("empty prompt on stdin")
	}
	return s.turn(ctx, message)
}

func saveConversation(ctx context.Context, name string, s *chatSession) error {
	if len(s.messages) == 0 {
		return errors.InvalidParams("nothing to save yet")
	}

	path, err := chatlogPath()
	if err != nil {
		return err
	}
	store, err := chatlog.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Save(ctx, name, s.model, s.messages)
	return err
}
