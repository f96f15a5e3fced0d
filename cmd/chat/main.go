package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mindcare-backend/internal/client"
	"mindcare-backend/internal/config"
	"mindcare-backend/internal/models"
	"mindcare-backend/internal/tui"
)

type app struct {
	cfg   *config.ClientConfig
	prefs *client.Preferences
	api   *client.APIClient
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var mode, provider, lang string

	root := &cobra.Command{
		Use:          "mindcare-chat [launch-url]",
		Short:        "Talk to MindCare Navigator from the terminal",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider != "" {
				if err := a.prefs.SetProvider(provider); err != nil {
					return err
				}
			}
			if lang != "" {
				if err := a.prefs.SetLanguage(lang); err != nil {
					return err
				}
			}

			start := client.ModeChat
			if len(args) == 1 {
				start = client.LaunchMode(args[0])
			}
			if mode != "" {
				start = client.LaunchMode("?mode=" + mode)
			}
			return a.runTUI(cmd.Context(), start)
		},
	}
	root.Flags().StringVar(&mode, "mode", "", "start in chat or voice mode")
	root.Flags().StringVar(&provider, "provider", "", "AI provider (groq, gemini, grok, ollama)")
	root.Flags().StringVar(&lang, "lang", "", "reply language (en, hi, mr)")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newSessionsCmd(a),
		newHistoryCmd(a),
	)
	return root
}

func (a *app) setup() error {
	a.cfg = config.LoadClient()

	store, err := client.OpenFileStore(a.cfg.PrefsPath())
	if err != nil {
		return err
	}
	a.prefs = client.NewPreferences(store)
	a.api = client.NewAPIClient(a.cfg.APIURL, nil)
	return nil
}

func (a *app) runTUI(ctx context.Context, mode client.Mode) error {
	if err := os.MkdirAll(filepath.Dir(a.cfg.LogPath()), 0700); err != nil {
		return err
	}
	// The TUI owns the terminal; the log goes to a file.
	logFile, err := tea.LogToFile(a.cfg.LogPath(), "mindcare")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	recognizer := client.NewExecRecognizer(a.cfg.RecordCmd, a.api, a.prefs.AuthToken)
	return tui.Run(ctx, tui.Options{
		API:        a.api,
		Prefs:      a.prefs,
		Recognizer: recognizer,
		Synth:      client.NewExecSynthesizer(a.cfg.TTSCmd),
		Mode:       mode,
	})
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = readPassword(cmd, "Password: "); err != nil {
					return err
				}
			}

			token, err := a.api.Login(cmd.Context(), models.LoginRequest{Email: email, Password: password})
			if err != nil {
				return describe(err)
			}
			if err := a.prefs.SetAuthToken(token); err != nil {
				return err
			}
			// The stored conversation may belong to another account.
			if err := a.prefs.ClearSession(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged in as", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = readPassword(cmd, "Password: "); err != nil {
					return err
				}
			}

			token, err := a.api.Register(cmd.Context(), models.RegisterRequest{Email: email, Password: password, Name: name})
			if err != nil {
				return describe(err)
			}
			if err := a.prefs.SetAuthToken(token); err != nil {
				return err
			}
			if err := a.prefs.ClearSession(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Registered", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password, at least 8 characters (prompted when empty)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the token and the current conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.prefs.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
			return nil
		},
	}
}

func newSessionsCmd(a *app) *cobra.Command {
	var use string
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List your conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token := a.prefs.AuthToken()
			if token == "" {
				return errors.New("not logged in; run mindcare-chat login first")
			}

			ids, err := a.api.Sessions(cmd.Context(), token)
			if err != nil {
				return describe(err)
			}

			if use != "" {
				if !contains(ids, use) {
					return fmt.Errorf("no conversation %s", use)
				}
				if err := a.prefs.SetSessionID(use); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✓ Continuing conversation", use)
				return nil
			}

			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No conversations yet.")
				return nil
			}
			current := a.prefs.SessionID()
			for _, id := range ids {
				marker := " "
				if id == current {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, id)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&use, "use", "", "continue the given conversation")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history [session-id]",
		Short: "Print a conversation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := a.prefs.AuthToken()
			if token == "" {
				return errors.New("not logged in; run mindcare-chat login first")
			}
			id := a.prefs.SessionID()
			if len(args) == 1 {
				id = args[0]
			}
			if id == "" {
				return errors.New("no conversation yet")
			}

			turns, err := a.api.History(cmd.Context(), token, id)
			if err != nil {
				return describe(err)
			}
			for _, t := range turns {
				who := "You"
				if t.Role == models.RoleAssistant {
					who = "MindCare"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n\n", who, t.Content)
			}
			return nil
		},
	}
}

func readLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return readLine(cmd, prompt)
	}

	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(secret), nil
}

// describe turns API error envelopes into readable CLI errors.
func describe(err error) error {
	var se *client.StatusError
	if !errors.As(err, &se) {
		return err
	}
	msg := se.Message
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", se.StatusCode)
	}
	for field, problem := range se.Fields {
		msg += fmt.Sprintf("\n  %s: %s", field, problem)
	}
	return errors.New(msg)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
