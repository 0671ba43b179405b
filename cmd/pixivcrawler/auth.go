package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pixivcrawler/pkg/auth"
	"pixivcrawler/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored Pixiv cookies",
	Long: `Manage Pixiv cookies stored under profile names.

Cookies are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - PIXIVCRAWLER_COOKIE (read only)

Never share your cookie or config files!`,
}

var loginCmd = &cobra.Command{
	Use:   "login [profile]",
	Short: "Store a Pixiv cookie",
	Long: `Store the Cookie header of a logged-in browser session.

The cookie is read without echo when the input is a terminal, or as one line
from standard input otherwise.`,
	Example: `  pixivcrawler auth login
  pixivcrawler auth login work
  pbpaste | pixivcrawler auth login`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout [profile]",
	Short: "Remove a stored cookie",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogout,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := auth.DefaultProfile
	if len(args) > 0 {
		name = args[0]
	}

	reader := bufio.NewReader(os.Stdin)
	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	var cookie, userAgent string
	if interactive {
		auth.ShowCookieGuide(ui.Out)
		fmt.Fprint(ui.Out, "\nCookie (hidden): ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(ui.Out)
		if err != nil {
			return fmt.Errorf("failed to read cookie: %w", err)
		}
		cookie = string(raw)

		fmt.Fprint(ui.Out, "User-Agent (Enter for default): ")
		userAgent, _ = reader.ReadString('\n')
	} else {
		cookie, err = reader.ReadString('\n')
		if err != nil && cookie == "" {
			return fmt.Errorf("failed to read cookie: %w", err)
		}
	}

	cookie = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(cookie), "Cookie:"))
	if cookie == "" {
		return &configError{errors.New("cookie is required")}
	}
	if _, ok := auth.SessionID(cookie); !ok {
		ui.PrintWarning("Cookie has no " + auth.SessionCookieName + ", it may not be logged in")
		if interactive {
			auth.ShowQuickCookieGuide(ui.Out)
		}
	}

	profile := &auth.Profile{
		Name:      name,
		Cookie:    cookie,
		UserAgent: strings.TrimSpace(userAgent),
	}
	if err := manager.Store(profile); err != nil {
		return err
	}

	ui.PrintSuccess("Cookie stored for profile: " + profile.Name)
	ui.PrintInfo("Cookie", auth.SanitizeProfile(profile).Cookie)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := auth.DefaultProfile
	if len(args) > 0 {
		name = args[0]
	}
	if err := manager.Delete(name); err != nil {
		return err
	}
	ui.PrintSuccess("Profile removed: " + name)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	profiles, err := manager.List()
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		ui.PrintWarning("No stored profiles, run 'pixivcrawler auth login'")
		return nil
	}

	for _, p := range profiles {
		s := auth.SanitizeProfile(p)
		modified := "environment"
		if !p.LastModified.IsZero() {
			modified = p.LastModified.Format("2006-01-02 15:04")
		}
		ui.PrintInfo(s.Name, fmt.Sprintf("%s (%s)", s.Cookie, modified))
	}
	return nil
}
