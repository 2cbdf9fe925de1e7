package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/booky-next/internal/apiclient"
	"github.com/booky-next/internal/service"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (a *app) loginCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if strings.TrimSpace(email) == "" {
				if email, err = a.prompt("Email: "); err != nil {
					return err
				}
			}
			password, err := a.readPassword("Password: ")
			if err != nil {
				return err
			}
			resp, err := a.session.Login(cmd.Context(), service.LoginInput{Email: email, Password: password})
			if err != nil {
				return a.fail(sessionError(err, resp), "")
			}
			fmt.Fprintln(a.out, a.styles.Success.Render(nonEmpty(resp.Message, "Login successful.")))
			if resp.Data != nil && resp.Data.User.Name != "" {
				fmt.Fprintf(a.out, "Welcome back, %s\n", resp.Data.User.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func (a *app) registerCommand() *cobra.Command {
	var input service.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := []struct {
				value  *string
				prompt string
			}{
				{&input.Name, "Name: "},
				{&input.Email, "Email: "},
				{&input.Handphone, "Phone number: "},
			}
			for _, field := range fields {
				if strings.TrimSpace(*field.value) != "" {
					continue
				}
				value, err := a.prompt(field.prompt)
				if err != nil {
					return err
				}
				*field.value = value
			}
			var err error
			if input.Password, err = a.readPassword("Password: "); err != nil {
				return err
			}
			if input.ConfirmPassword, err = a.readPassword("Confirm password: "); err != nil {
				return err
			}
			resp, err := a.session.Register(cmd.Context(), input)
			if err != nil {
				return a.fail(sessionError(err, resp), "")
			}
			fmt.Fprintln(a.out, a.styles.Success.Render(nonEmpty(resp.Message, "Registration successful.")))
			if resp.Data == nil || strings.TrimSpace(resp.Data.Token) == "" {
				fmt.Fprintln(a.out, a.styles.Muted.Render("Log in with: booky login --email "+strings.TrimSpace(input.Email)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Name, "name", "", "full name")
	cmd.Flags().StringVar(&input.Email, "email", "", "account email")
	cmd.Flags().StringVar(&input.Handphone, "phone", "", "phone number, 10 to 15 digits")
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func (a *app) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.session.CurrentUser()
			if err != nil {
				return err
			}
			if user == nil {
				fmt.Fprintln(a.out, "Not logged in.")
				return nil
			}
			fmt.Fprintf(a.out, "%s <%s>\n", nonEmpty(user.Name, "-"), user.Email)
			return nil
		},
	}
}

// sessionError 后端返回了失败信息时优先展示
func sessionError(err error, resp *apiclient.AuthResponse) error {
	if resp == nil || strings.TrimSpace(resp.Message) == "" {
		return err
	}
	if errors.Is(err, service.ErrLoginFailed) || errors.Is(err, service.ErrRegisterFailed) {
		return errors.New(resp.Message)
	}
	return err
}

// prompt 读取一行输入
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword 终端下不回显，否则按行读取
func (a *app) readPassword(label string) (string, error) {
	if a.opts.ReadPassword != nil {
		return a.opts.ReadPassword(label)
	}
	if f, ok := a.opts.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.out, label)
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}
	return a.prompt(label)
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
