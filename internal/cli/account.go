package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, run tabletop login first")

// password returns the flag value, or reads one line from in when the flag is empty.
func password(flag string, in io.Reader) (string, error) {
	if flag != "" {
		return flag, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCmd(o *options) *cobra.Command {
	var pass string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and keep the session",
		Long:  "Log in with a username or email. Without --password, the password is read from standard input.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Teardown()

			p, err := password(pass, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := s.Session.Login(cmd.Context(), domain.Credentials{Username: args[0], Password: p}); err != nil {
				return err
			}
			u, _ := s.Session.CurrentUser()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", u.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&pass, "password", "p", "", "password")
	return cmd
}

func newRegisterCmd(o *options) *cobra.Command {
	var pass string
	cmd := &cobra.Command{
		Use:   "register <username> <email>",
		Short: "Create an account and log in with it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Teardown()

			p, err := password(pass, cmd.InOrStdin())
			if err != nil {
				return err
			}
			reg := domain.Registration{Username: args[0], Email: args[1], Password: p}
			if err := s.Session.Register(cmd.Context(), reg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", reg.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&pass, "password", "p", "", "password")
	return cmd
}

func newLogoutCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Teardown()

			if err := s.Session.Logout(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Teardown()

			u, ok := s.Session.CurrentUser()
			if !ok || !s.Session.IsAuthenticated() {
				return errNotLoggedIn
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", u.Username, u.Email)
			return nil
		},
	}
}
