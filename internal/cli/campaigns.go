package cli

import (
	"fmt"
	"strconv"

	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/resource"
	"github.com/sidereusnuntius/tabletop/internal/state"
	"github.com/spf13/cobra"
)

func campaignID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid campaign id %q", arg)
	}
	return id, nil
}

// authenticated opens the state and fails early when there is no usable session.
func (o *options) authenticated(cmd *cobra.Command) (*state.State, error) {
	s, err := o.open(cmd)
	if err != nil {
		return nil, err
	}
	if !s.Session.IsAuthenticated() {
		s.Teardown()
		return nil, errNotLoggedIn
	}
	return s, nil
}

func newCampaignsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "campaigns",
		Short: "List the campaigns you belong to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.authenticated(cmd)
			if err != nil {
				return err
			}
			defer s.Teardown()

			campaigns, err := resource.ListCampaigns(cmd.Context(), s.Cache)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(campaigns) == 0 {
				_, _ = fmt.Fprintln(out, "No campaigns yet")
				return nil
			}
			for _, c := range campaigns {
				active := ""
				if c.IsActive {
					active = " (active)"
				}
				_, _ = fmt.Fprintf(out, "%d\t%s%s\n", c.ID, c.Name, active)
			}
			return nil
		},
	}
}

func newCharactersCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "characters <campaign-id>",
		Short: "List the characters of a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := campaignID(args[0])
			if err != nil {
				return err
			}
			s, err := o.authenticated(cmd)
			if err != nil {
				return err
			}
			defer s.Teardown()

			characters, err := resource.ListCharacters(cmd.Context(), s.Cache, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range characters {
				_, _ = fmt.Fprintf(out, "%d\t%s\t%s\n", c.ID, c.Name, describe(c))
			}
			return nil
		},
	}
}

func describe(c domain.Character) string {
	s := fmt.Sprintf("level %d", c.Level)
	if c.Race != "" || c.CharacterClass != "" {
		s += fmt.Sprintf(" %s %s", c.Race, c.CharacterClass)
	}
	if c.IsNPC {
		s += " (NPC)"
	}
	return s
}

func newImportCmd(o *options) *cobra.Command {
	var cobalt string
	cmd := &cobra.Command{
		Use:   "import <campaign-id> <character-url>",
		Short: "Import a D&D Beyond character into a campaign",
		Long:  "Import a D&D Beyond character. Private characters need the CobaltSession cookie passed with --cobalt.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := campaignID(args[0])
			if err != nil {
				return err
			}
			s, err := o.authenticated(cmd)
			if err != nil {
				return err
			}
			defer s.Teardown()

			req := domain.ImportRequest{CampaignID: id, CharacterURL: args[1], CobaltToken: cobalt}
			rec, err := s.Executor.Execute(cmd.Context(), resource.ImportCharacter(s.Service, req))
			if err != nil {
				return err
			}
			c, _ := rec.Result.(domain.Character)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d)\n", c.Name, c.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&cobalt, "cobalt", "", "D&D Beyond CobaltSession cookie")
	return cmd
}
