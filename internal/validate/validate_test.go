package validate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sidereusnuntius/tabletop/internal/domain"
)

func TestStruct(t *testing.T) {
	cases := []struct {
		name   string
		form   any
		fields map[string]string
	}{
		{
			name: "valid campaign with empty description",
			form: domain.CampaignCreate{Name: "Lost Mines", Setting: "Forgotten Realms"},
		},
		{
			name:   "campaign without name",
			form:   domain.CampaignCreate{Setting: "Eberron"},
			fields: map[string]string{"name": "required"},
		},
		{
			name:   "member with unknown role",
			form:   domain.MemberCreate{UserID: 12, Role: "god"},
			fields: map[string]string{"role": "must be one of: dm player viewer"},
		},
		{
			name:   "character level out of range",
			form:   domain.CharacterCreate{Name: "Tordek", CampaignID: 3, Level: 21},
			fields: map[string]string{"level": "must be at most 20"},
		},
		{
			name: "import without url",
			form: domain.ImportRequest{CampaignID: 3},
			fields: map[string]string{
				"character_url": "required",
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Struct(c.form)
			if c.fields == nil {
				if err != nil {
					t.Errorf("unexpected error: %s", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected a validation error, got %v", err)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Error("validation errors must wrap ErrInvalidInput")
			}
			if diff := cmp.Diff(c.fields, verr.Fields); diff != "" {
				t.Errorf("unexpected fields (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSignUpForm(t *testing.T) {
	err := SignUpForm(domain.Registration{Username: "", Email: "nope", Password: "short"})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	for _, field := range []string{"username", "email", "password"} {
		if verr.Field(field) == "" {
			t.Errorf("expected an error for %s", field)
		}
	}

	if err = SignUpForm(domain.Registration{Username: "alice", Email: "alice@example.com", Password: "correct horse"}); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
}
