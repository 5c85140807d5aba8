package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/resource"
	"github.com/sidereusnuntius/tabletop/internal/view"
	"github.com/sidereusnuntius/tabletop/templates"
)

func Dashboard(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := GetSession(r.Context())
		d := view.NewDashboard(r.Context(), h.State.Cache, user)
		if d.Campaigns.Err != nil {
			h.fail(w, r, page{title: "Dashboard", place: templates.PlaceDashboard, child: templates.Dashboard(d)}, d.Campaigns.Err)
			return
		}
		h.render(w, r, http.StatusOK, page{title: "Dashboard", place: templates.PlaceDashboard, child: templates.Dashboard(d)}, nil)
	}
}

func campaignsPage(l view.List[domain.Campaign], form domain.CampaignCreate, err error) page {
	return page{
		title: "Campaigns",
		place: templates.PlaceCampaigns,
		child: templates.Campaigns(l, form, fieldErrors(err)),
	}
}

func ListCampaigns(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := view.Campaigns(r.Context(), h.State.Cache)
		if l.Err != nil {
			h.fail(w, r, campaignsPage(l, domain.CampaignCreate{}, nil), l.Err)
			return
		}
		h.render(w, r, http.StatusOK, campaignsPage(l, domain.CampaignCreate{}, nil), nil)
	}
}

func CreateCampaign(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.fail(w, r, campaignsPage(view.Campaigns(r.Context(), h.State.Cache), domain.CampaignCreate{}, nil), err)
			return
		}
		form := domain.CampaignCreate{
			Name:        r.PostForm.Get("name"),
			Description: r.PostForm.Get("description"),
			Setting:     r.PostForm.Get("setting"),
			IsActive:    r.PostForm.Get("is_active") == "true",
		}

		rec, err := h.State.Executor.Execute(r.Context(), resource.CreateCampaign(h.State.Service, form))
		if err != nil {
			h.fail(w, r, campaignsPage(view.Campaigns(r.Context(), h.State.Cache), form, err), err)
			return
		}
		created, _ := rec.Result.(domain.Campaign)
		h.redirect(w, r, fmt.Sprintf("/campaigns/%d", created.ID), fmt.Sprintf("Campaign %q created.", created.Name))
	}
}

func campaignPage(d view.CampaignDetail, userID int64, err error) page {
	title := "Campaign"
	if d.Found {
		title = d.Campaign.Name
	}
	return page{
		title: title,
		place: templates.PlaceCampaigns,
		child: templates.CampaignDetail(d, userID, fieldErrors(err)),
	}
}

func GetCampaign(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			notFound(h, w, r)
			return
		}
		user, _ := GetSession(r.Context())
		d := view.NewCampaignDetail(r.Context(), h.State.Cache, user, id)
		if d.Err != nil {
			h.fail(w, r, campaignPage(d, user.ID, nil), d.Err)
			return
		}
		h.render(w, r, http.StatusOK, campaignPage(d, user.ID, nil), nil)
	}
}

// campaignMutation runs a form submission against campaign id and either redirects back to the campaign or
// shows the campaign again with the error.
func campaignMutation(h *Handler, w http.ResponseWriter, r *http.Request, do func(id int64) error, done string) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(h, w, r)
		return
	}
	if err := do(id); err != nil {
		user, _ := GetSession(r.Context())
		h.fail(w, r, campaignPage(view.NewCampaignDetail(r.Context(), h.State.Cache, user, id), user.ID, err), err)
		return
	}
	h.redirect(w, r, fmt.Sprintf("/campaigns/%d", id), done)
}

func UpdateCampaign(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignMutation(h, w, r, func(id int64) error {
			if err := r.ParseForm(); err != nil {
				return err
			}
			var form domain.CampaignUpdate
			for name, field := range map[string]**string{"name": &form.Name, "description": &form.Description, "setting": &form.Setting} {
				if values, ok := r.PostForm[name]; ok {
					v := values[0]
					*field = &v
				}
			}
			_, err := h.State.Executor.Execute(r.Context(), resource.UpdateCampaign(h.State.Service, id, form))
			return err
		}, "Campaign saved.")
	}
}

func DeleteCampaign(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			notFound(h, w, r)
			return
		}
		if _, err := h.State.Executor.Execute(r.Context(), resource.DeleteCampaign(h.State.Service, id)); err != nil {
			user, _ := GetSession(r.Context())
			h.fail(w, r, campaignPage(view.NewCampaignDetail(r.Context(), h.State.Cache, user, id), user.ID, err), err)
			return
		}
		h.redirect(w, r, "/campaigns", "Campaign deleted.")
	}
}

func AddMember(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignMutation(h, w, r, func(id int64) error {
			if err := r.ParseForm(); err != nil {
				return err
			}
			// An unparsable id is left at 0, which validation reports as a missing user.
			userID, _ := strconv.ParseInt(r.PostForm.Get("user_id"), 10, 64)
			form := domain.MemberCreate{
				UserID: userID,
				Role:   domain.Role(r.PostForm.Get("role")),
			}
			_, err := h.State.Executor.Execute(r.Context(), resource.AddMember(h.State.Service, id, form))
			return err
		}, "Member added.")
	}
}

func RemoveMember(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(r, "userID")
		if !ok {
			notFound(h, w, r)
			return
		}
		campaignMutation(h, w, r, func(id int64) error {
			_, err := h.State.Executor.Execute(r.Context(), resource.RemoveMember(h.State.Service, id, userID))
			return err
		}, "Member removed.")
	}
}
