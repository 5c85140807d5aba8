package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sidereusnuntius/tabletop/internal/domain"
	"github.com/sidereusnuntius/tabletop/internal/resource"
	"github.com/sidereusnuntius/tabletop/internal/view"
	"github.com/sidereusnuntius/tabletop/templates"
)

func importPage(l view.List[domain.Campaign], req domain.ImportRequest, err error) page {
	return page{
		title: "Import",
		place: templates.PlaceImport,
		child: templates.Import(l, req, fieldErrors(err)),
	}
}

func GetImport(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := view.Campaigns(r.Context(), h.State.Cache)
		req := domain.ImportRequest{CampaignID: formID(r, "campaign")}
		if l.Err != nil {
			h.fail(w, r, importPage(l, req, nil), l.Err)
			return
		}
		h.render(w, r, http.StatusOK, importPage(l, req, nil), nil)
	}
}

// Import enqueues the import when the background queue runs, and imports synchronously otherwise.
func Import(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.ImportRequest
		if err := r.ParseForm(); err != nil {
			h.fail(w, r, importPage(view.Campaigns(r.Context(), h.State.Cache), req, nil), err)
			return
		}
		req = domain.ImportRequest{
			CampaignID:   formID(r, "campaign_id"),
			CharacterURL: r.PostForm.Get("character_url"),
			CobaltToken:  r.PostForm.Get("cobalt_token"),
		}

		if h.State.Importer != nil {
			id, err := h.State.Importer.Enqueue(r.Context(), req)
			if err != nil {
				h.fail(w, r, importPage(view.Campaigns(r.Context(), h.State.Cache), req, err), err)
				return
			}
			h.redirect(w, r, "/import/"+id, "Import queued.")
			return
		}

		rec, err := h.State.Executor.Execute(r.Context(), resource.ImportCharacter(h.State.Service, req))
		if err != nil {
			h.fail(w, r, importPage(view.Campaigns(r.Context(), h.State.Cache), req, err), err)
			return
		}
		c, _ := rec.Result.(domain.Character)
		h.redirect(w, r, characters.listURL(req.CampaignID), c.Name+" imported.")
	}
}

var errUnknownJob = errors.New("unknown import")

func ImportStatus(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.State.Importer == nil {
			notFound(h, w, r)
			return
		}
		s, ok := h.State.Importer.Status(chi.URLParam(r, "job"))
		if !ok {
			h.render(w, r, http.StatusNotFound, page{title: "Import", place: templates.PlaceImport}, errUnknownJob)
			return
		}
		h.render(w, r, http.StatusOK, page{title: "Import", place: templates.PlaceImport, child: templates.ImportStatus(s)}, nil)
	}
}
