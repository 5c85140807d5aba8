package fakeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/sidereusnuntius/tabletop/internal/domain"
)

func withUser(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}

func userOf(r *http.Request) int64 {
	id, _ := r.Context().Value(userKey{}).(int64)
	return id
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		write(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []string{"body"}, "msg": err.Error(), "type": "value_error"}},
		})
		return false
	}
	return true
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		detail(w, http.StatusBadRequest, err.Error())
		return
	}
	name, password := r.PostForm.Get("username"), r.PostForm.Get("password")

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.accounts {
		if (a.user.Username == name || a.user.Email == name) && a.password == password {
			token := "token-" + a.user.Username
			b.tokens[token] = a.user.ID
			write(w, http.StatusOK, domain.Token{AccessToken: token, TokenType: "bearer"})
			return
		}
	}
	detail(w, http.StatusUnauthorized, "Incorrect username or password")
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var reg domain.Registration
	if !decode(w, r, &reg) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.accounts {
		if a.user.Username == reg.Username {
			detail(w, http.StatusBadRequest, "Username already registered")
			return
		}
		if a.user.Email == reg.Email {
			detail(w, http.StatusBadRequest, "Email already registered")
			return
		}
	}
	u := domain.User{ID: b.id(), Username: reg.Username, Email: reg.Email, IsActive: true, CreatedAt: b.now()}
	b.accounts = append(b.accounts, account{user: u, password: reg.Password})
	write(w, http.StatusCreated, u)
}

func (b *Backend) user(id int64) (domain.User, bool) {
	for _, a := range b.accounts {
		if a.user.ID == id {
			return a.user, true
		}
	}
	return domain.User{}, false
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.user(userOf(r))
	if !ok {
		detail(w, http.StatusNotFound, "User not found")
		return
	}
	write(w, http.StatusOK, u)
}

func (b *Backend) searchUsers(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	if len(q) < 2 {
		detail(w, http.StatusBadRequest, "Search query must be at least 2 characters")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	found := []domain.User{}
	for _, a := range b.accounts {
		if strings.Contains(strings.ToLower(a.user.Username), q) || strings.Contains(strings.ToLower(a.user.Email), q) {
			found = append(found, a.user)
		}
	}
	write(w, http.StatusOK, found)
}

// campaign must be called with b.mu held.
func (b *Backend) campaign(id int64) (int, bool) {
	for i, c := range b.campaigns {
		if c.ID == id {
			return i, true
		}
	}
	return 0, false
}

// role must be called with b.mu held. The owner is reported as a dm.
func (b *Backend) role(campaignID, userID int64) (domain.Role, bool) {
	if i, ok := b.campaign(campaignID); ok && b.campaigns[i].OwnerID == userID {
		return domain.RoleDM, true
	}
	for _, m := range b.members {
		if m.CampaignID == campaignID && m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

func (b *Backend) listCampaigns(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	user := userOf(r)
	out := []domain.Campaign{}
	for _, c := range b.campaigns {
		if _, ok := b.role(c.ID, user); ok {
			out = append(out, c)
		}
	}
	write(w, http.StatusOK, out)
}

func (b *Backend) createCampaign(w http.ResponseWriter, r *http.Request) {
	var form domain.CampaignCreate
	if !decode(w, r, &form) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c := domain.Campaign{
		ID:          b.id(),
		Name:        form.Name,
		Description: form.Description,
		Setting:     form.Setting,
		IsActive:    form.IsActive,
		OwnerID:     userOf(r),
		CreatedAt:   b.now(),
	}
	b.campaigns = append(b.campaigns, c)
	write(w, http.StatusCreated, c)
}

// access looks the campaign up and checks the caller holds one of roles, writing the error response if not.
// It must be called with b.mu held.
func (b *Backend) access(w http.ResponseWriter, r *http.Request, roles ...domain.Role) (int, bool) {
	id, ok := pathID(r, "id")
	if !ok {
		detail(w, http.StatusUnprocessableEntity, "invalid campaign id")
		return 0, false
	}
	i, ok := b.campaign(id)
	if !ok {
		detail(w, http.StatusNotFound, "Campaign not found")
		return 0, false
	}
	role, ok := b.role(id, userOf(r))
	if !ok {
		detail(w, http.StatusForbidden, "Not enough permissions")
		return 0, false
	}
	if len(roles) == 0 {
		return i, true
	}
	for _, allowed := range roles {
		if role == allowed {
			return i, true
		}
	}
	detail(w, http.StatusForbidden, "Not enough permissions")
	return 0, false
}

func (b *Backend) getCampaign(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.access(w, r)
	if !ok {
		return
	}
	c := b.campaigns[i]
	owner, _ := b.user(c.OwnerID)
	d := domain.CampaignDetail{Campaign: c, Owner: owner, Members: []domain.CampaignMember{}}
	for _, m := range b.members {
		if m.CampaignID == c.ID {
			m.User, _ = b.user(m.UserID)
			d.Members = append(d.Members, m)
		}
	}
	write(w, http.StatusOK, d)
}

func (b *Backend) updateCampaign(w http.ResponseWriter, r *http.Request) {
	var form domain.CampaignUpdate
	if !decode(w, r, &form) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.access(w, r, domain.RoleDM)
	if !ok {
		return
	}
	c := &b.campaigns[i]
	if form.Name != nil {
		c.Name = *form.Name
	}
	if form.Description != nil {
		c.Description = *form.Description
	}
	if form.Setting != nil {
		c.Setting = *form.Setting
	}
	if form.IsActive != nil {
		c.IsActive = *form.IsActive
	}
	now := b.now()
	c.UpdatedAt = &now
	write(w, http.StatusOK, *c)
}

func (b *Backend) deleteCampaign(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.access(w, r)
	if !ok {
		return
	}
	if b.campaigns[i].OwnerID != userOf(r) {
		detail(w, http.StatusForbidden, "Only the owner can delete the campaign")
		return
	}
	b.campaigns = append(b.campaigns[:i], b.campaigns[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) addMember(w http.ResponseWriter, r *http.Request) {
	var form domain.MemberCreate
	if !decode(w, r, &form) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.access(w, r, domain.RoleDM)
	if !ok {
		return
	}
	campaignID := b.campaigns[i].ID
	u, ok := b.user(form.UserID)
	if !ok {
		detail(w, http.StatusNotFound, "User not found")
		return
	}
	if _, ok := b.role(campaignID, form.UserID); ok {
		detail(w, http.StatusBadRequest, "User is already a member")
		return
	}
	m := domain.CampaignMember{ID: b.id(), CampaignID: campaignID, UserID: form.UserID, Role: form.Role, JoinedAt: b.now()}
	b.members = append(b.members, m)
	m.User = u
	write(w, http.StatusCreated, m)
}

func (b *Backend) removeMember(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.access(w, r, domain.RoleDM)
	if !ok {
		return
	}
	userID, _ := pathID(r, "userID")
	for j, m := range b.members {
		if m.CampaignID == b.campaigns[i].ID && m.UserID == userID {
			b.members = append(b.members[:j], b.members[j+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	detail(w, http.StatusNotFound, "Member not found")
}

func create[F, T any](b *Backend, table *[]T, build func(form *F, id, user int64, now time.Time) T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form F
		if !decode(w, r, &form) {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		row := build(&form, b.id(), userOf(r), b.now())
		*table = append(*table, row)
		write(w, http.StatusCreated, row)
	}
}

func list[T any](b *Backend, table *[]T, campaignOf func(T) int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r, "id")
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.campaign(id); !ok {
			detail(w, http.StatusNotFound, "Campaign not found")
			return
		}
		out := []T{}
		for _, row := range *table {
			if campaignOf(row) == id {
				out = append(out, row)
			}
		}
		write(w, http.StatusOK, out)
	}
}

func remove[T any](b *Backend, table *[]T, idOf func(T) int64, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r, "id")
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, row := range *table {
			if idOf(row) == id {
				*table = append((*table)[:i], (*table)[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		detail(w, http.StatusNotFound, name+" not found")
	}
}

func (b *Backend) getCharacter(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r, "id")
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.characters {
		if c.ID == id {
			write(w, http.StatusOK, c)
			return
		}
	}
	detail(w, http.StatusNotFound, "Character not found")
}

func (b *Backend) importCharacter(w http.ResponseWriter, r *http.Request) {
	var req domain.ImportRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.campaign(req.CampaignID); !ok {
		detail(w, http.StatusNotFound, "Campaign not found")
		return
	}
	c := domain.Character{
		ID:           b.id(),
		Name:         fmt.Sprintf("Imported %s", path.Base(req.CharacterURL)),
		CampaignID:   req.CampaignID,
		CreatorID:    userOf(r),
		Level:        1,
		IsActive:     true,
		DndBeyondURL: req.CharacterURL,
		CreatedAt:    b.now(),
	}
	b.characters = append(b.characters, c)
	write(w, http.StatusCreated, c)
}
