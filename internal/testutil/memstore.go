// Package testutil provides in-memory stores with the same error contract
// as the PostgreSQL repositories, for wiring the full stack in tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go-shop-api/internal/model"
)

type UserStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]model.User
}

func NewUserStore() *UserStore {
	return &UserStore{byID: map[int64]model.User{}}
}

func (s *UserStore) FindByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.TrimSpace(email)
	for _, u := range s.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *UserStore) List(context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *UserStore) Create(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return model.User{}, model.ErrUserAlreadyExists
		}
	}
	s.nextID++
	u.ID = s.nextID
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	s.byID[u.ID] = u
	return u, nil
}

func (s *UserStore) Update(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[u.ID]; !ok {
		return model.User{}, model.ErrUserNotFound
	}
	for id, existing := range s.byID {
		if id != u.ID && existing.Email == u.Email {
			return model.User{}, model.ErrUserAlreadyExists
		}
	}
	u.UpdatedAt = time.Now().UTC()
	s.byID[u.ID] = u
	return u, nil
}

func (s *UserStore) Delete(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	delete(s.byID, id)
	return u, nil
}

// AuditStore keeps entries newest first.
type AuditStore struct {
	mu      sync.Mutex
	nextID  int64
	entries []model.AuditEntry
}

func (s *AuditStore) Log(_ context.Context, entry model.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	entry.ID = s.nextID
	s.entries = append([]model.AuditEntry{entry}, s.entries...)
	return nil
}

func (s *AuditStore) Query(_ context.Context, q model.AuditQuery) (model.AuditPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.AuditEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if q.Action != "" && !strings.EqualFold(e.Action, q.Action) {
			continue
		}
		if q.Status != "" && !strings.EqualFold(e.Status, q.Status) {
			continue
		}
		if q.ActorID > 0 && e.Actor.UserID != q.ActorID {
			continue
		}
		items = append(items, e)
	}

	return model.AuditPage{Items: items, Meta: model.Meta{Page: 1, Limit: len(items), Total: len(items), TotalPages: 1}}, nil
}

// Actions lists "action:status" pairs, newest first.
func (s *AuditStore) Actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Action+":"+e.Status)
	}
	return out
}

type ShopInfoStore struct {
	mu     sync.Mutex
	nextID int64
	infos  map[int64]model.ShopInfo
}

func NewShopInfoStore() *ShopInfoStore {
	return &ShopInfoStore{infos: map[int64]model.ShopInfo{}}
}

func (s *ShopInfoStore) Get(context.Context) (model.ShopInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first *model.ShopInfo
	for id := range s.infos {
		info := s.infos[id]
		if first == nil || info.ID < first.ID {
			first = &info
		}
	}
	if first == nil {
		return model.ShopInfo{}, model.ErrShopInfoNotFound
	}
	return *first, nil
}

func (s *ShopInfoStore) Create(_ context.Context, in model.CreateShopInfoInput) (model.ShopInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	info := model.ShopInfo{
		ID:          s.nextID,
		Address:     in.Address,
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
		OpenAt:      []model.OpenAt{},
		SocialMedia: []model.SocialMedia{},
	}
	for i, o := range in.OpenAt {
		o.ID = int64(i + 1)
		info.OpenAt = append(info.OpenAt, o)
	}
	for i, m := range in.SocialMedia {
		m.ID = int64(i + 1)
		info.SocialMedia = append(info.SocialMedia, m)
	}
	s.infos[info.ID] = info
	return info, nil
}

func (s *ShopInfoStore) Update(_ context.Context, id int64, in model.UpdateShopInfoInput) (model.ShopInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.infos[id]
	if !ok {
		return model.ShopInfo{}, model.ErrShopInfoNotFound
	}
	if in.Address != nil {
		info.Address = *in.Address
	}
	if in.PhoneNumber != nil {
		info.PhoneNumber = *in.PhoneNumber
	}
	if in.Email != nil {
		info.Email = *in.Email
	}

	openAt := append([]model.OpenAt(nil), info.OpenAt...)
	for _, patch := range in.OpenAt {
		idx := -1
		for i := range openAt {
			if openAt[i].ID == patch.ID {
				idx = i
			}
		}
		if idx < 0 {
			return model.ShopInfo{}, fmt.Errorf("%w: open_at %d does not belong to shop info %d", model.ErrInvalidInput, patch.ID, id)
		}
		if patch.WeekDayFrom != nil {
			openAt[idx].WeekDayFrom = *patch.WeekDayFrom
		}
		if patch.WeekDayTo != nil {
			openAt[idx].WeekDayTo = *patch.WeekDayTo
		}
		if patch.TimeFrom != nil {
			openAt[idx].TimeFrom = *patch.TimeFrom
		}
		if patch.TimeTo != nil {
			openAt[idx].TimeTo = *patch.TimeTo
		}
	}

	social := append([]model.SocialMedia(nil), info.SocialMedia...)
	for _, patch := range in.SocialMedia {
		idx := -1
		for i := range social {
			if social[i].ID == patch.ID {
				idx = i
			}
		}
		if idx < 0 {
			return model.ShopInfo{}, fmt.Errorf("%w: social_media %d does not belong to shop info %d", model.ErrInvalidInput, patch.ID, id)
		}
		if patch.Name != nil {
			social[idx].Name = *patch.Name
		}
		if patch.Link != nil {
			social[idx].Link = *patch.Link
		}
	}

	info.OpenAt = openAt
	info.SocialMedia = social
	s.infos[id] = info
	return info, nil
}

func (s *ShopInfoStore) Delete(_ context.Context, id int64) (model.ShopInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.infos[id]
	if !ok {
		return model.ShopInfo{}, model.ErrShopInfoNotFound
	}
	delete(s.infos, id)
	return info, nil
}
