package graph

import "go-shop-api/internal/model"

// The default graphql-go resolver reads map keys, so domain values are
// projected onto the schema's field names here.

func userView(u model.User) map[string]any {
	return map[string]any{
		"id":        u.ID,
		"email":     u.Email,
		"roles":     u.Roles,
		"createdAt": u.CreatedAt,
		"updatedAt": u.UpdatedAt,
	}
}

func usersView(users []model.User) []any {
	out := make([]any, 0, len(users))
	for _, u := range users {
		out = append(out, userView(u))
	}
	return out
}

func authView(r model.AuthResult) map[string]any {
	return map[string]any{"access_token": r.AccessToken, "refresh_token": r.RefreshToken}
}

func refreshView(r model.RefreshResult) map[string]any {
	return map[string]any{"access_token": r.AccessToken}
}

func shopInfoView(s model.ShopInfo) map[string]any {
	openAt := make([]any, 0, len(s.OpenAt))
	for _, o := range s.OpenAt {
		openAt = append(openAt, map[string]any{
			"id":          o.ID,
			"weekDayFrom": string(o.WeekDayFrom),
			"weekDayTo":   string(o.WeekDayTo),
			"timeFrom":    o.TimeFrom,
			"timeTo":      o.TimeTo,
		})
	}
	social := make([]any, 0, len(s.SocialMedia))
	for _, m := range s.SocialMedia {
		social = append(social, map[string]any{"id": m.ID, "name": m.Name, "link": m.Link})
	}

	return map[string]any{
		"id":          s.ID,
		"address":     s.Address,
		"phoneNumber": s.PhoneNumber,
		"email":       s.Email,
		"openAt":      openAt,
		"socialMedia": social,
	}
}

func auditPageView(p model.AuditPage) map[string]any {
	items := make([]any, 0, len(p.Items))
	for _, e := range p.Items {
		var actorID any
		if e.Actor.UserID > 0 {
			actorID = e.Actor.UserID
		}
		items = append(items, map[string]any{
			"id":         e.ID,
			"action":     e.Action,
			"occurredAt": e.OccurredAt,
			"actorId":    actorID,
			"actorEmail": e.Actor.Email,
			"actorIp":    e.Actor.IP,
			"status":     e.Status,
			"resource":   e.Resource,
			"error":      e.Error,
		})
	}
	return map[string]any{
		"items": items,
		"meta": map[string]any{
			"page":       p.Meta.Page,
			"limit":      p.Meta.Limit,
			"total":      p.Meta.Total,
			"totalPages": p.Meta.TotalPages,
		},
	}
}
