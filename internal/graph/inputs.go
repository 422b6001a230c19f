package graph

import (
	"strconv"
	"strings"
	"time"

	"go-shop-api/internal/model"
	"go-shop-api/pkg/apierror"
)

func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func optString(args map[string]any, key string) *string {
	s, ok := args[key].(string)
	if !ok {
		return nil
	}
	return &s
}

func argInt(args map[string]any, key string) int {
	n, _ := args[key].(int)
	return n
}

func argMap(args map[string]any, key string) map[string]any {
	m, _ := args[key].(map[string]any)
	return m
}

func argList(args map[string]any, key string) ([]map[string]any, bool) {
	raw, ok := args[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, true
}

func argStrings(args map[string]any, key string) ([]string, bool) {
	raw, ok := args[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

// parseID accepts the ID scalar (string) or Int argument forms.
func parseID(raw any, field string) (int64, error) {
	switch v := raw.(type) {
	case int:
		if v > 0 {
			return int64(v), nil
		}
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err == nil && id > 0 {
			return id, nil
		}
	}
	return 0, apierror.BadRequest("invalid id", field)
}

func argTime(args map[string]any, key string) (time.Time, bool) {
	switch v := args[key].(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v != nil {
			return *v, true
		}
	}
	return time.Time{}, false
}

func parseWeekDay(raw string, field string) (model.WeekDay, error) {
	day, ok := model.ParseWeekDay(raw)
	if !ok {
		return "", apierror.BadRequest("invalid week day", field+"="+raw)
	}
	return day, nil
}

func decodeUserCreate(in map[string]any) model.CreateUserInput {
	roles, _ := argStrings(in, "roles")
	return model.CreateUserInput{
		Email:    argString(in, "email"),
		Password: argString(in, "password"),
		Roles:    roles,
	}
}

func decodeUserUpdate(in map[string]any) model.UpdateUserInput {
	out := model.UpdateUserInput{
		Email:    optString(in, "email"),
		Password: optString(in, "password"),
	}
	if roles, ok := argStrings(in, "roles"); ok {
		out.Roles = roles
		if out.Roles == nil {
			out.Roles = []string{}
		}
	}
	return out
}

func decodeShopInfoCreate(in map[string]any) (model.CreateShopInfoInput, error) {
	out := model.CreateShopInfoInput{
		Address:     argString(in, "address"),
		PhoneNumber: argString(in, "phoneNumber"),
		Email:       argString(in, "email"),
		OpenAt:      []model.OpenAt{},
		SocialMedia: []model.SocialMedia{},
	}

	openAt, _ := argList(in, "openAt")
	for _, o := range openAt {
		from, err := parseWeekDay(argString(o, "weekDayFrom"), "weekDayFrom")
		if err != nil {
			return model.CreateShopInfoInput{}, err
		}
		to, err := parseWeekDay(argString(o, "weekDayTo"), "weekDayTo")
		if err != nil {
			return model.CreateShopInfoInput{}, err
		}
		timeFrom, ok := argTime(o, "timeFrom")
		if !ok {
			return model.CreateShopInfoInput{}, apierror.BadRequest("invalid time", "timeFrom")
		}
		timeTo, ok := argTime(o, "timeTo")
		if !ok {
			return model.CreateShopInfoInput{}, apierror.BadRequest("invalid time", "timeTo")
		}
		out.OpenAt = append(out.OpenAt, model.OpenAt{WeekDayFrom: from, WeekDayTo: to, TimeFrom: timeFrom, TimeTo: timeTo})
	}

	social, _ := argList(in, "socialMedia")
	for _, s := range social {
		out.SocialMedia = append(out.SocialMedia, model.SocialMedia{Name: argString(s, "name"), Link: argString(s, "link")})
	}

	return out, nil
}

func decodeShopInfoUpdate(in map[string]any) (model.UpdateShopInfoInput, error) {
	out := model.UpdateShopInfoInput{
		Address:     optString(in, "address"),
		PhoneNumber: optString(in, "phoneNumber"),
		Email:       optString(in, "email"),
	}

	openAt, _ := argList(in, "openAt")
	for _, o := range openAt {
		id, err := parseID(o["id"], "openAt.id")
		if err != nil {
			return model.UpdateShopInfoInput{}, err
		}
		patch := model.UpdateOpenAtInput{ID: id}
		if raw := optString(o, "weekDayFrom"); raw != nil {
			day, err := parseWeekDay(*raw, "weekDayFrom")
			if err != nil {
				return model.UpdateShopInfoInput{}, err
			}
			patch.WeekDayFrom = &day
		}
		if raw := optString(o, "weekDayTo"); raw != nil {
			day, err := parseWeekDay(*raw, "weekDayTo")
			if err != nil {
				return model.UpdateShopInfoInput{}, err
			}
			patch.WeekDayTo = &day
		}
		if t, ok := argTime(o, "timeFrom"); ok {
			patch.TimeFrom = &t
		}
		if t, ok := argTime(o, "timeTo"); ok {
			patch.TimeTo = &t
		}
		out.OpenAt = append(out.OpenAt, patch)
	}

	social, _ := argList(in, "socialMedia")
	for _, s := range social {
		id, err := parseID(s["id"], "socialMedia.id")
		if err != nil {
			return model.UpdateShopInfoInput{}, err
		}
		out.SocialMedia = append(out.SocialMedia, model.UpdateSocialMediaInput{
			ID:   id,
			Name: optString(s, "name"),
			Link: optString(s, "link"),
		})
	}

	return out, nil
}
