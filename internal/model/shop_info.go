package model

import (
	"strings"
	"time"
)

type WeekDay string

const (
	Monday    WeekDay = "MONDAY"
	Tuesday   WeekDay = "TUESDAY"
	Wednesday WeekDay = "WEDNESDAY"
	Thursday  WeekDay = "THURSDAY"
	Friday    WeekDay = "FRIDAY"
	Saturday  WeekDay = "SATURDAY"
	Sunday    WeekDay = "SUNDAY"
)

var WeekDays = []WeekDay{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func ParseWeekDay(raw string) (WeekDay, bool) {
	candidate := WeekDay(strings.ToUpper(strings.TrimSpace(raw)))
	for _, day := range WeekDays {
		if day == candidate {
			return day, true
		}
	}
	return "", false
}

type ShopInfo struct {
	ID          int64         `json:"id"`
	Address     string        `json:"address"`
	PhoneNumber string        `json:"phone_number"`
	Email       string        `json:"email"`
	OpenAt      []OpenAt      `json:"open_at"`
	SocialMedia []SocialMedia `json:"social_media"`
}

type OpenAt struct {
	ID          int64     `json:"id"`
	WeekDayFrom WeekDay   `json:"week_day_from"`
	WeekDayTo   WeekDay   `json:"week_day_to"`
	TimeFrom    time.Time `json:"time_from"`
	TimeTo      time.Time `json:"time_to"`
}

type SocialMedia struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Link string `json:"link"`
}

type CreateShopInfoInput struct {
	Address     string
	PhoneNumber string
	Email       string
	OpenAt      []OpenAt
	SocialMedia []SocialMedia
}

type UpdateShopInfoInput struct {
	Address     *string
	PhoneNumber *string
	Email       *string
	OpenAt      []UpdateOpenAtInput
	SocialMedia []UpdateSocialMediaInput
}

// UpdateOpenAtInput patches the opening-hours row identified by ID.
type UpdateOpenAtInput struct {
	ID          int64
	WeekDayFrom *WeekDay
	WeekDayTo   *WeekDay
	TimeFrom    *time.Time
	TimeTo      *time.Time
}

type UpdateSocialMediaInput struct {
	ID   int64
	Name *string
	Link *string
}
