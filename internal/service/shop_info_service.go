package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go-shop-api/internal/model"
	"go-shop-api/pkg/apierror"
)

type ShopInfoStore interface {
	Get(ctx context.Context) (model.ShopInfo, error)
	Create(ctx context.Context, in model.CreateShopInfoInput) (model.ShopInfo, error)
	Update(ctx context.Context, id int64, in model.UpdateShopInfoInput) (model.ShopInfo, error)
	Delete(ctx context.Context, id int64) (model.ShopInfo, error)
}

type ShopInfoService struct {
	store ShopInfoStore
	audit *AuditService
}

func NewShopInfoService(store ShopInfoStore, audit *AuditService) *ShopInfoService {
	return &ShopInfoService{store: store, audit: audit}
}

func (s *ShopInfoService) Get(ctx context.Context) (model.ShopInfo, error) {
	info, err := s.store.Get(ctx)
	return info, translateShopErr(err, "")
}

func (s *ShopInfoService) Create(ctx context.Context, in model.CreateShopInfoInput) (model.ShopInfo, error) {
	in.Address = strings.TrimSpace(in.Address)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Email = strings.TrimSpace(in.Email)
	if in.Address == "" || in.PhoneNumber == "" || in.Email == "" {
		return model.ShopInfo{}, apierror.BadRequest("address, phoneNumber and email are required", "")
	}
	for _, o := range in.OpenAt {
		if !o.TimeTo.After(o.TimeFrom) {
			return model.ShopInfo{}, apierror.BadRequest("timeTo must be after timeFrom", "openAt")
		}
	}

	info, err := s.store.Create(ctx, in)
	err = translateShopErr(err, "")
	s.audit.Record(ctx, "shop_info.create", strconv.FormatInt(info.ID, 10), err)
	return info, err
}

// Update patches the current shop record.
func (s *ShopInfoService) Update(ctx context.Context, in model.UpdateShopInfoInput) (model.ShopInfo, error) {
	for _, field := range []*string{in.Address, in.PhoneNumber, in.Email} {
		if field != nil && strings.TrimSpace(*field) == "" {
			return model.ShopInfo{}, apierror.BadRequest("fields must not be empty", "")
		}
	}

	current, err := s.store.Get(ctx)
	if err != nil {
		return model.ShopInfo{}, translateShopErr(err, "")
	}

	info, err := s.store.Update(ctx, current.ID, in)
	err = translateShopErr(err, strconv.FormatInt(current.ID, 10))
	s.audit.Record(ctx, "shop_info.update", strconv.FormatInt(current.ID, 10), err)
	return info, err
}

// Delete removes the current shop record and returns it.
func (s *ShopInfoService) Delete(ctx context.Context) (model.ShopInfo, error) {
	current, err := s.store.Get(ctx)
	if err != nil {
		return model.ShopInfo{}, translateShopErr(err, "")
	}

	info, err := s.store.Delete(ctx, current.ID)
	err = translateShopErr(err, strconv.FormatInt(current.ID, 10))
	s.audit.Record(ctx, "shop_info.delete", strconv.FormatInt(current.ID, 10), err)
	return info, err
}

func translateShopErr(err error, details string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrShopInfoNotFound):
		return apierror.NotFound("Shop info doesn't exist", details)
	case errors.Is(err, model.ErrInvalidInput):
		return apierror.BadRequest("Invalid input", err.Error())
	default:
		return err
	}
}
