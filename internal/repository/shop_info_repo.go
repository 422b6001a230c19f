package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-shop-api/internal/model"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ShopInfoRepository struct {
	pool *pgxpool.Pool
}

func NewShopInfoRepository(pool *pgxpool.Pool) *ShopInfoRepository {
	return &ShopInfoRepository{pool: pool}
}

// Get returns the first shop record with its opening hours and social links.
func (r *ShopInfoRepository) Get(ctx context.Context) (model.ShopInfo, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM shop_info ORDER BY id LIMIT 1`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ShopInfo{}, model.ErrShopInfoNotFound
	}
	if err != nil {
		return model.ShopInfo{}, fmt.Errorf("find shop info: %w", err)
	}
	return loadShopInfo(ctx, r.pool, id)
}

func (r *ShopInfoRepository) GetByID(ctx context.Context, id int64) (model.ShopInfo, error) {
	return loadShopInfo(ctx, r.pool, id)
}

func (r *ShopInfoRepository) Create(ctx context.Context, in model.CreateShopInfoInput) (model.ShopInfo, error) {
	var created model.ShopInfo
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO shop_info (address, phone_number, email) VALUES ($1, $2, $3) RETURNING id`,
			in.Address, in.PhoneNumber, in.Email).Scan(&id); err != nil {
			return fmt.Errorf("insert shop info: %w", err)
		}

		for _, o := range in.OpenAt {
			if _, err := tx.Exec(ctx,
				`INSERT INTO open_at (shop_info_id, week_day_from, week_day_to, time_from, time_to)
				 VALUES ($1, $2, $3, $4, $5)`,
				id, string(o.WeekDayFrom), string(o.WeekDayTo), o.TimeFrom, o.TimeTo); err != nil {
				return fmt.Errorf("insert open_at: %w", err)
			}
		}
		for _, s := range in.SocialMedia {
			if _, err := tx.Exec(ctx,
				`INSERT INTO social_media (shop_info_id, name, link) VALUES ($1, $2, $3)`,
				id, s.Name, s.Link); err != nil {
				return fmt.Errorf("insert social_media: %w", err)
			}
		}

		var err error
		created, err = loadShopInfo(ctx, tx, id)
		return err
	})
	if err != nil {
		return model.ShopInfo{}, err
	}
	return created, nil
}

// Update patches scalar fields and the nested rows named by id. A nested id
// that does not belong to the shop record fails with model.ErrInvalidInput.
func (r *ShopInfoRepository) Update(ctx context.Context, id int64, in model.UpdateShopInfoInput) (model.ShopInfo, error) {
	var updated model.ShopInfo
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE shop_info SET
			   address = COALESCE($2, address),
			   phone_number = COALESCE($3, phone_number),
			   email = COALESCE($4, email)
			 WHERE id = $1`,
			id, in.Address, in.PhoneNumber, in.Email)
		if err != nil {
			return fmt.Errorf("update shop info: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrShopInfoNotFound
		}

		for _, o := range in.OpenAt {
			tag, err := tx.Exec(ctx,
				`UPDATE open_at SET
				   week_day_from = COALESCE($3, week_day_from),
				   week_day_to = COALESCE($4, week_day_to),
				   time_from = COALESCE($5, time_from),
				   time_to = COALESCE($6, time_to)
				 WHERE id = $1 AND shop_info_id = $2`,
				o.ID, id, weekDayArg(o.WeekDayFrom), weekDayArg(o.WeekDayTo), o.TimeFrom, o.TimeTo)
			if err != nil {
				return fmt.Errorf("update open_at: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: open_at %d not found", model.ErrInvalidInput, o.ID)
			}
		}

		for _, s := range in.SocialMedia {
			tag, err := tx.Exec(ctx,
				`UPDATE social_media SET
				   name = COALESCE($3, name),
				   link = COALESCE($4, link)
				 WHERE id = $1 AND shop_info_id = $2`,
				s.ID, id, s.Name, s.Link)
			if err != nil {
				return fmt.Errorf("update social_media: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: social_media %d not found", model.ErrInvalidInput, s.ID)
			}
		}

		updated, err = loadShopInfo(ctx, tx, id)
		return err
	})
	if err != nil {
		return model.ShopInfo{}, err
	}
	return updated, nil
}

// Delete removes the record; nested rows go with it via ON DELETE CASCADE.
func (r *ShopInfoRepository) Delete(ctx context.Context, id int64) (model.ShopInfo, error) {
	var deleted model.ShopInfo
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		deleted, err = loadShopInfo(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM shop_info WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete shop info: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.ShopInfo{}, err
	}
	return deleted, nil
}

func loadShopInfo(ctx context.Context, q querier, id int64) (model.ShopInfo, error) {
	var info model.ShopInfo
	err := q.QueryRow(ctx,
		`SELECT id, address, phone_number, email FROM shop_info WHERE id = $1`, id).
		Scan(&info.ID, &info.Address, &info.PhoneNumber, &info.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ShopInfo{}, model.ErrShopInfoNotFound
	}
	if err != nil {
		return model.ShopInfo{}, fmt.Errorf("load shop info: %w", err)
	}

	rows, err := q.Query(ctx,
		`SELECT id, week_day_from, week_day_to, time_from, time_to
		 FROM open_at WHERE shop_info_id = $1 ORDER BY id`, id)
	if err != nil {
		return model.ShopInfo{}, fmt.Errorf("load open_at: %w", err)
	}
	info.OpenAt = make([]model.OpenAt, 0)
	for rows.Next() {
		var o model.OpenAt
		var from, to string
		if err := rows.Scan(&o.ID, &from, &to, &o.TimeFrom, &o.TimeTo); err != nil {
			rows.Close()
			return model.ShopInfo{}, fmt.Errorf("scan open_at: %w", err)
		}
		o.WeekDayFrom, o.WeekDayTo = model.WeekDay(from), model.WeekDay(to)
		o.TimeFrom, o.TimeTo = o.TimeFrom.UTC(), o.TimeTo.UTC()
		info.OpenAt = append(info.OpenAt, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return model.ShopInfo{}, err
	}

	rows, err = q.Query(ctx,
		`SELECT id, name, link FROM social_media WHERE shop_info_id = $1 ORDER BY id`, id)
	if err != nil {
		return model.ShopInfo{}, fmt.Errorf("load social_media: %w", err)
	}
	defer rows.Close()
	info.SocialMedia = make([]model.SocialMedia, 0)
	for rows.Next() {
		var s model.SocialMedia
		if err := rows.Scan(&s.ID, &s.Name, &s.Link); err != nil {
			return model.ShopInfo{}, fmt.Errorf("scan social_media: %w", err)
		}
		info.SocialMedia = append(info.SocialMedia, s)
	}
	return info, rows.Err()
}

func weekDayArg(day *model.WeekDay) *string {
	if day == nil {
		return nil
	}
	s := string(*day)
	return &s
}
