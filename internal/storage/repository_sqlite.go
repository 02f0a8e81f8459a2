package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lyonms2/avatar-arena/internal/constants"
	"github.com/lyonms2/avatar-arena/internal/game"
	"github.com/lyonms2/avatar-arena/internal/logging"
	"github.com/lyonms2/avatar-arena/internal/settlement"
)

// roomRecord stores a room as a JSON document. Status, participants and
// finish time are copied into columns for querying.
type roomRecord struct {
	ID          string `gorm:"primaryKey"`
	HostUserID  string `gorm:"index"`
	GuestUserID string `gorm:"index"`
	Status      string `gorm:"index"`
	Version     int
	Document    []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FinishedAt  *time.Time `gorm:"index"`
}

func (roomRecord) TableName() string { return "battle_rooms" }

type sqliteRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSQLiteRepository wraps an open database. now defaults to time.Now.
func NewSQLiteRepository(db *gorm.DB, now func() time.Time) Repository {
	if now == nil {
		now = time.Now
	}
	return &sqliteRepository{db: db, now: now}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func encodeRoom(room *game.Room) (*roomRecord, error) {
	doc, err := json.Marshal(room)
	if err != nil {
		return nil, fmt.Errorf("encode room %s: %w", room.ID, err)
	}
	var finished *time.Time
	if room.FinishedAt != nil {
		t := room.FinishedAt.UTC()
		finished = &t
	}
	return &roomRecord{
		ID:          room.ID,
		HostUserID:  room.HostUserID,
		GuestUserID: room.GuestUserID,
		Status:      string(room.Status),
		Version:     room.Version,
		Document:    doc,
		CreatedAt:   room.CreatedAt.UTC(),
		UpdatedAt:   room.UpdatedAt.UTC(),
		FinishedAt:  finished,
	}, nil
}

func decodeRoom(rec *roomRecord) (*game.Room, error) {
	doc, err := normalizeRoomDocument(rec.Document)
	if err != nil {
		return nil, err
	}
	var room game.Room
	if err := json.Unmarshal(doc, &room); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", rec.ID, err)
	}
	// the columns are authoritative for identity and concurrency
	room.ID = rec.ID
	room.Version = rec.Version
	if room.FinishedAt == nil && rec.FinishedAt != nil {
		t := rec.FinishedAt.UTC()
		room.FinishedAt = &t
	}
	return &room, nil
}

func (r *sqliteRepository) CreateRoom(ctx context.Context, room *game.Room) error {
	now := r.now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now
	rec, err := encodeRoom(room)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *sqliteRepository) GetRoom(ctx context.Context, id string) (*game.Room, error) {
	var rec roomRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return decodeRoom(&rec)
}

// casUpdate writes room if its stored version is still expected.
func (r *sqliteRepository) casUpdate(tx *gorm.DB, room *game.Room, expected int) error {
	room.Version = expected + 1
	room.UpdatedAt = r.now().UTC()
	rec, err := encodeRoom(room)
	if err != nil {
		room.Version = expected
		return err
	}
	res := tx.Model(&roomRecord{}).
		Where("id = ? AND version = ?", room.ID, expected).
		Updates(map[string]interface{}{
			"guest_user_id": rec.GuestUserID,
			"status":        rec.Status,
			"version":       rec.Version,
			"document":      rec.Document,
			"updated_at":    rec.UpdatedAt,
			"finished_at":   rec.FinishedAt,
		})
	if res.Error != nil {
		room.Version = expected
		return res.Error
	}
	if res.RowsAffected == 0 {
		room.Version = expected
		return r.missingOrConflict(tx, room.ID)
	}
	return nil
}

func (r *sqliteRepository) missingOrConflict(tx *gorm.DB, id string) error {
	var count int64
	if err := tx.Model(&roomRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrVersionConflict
}

func (r *sqliteRepository) UpdateRoom(ctx context.Context, room *game.Room, expectedVersion int) error {
	return r.casUpdate(r.db.WithContext(ctx), room, expectedVersion)
}

func (r *sqliteRepository) FinishRoom(ctx context.Context, room *game.Room, expectedVersion int, s settlement.Settlement) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.casUpdate(tx, room, expectedVersion); err != nil {
			return err
		}
		return applySettlement(tx, s)
	})
	if err != nil {
		room.Version = expectedVersion
	}
	return err
}

func (r *sqliteRepository) AbandonRoom(ctx context.Context, room *game.Room, expectedVersion int, s settlement.Settlement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND version = ?", room.ID, expectedVersion).Delete(&roomRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return r.missingOrConflict(tx, room.ID)
		}
		return applySettlement(tx, s)
	})
}

func (r *sqliteRepository) ListFinishedRooms(ctx context.Context) ([]FinishedRoom, error) {
	var recs []roomRecord
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(game.StatusFinished)).
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]FinishedRoom, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		fr := FinishedRoom{ID: rec.ID}
		if rec.FinishedAt != nil {
			fr.FinishedAt = rec.FinishedAt.UTC()
		} else if room, err := decodeRoom(rec); err == nil && room.FinishedAt != nil {
			fr.FinishedAt = room.FinishedAt.UTC()
		} else {
			// without a finish time the room can never age out; report it
			logging.Warn("finished room without finish time", logging.Fields{constants.LogFieldRoomID: rec.ID})
		}
		out = append(out, fr)
	}
	return out, nil
}

func (r *sqliteRepository) DeleteRooms(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("id IN ? AND status = ?", ids, string(game.StatusFinished)).
		Delete(&roomRecord{})
	return int(res.RowsAffected), res.Error
}

func (r *sqliteRepository) GetAvatar(ctx context.Context, id string) (*game.Avatar, error) {
	var a game.Avatar
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *sqliteRepository) SaveAvatar(ctx context.Context, a *game.Avatar) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *sqliteRepository) GetPlayer(ctx context.Context, userID string) (*game.Player, error) {
	var p game.Player
	if err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *sqliteRepository) SavePlayer(ctx context.Context, p *game.Player) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *sqliteRepository) GetPendingReward(ctx context.Context, id string) (*game.PendingReward, error) {
	var pr game.PendingReward
	if err := r.db.WithContext(ctx).First(&pr, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &pr, nil
}

func (r *sqliteRepository) SavePendingReward(ctx context.Context, pr *game.PendingReward) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(pr).Error
}

func (r *sqliteRepository) CollectReward(ctx context.Context, rewardID, userID string, payout settlement.Payout, grants []*game.Avatar, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		collectedAt := at.UTC()
		res := tx.Model(&game.PendingReward{}).
			Where("id = ? AND user_id = ? AND collected = ?", rewardID, userID, false).
			Updates(map[string]interface{}{"collected": true, "collected_at": &collectedAt})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		p, err := ensurePlayer(tx, userID)
		if err != nil {
			return err
		}
		p.Coins += payout.Coins
		p.Fragments += payout.Fragments
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		for _, a := range grants {
			if err := tx.Create(a).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// --- settlement ---------------------------------------------------------

func ensurePlayer(tx *gorm.DB, userID string) (*game.Player, error) {
	var p game.Player
	err := tx.First(&p, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p = game.Player{UserID: userID, Level: 1}
		if err := tx.Create(&p).Error; err != nil {
			return nil, err
		}
		return &p, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func applySettlement(tx *gorm.DB, s settlement.Settlement) error {
	for _, d := range s.Players {
		if d.UserID == "" {
			continue
		}
		p, err := ensurePlayer(tx, d.UserID)
		if err != nil {
			return err
		}
		p.Fame += d.Fame
		if p.Fame < 0 {
			p.Fame = 0
		}
		p.HunterRankXP += d.RankXP
		if err := tx.Save(p).Error; err != nil {
			return err
		}
	}
	for _, t := range s.Transfers {
		if t.Amount <= 0 || t.From == "" || t.To == "" {
			continue
		}
		from, err := ensurePlayer(tx, t.From)
		if err != nil {
			return err
		}
		amount := t.Amount
		if amount > from.Coins {
			amount = from.Coins
		}
		if amount <= 0 {
			continue
		}
		from.Coins -= amount
		if err := tx.Save(from).Error; err != nil {
			return err
		}
		to, err := ensurePlayer(tx, t.To)
		if err != nil {
			return err
		}
		to.Coins += amount
		if err := tx.Save(to).Error; err != nil {
			return err
		}
	}
	for _, c := range s.Avatars {
		var a game.Avatar
		err := tx.First(&a, "id = ?", c.AvatarID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logging.Warn("settlement skipped missing avatar", logging.Fields{constants.LogFieldAvatarID: c.AvatarID, constants.LogFieldRoomID: s.RoomID})
			continue
		}
		if err != nil {
			return err
		}
		if c.OwnerID != "" && a.OwnerID != c.OwnerID {
			return fmt.Errorf("avatar %s changed owner during battle", a.ID)
		}
		a.HP = clamp(c.HP, 0, a.MaxHP)
		a.Bond = clamp(a.Bond+c.BondDelta, 0, 100)
		a.Fatigue = clamp(a.Fatigue+c.FatigueDelta, 0, 100)
		a.Alive = a.HP > 0
		if err := tx.Save(&a).Error; err != nil {
			return err
		}
	}
	return nil
}
