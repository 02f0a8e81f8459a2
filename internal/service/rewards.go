package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lyonms2/avatar-arena/internal/abilities"
	"github.com/lyonms2/avatar-arena/internal/constants"
	"github.com/lyonms2/avatar-arena/internal/game"
	"github.com/lyonms2/avatar-arena/internal/logging"
	"github.com/lyonms2/avatar-arena/internal/settlement"
	"github.com/lyonms2/avatar-arena/internal/storage"
)

// Collection is the result of collecting a season reward.
type Collection struct {
	RewardID  string                `json:"rewardId"`
	Payout    settlement.Payout     `json:"payout"`
	Coins     int                   `json:"moedas"`
	Fragments int                   `json:"fragmentos"`
	Avatars   []*game.Avatar        `json:"avatares,omitempty"`
	Rank      settlement.HunterRank `json:"rank"`
}

type Rewards struct {
	repo     storage.Repository
	registry *abilities.Registry
	ranks    []settlement.HunterRank
	rng      game.Roller
	now      func() time.Time
	newID    func() string
}

func NewRewards(repo storage.Repository, reg *abilities.Registry, ranks []settlement.HunterRank, rng game.Roller, now func() time.Time) *Rewards {
	if now == nil {
		now = time.Now
	}
	return &Rewards{repo: repo, registry: reg, ranks: ranks, rng: rng, now: now, newID: uuid.NewString}
}

// Collect pays out a pending reward once. A reward that is missing, owned by
// another player or already collected is reported as ErrRewardNotFound.
func (r *Rewards) Collect(ctx context.Context, userID, rewardID string) (out *Collection, err error) {
	ctx, span := startSpan(ctx, "Rewards.Collect", attribute.String("user.id", userID), attribute.String("reward.id", rewardID))
	defer func() { endSpan(span, err) }()

	userID, rewardID = strings.TrimSpace(userID), strings.TrimSpace(rewardID)
	if userID == "" || rewardID == "" {
		return nil, ErrInvalidInput
	}
	reward, err := r.repo.GetPendingReward(ctx, rewardID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrRewardNotFound
	}
	if err != nil {
		return nil, err
	}
	if reward.UserID != userID || reward.Collected {
		return nil, ErrRewardNotFound
	}

	xp := 0
	p, err := r.repo.GetPlayer(ctx, userID)
	switch {
	case err == nil:
		xp = p.HunterRankXP
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}
	rank := settlement.RankFor(r.ranks, xp)
	payout := settlement.CollectPayout(*reward, rank)

	var grants []*game.Avatar
	if reward.GrantLegendary {
		grants = append(grants, r.mint(userID, game.RarityLegendary))
	}
	if reward.GrantRare {
		grants = append(grants, r.mint(userID, game.RarityRare))
	}

	// the guarded update inside CollectReward decides the race between two
	// concurrent collections
	if err := r.repo.CollectReward(ctx, rewardID, userID, payout, grants, r.now()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRewardNotFound
		}
		return nil, err
	}

	out = &Collection{RewardID: rewardID, Payout: payout, Avatars: grants, Rank: rank}
	if p, err := r.repo.GetPlayer(ctx, userID); err == nil {
		out.Coins, out.Fragments = p.Coins, p.Fragments
	} else {
		logging.Error("failed to reload balances after collection", err, logging.Fields{constants.LogFieldUserID: userID})
	}
	logging.Info("season reward collected", logging.Fields{
		constants.LogFieldUserID:   userID,
		constants.LogFieldRewardID: rewardID,
		"rank":                     rank.Tier,
		"coins":                    payout.Coins,
		"fragments":                payout.Fragments,
	})
	return out, nil
}

func (r *Rewards) mint(ownerID string, rarity game.Rarity) *game.Avatar {
	a := game.GenerateAvatar(r.rng, r.newID(), ownerID, rarity, "", r.registry.StarterSet)
	now := r.now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	return a
}
