// Package ledger stores accepted tips keyed by (town, target turn).
package ledger

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stonktip/models"
	"stonktip/pkg/tip"
)

var ErrNotFound = errors.New("ledger: no tip recorded")

// Ledger is a gorm-backed tip table.
type Ledger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Migrate creates the tip and price tables.
func (l *Ledger) Migrate() error {
	return l.db.AutoMigrate(&models.TipEntry{}, &models.TownPrice{})
}

// Record upserts t. An existing row for the same town and target turn takes the new
// current turn, price change, source and channel.
func (l *Ledger) Record(ctx context.Context, t tip.Tip, channel string) (*models.TipEntry, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("ledger: refusing to record failed tip")
	}
	e := models.TipEntry{
		HeroTown:    t.HeroTown.String(),
		TargetTurn:  t.TargetTurn,
		CurrentTurn: t.CurrentTurn,
		PriceChange: t.PriceChange,
		SourceURL:   t.SourceURL,
		Channel:     channel,
	}
	err := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hero_town"}, {Name: "target_turn"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_turn", "price_change", "source_url", "channel", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return nil, fmt.Errorf("ledger record %s: %w", t, err)
	}
	return &e, nil
}

// Filter narrows List. A zero Town lists every town.
type Filter struct {
	Town  tip.HeroTown
	Limit int
}

// List returns tips ordered by town then target turn.
func (l *Ledger) List(ctx context.Context, f Filter) ([]tip.Tip, error) {
	q := l.db.WithContext(ctx).Model(&models.TipEntry{})
	if f.Town != tip.Unknown {
		q = q.Where("hero_town = ?", f.Town.String())
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var rows []models.TipEntry
	if err := q.Order("hero_town asc, target_turn asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ledger list: %w", err)
	}
	out := make([]tip.Tip, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToTip(r))
	}
	return out, nil
}

// Get returns the tip for town at targetTurn.
func (l *Ledger) Get(ctx context.Context, town tip.HeroTown, targetTurn int) (tip.Tip, error) {
	var row models.TipEntry
	err := l.db.WithContext(ctx).
		Where("hero_town = ? AND target_turn = ?", town.String(), targetTurn).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tip.Failed(), ErrNotFound
	}
	if err != nil {
		return tip.Failed(), fmt.Errorf("ledger get: %w", err)
	}
	return ToTip(row), nil
}

// Latest returns the first recorded tip for town whose target turn is after afterTurn.
func (l *Ledger) Latest(ctx context.Context, town tip.HeroTown, afterTurn int) (tip.Tip, error) {
	var row models.TipEntry
	err := l.db.WithContext(ctx).
		Where("hero_town = ? AND target_turn > ?", town.String(), afterTurn).
		Order("target_turn asc").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tip.Failed(), ErrNotFound
	}
	if err != nil {
		return tip.Failed(), fmt.Errorf("ledger latest: %w", err)
	}
	return ToTip(row), nil
}

// ToTip converts a stored row back to a tip. Unknown town labels yield tip.Unknown.
func ToTip(e models.TipEntry) tip.Tip {
	town, _ := tip.ParseHeroTown(e.HeroTown)
	t := tip.New(town, e.CurrentTurn, e.TargetTurn, e.PriceChange)
	t.SourceURL = e.SourceURL
	return t
}

// Cell renders the ledger cell text for t: "T<current> <op> <abs>".
func Cell(t tip.Tip) string {
	op, abs := t.PriceChangeOpAndAbs()
	return fmt.Sprintf("T%d %s %d", t.CurrentTurn, op, abs)
}
