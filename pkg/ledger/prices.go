package ledger

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"stonktip/models"
	"stonktip/pkg/tip"
)

// SetPrice upserts the observed price of town at turn.
func (l *Ledger) SetPrice(ctx context.Context, town tip.HeroTown, turn, price int, editor string) error {
	if town == tip.Unknown {
		return fmt.Errorf("ledger: price for unknown town")
	}
	p := models.TownPrice{HeroTown: town.String(), Turn: turn, Price: price, Editor: editor}
	err := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hero_town"}, {Name: "turn"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "editor", "updated_at"}),
	}).Create(&p).Error
	if err != nil {
		return fmt.Errorf("ledger set price %s T%d: %w", town, turn, err)
	}
	return nil
}

// Prices returns every observed price keyed by town then turn. Rows with unknown town
// labels are skipped.
func (l *Ledger) Prices(ctx context.Context) (map[tip.HeroTown]map[int]int, error) {
	var rows []models.TownPrice
	if err := l.db.WithContext(ctx).Order("hero_town asc, turn asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ledger prices: %w", err)
	}
	out := map[tip.HeroTown]map[int]int{}
	for _, r := range rows {
		town, ok := tip.ParseHeroTown(r.HeroTown)
		if !ok {
			continue
		}
		if out[town] == nil {
			out[town] = map[int]int{}
		}
		out[town][r.Turn] = r.Price
	}
	return out, nil
}
