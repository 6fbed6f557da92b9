package sqlite

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JonMunkholm/geoentities/internal/core"
)

type writer struct {
	db        *gorm.DB
	batchSize int
}

var idColumn = []clause.Column{{Name: "id"}}

// insert writes models in batches with the ON CONFLICT clause for policy.
// models must be a pointer to a slice of table models.
func (w *writer) insert(ctx context.Context, e core.Entity, models any, n int, policy core.ConflictPolicy) (int64, error) {
	if n == 0 {
		return 0, nil
	}
	tx := w.db.WithContext(ctx).Omit(clause.Associations)
	switch policy {
	case core.ConflictUpdate:
		tx = tx.Clauses(clause.OnConflict{Columns: idColumn, UpdateAll: true})
	case core.ConflictError:
	default:
		tx = tx.Clauses(clause.OnConflict{Columns: idColumn, DoNothing: true})
	}
	res := tx.CreateInBatches(models, w.batchSize)
	if res.Error != nil {
		return 0, translateError(e, res.Error)
	}
	return res.RowsAffected, nil
}

func (w *writer) InsertRegions(ctx context.Context, rows []core.Region, policy core.ConflictPolicy) (int64, error) {
	models := make([]regionModel, len(rows))
	for i, r := range rows {
		models[i] = fromRegion(r)
	}
	return w.insert(ctx, core.EntityRegion, &models, len(models), policy)
}

func (w *writer) InsertSubRegions(ctx context.Context, rows []core.SubRegion, policy core.ConflictPolicy) (int64, error) {
	models := make([]subRegionModel, len(rows))
	for i, r := range rows {
		models[i] = fromSubRegion(r)
	}
	return w.insert(ctx, core.EntitySubRegion, &models, len(models), policy)
}

func (w *writer) InsertCountries(ctx context.Context, rows []core.Country, policy core.ConflictPolicy) (int64, error) {
	models := make([]countryModel, len(rows))
	for i, c := range rows {
		models[i] = fromCountry(c)
	}
	return w.insert(ctx, core.EntityCountry, &models, len(models), policy)
}

func (w *writer) InsertStates(ctx context.Context, rows []core.State, policy core.ConflictPolicy) (int64, error) {
	models := make([]stateModel, len(rows))
	for i, s := range rows {
		models[i] = fromState(s)
	}
	return w.insert(ctx, core.EntityState, &models, len(models), policy)
}

func (w *writer) InsertCities(ctx context.Context, rows []core.City, policy core.ConflictPolicy) (int64, error) {
	models := make([]cityModel, len(rows))
	for i, c := range rows {
		models[i] = fromCity(c)
	}
	return w.insert(ctx, core.EntityCity, &models, len(models), policy)
}
