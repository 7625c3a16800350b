package categories

import (
	"context"
	"testing"

	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	pkgerrors "github.com/maldonadorepuestos/storefront/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))
	return conn
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	cats := []models.Category{
		{Name: "Suspensión", Slug: "suspension", IsActive: true, DisplayOrder: 2},
		{Name: "Frenos", Slug: "frenos", IsActive: true, DisplayOrder: 1},
		{Name: "Embrague", Slug: "embrague", IsActive: true, DisplayOrder: 1},
		{Name: "Viejos", Slug: "viejos", IsActive: false, DisplayOrder: 0},
	}
	require.NoError(t, db.Create(&cats).Error)

	products := []models.Product{
		{CategoryID: cats[1].ID, Name: "Pastilla", Code: "F-1", Brand: "Fras-le", Price: decimal.NewFromInt(1000), IsActive: true},
		{CategoryID: cats[1].ID, Name: "Disco", Code: "F-2", Brand: "Fremax", Price: decimal.NewFromInt(2000), IsActive: true},
		{CategoryID: cats[1].ID, Name: "Campana", Code: "F-3", Brand: "Fremax", IsActive: true},
		{CategoryID: cats[0].ID, Name: "Buje", Code: "S-1", Brand: "Sadar", IsActive: true},
	}
	require.NoError(t, db.Create(&products).Error)
	// GORM skips zero-value bools on create when a default is declared.
	require.NoError(t, db.Model(&models.Product{}).Where("code = ?", "F-3").Update("is_active", false).Error)
	require.NoError(t, db.Model(&models.Category{}).Where("slug = ?", "viejos").Update("is_active", false).Error)
}

func TestServiceListOrdersAndCounts(t *testing.T) {
	db := openTestDB(t)
	seedCatalog(t, db)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	got, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []string{"embrague", "frenos", "suspension"}, []string{got[0].Slug, got[1].Slug, got[2].Slug})
	assert.Equal(t, int64(0), got[0].ProductsCount)
	assert.Equal(t, int64(2), got[1].ProductsCount)
	assert.Equal(t, int64(1), got[2].ProductsCount)

	all, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestServiceGetBySlug(t *testing.T) {
	db := openTestDB(t)
	seedCatalog(t, db)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	cat, err := svc.GetBySlug(context.Background(), "frenos")
	require.NoError(t, err)
	assert.Equal(t, "Frenos", cat.Name)
	assert.Equal(t, int64(2), cat.ProductsCount)

	_, err = svc.GetBySlug(context.Background(), "nada")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
