package plants

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadeeqati/hadeeqati-backend/internal/media"
	"github.com/hadeeqati/hadeeqati-backend/internal/planttypes"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/dbtest"
	"github.com/hadeeqati/hadeeqati-backend/pkg/db/models"
	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
	pkgerrors "github.com/hadeeqati/hadeeqati-backend/pkg/errors"
	"github.com/hadeeqati/hadeeqati-backend/pkg/i18n"
	"github.com/hadeeqati/hadeeqati-backend/pkg/pagination"
)

var anchor = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

type stubMedia struct {
	stored  []string
	removed []string
	err     error
}

func (s *stubMedia) StoreImage(ctx context.Context, kind enums.MediaKind, entityID string, data []byte) (*media.Stored, error) {
	if s.err != nil {
		return nil, s.err
	}
	url := "/uploads/" + kind.String() + "/" + entityID + "/" + uuid.NewString() + ".png"
	s.stored = append(s.stored, url)
	return &media.Stored{URL: url}, nil
}

func (s *stubMedia) Remove(ctx context.Context, url string) error {
	s.removed = append(s.removed, url)
	return nil
}

type fixture struct {
	client *db.Client
	svc    Service
	media  *stubMedia
	now    *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.OpenClient(t)
	now := anchor
	f := &fixture{client: client, media: &stubMedia{}, now: &now}
	svc, err := NewService(ServiceParams{
		DB:         client,
		PlantTypes: planttypes.NewRepository(client.DB()),
		Media:      f.media,
		Now:        func() time.Time { return *f.now },
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) createPlant(t *testing.T, owner uuid.UUID, req CreatePlantRequest) *models.Plant {
	t.Helper()
	if req.PlantName.EN == "" {
		req.PlantName = i18n.NewText("Monstera", "مونستيرا")
	}
	plant, err := f.svc.Create(context.Background(), owner, req)
	require.NoError(t, err)
	return plant
}

func intPtr(v int) *int { return &v }

func TestCreateAnchorsScheduleOnNow(t *testing.T) {
	f := newFixture(t)
	plant := f.createPlant(t, uuid.New(), CreatePlantRequest{})

	assert.Equal(t, 7, plant.WateringIntervalDays)
	assert.Nil(t, plant.LastWateredDate)
	require.NotNil(t, plant.NextWateringDate)
	assert.True(t, plant.NextWateringDate.Equal(anchor.AddDate(0, 0, 7)))
}

func TestCreateUsesPlantTypeInterval(t *testing.T) {
	f := newFixture(t)
	pt := &models.PlantType{Name: i18n.NewText("Cactus", "صبار"), WateringIntervalDays: intPtr(14)}
	require.NoError(t, planttypes.NewRepository(f.client.DB()).Create(context.Background(), pt))

	plant := f.createPlant(t, uuid.New(), CreatePlantRequest{PlantTypeID: &pt.ID})
	assert.Equal(t, 14, plant.WateringIntervalDays)
	require.NotNil(t, plant.PlantType)
	assert.Equal(t, "Cactus", Localize(plant, enums.LanguageEnglish, anchor).PlantTypeName)

	missing := uuid.New()
	_, err := f.svc.Create(context.Background(), uuid.New(), CreatePlantRequest{
		PlantTypeID: &missing,
		PlantName:   i18n.NewText("Ghost", ""),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCreateWithExplicitDates(t *testing.T) {
	f := newFixture(t)
	lastWatered := anchor.AddDate(0, 0, -2)
	lastFed := anchor.AddDate(0, 0, -10)
	plant := f.createPlant(t, uuid.New(), CreatePlantRequest{
		WateringIntervalDays:    intPtr(3),
		LastWateredDate:         &lastWatered,
		FertilizingIntervalDays: intPtr(30),
		LastFertilizedDate:      &lastFed,
	})

	require.NotNil(t, plant.LastWateredDate)
	assert.True(t, plant.NextWateringDate.Equal(lastWatered.AddDate(0, 0, 3)))
	require.NotNil(t, plant.NextFertilizingDate)
	assert.True(t, plant.NextFertilizingDate.Equal(lastFed.AddDate(0, 0, 30)))
}

func TestCreateValidatesInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), uuid.New(), CreatePlantRequest{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	low, high := 30.0, 10.0
	_, err = f.svc.Create(context.Background(), uuid.New(), CreatePlantRequest{
		PlantName:      i18n.NewText("Fern", ""),
		TemperatureMin: &low,
		TemperatureMax: &high,
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestWaterScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := uuid.New()
	plant := f.createPlant(t, owner, CreatePlantRequest{WateringIntervalDays: intPtr(7)})

	first := anchor
	watered, err := f.svc.Water(ctx, owner, plant.ID, WaterRequest{WateredAt: &first})
	require.NoError(t, err)
	assert.True(t, watered.NextWateringDate.Equal(anchor.AddDate(0, 0, 7)))

	second := anchor.AddDate(0, 0, 10)
	notes := "  deep soak "
	watered, err = f.svc.Water(ctx, owner, plant.ID, WaterRequest{WateredAt: &second, Notes: &notes})
	require.NoError(t, err)
	assert.True(t, watered.LastWateredDate.Equal(second))
	assert.True(t, watered.NextWateringDate.Equal(anchor.AddDate(0, 0, 17)))

	reloaded, err := f.svc.Get(ctx, owner, plant.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.LastWateredDate.Equal(second))
	assert.True(t, reloaded.NextWateringDate.Equal(anchor.AddDate(0, 0, 17)))

	history, err := f.svc.WateringHistory(ctx, owner, plant.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].WateredAt.Equal(second))
	require.NotNil(t, history[0].Notes)
	assert.Equal(t, "deep soak", *history[0].Notes)
	assert.True(t, history[1].WateredAt.Equal(first))
}

func TestWaterDefaultsToNowAndRollsBackForStrangers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := uuid.New()
	plant := f.createPlant(t, owner, CreatePlantRequest{})

	_, err := f.svc.Water(ctx, uuid.New(), plant.ID, WaterRequest{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	watered, err := f.svc.Water(ctx, owner, plant.ID, WaterRequest{})
	require.NoError(t, err)
	assert.True(t, watered.LastWateredDate.Equal(anchor))

	history, err := f.svc.WateringHistory(ctx, owner, plant.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestUpdateIntervalRecomputesOnlyAfterWatering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := uuid.New()
	plant := f.createPlant(t, owner, CreatePlantRequest{})
	originalNext := *plant.NextWateringDate

	updated, err := f.svc.Update(ctx, owner, plant.ID, UpdatePlantRequest{WateringIntervalDays: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.WateringIntervalDays)
	assert.True(t, updated.NextWateringDate.Equal(originalNext))

	wateredAt := anchor.AddDate(0, 0, 1)
	_, err = f.svc.Water(ctx, owner, plant.ID, WaterRequest{WateredAt: &wateredAt})
	require.NoError(t, err)

	updated, err = f.svc.Update(ctx, owner, plant.ID, UpdatePlantRequest{
		WateringIntervalDays: intPtr(5),
		Nickname:             &i18n.Text{AR: "صديقي الأخضر"},
	})
	require.NoError(t, err)
	assert.True(t, updated.NextWateringDate.Equal(wateredAt.AddDate(0, 0, 5)))
	assert.Equal(t, "صديقي الأخضر", Localize(updated, enums.LanguageArabic, anchor).Nickname)
}

func TestGetOwnershipAndSoftDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := uuid.New()
	plant := f.createPlant(t, owner, CreatePlantRequest{})

	_, err := f.svc.Get(ctx, uuid.New(), plant.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	require.NoError(t, f.svc.Delete(ctx, owner, plant.ID))
	_, err = f.svc.Get(ctx, owner, plant.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	page, err := f.svc.List(ctx, owner, ListParams{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestListPaginatesAndFiltersDue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := uuid.New()
	for i := 0; i < 3; i++ {
		*f.now = anchor.Add(time.Duration(i) * time.Minute)
		f.createPlant(t, owner, CreatePlantRequest{WateringIntervalDays: intPtr(i)})
	}
	f.createPlant(t, uuid.New(), CreatePlantRequest{})
	*f.now = anchor.AddDate(0, 0, 1).Add(time.Hour)

	first, err := f.svc.List(ctx, owner, ListParams{Params: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)
	assert.Equal(t, 2, first.Items[0].WateringIntervalDays)

	second, err := f.svc.List(ctx, owner, ListParams{Params: pagination.Params{Limit: 2, Cursor: first.NextCursor}})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Empty(t, second.NextCursor)
	assert.Equal(t, 0, second.Items[0].WateringIntervalDays)

	due, err := f.svc.List(ctx, owner, ListParams{DueOnly: true})
	require.NoError(t, err)
	assert.Len(t, due.Items, 2)

	_, err = f.svc.List(ctx, owner, ListParams{Params: pagination.Params{Cursor: "not-a-cursor"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestFertilize(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := uuid.New()
	plant := f.createPlant(t, owner, CreatePlantRequest{FertilizingIntervalDays: intPtr(30)})
	assert.Nil(t, plant.NextFertilizingDate)

	fed, err := f.svc.Fertilize(ctx, owner, plant.ID, FertilizeRequest{})
	require.NoError(t, err)
	require.NotNil(t, fed.NextFertilizingDate)
	assert.True(t, fed.NextFertilizingDate.Equal(anchor.AddDate(0, 0, 30)))
}

func TestUploadPhotoReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := uuid.New()
	plant := f.createPlant(t, owner, CreatePlantRequest{})

	first, err := f.svc.UploadPhoto(ctx, owner, plant.ID, []byte("img"))
	require.NoError(t, err)
	firstURL := *first.PhotoURL

	second, err := f.svc.UploadPhoto(ctx, owner, plant.ID, []byte("img"))
	require.NoError(t, err)
	assert.NotEqual(t, firstURL, *second.PhotoURL)
	assert.Equal(t, []string{firstURL}, f.media.removed)

	f.media.err = pkgerrors.New(pkgerrors.CodeBadRequest, media.InvalidImageMessage)
	_, err = f.svc.UploadPhoto(ctx, owner, plant.ID, []byte("text"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeBadRequest))
}
