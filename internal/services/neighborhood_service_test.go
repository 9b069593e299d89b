package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/isandov/barrio-admin-be/internal/models"
	"github.com/isandov/barrio-admin-be/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupNeighborhoodService(t *testing.T) (*NeighborhoodService, models.City, models.User) {
	t.Helper()
	db := setupDB(t)
	events := NewEventService(db)
	users := NewUserService(db, events)
	cities := NewCityService(db, events)

	uploader := createTestUser(t, users, "uploader")
	city, err := cities.CreateCity(CreateCityInput{Name: "Rosario"}, uploader.ID)
	require.NoError(t, err)

	return NewNeighborhoodService(db, events), city, uploader
}

func TestCreateNeighborhoodAssignsSequentialVisibleID(t *testing.T) {
	neighborhoods, city, uploader := setupNeighborhoodService(t)

	for i := 1; i <= 3; i++ {
		n, err := neighborhoods.CreateNeighborhood(CreateNeighborhoodInput{
			Name:   fmt.Sprintf("Barrio %d", i),
			CityID: city.ID,
		}, uploader.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(i), n.IDVisible)
	}
}

func TestCreateNeighborhoodIncludesCityAndUploader(t *testing.T) {
	neighborhoods, city, uploader := setupNeighborhoodService(t)

	n, err := neighborhoods.CreateNeighborhood(CreateNeighborhoodInput{
		Name:   "Pichincha",
		CityID: city.ID,
	}, uploader.ID)
	require.NoError(t, err)

	require.NotNil(t, n.City)
	assert.Equal(t, city.ID, n.City.ID)
	assert.Equal(t, "Rosario", n.City.Name)
	require.NotNil(t, n.UploadUser)
	assert.Equal(t, uploader.ID, n.UploadUser.ID)
}

func TestListNeighborhoodsNameFilter(t *testing.T) {
	neighborhoods, city, uploader := setupNeighborhoodService(t)

	for _, name := range []string{"Pichincha", "Centro", "Barrio Norte"} {
		_, err := neighborhoods.CreateNeighborhood(CreateNeighborhoodInput{Name: name, CityID: city.ID}, uploader.ID)
		require.NoError(t, err)
	}

	envelope, err := neighborhoods.ListNeighborhoods(NeighborhoodListOptions{Name: "norte"})
	require.NoError(t, err)
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Barrio Norte", envelope.Data[0].Name)
	assert.Equal(t, int64(1), envelope.Metadata.TotalRecords)
}

func TestNeighborhoodSoftDelete(t *testing.T) {
	neighborhoods, city, uploader := setupNeighborhoodService(t)

	n, err := neighborhoods.CreateNeighborhood(CreateNeighborhoodInput{Name: "Centro", CityID: city.ID}, uploader.ID)
	require.NoError(t, err)

	require.NoError(t, neighborhoods.DeleteNeighborhood(n.ID, uploader.ID))

	_, err = neighborhoods.GetNeighborhoodByID(n.ID)
	require.True(t, errors.Is(err, ErrNotFound))

	envelope, err := neighborhoods.ListNeighborhoods(NeighborhoodListOptions{Params: pagination.Params{SortBy: "asc"}})
	require.NoError(t, err)
	assert.Empty(t, envelope.Data)
}
