package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/isandov/barrio-admin-be/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCityService(t *testing.T) (*CityService, *UserService) {
	t.Helper()
	db := setupDB(t)
	events := NewEventService(db)
	return NewCityService(db, events), NewUserService(db, events)
}

func TestCreateCityAssignsSequentialVisibleID(t *testing.T) {
	cities, users := setupCityService(t)
	uploader := createTestUser(t, users, "uploader")

	for i := 1; i <= 3; i++ {
		city, err := cities.CreateCity(CreateCityInput{Name: fmt.Sprintf("City %d", i)}, uploader.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(i), city.IDVisible)
	}
}

func TestCreateCityIncludesUploaderSummary(t *testing.T) {
	cities, users := setupCityService(t)
	uploader := createTestUser(t, users, "uploader")

	city, err := cities.CreateCity(CreateCityInput{Name: "Rosario"}, uploader.ID)
	require.NoError(t, err)
	require.NotNil(t, city.UploadUser)
	assert.Equal(t, uploader.ID, city.UploadUser.ID)
	assert.Equal(t, "uploader", city.UploadUser.Username)
	assert.Equal(t, "Carlos", city.UploadUser.Name)
	assert.Equal(t, "Gardel", city.UploadUser.LastName)
}

func TestSoftDeleteCity(t *testing.T) {
	cities, users := setupCityService(t)
	uploader := createTestUser(t, users, "uploader")

	city, err := cities.CreateCity(CreateCityInput{Name: "Córdoba"}, uploader.ID)
	require.NoError(t, err)

	require.NoError(t, cities.DeleteCity(city.ID, uploader.ID))

	// Default lookup excludes the soft-deleted row.
	_, err = cities.GetCityByID(city.ID)
	require.True(t, errors.Is(err, ErrNotFound))

	// Bypassing the deleted filter still finds it, flagged and stamped.
	raw, err := cities.getCityAnyState(city.ID)
	require.NoError(t, err)
	assert.True(t, raw.Deleted)
	require.NotNil(t, raw.DeletedAt)
}

func TestListCitiesNeverReturnsDeleted(t *testing.T) {
	cities, users := setupCityService(t)
	uploader := createTestUser(t, users, "uploader")

	kept, err := cities.CreateCity(CreateCityInput{Name: "Mendoza"}, uploader.ID)
	require.NoError(t, err)
	gone, err := cities.CreateCity(CreateCityInput{Name: "La Plata"}, uploader.ID)
	require.NoError(t, err)
	require.NoError(t, cities.DeleteCity(gone.ID, uploader.ID))

	// Even a caller-supplied filter matching the deleted row cannot surface it.
	active := true
	envelope, err := cities.ListCities(CityListOptions{Active: &active})
	require.NoError(t, err)
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, kept.ID, envelope.Data[0].ID)
	assert.False(t, envelope.Data[0].Deleted)

	envelope, err = cities.ListCities(CityListOptions{ID: gone.ID})
	require.NoError(t, err)
	assert.Empty(t, envelope.Data)
	assert.Equal(t, int64(0), envelope.Metadata.TotalRecords)
}

func TestListCitiesPagination(t *testing.T) {
	cities, users := setupCityService(t)
	uploader := createTestUser(t, users, "uploader")

	for i := 1; i <= 25; i++ {
		_, err := cities.CreateCity(CreateCityInput{Name: fmt.Sprintf("City %02d", i)}, uploader.ID)
		require.NoError(t, err)
	}

	envelope, err := cities.ListCities(CityListOptions{
		Params: pagination.Params{Page: 2, PerPage: 10, SortBy: "asc"},
	})
	require.NoError(t, err)

	require.Len(t, envelope.Data, 10)
	assert.Equal(t, int64(11), envelope.Data[0].IDVisible)
	assert.Equal(t, int64(20), envelope.Data[9].IDVisible)
	assert.Equal(t, 2, envelope.Metadata.Page)
	assert.Equal(t, int64(25), envelope.Metadata.TotalRecords)
	assert.Equal(t, int64(3), envelope.Metadata.LastPage)
}

func TestListCitiesUnpaginatedReturnsAll(t *testing.T) {
	cities, users := setupCityService(t)
	uploader := createTestUser(t, users, "uploader")

	for i := 1; i <= 5; i++ {
		_, err := cities.CreateCity(CreateCityInput{Name: fmt.Sprintf("City %d", i)}, uploader.ID)
		require.NoError(t, err)
	}

	envelope, err := cities.ListCities(CityListOptions{})
	require.NoError(t, err)
	assert.Len(t, envelope.Data, 5)
	assert.Equal(t, int64(5), envelope.Metadata.TotalRecords)
	assert.Zero(t, envelope.Metadata.Page)
	assert.Zero(t, envelope.Metadata.LastPage)
}

func TestListCitiesRejectsUnknownSortProperty(t *testing.T) {
	cities, _ := setupCityService(t)

	_, err := cities.ListCities(CityListOptions{
		Params: pagination.Params{SortBy: "asc", SortByProperty: "upload_user_id; DROP TABLE cities"},
	})
	require.Error(t, err)
}

func TestUpdateCityPartialMerge(t *testing.T) {
	cities, users := setupCityService(t)
	uploader := createTestUser(t, users, "uploader")

	city, err := cities.CreateCity(CreateCityInput{Name: "Salta"}, uploader.ID)
	require.NoError(t, err)

	inactive := false
	updated, err := cities.UpdateCity(city.ID, UpdateCityInput{Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Salta", updated.Name) // untouched
	assert.False(t, updated.Active)

	_, err = cities.UpdateCity("missing-id", UpdateCityInput{Active: &inactive})
	require.True(t, errors.Is(err, ErrNotFound))
}
