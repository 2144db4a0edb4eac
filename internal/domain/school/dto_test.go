package school

import (
	"testing"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreate() CreateSchoolRequest {
	return CreateSchoolRequest{
		Name:      "Govt. Middle School Danapur",
		Code:      "pat001",
		Latitude:  25.6,
		Longitude: 85.05,
		Address:   AddressRequest{Block: "Danapur", District: "Patna"},
	}
}

func TestCreateSchoolRequest_Defaults(t *testing.T) {
	req := validCreate()
	require.NoError(t, req.Validate())

	s := req.ToSchool()
	assert.Equal(t, "PAT001", s.Code)
	assert.Equal(t, DefaultState, s.Address.State)
	assert.Equal(t, 100, s.BoundaryRadius)
	assert.True(t, s.IsActive)
}

func TestCreateSchoolRequest_Invalid(t *testing.T) {
	req := validCreate()
	req.Name = " "
	req.Latitude = 100
	req.Address.District = ""
	radius := 20
	req.BoundaryRadius = &radius

	err := req.Validate()
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := verrs.ToMap()
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "latitude")
	assert.Contains(t, fields, "address.district")
	assert.Contains(t, fields, "boundary_radius")
}

func TestUpdateBoundaryRequest_Validate(t *testing.T) {
	id := "123e4567-e89b-42d3-a456-426614174000"

	for _, r := range []int{50, 100, 10000} {
		req := UpdateBoundaryRequest{ID: id, BoundaryRadius: r}
		assert.NoError(t, req.Validate(), r)
	}
	for _, r := range []int{0, 49, 10001} {
		req := UpdateBoundaryRequest{ID: id, BoundaryRadius: r}
		assert.Error(t, req.Validate(), r)
	}
}

func TestUpdateSchoolRequest_Apply(t *testing.T) {
	name := "Renamed"
	active := false
	lat, lon := 25.0, 85.0
	req := UpdateSchoolRequest{
		ID:        "123e4567-e89b-42d3-a456-426614174000",
		Name:      &name,
		IsActive:  &active,
		Latitude:  &lat,
		Longitude: &lon,
	}
	require.NoError(t, req.Validate())

	s := School{Name: "Old", Code: "OLD", IsActive: true, BoundaryRadius: 300}
	req.Apply(&s)

	assert.Equal(t, "Renamed", s.Name)
	assert.Equal(t, "OLD", s.Code)
	assert.False(t, s.IsActive)
	assert.Equal(t, 25.0, s.Latitude)
	assert.Equal(t, 300, s.BoundaryRadius)
}

func TestUpdateSchoolRequest_LatitudeWithoutLongitude(t *testing.T) {
	lat := 25.0
	req := UpdateSchoolRequest{ID: "123e4567-e89b-42d3-a456-426614174000", Latitude: &lat}
	assert.Error(t, req.Validate())
}

func TestSchool_Radius(t *testing.T) {
	assert.Equal(t, 100, (&School{}).Radius())
	assert.Equal(t, 2000, (&School{BoundaryRadius: 2000}).Radius())
}
