package attendance

import (
	"encoding/json"
	"testing"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/geo"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureRequest_NestedLocation(t *testing.T) {
	body := `{"photo":"aGVsbG8=","location":{"latitude":25.5941,"longitude":85.1376,"accuracy":10,"address":"Patna"}}`

	var req CaptureRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	require.NoError(t, req.Validate())

	assert.Equal(t, geo.Point{Latitude: 25.5941, Longitude: 85.1376}, req.Point())
	require.NotNil(t, req.Location.Accuracy)
	assert.Equal(t, 10.0, *req.Location.Accuracy)
	require.NotNil(t, req.Location.Address)
	assert.Equal(t, "Patna", *req.Location.Address)
}

func TestCaptureRequest_FlatCoordinatesRejected(t *testing.T) {
	body := `{"photo":"aGVsbG8=","latitude":25.5941,"longitude":85.1376}`

	var req CaptureRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	var errs validator.ValidationErrors
	require.ErrorAs(t, req.Validate(), &errs)
	fields := errs.ToMap()
	assert.Equal(t, "latitude is required", fields["latitude"])
	assert.Equal(t, "longitude is required", fields["longitude"])
}

func TestCaptureRequest_InvalidAccuracy(t *testing.T) {
	lat, lon, acc := 25.5941, 85.1376, -5.0
	req := CaptureRequest{Photo: "aGVsbG8=", Location: Location{Latitude: &lat, Longitude: &lon, Accuracy: &acc}}

	var errs validator.ValidationErrors
	require.ErrorAs(t, req.Validate(), &errs)
	assert.Contains(t, errs.ToMap(), "accuracy")
}
