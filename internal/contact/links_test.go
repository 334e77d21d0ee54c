package contact

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozadaev/go_service_finder/internal/models"
)

func TestPhoneDigits(t *testing.T) {
	assert.Equal(t, "919876543210", PhoneDigits("+91 98765-43210"))
	assert.Equal(t, "", PhoneDigits("N/A"))
}

func TestCallURL(t *testing.T) {
	assert.Equal(t, "tel:04023456789", CallURL("040 2345 6789"))
	assert.Equal(t, "", CallURL(""))
}

func TestWhatsAppURL(t *testing.T) {
	tests := []struct {
		name   string
		phone  string
		prefix string
	}{
		{name: "ten digits", phone: "98765 43210", prefix: "https://wa.me/919876543210?text="},
		{name: "country code kept", phone: "+91 98765 43210", prefix: "https://wa.me/919876543210?text="},
		{name: "trunk zero dropped", phone: "09876543210", prefix: "https://wa.me/919876543210?text="},
		{name: "landline too short", phone: "2345678", prefix: ""},
		{name: "empty", phone: "", prefix: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WhatsAppURL(tt.phone)
			if tt.prefix == "" {
				assert.Empty(t, got)
				return
			}
			assert.True(t, strings.HasPrefix(got, tt.prefix), got)
			assert.NotContains(t, got, " ")
		})
	}
}

func TestMapsURL(t *testing.T) {
	got := MapsURL("Road 1, Madhapur, Hyderabad")
	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "www.google.com", u.Host)
	assert.Equal(t, "1", u.Query().Get("api"))
	assert.Equal(t, "Road 1, Madhapur, Hyderabad", u.Query().Get("query"))

	assert.Empty(t, MapsURL("   "))
}

func TestDirectionsURL(t *testing.T) {
	got := DirectionsURL("Madhapur, Hyderabad", &models.GeoPoint{Lat: 17.4, Lon: 78.47})
	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "/maps/dir/", u.Path)
	assert.Equal(t, "17.4,78.47", u.Query().Get("origin"))
	assert.Equal(t, "Madhapur, Hyderabad", u.Query().Get("destination"))

	u, err = url.Parse(DirectionsURL("Madhapur", nil))
	require.NoError(t, err)
	assert.Empty(t, u.Query().Get("origin"))
}

func TestLinks(t *testing.T) {
	links := Links(models.ServiceRecord{Phone: "9876543210", Address: "Kondapur"}, nil)
	assert.Equal(t, "tel:9876543210", links.Call)
	assert.NotEmpty(t, links.WhatsApp)
	assert.NotEmpty(t, links.Maps)
	assert.NotEmpty(t, links.Directions)

	assert.Equal(t, models.ContactLinks{}, Links(models.ServiceRecord{}, nil))
}
