// Package contact строит ссылки для звонка, WhatsApp и Google Maps.
package contact

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/akozadaev/go_service_finder/internal/models"
)

const (
	countryCode      = "91"
	whatsAppGreeting = "Hi, I found your service on Local Service Finder. I'm interested in your services."
	mapsSearchURL    = "https://www.google.com/maps/search/"
	mapsDirURL       = "https://www.google.com/maps/dir/"
)

// PhoneDigits оставляет в номере только цифры.
func PhoneDigits(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
}

// CallURL возвращает ссылку tel: или пустую строку, если цифр в номере нет.
func CallURL(phone string) string {
	digits := PhoneDigits(phone)
	if digits == "" {
		return ""
	}
	return "tel:" + digits
}

// WhatsAppURL возвращает ссылку wa.me с приветствием. Десятизначные номера
// дополняются кодом страны 91, ведущие нули (междугородний префикс) отбрасываются.
func WhatsAppURL(phone string) string {
	digits := strings.TrimLeft(PhoneDigits(phone), "0")
	switch {
	case len(digits) == 10:
		digits = countryCode + digits
	case len(digits) == 12 && strings.HasPrefix(digits, countryCode):
	default:
		return ""
	}
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(whatsAppGreeting)
}

// MapsURL возвращает ссылку поиска адреса в Google Maps.
func MapsURL(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return ""
	}
	q := url.Values{}
	q.Set("api", "1")
	q.Set("query", address)
	return mapsSearchURL + "?" + q.Encode()
}

// DirectionsURL возвращает маршрут до адреса. Если известны координаты пользователя,
// они подставляются как точка отправления.
func DirectionsURL(address string, origin *models.GeoPoint) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return ""
	}
	q := url.Values{}
	q.Set("api", "1")
	q.Set("destination", address)
	if origin != nil {
		q.Set("origin", formatPoint(*origin))
	}
	return mapsDirURL + "?" + q.Encode()
}

func formatPoint(p models.GeoPoint) string {
	return fmt.Sprintf("%s,%s",
		strconv.FormatFloat(p.Lat, 'f', -1, 64),
		strconv.FormatFloat(p.Lon, 'f', -1, 64))
}

// Links собирает все ссылки для записи каталога.
func Links(rec models.ServiceRecord, origin *models.GeoPoint) models.ContactLinks {
	return models.ContactLinks{
		Call:       CallURL(rec.Phone),
		WhatsApp:   WhatsAppURL(rec.Phone),
		Maps:       MapsURL(rec.Address),
		Directions: DirectionsURL(rec.Address, origin),
	}
}
