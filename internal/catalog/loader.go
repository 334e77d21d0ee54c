package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/akozadaev/go_service_finder/internal/logger"
	"github.com/akozadaev/go_service_finder/internal/models"
)

// ErrMalformedRecord - запись каталога не прошла минимальную валидацию и пропущена.
var ErrMalformedRecord = errors.New("malformed catalog record")

const recordSchema = `{
	"type": "object",
	"required": ["id", "name", "category"],
	"properties": {
		"id":       {"type": ["string", "integer"], "pattern": "\\S"},
		"name":     {"type": "string", "pattern": "\\S"},
		"category": {"type": "string", "pattern": "\\S"},
		"address":  {"type": ["string", "null"]},
		"city":     {"type": ["string", "null"]},
		"phone":    {"type": ["string", "number", "null"]},
		"rating":   {"type": ["number", "string", "null"]},
		"price":    {"type": ["number", "string", "null"]},
		"lat":      {"type": ["number", "string", "null"]},
		"lon":      {"type": ["number", "string", "null"]}
	}
}`

var compiledSchema = mustCompileSchema(recordSchema)

func mustCompileSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid record schema: %v", err))
	}
	return schema
}

// SkippedRecord описывает запись, пропущенную при загрузке.
type SkippedRecord struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Err   error  `json:"-"`
}

// LoadReport содержит итог загрузки каталога.
type LoadReport struct {
	Loaded  int
	Skipped []SkippedRecord
}

// LoadFile загружает каталог из JSON файла.
func LoadFile(path string, log logger.Logger) (*Catalog, *LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return Load(f, log)
}

// Load читает JSON массив записей. Некорректные записи пропускаются с предупреждением,
// ошибка возвращается только если сам документ не читается как массив.
func Load(r io.Reader, log logger.Logger) (*Catalog, *LoadReport, error) {
	var raw []map[string]interface{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	report := &LoadReport{}
	records := make([]models.ServiceRecord, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for i, item := range raw {
		rec, err := toRecord(item)
		if err == nil && seen[rec.ID] {
			err = fmt.Errorf("%w: duplicate id %q", ErrMalformedRecord, rec.ID)
		}
		if err != nil {
			id, _ := ParseID(item["id"])
			report.Skipped = append(report.Skipped, SkippedRecord{Index: i, ID: id, Err: err})
			log.Warn("skipping catalog record", map[string]interface{}{
				"index": i,
				"id":    id,
				"error": err.Error(),
			})
			continue
		}
		seen[rec.ID] = true
		records = append(records, rec)
	}

	report.Loaded = len(records)
	log.Info("catalog loaded", map[string]interface{}{
		"loaded":  report.Loaded,
		"skipped": len(report.Skipped),
	})

	return New(records), report, nil
}

func toRecord(item map[string]interface{}) (models.ServiceRecord, error) {
	if item == nil {
		return models.ServiceRecord{}, fmt.Errorf("%w: not an object", ErrMalformedRecord)
	}

	result, err := compiledSchema.Validate(gojsonschema.NewGoLoader(item))
	if err != nil {
		return models.ServiceRecord{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			msgs[i] = desc.String()
		}
		return models.ServiceRecord{}, fmt.Errorf("%w: %s", ErrMalformedRecord, strings.Join(msgs, "; "))
	}

	id, ok := ParseID(item["id"])
	if !ok {
		return models.ServiceRecord{}, fmt.Errorf("%w: invalid id", ErrMalformedRecord)
	}

	rec := models.ServiceRecord{
		ID:       id,
		Name:     stringField(item, "name"),
		Category: stringField(item, "category"),
		Address:  stringField(item, "address"),
		City:     stringField(item, "city"),
		Phone:    stringField(item, "phone"),
	}
	if rec.City == "" {
		rec.City = cityFromAddress(rec.Address)
	}
	if rating, ok := ParseRating(item["rating"]); ok {
		rec.Rating = &rating
	}
	if price, ok := ParsePrice(item["price"]); ok {
		rec.Price = &price
	}
	if p, ok := ParseCoordinates(item); ok {
		rec.Coordinates = &p
	}
	return rec, nil
}

// cityFromAddress берет предпоследнюю часть адреса: "Road No 1, Madhapur, Hyderabad, 500081"
// дает "Hyderabad".
func cityFromAddress(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-2])
}
