package search

import "github.com/akozadaev/go_service_finder/internal/models"

// DefaultCategories - встроенный словарь категорий. Порядок важен: при нескольких
// совпадениях побеждает категория, стоящая раньше.
func DefaultCategories() []models.Category {
	return []models.Category{
		{Name: "AC Repair", Keywords: []string{"ac repair", "ac service", "air conditioning", "air conditioner", "ac"}},
		{Name: "Bike Service", Keywords: []string{"bike service", "bike repair", "two wheeler", "motorcycle", "bike"}},
		{Name: "Plumber", Keywords: []string{"plumber", "plumbers", "plumbing", "water leak"}},
		{Name: "Electrician", Keywords: []string{"electrician", "electricians", "electrical", "wiring"}},
		{Name: "Dentist", Keywords: []string{"dentist", "dental", "tooth"}},
		{Name: "Doctor", Keywords: []string{"doctor", "doctors", "physician", "clinic"}},
		{Name: "Gym", Keywords: []string{"gym", "fitness", "workout"}},
		{Name: "Beauty Parlor", Keywords: []string{"beauty parlor", "beauty parlour", "salon", "beauty"}},
		{Name: "Lawyer", Keywords: []string{"lawyer", "advocate", "legal"}},
		{Name: "CA", Keywords: []string{"chartered accountant", "ca", "accountant"}},
		{Name: "Real Estate Agent", Keywords: []string{"real estate", "property dealer", "property agent"}},
		{Name: "Insurance Agent", Keywords: []string{"insurance"}},
		{Name: "Cafe", Keywords: []string{"cafe", "coffee"}},
		{Name: "Restaurant", Keywords: []string{"restaurant", "restaurants", "food", "dining"}},
	}
}

// synonym добавляет к тексту для векторного поиска близкие формулировки.
type synonym struct {
	key   string
	terms []string
}

var defaultSynonyms = []synonym{
	{key: "bike repair", terms: []string{"bike service", "two wheeler service", "motorcycle repair"}},
	{key: "bike service", terms: []string{"bike repair", "two wheeler service", "motorcycle repair"}},
	{key: "motorcycle", terms: []string{"bike service", "bike repair", "two wheeler service"}},
	{key: "two wheeler", terms: []string{"bike service", "bike repair", "two wheeler service"}},
	{key: "ac repair", terms: []string{"air conditioning", "ac service"}},
	{key: "air conditioning", terms: []string{"ac repair", "ac service"}},
	{key: "plumber", terms: []string{"plumbing service", "water repair"}},
	{key: "electrician", terms: []string{"electrical service", "electrical repair"}},
	{key: "restaurant", terms: []string{"food", "dining", "eating"}},
	{key: "food", terms: []string{"restaurant", "dining", "cafe"}},
	{key: "doctor", terms: []string{"physician", "medical", "clinic"}},
	{key: "dentist", terms: []string{"dental", "tooth doctor"}},
	{key: "gym", terms: []string{"fitness", "exercise", "workout"}},
	{key: "beauty", terms: []string{"beauty parlor", "salon", "beauty service"}},
	{key: "salon", terms: []string{"beauty parlor", "beauty service"}},
}
