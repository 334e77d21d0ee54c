// Package docs содержит описание API для Swagger UI.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "akozadaev@inbox.ru"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Проверка работоспособности сервиса",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/services/search": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["services"],
                "summary": "Найти сервисы",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.SearchRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SearchResponse"}},
                    "400": {"description": "Неверный запрос", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/services/export": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["services"],
                "summary": "Выгрузить результаты поиска",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.SearchRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/export.Document"}},
                    "400": {"description": "Неверный запрос", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/services/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["services"],
                "summary": "Получить сервис",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ServiceRecord"}},
                    "404": {"description": "Сервис не найден", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/chat": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Сообщение ассистенту",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ChatRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ChatResponse"}},
                    "400": {"description": "Неверный запрос", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dictionaries"],
                "summary": "Список категорий",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Category"}}}}
            }
        },
        "/cities": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dictionaries"],
                "summary": "Список городов",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.City"}}}}
            }
        },
        "/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dictionaries"],
                "summary": "Статистика каталога",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CatalogStats"}}}
            }
        }
    },
    "definitions": {
        "models.GeoPoint": {
            "type": "object",
            "properties": {"lat": {"type": "number"}, "lon": {"type": "number"}}
        },
        "models.ServiceRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "category": {"type": "string"},
                "address": {"type": "string"},
                "city": {"type": "string"},
                "phone": {"type": "string"},
                "rating": {"type": "number"},
                "price": {"type": "integer"},
                "coordinates": {"$ref": "#/definitions/models.GeoPoint"}
            }
        },
        "models.SearchRequest": {
            "type": "object",
            "properties": {
                "query": {"type": "string"},
                "category": {"type": "string"},
                "city": {"type": "string"},
                "max_price": {"type": "integer"},
                "min_rating": {"type": "number"},
                "lat": {"type": "number"},
                "lon": {"type": "number"},
                "location": {"type": "string"},
                "limit": {"type": "integer"}
            }
        },
        "models.ContactLinks": {
            "type": "object",
            "properties": {
                "call": {"type": "string"},
                "whatsapp": {"type": "string"},
                "maps": {"type": "string"},
                "directions": {"type": "string"}
            }
        },
        "models.RankedResult": {
            "type": "object",
            "properties": {
                "service": {"$ref": "#/definitions/models.ServiceRecord"},
                "similarity_score": {"type": "number"},
                "distance_km": {"type": "number"}
            }
        },
        "models.ServiceCard": {
            "type": "object",
            "properties": {
                "service": {"$ref": "#/definitions/models.ServiceRecord"},
                "similarity_score": {"type": "number"},
                "distance_km": {"type": "number"},
                "distance_text": {"type": "string"},
                "price_text": {"type": "string"},
                "links": {"$ref": "#/definitions/models.ContactLinks"}
            }
        },
        "models.SearchResponse": {
            "type": "object",
            "properties": {
                "query": {"type": "object"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/models.ServiceCard"}},
                "total": {"type": "integer"},
                "fallback": {"type": "boolean"}
            }
        },
        "models.ChatRequest": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "category": {"type": "string"},
                "city": {"type": "string"},
                "max_price": {"type": "integer"},
                "min_rating": {"type": "number"},
                "lat": {"type": "number"},
                "lon": {"type": "number"},
                "location": {"type": "string"},
                "limit": {"type": "integer"}
            }
        },
        "models.ChatResponse": {
            "type": "object",
            "properties": {
                "reply": {"type": "string"},
                "conversational": {"type": "boolean"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/models.ServiceCard"}},
                "recommendation": {"type": "string"}
            }
        },
        "models.Category": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "keywords": {"type": "array", "items": {"type": "string"}}}
        },
        "models.City": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "parent": {"type": "string"},
                "coordinates": {"$ref": "#/definitions/models.GeoPoint"}
            }
        },
        "models.CatalogStats": {
            "type": "object",
            "properties": {
                "total_services": {"type": "integer"},
                "categories": {"type": "array", "items": {"type": "string"}},
                "cities": {"type": "array", "items": {"type": "string"}}
            }
        },
        "export.Document": {
            "type": "object",
            "properties": {
                "search_query": {"type": "string"},
                "total_services": {"type": "integer"},
                "export_timestamp": {"type": "string"},
                "services": {"type": "array", "items": {"$ref": "#/definitions/models.RankedResult"}}
            }
        }
    }
}`

// SwaggerInfo содержит экспортируемую информацию Swagger, чтобы клиенты могли ее изменить.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Local Service Finder API",
	Description:      "REST API для поиска локальных сервисов: семантический поиск, фильтры и ранжирование по расстоянию.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
