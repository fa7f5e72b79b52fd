// Package docs registers the OpenAPI description of the feed API with swag so
// that gin-swagger can serve it. Regenerate with `swag init` after changing
// handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/feed": {
            "get": {
                "description": "Returns the caller's feed for today. The first request of the day computes and caches it; later requests replay the cached result until the day changes or the cache is cleared.",
                "produces": ["application/json"],
                "tags": ["Feed"],
                "summary": "Daily feed",
                "operationId": "getFeed",
                "parameters": [
                    {"type": "string", "example": "user123", "description": "User ID (set by the gateway)", "name": "X-User-ID", "in": "header"},
                    {"minimum": 1, "type": "integer", "description": "Promote cards linked to this mood", "name": "mood_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.FeedResponse"}, "headers": {"X-Feed-Cache": {"type": "string", "description": "hit or miss"}}},
                    "400": {"description": "Malformed mood_id", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Mood not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/feed/category/{slug}": {
            "get": {
                "description": "Returns the visible cards of a category: cards of the category's mapped types followed by cards curated into it.",
                "produces": ["application/json"],
                "tags": ["Feed"],
                "summary": "Category feed",
                "operationId": "getCategoryFeed",
                "parameters": [
                    {"type": "string", "example": "user123", "description": "User ID (set by the gateway)", "name": "X-User-ID", "in": "header"},
                    {"type": "string", "example": "arena", "description": "Category slug", "name": "slug", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.CategoryFeedResponse"}},
                    "404": {"description": "Category not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/feed/cache/clear": {
            "post": {
                "description": "Drops the caller's cached feeds for today so the next GET /feed recomputes. Other users are unaffected.",
                "produces": ["application/json"],
                "tags": ["Feed cache"],
                "summary": "Clear own feed cache",
                "operationId": "clearOwnFeedCache",
                "parameters": [
                    {"type": "string", "example": "user123", "description": "User ID (set by the gateway)", "name": "X-User-ID", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.CacheClearResponse"}},
                    "401": {"description": "Anonymous caller", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Cache unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "description": "Admin only. Drops all users' cached feeds for today. Entries of other days are untouched.",
                "produces": ["application/json"],
                "tags": ["Feed cache"],
                "summary": "Clear every user's feed cache",
                "operationId": "clearAllFeedCaches",
                "parameters": [
                    {"type": "string", "example": "admin", "description": "Admin user ID (set by the gateway)", "name": "X-User-ID", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.CacheClearResponse"}},
                    "401": {"description": "Anonymous caller", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Caller is not an admin", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Cache unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/games": {
            "get": {
                "description": "Lists visible game cards with their metadata, or returns one game when card_id is given. ar_only=true overrides type.",
                "produces": ["application/json"],
                "tags": ["Games"],
                "summary": "Games",
                "operationId": "getGames",
                "parameters": [
                    {"type": "string", "example": "user123", "description": "User ID (set by the gateway)", "name": "X-User-ID", "in": "header"},
                    {"enum": ["all", "html", "ar"], "type": "string", "default": "all", "description": "Game kind", "name": "type", "in": "query"},
                    {"type": "boolean", "description": "Only AR games", "name": "ar_only", "in": "query"},
                    {"minimum": 1, "type": "integer", "description": "Return a single game", "name": "card_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.GamesResponse"}},
                    "400": {"description": "Malformed parameters", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Game not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Category": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "slug": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "icon": {"type": "string"},
                "color": {"type": "string"},
                "sort_order": {"type": "integer"}
            }
        },
        "domain.GameMetadata": {
            "type": "object",
            "properties": {
                "card_id": {"type": "integer"},
                "html": {"type": "string"},
                "difficulty": {"type": "string"},
                "instructions": {"type": "string"},
                "max_score": {"type": "integer"},
                "is_ar_game": {"type": "boolean"},
                "ar_type": {"type": "string"},
                "ar_config": {"type": "object"}
            }
        },
        "domain.FeedCard": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "type": {"type": "string", "example": "quiz"},
                "title": {"type": "string"},
                "min_membership_tier": {"type": "integer"},
                "publish_date": {"type": "string", "example": "2025-06-01"},
                "content": {"type": "object"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "variant": {"type": "string", "enum": ["standard", "interactive", "ar"]},
                "game": {"$ref": "#/definitions/domain.GameMetadata"}
            }
        },
        "handlers.FeedResponse": {
            "type": "object",
            "properties": {
                "cards": {"type": "array", "items": {"$ref": "#/definitions/domain.FeedCard"}},
                "generated_at": {"type": "string", "example": "2025-06-01T07:30:00Z"}
            }
        },
        "handlers.CategoryFeedResponse": {
            "type": "object",
            "properties": {
                "category": {"$ref": "#/definitions/domain.Category"},
                "cards": {"type": "array", "items": {"$ref": "#/definitions/domain.FeedCard"}}
            }
        },
        "handlers.CacheClearResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "message": {"type": "string", "example": "feed cache cleared"},
                "deleted": {"type": "integer", "example": 42}
            }
        },
        "handlers.GameResponse": {
            "type": "object",
            "properties": {
                "game": {"$ref": "#/definitions/domain.FeedCard"}
            }
        },
        "handlers.GamesResponse": {
            "type": "object",
            "properties": {
                "games": {"type": "array", "items": {"$ref": "#/definitions/domain.FeedCard"}}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string", "example": "123e4567-e89b-12d3-a456-426614174000"},
                "code": {"type": "string", "example": "not_found"},
                "message": {"type": "string", "example": "category not found"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Card Feed API",
	Description:      "Daily card feed with per-user daily caching, category and mood filters, and a games surface.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
