// Package docs registers the festpass OpenAPI document with swag.
// Regenerate with: swag init -g server/main.go -o docs
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
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register an account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Email already registered"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Current user profile",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/events": {
            "get": {
                "tags": ["events"],
                "summary": "List events",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/events/{id}": {
            "get": {
                "tags": ["events"],
                "summary": "Get an event by id or slug",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/events/{id}/availability": {
            "get": {
                "tags": ["events"],
                "summary": "Per-day availability of an event",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/events": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["events"],
                "summary": "Create an event",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/bookings/initiate": {
            "post": {
                "tags": ["bookings"],
                "summary": "Reserve capacity and start payment",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "PENDING tickets and signed gateway form"},
                    "400": {"description": "Invalid quantity, dates or booking type"},
                    "404": {"description": "Event not found"},
                    "409": {"description": "Sold out on a requested date"},
                    "422": {"description": "Date outside the event span"}
                }
            }
        },
        "/bookings/{reference}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["bookings"],
                "summary": "Tickets of one booking",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "reference", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not found"}}
            }
        },
        "/users/tickets": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["bookings"],
                "summary": "Caller's tickets",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "event_id", "in": "query"},
                    {"type": "string", "name": "date", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/checkins": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["checkins"],
                "summary": "Admit a ticket at the gate",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "201": {"description": "Admitted"},
                    "404": {"description": "Ticket not found"},
                    "409": {"description": "Not paid or already checked in"},
                    "422": {"description": "Date not on ticket"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Festpass API",
	Description:      "Multi-day festival ticketing: daily capacity, PayU checkout and gate check-in.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
