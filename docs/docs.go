// Package docs holds the OpenAPI document of the authority API, in the form
// swag emits. Regenerate with `swag init -g cmd/app/main.go -o docs` after
// changing handler annotations.
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
        "/api/v1/farms": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Register a farm with its starting state at version 0",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["farms"],
                "summary": "Create a farm",
                "parameters": [
                    {
                        "description": "Farm id and starting state",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/domain.CreateFarmRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Snapshot"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "409": {"description": "Farm already exists", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/api/v1/farms/{farmID}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["farms"],
                "summary": "Load a farm",
                "parameters": [
                    {"type": "string", "description": "Farm id", "name": "farmID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Snapshot"}},
                    "404": {"description": "Farm not found", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/api/v1/farms/{farmID}/sync": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Replay queued actions in order. Action ids already applied are skipped.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["farms"],
                "summary": "Sync pending actions",
                "parameters": [
                    {"type": "string", "description": "Farm id", "name": "farmID", "in": "path", "required": true},
                    {
                        "description": "Session, queued actions and last known version",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/domain.SyncRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SyncResponse"}},
                    "400": {"description": "Invalid request or too many actions", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "403": {"description": "Hoarding or swarming", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "404": {"description": "Farm not found", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "409": {"description": "Stale version", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "422": {"description": "Invalid action", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/api/v1/farms/{farmID}/operations": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Apply queued actions, then purchase, mint, transact, trade or deposit, atomically",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["farms"],
                "summary": "Run an operation",
                "parameters": [
                    {"type": "string", "description": "Farm id", "name": "farmID", "in": "path", "required": true},
                    {
                        "description": "Operation with queued actions",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/domain.OperationRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.OperationResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "404": {"description": "Farm or listing not found", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "409": {"description": "Stale version", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "422": {"description": "Invalid action", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/api/v1/farms/{farmID}/events": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["farms"],
                "summary": "Farm audit history",
                "parameters": [
                    {"type": "string", "description": "Farm id", "name": "farmID", "in": "path", "required": true},
                    {"type": "integer", "description": "Maximum entries, newest first", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/eventlog.Entry"}}},
                    "400": {"description": "Invalid limit", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/api/v1/listings": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["listings"],
                "summary": "Create a listing",
                "parameters": [
                    {
                        "description": "Item, amount and price",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/domain.Listing"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Listing"}},
                    "400": {"description": "Invalid amount", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.HealthResponse"}}
                }
            }
        },
        "/version": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Build information",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.VersionInfo"}}
                }
            }
        }
    },
    "definitions": {
        "domain.APIError": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "rejection": {"$ref": "#/definitions/domain.Rejection"}
            }
        },
        "domain.Action": {
            "type": "object",
            "required": ["id", "type"],
            "properties": {
                "createdAt": {"type": "string"},
                "id": {"type": "string", "maxLength": 64},
                "payload": {"type": "object"},
                "type": {"type": "string"}
            }
        },
        "domain.CreateFarmRequest": {
            "type": "object",
            "required": ["farmId"],
            "properties": {
                "farmId": {"type": "string", "maxLength": 64},
                "state": {"$ref": "#/definitions/domain.GameState"}
            }
        },
        "domain.GameState": {
            "type": "object",
            "additionalProperties": true
        },
        "domain.Listing": {
            "type": "object",
            "required": ["item"],
            "properties": {
                "amount": {"type": "string"},
                "createdAt": {"type": "string"},
                "filledBy": {"type": "string"},
                "id": {"type": "string"},
                "item": {"type": "string"},
                "price": {"type": "string"}
            }
        },
        "domain.OperationParams": {
            "type": "object",
            "properties": {
                "amount": {"type": "string"},
                "item": {"type": "string"},
                "listingId": {"type": "string"},
                "price": {"type": "string"}
            }
        },
        "domain.OperationRequest": {
            "type": "object",
            "required": ["kind", "sessionId"],
            "properties": {
                "actions": {"type": "array", "items": {"$ref": "#/definitions/domain.Action"}},
                "farmId": {"type": "string"},
                "kind": {"type": "string", "enum": ["purchase", "mint", "transact", "trade", "deposit"]},
                "lastKnownVersion": {"type": "integer", "minimum": 0},
                "params": {"$ref": "#/definitions/domain.OperationParams"},
                "sessionId": {"type": "string"}
            }
        },
        "domain.OperationResponse": {
            "type": "object",
            "properties": {
                "accepted": {"type": "integer"},
                "outcome": {"type": "string", "enum": ["completed", "traded", "sniped", "deposited"]},
                "state": {"$ref": "#/definitions/domain.GameState"},
                "version": {"type": "integer"}
            }
        },
        "domain.Rejection": {
            "type": "object",
            "properties": {
                "actionId": {"type": "string"},
                "code": {"type": "string"},
                "message": {"type": "string"},
                "reason": {
                    "type": "string",
                    "enum": ["stale_version", "invalid_action", "rate_limited", "hoarding", "swarming", "unauthorized"]
                }
            }
        },
        "domain.Snapshot": {
            "type": "object",
            "properties": {
                "farmId": {"type": "string"},
                "state": {"$ref": "#/definitions/domain.GameState"},
                "version": {"type": "integer"}
            }
        },
        "domain.SyncRequest": {
            "type": "object",
            "required": ["sessionId"],
            "properties": {
                "actions": {"type": "array", "items": {"$ref": "#/definitions/domain.Action"}},
                "farmId": {"type": "string"},
                "lastKnownVersion": {"type": "integer", "minimum": 0},
                "sessionId": {"type": "string"}
            }
        },
        "domain.SyncResponse": {
            "type": "object",
            "properties": {
                "accepted": {"type": "integer"},
                "state": {"$ref": "#/definitions/domain.GameState"},
                "version": {"type": "integer"}
            }
        },
        "eventlog.Entry": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "eventType": {"type": "string"},
                "farmId": {"type": "string"},
                "id": {"type": "integer"},
                "payload": {"type": "object"}
            }
        },
        "handler.HealthResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "handler.VersionInfo": {
            "type": "object",
            "properties": {
                "build_time": {"type": "string"},
                "git_commit": {"type": "string"},
                "go_version": {"type": "string"},
                "schema_version": {"type": "integer"},
                "version": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "X-API-Key",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "FarmState Authority API",
	Description:      "Authoritative ledger for farm sessions: idempotent action sync and blocking operations.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
