// Package docs registers the OpenAPI document served under /swagger.
// Regenerate from the handler annotations with:
//
//	swag init -g cmd/rolesd/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new operator",
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/registerRequest"}}],
            "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Login",
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/loginRequest"}}],
            "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}}},
        "/v1/roles/counts": {"get": {"tags": ["roles"], "summary": "Local role counts", "security": [{"BearerAuth": []}],
            "responses": {"200": {"description": "OK"}}}},
        "/v1/roles/counts/refresh": {"post": {"tags": ["roles"], "summary": "Re-read role counts from the registry", "security": [{"BearerAuth": []}],
            "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}}},
        "/v1/roles/{role}/assign": {"post": {"tags": ["roles"], "summary": "Assign a role", "security": [{"BearerAuth": []}],
            "parameters": [
                {"in": "path", "name": "role", "required": true, "type": "string"},
                {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/assignRequest"}}
            ],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Validation"}, "403": {"description": "Unauthorized"}, "409": {"description": "Rejected or in flight"}, "422": {"description": "Resolution"}, "499": {"description": "Cancelled"}, "502": {"description": "Unknown"}}}},
        "/v1/roles/{role}/revoke": {"post": {"tags": ["roles"], "summary": "Revoke a role", "security": [{"BearerAuth": []}],
            "parameters": [
                {"in": "path", "name": "role", "required": true, "type": "string"},
                {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/revokeRequest"}}
            ],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Validation"}, "403": {"description": "Unauthorized"}, "409": {"description": "Rejected or in flight"}, "422": {"description": "Resolution"}, "499": {"description": "Cancelled"}, "502": {"description": "Unknown"}}}},
        "/v1/roles/operations": {"get": {"tags": ["roles"], "summary": "Role operation history", "security": [{"BearerAuth": []}],
            "parameters": [
                {"in": "query", "name": "kind", "type": "string", "enum": ["assign", "revoke"]},
                {"in": "query", "name": "role", "type": "string"},
                {"in": "query", "name": "page", "type": "integer"},
                {"in": "query", "name": "limit", "type": "integer"}
            ],
            "responses": {"200": {"description": "OK"}}}},
        "/v1/principals/{identifier}/roles": {"get": {"tags": ["principals"], "summary": "Roles held by an address or name", "security": [{"BearerAuth": []}],
            "parameters": [{"in": "path", "name": "identifier", "required": true, "type": "string"}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Validation"}, "422": {"description": "Resolution"}}}},
        "/v1/principals/{identifier}/portal": {"get": {"tags": ["principals"], "summary": "Landing portal for a wallet", "security": [{"BearerAuth": []}],
            "parameters": [{"in": "path", "name": "identifier", "required": true, "type": "string"}],
            "responses": {"200": {"description": "OK"}, "403": {"description": "No roles"}}}}
    },
    "definitions": {
        "registerRequest": {"type": "object", "properties": {"username": {"type": "string"}, "password": {"type": "string"}, "role": {"type": "string", "enum": ["admin", "viewer"]}, "wallet": {"type": "string"}}},
        "loginRequest": {"type": "object", "properties": {"username": {"type": "string"}, "password": {"type": "string"}}},
        "assignRequest": {"type": "object", "required": ["identifier"], "properties": {"identifier": {"type": "string"}}},
        "revokeRequest": {"type": "object", "required": ["identifier", "reason"], "properties": {"identifier": {"type": "string"}, "reason": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Mineral Roles Admin API",
	Description:      "Assigns and revokes supply-chain roles on the RolesManager contract.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
