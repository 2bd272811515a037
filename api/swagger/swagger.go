package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Edu Dashboard API",
        "description": "Hierarchical role and action permission engine",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Session lifecycle"},
        {"name": "Permissions", "description": "Page and action resolvers"},
        {"name": "Menu", "description": "Per-role navigation tree"},
        {"name": "Hierarchy", "description": "Organizational scope resolution"},
        {"name": "Roles", "description": "Role registry"},
        {"name": "Pages", "description": "Page catalog"},
        {"name": "Audit", "description": "Append-only change trail"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and issue a token pair",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/v1/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange a refresh token for a new token pair",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Expired or revoked token"}
                }
            }
        },
        "/api/v1/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke the presented refresh token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "204": {"description": "Revoked"}
                }
            }
        },
        "/api/v1/permissions/actions": {
            "get": {
                "tags": ["Permissions"],
                "summary": "List the fixed action set",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/permissions/pages/{page}": {
            "get": {
                "tags": ["Permissions"],
                "summary": "Check page access for the caller's role",
                "parameters": [
                    {"name": "page", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/permissions/pages/{page}/actions": {
            "get": {
                "tags": ["Permissions"],
                "summary": "Resolve every action on a page for the caller's role",
                "parameters": [
                    {"name": "page", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/permissions/pages/{page}/actions/{action}": {
            "get": {
                "tags": ["Permissions"],
                "summary": "Check a single action on a page for the caller's role",
                "parameters": [
                    {"name": "page", "in": "path", "required": true, "type": "string"},
                    {"name": "action", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/permissions/bulk": {
            "put": {
                "tags": ["Permissions"],
                "summary": "Apply a transactional batch of permission rows for one role",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkPermissionRequest"}}
                ],
                "responses": {
                    "204": {"description": "Applied"},
                    "400": {"description": "Invalid payload"},
                    "404": {"description": "Unknown role or page"}
                }
            }
        },
        "/api/v1/menu": {
            "get": {
                "tags": ["Menu"],
                "summary": "Build the navigation menu for the caller's role",
                "parameters": [
                    {"name": "locale", "in": "query", "type": "string", "description": "en or km"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/hierarchy": {
            "get": {
                "tags": ["Hierarchy"],
                "summary": "Resolve the caller's organizational scope",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/roles": {
            "get": {
                "tags": ["Roles"],
                "summary": "List roles",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Roles"],
                "summary": "Create role",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRoleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Role name already exists"}
                }
            }
        },
        "/api/v1/roles/{name}": {
            "get": {
                "tags": ["Roles"],
                "summary": "Get role",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Roles"],
                "summary": "Delete role",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Role still referenced by users"}
                }
            }
        },
        "/api/v1/pages": {
            "get": {
                "tags": ["Pages"],
                "summary": "List the page catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Pages"],
                "summary": "Register a page",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePageRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Page name already exists"}
                }
            }
        },
        "/api/v1/pages/{name}": {
            "get": {
                "tags": ["Pages"],
                "summary": "Get page",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Pages"],
                "summary": "Update page",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdatePageRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Parent assignment would close a cycle"}
                }
            }
        },
        "/api/v1/audit": {
            "get": {
                "tags": ["Audit"],
                "summary": "List audit entries",
                "parameters": [
                    {"name": "actor_id", "in": "query", "type": "string"},
                    {"name": "entity_type", "in": "query", "type": "string"},
                    {"name": "action_type", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/audit/summary": {
            "get": {
                "tags": ["Audit"],
                "summary": "Roll up recent audit activity by action type",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/audit/export/csv": {
            "get": {
                "tags": ["Audit"],
                "summary": "Export the filtered audit trail as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV payload"}
                }
            }
        },
        "/api/v1/audit/export/pdf": {
            "get": {
                "tags": ["Audit"],
                "summary": "Export the filtered audit trail as PDF",
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF payload"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshTokenRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "CreateRoleRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "hierarchy_level": {"type": "integer"},
                "can_manage_hierarchy": {"type": "boolean"},
                "max_hierarchy_depth": {"type": "integer"}
            }
        },
        "CreatePageRequest": {
            "type": "object",
            "required": ["name", "path"],
            "properties": {
                "name": {"type": "string"},
                "path": {"type": "string"},
                "icon": {"type": "string"},
                "parent_page_id": {"type": "integer"},
                "sort_order": {"type": "integer"},
                "is_displayed_in_menu": {"type": "boolean"},
                "title_en": {"type": "string"},
                "title_km": {"type": "string"}
            }
        },
        "UpdatePageRequest": {
            "type": "object",
            "required": ["path"],
            "properties": {
                "path": {"type": "string"},
                "icon": {"type": "string"},
                "parent_page_id": {"type": "integer"},
                "sort_order": {"type": "integer"},
                "is_displayed_in_menu": {"type": "boolean"},
                "title_en": {"type": "string"},
                "title_km": {"type": "string"}
            }
        },
        "PermissionEntry": {
            "type": "object",
            "required": ["page_id"],
            "properties": {
                "page_id": {"type": "integer"},
                "is_allowed": {"type": "boolean"},
                "actions": {
                    "type": "object",
                    "additionalProperties": {"type": "boolean"}
                }
            }
        },
        "BulkPermissionRequest": {
            "type": "object",
            "required": ["role", "entries"],
            "properties": {
                "role": {"type": "string"},
                "entries": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/PermissionEntry"}
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
