// Package swagger holds the OpenAPI description of the mailcraft HTTP API.
// Regenerate with: swag init -g cmd/mailcraft/main.go -o docs/swagger
package swagger

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
        "/health": {
            "get": {
                "description": "Returns OK if the service is running",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness check",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.HealthResponse"}}}
            }
        },
        "/health/ready": {
            "get": {
                "description": "Checks if the service and its export archive are ready",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/http.HealthResponse"}}
                }
            }
        },
        "/version": {
            "get": {
                "description": "Returns the version information for the mailcraft service",
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Get service version",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.VersionResponse"}}}
            }
        },
        "/api/v1/kinds": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Catalog"],
                "summary": "List module kinds",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/jsonapi.Document"}}}
            }
        },
        "/api/v1/documents": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "List documents",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/jsonapi.Document"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Create a document",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/jsonapi.Document"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/jsonapi.Document"}}
                }
            }
        },
        "/api/v1/documents/{docID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Get a document",
                "parameters": [{"type": "string", "description": "Document ID", "name": "docID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/jsonapi.Document"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/jsonapi.Document"}}
                }
            },
            "delete": {
                "tags": ["Documents"],
                "summary": "Delete a document",
                "parameters": [{"type": "string", "description": "Document ID", "name": "docID", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/jsonapi.Document"}}
                }
            }
        },
        "/api/v1/documents/{docID}/selection": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Select a module",
                "parameters": [{"type": "string", "description": "Document ID", "name": "docID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/jsonapi.Document"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/jsonapi.Document"}}
                }
            },
            "delete": {
                "tags": ["Documents"],
                "summary": "Clear the selection",
                "parameters": [{"type": "string", "description": "Document ID", "name": "docID", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/api/v1/documents/{docID}/recipes": {
            "post": {
                "description": "Runs scripted builder operations. Steps before a failing step stay applied.",
                "consumes": ["application/yaml"],
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Apply a recipe",
                "parameters": [{"type": "string", "description": "Document ID", "name": "docID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/jsonapi.Document"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/jsonapi.Document"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/jsonapi.Document"}}
                }
            }
        },
        "/api/v1/documents/{docID}/modules": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Modules"],
                "summary": "List modules",
                "parameters": [
                    {"type": "string", "description": "Document ID", "name": "docID", "in": "path", "required": true},
                    {"type": "string", "description": "Parent module ID", "name": "parent", "in": "query"},
                    {"type": "string", "description": "Switch bucket (US, CA, AU, Default)", "name": "bucket", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/jsonapi.Document"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Modules"],
                "summary": "Insert a module",
                "parameters": [{"type": "string", "description": "Document ID", "name": "docID", "in": "path", "required": true}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/jsonapi.Document"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/jsonapi.Document"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/jsonapi.Document"}}
                }
            }
        },
        "/api/v1/documents/{docID}/modules/{moduleID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Modules"],
                "summary": "Get a module",
                "parameters": [
                    {"type": "string", "description": "Document ID", "name": "docID", "in": "path", "required": true},
                    {"type": "string", "description": "Module ID", "name": "moduleID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/jsonapi.Document"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/jsonapi.Document"}}
                }
            },
            "delete": {
                "description": "Removes the module and its descendants.",
                "tags": ["Modules"],
                "summary": "Remove a module",
                "parameters": [
                    {"type": "string", "description": "Document ID", "name": "docID", "in": "path", "required": true},
                    {"type": "string", "description": "Module ID", "name": "moduleID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/jsonapi.Document"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Modules"],
                "summary": "Update module values",
                "parameters": [
                    {"type": "string", "description": "Document ID", "name": "docID", "in": "path", "required": true},
                    {"type": "string", "description": "Module ID", "name": "moduleID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/jsonapi.Document"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/jsonapi.Document"}}
                }
            }
        },
        "/api/v1/documents/{docID}/modules/{moduleID}/move": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Modules"],
                "summary": "Move a module",
                "parameters": [
                    {"type": "string", "description": "Document ID", "name": "docID", "in": "path", "required": true},
                    {"type": "string", "description": "Module ID", "name": "moduleID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/jsonapi.Document"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/jsonapi.Document"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/jsonapi.Document"}}
                }
            }
        },
        "/api/v1/documents/{docID}/modules/{moduleID}/duplicate": {
            "post": {
                "description": "Copies the module and its subtree right after the source.",
                "produces": ["application/json"],
                "tags": ["Modules"],
                "summary": "Duplicate a module",
                "parameters": [
                    {"type": "string", "description": "Document ID", "name": "docID", "in": "path", "required": true},
                    {"type": "string", "description": "Module ID", "name": "moduleID", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/jsonapi.Document"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/jsonapi.Document"}}
                }
            }
        },
        "/api/v1/documents/{docID}/preview": {
            "get": {
                "produces": ["text/html"],
                "tags": ["Exports"],
                "summary": "Preview export markup",
                "parameters": [{"type": "string", "description": "Document ID", "name": "docID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "string"}}}
            }
        },
        "/api/v1/documents/{docID}/exports": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Exports"],
                "summary": "List export history",
                "parameters": [
                    {"type": "string", "description": "Document ID", "name": "docID", "in": "path", "required": true},
                    {"type": "integer", "description": "Maximum entries, newest first", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/jsonapi.Document"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/jsonapi.Document"}}
                }
            },
            "post": {
                "description": "Compiles the document and archives the markup. An export identical to the latest one is returned with archived=false.",
                "produces": ["application/json"],
                "tags": ["Exports"],
                "summary": "Export a document",
                "parameters": [{"type": "string", "description": "Document ID", "name": "docID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/jsonapi.Document"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/jsonapi.Document"}}
                }
            }
        },
        "/api/v1/exports/{exportID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Exports"],
                "summary": "Get an export",
                "parameters": [{"type": "string", "description": "Export ID", "name": "exportID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/jsonapi.Document"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/jsonapi.Document"}}
                }
            }
        },
        "/api/v1/exports/{exportID}/html": {
            "get": {
                "produces": ["text/html"],
                "tags": ["Exports"],
                "summary": "Get export markup",
                "parameters": [{"type": "string", "description": "Export ID", "name": "exportID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/jsonapi.Document"}}
                }
            }
        }
    },
    "definitions": {
        "http.HealthResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "status": {"type": "string", "example": "ok"}
            }
        },
        "http.VersionResponse": {
            "type": "object",
            "properties": {
                "service": {"type": "string", "example": "mailcraft"},
                "version": {"type": "string", "example": "1.0.0"}
            }
        },
        "jsonapi.Document": {
            "type": "object",
            "properties": {
                "data": {},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/jsonapi.Error"}},
                "meta": {"type": "object", "additionalProperties": true}
            }
        },
        "jsonapi.Error": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "detail": {"type": "string"},
                "status": {"type": "string"},
                "title": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "mailcraft API",
	Description:      "Email template builder: module placement, country switches and AMPscript export.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
