// Package docs registers the OpenAPI document served under /swagger/.
//
// Regenerate with `swag init -g cmd/proagent/main.go` after changing the
// handler annotations in internal/transport/http.
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
        "/process": {
            "post": {
                "description": "Saves the uploaded files, resolves the prompt to one operation and runs it.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["process"],
                "summary": "Run a prompt against uploaded files",
                "parameters": [
                    {"type": "string", "description": "Free-form instruction", "name": "prompt", "in": "formData", "required": true},
                    {"type": "file", "description": "Input files (repeatable)", "name": "files", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "Operation succeeded", "schema": {"$ref": "#/definitions/http.ProcessResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/http.ProcessResponse"}},
                    "413": {"description": "Upload too large", "schema": {"type": "string"}},
                    "500": {"description": "Processing failure", "schema": {"$ref": "#/definitions/http.ProcessResponse"}}
                }
            }
        },
        "/resolve": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["process"],
                "summary": "Resolve a prompt without running it",
                "parameters": [
                    {"description": "Prompt and optional file names", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.ResolveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/message.Call"}},
                    "400": {"description": "Invalid request body", "schema": {"type": "string"}}
                }
            }
        },
        "/functions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List supported operations",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/catalog.Entry"}}}
                }
            }
        },
        "/download/{path}": {
            "get": {
                "produces": ["application/octet-stream"],
                "tags": ["artifacts"],
                "summary": "Download an artifact",
                "parameters": [
                    {"type": "string", "description": "Artifact path relative to the output area", "name": "path", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid path", "schema": {"type": "string"}},
                    "404": {"description": "Not found", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "catalog.Entry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "description": {"type": "string"},
                "parameters": {"type": "array", "items": {"type": "object"}},
                "triggers": {"type": "array", "items": {"type": "string"}},
                "input_extensions": {"type": "array", "items": {"type": "string"}}
            }
        },
        "http.ResolveRequest": {
            "type": "object",
            "properties": {
                "prompt": {"type": "string"},
                "files": {"type": "array", "items": {"type": "string"}}
            }
        },
        "http.ProcessResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "result_file_path": {"type": "string"},
                "function_used": {"type": "string"},
                "confidence": {"type": "number"},
                "strategy": {"type": "string"},
                "degraded": {"type": "boolean"},
                "metadata": {"type": "object"},
                "error_kind": {"type": "string"},
                "error_details": {"type": "string"},
                "download_url": {"type": "string"}
            }
        },
        "message.Call": {
            "type": "object",
            "properties": {
                "function_name": {"type": "string"},
                "parameters": {"type": "object"},
                "confidence": {"type": "number"},
                "strategy": {"type": "string"},
                "degraded": {"type": "boolean"},
                "degraded_reason": {"type": "string"},
                "substitution": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "proagent API",
	Description:      "Prompt-driven file processing: resolve a free-text instruction to one operation and run it on uploaded files.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
