// Package docs registers the swagger description served under /swagger.
// It is maintained by hand alongside the @Router annotations on the handlers.
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
        "/api/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/api/student/join-module": {
            "post": {
                "description": "Resolves a 6-character access code (case-insensitive) to an active module. Read only.",
                "produces": ["application/json"],
                "tags": ["Student"],
                "summary": "Join a module by access code",
                "parameters": [
                    {"type": "string", "description": "Access code", "name": "access_code", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}},
                    "400": {"description": "Malformed code", "schema": {"$ref": "#/definitions/util.Response"}},
                    "403": {"description": "Module inactive", "schema": {"$ref": "#/definitions/util.Response"}},
                    "404": {"description": "Invalid access code", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/api/student/modules/{id}": {
            "get": {
                "description": "Re-reads a module by id after the student has joined it",
                "produces": ["application/json"],
                "tags": ["Student"],
                "summary": "Get an active module",
                "parameters": [
                    {"type": "string", "description": "Module ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}},
                    "403": {"description": "Module inactive", "schema": {"$ref": "#/definitions/util.Response"}},
                    "404": {"description": "Module not found", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/api/student/modules/{id}/consent": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Student"],
                "summary": "Get a student's consent record",
                "parameters": [
                    {"type": "string", "description": "Module ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Student ID", "name": "student_id", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/util.Response"}},
                    "404": {"description": "Module not found", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/api/modules/{id}/consent/{student_id}": {
            "put": {
                "description": "Creates or overwrites the student's consent record for the module",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Consent"],
                "summary": "Record a consent choice",
                "parameters": [
                    {"type": "string", "description": "Module ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Student ID", "name": "student_id", "in": "path", "required": true},
                    {"description": "Consent choice", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controller.SubmitConsentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/util.Response"}},
                    "404": {"description": "Module not found", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/api/teacher/modules": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Teacher"],
                "summary": "List own modules",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates a module owned by the caller with a freshly generated access code",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Teacher"],
                "summary": "Create a module",
                "parameters": [
                    {"description": "Module", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.CreateModuleInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/util.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/util.Response"}},
                    "409": {"description": "Name already used", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/api/teacher/modules/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Teacher"],
                "summary": "Get an owned module, including its access code",
                "parameters": [
                    {"type": "string", "description": "Module ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/util.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/api/teacher/modules/{id}/regenerate-code": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "The previous code stops working immediately",
                "produces": ["application/json"],
                "tags": ["Teacher"],
                "summary": "Regenerate the access code",
                "parameters": [
                    {"type": "string", "description": "Module ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/util.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/api/teacher/modules/{id}/consent-form": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Teacher"],
                "summary": "Configure the consent form",
                "parameters": [
                    {"type": "string", "description": "Module ID", "name": "id", "in": "path", "required": true},
                    {"description": "Consent form", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controller.UpdateConsentFormRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/util.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/api/teacher/modules/{id}/active": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Teacher"],
                "summary": "Activate or deactivate a module",
                "parameters": [
                    {"type": "string", "description": "Module ID", "name": "id", "in": "path", "required": true},
                    {"description": "Active flag", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controller.SetActiveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/util.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        }
    },
    "definitions": {
        "controller.SetActiveRequest": {
            "type": "object",
            "required": ["is_active"],
            "properties": {
                "is_active": {"type": "boolean"}
            }
        },
        "controller.SubmitConsentRequest": {
            "type": "object",
            "required": ["waiver_status"],
            "properties": {
                "waiver_status": {"type": "integer", "enum": [1, 2, 3]}
            }
        },
        "controller.UpdateConsentFormRequest": {
            "type": "object",
            "required": ["consent_required"],
            "properties": {
                "consent_required": {"type": "boolean"},
                "consent_form_text": {"type": "string"}
            }
        },
        "service.CreateModuleInput": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string", "maxLength": 255},
                "description": {"type": "string"},
                "due_date": {"type": "string"},
                "consent_required": {"type": "boolean"},
                "consent_form_text": {"type": "string"},
                "is_active": {"type": "boolean"}
            }
        },
        "util.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {},
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Module Gate API",
	Description:      "Module access codes and research consent for student admission.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
