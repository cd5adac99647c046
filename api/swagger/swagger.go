package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Timetable API",
        "description": "Weekly timetable generation for classes, teachers and rooms",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Timetables", "description": "Greedy first-fit timetable generation"},
        {"name": "Observability", "description": "Generation metrics"}
    ],
    "paths": {
        "/timetables/generate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Generate a weekly timetable",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Subject without teacher", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/generate/catalog": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Generate a weekly timetable from the catalog database",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/CatalogTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown class", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Catalog not configured", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/export": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Generate a timetable and download it as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Invalid input or format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "Generation metrics snapshot",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ClassSubjectsRequest": {
            "type": "object",
            "required": ["classId", "subjects"],
            "properties": {
                "classId": {"type": "string"},
                "subjects": {"type": "array", "items": {"type": "string"}}
            }
        },
        "SlotRequest": {
            "type": "object",
            "properties": {
                "day": {"type": "integer", "minimum": 0, "maximum": 4},
                "period": {"type": "integer", "minimum": 0}
            }
        },
        "GenerateTimetableRequest": {
            "type": "object",
            "required": ["classes", "teacherOf", "periodsPerDay"],
            "properties": {
                "classes": {"type": "array", "items": {"$ref": "#/definitions/ClassSubjectsRequest"}},
                "teacherOf": {"type": "object", "additionalProperties": {"type": "string"}},
                "rooms": {"type": "array", "items": {"type": "string"}},
                "periodsPerDay": {"type": "integer", "minimum": 1},
                "availability": {
                    "type": "object",
                    "description": "Teacher to slot labels such as Monday-P1",
                    "additionalProperties": {"type": "array", "items": {"type": "string"}}
                },
                "availabilitySlots": {
                    "type": "object",
                    "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/SlotRequest"}}
                }
            }
        },
        "CatalogTimetableRequest": {
            "type": "object",
            "properties": {
                "classIds": {"type": "array", "items": {"type": "string"}},
                "periodsPerDay": {"type": "integer", "minimum": 1}
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
