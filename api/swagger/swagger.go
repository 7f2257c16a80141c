package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable API",
        "description": "Timetable generation service for the student portal",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetable", "description": "Timetable settings, generation and queries"}
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
                    "503": {"description": "Unavailable"}
                }
            }
        },
        "/api/v1/timetable/settings": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Get timetable settings",
                "responses": {
                    "200": {"description": "Current settings", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Settings not configured"}
                }
            },
            "put": {
                "tags": ["Timetable"],
                "summary": "Update timetable settings",
                "description": "Validates the full configuration and reports every violated rule at once.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Saved settings", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation errors (all violated rules listed in meta.details)"}
                }
            }
        },
        "/api/v1/timetable/generate": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Generate the weekly timetable",
                "description": "Runs the scheduler over all assigned classes. Mode 'replace' clears previous entries, 'append' keeps them.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/GenerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "Generation result with per-assignment failures", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Settings are not feasible"},
                    "412": {"description": "Settings missing or no assigned classes"}
                }
            }
        },
        "/api/v1/timetable/reset": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Clear all generated timetable entries",
                "responses": {
                    "204": {"description": "Cleared"}
                }
            }
        },
        "/api/v1/timetable/grid": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Get the day-by-period timetable grid",
                "parameters": [
                    {"name": "branch", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "teacherId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Grid with period and lunch labels", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/timetable/entries": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List timetable entries",
                "parameters": [
                    {"name": "branch", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "teacherId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Flat entry list", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/timetable/export": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Download the timetable as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "branch", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "File attachment"}
                }
            }
        }
    },
    "definitions": {
        "UpdateSettingsRequest": {
            "type": "object",
            "required": ["startTime", "endTime", "minClassDuration", "maxClassDuration", "periods", "workingDays"],
            "properties": {
                "startTime": {"type": "string", "example": "09:00"},
                "endTime": {"type": "string", "example": "17:00"},
                "lunchDuration": {"type": "integer", "example": 60},
                "minClassDuration": {"type": "integer", "example": 40},
                "maxClassDuration": {"type": "integer", "example": 60},
                "periods": {"type": "integer", "example": 8},
                "workingDays": {"type": "string", "example": "MTWTF"},
                "activeSemesterType": {"type": "string", "enum": ["odd", "even"]}
            }
        },
        "GenerateRequest": {
            "type": "object",
            "properties": {
                "mode": {"type": "string", "enum": ["replace", "append"]}
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
