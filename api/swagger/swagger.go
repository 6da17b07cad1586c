package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timeclock API",
        "description": "Tablet attendance tracking: time events, schedules, reports and a live dashboard",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Tablet", "description": "Badge scans and device status"},
        {"name": "Dashboard", "description": "Live attendance view"},
        {"name": "Reports", "description": "Attendance aggregation and exports"},
        {"name": "Schedules", "description": "Planned work days"}
    ],
    "securityDefinitions": {
        "DeviceToken": {"type": "apiKey", "name": "X-Device-Token", "in": "header"},
        "AdminBearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/tablet/events": {
            "post": {
                "tags": ["Tablet"],
                "summary": "Register a time event",
                "description": "A rejected scan is a 200 with accepted=false; only an unknown badge is a 404.",
                "security": [{"DeviceToken": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "200": {"description": "Rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown badge"}
                }
            }
        },
        "/tablet/status": {
            "get": {
                "tags": ["Tablet"],
                "summary": "Tablet status",
                "security": [{"DeviceToken": []}],
                "parameters": [
                    {"name": "qr", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/live": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Live attendance dashboard",
                "security": [{"AdminBearer": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/attendance": {
            "get": {
                "tags": ["Reports"],
                "summary": "Attendance report",
                "security": [{"AdminBearer": []}],
                "parameters": [
                    {"name": "from", "in": "query", "required": true, "type": "string"},
                    {"name": "to", "in": "query", "required": true, "type": "string"},
                    {"name": "employee_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/attendance/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download attendance report",
                "security": [{"AdminBearer": []}],
                "parameters": [
                    {"name": "from", "in": "query", "required": true, "type": "string"},
                    {"name": "to", "in": "query", "required": true, "type": "string"},
                    {"name": "employee_id", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/schedules": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List work schedules",
                "security": [{"AdminBearer": []}],
                "parameters": [
                    {"name": "employee_id", "in": "query", "type": "string"},
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "date_from", "in": "query", "type": "string"},
                    {"name": "date_to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Schedules"],
                "summary": "Create or replace a planned day",
                "security": [{"AdminBearer": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Schedules"],
                "summary": "Create or replace a planned day",
                "security": [{"AdminBearer": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{id}": {
            "delete": {
                "tags": ["Schedules"],
                "summary": "Delete a planned day",
                "security": [{"AdminBearer": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "RegisterEventRequest": {
            "type": "object",
            "properties": {
                "qr": {"type": "string"},
                "event_type": {"type": "string", "enum": ["CHECK_IN", "CHECK_OUT", "BREAK_START", "BREAK_END", "TOILET"]},
                "device_id": {"type": "string"}
            },
            "required": ["qr", "event_type"]
        },
        "ScheduleInput": {
            "type": "object",
            "properties": {
                "employee_id": {"type": "string"},
                "date": {"type": "string"},
                "day_type": {"type": "string", "enum": ["WORK", "OFF", "LEAVE"]},
                "planned_start": {"type": "string"},
                "planned_end": {"type": "string"}
            },
            "required": ["employee_id", "date", "day_type"]
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
