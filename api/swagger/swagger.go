package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable API",
        "description": "Timetable scheduling and conflict resolution service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetable", "description": "Schedule generation and the master grid"},
        {"name": "ChangeRequests", "description": "Lecturer reschedule request workflow"}
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
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List the committed timetable",
                "parameters": [
                    {"name": "batchId", "in": "query", "type": "string"},
                    {"name": "lecturerId", "in": "query", "type": "string"},
                    {"name": "hallId", "in": "query", "type": "string"},
                    {"name": "day", "in": "query", "type": "string"},
                    {"name": "week", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/generate": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Generate a fresh timetable from the resource catalog",
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "Generated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Catalog is structurally unschedulable"}
                }
            }
        },
        "/assignments/{id}/move": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Move an assignment to a different grid cell",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MoveAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Moved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Assignment not found"},
                    "409": {"description": "Slot conflict, alternatives attached in meta"}
                }
            }
        },
        "/assignments/{id}/alternatives": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List conflict-free alternative slots for an assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "targetDay", "in": "query", "type": "string"},
                    {"name": "targetInterval", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Assignment not found"}
                }
            }
        },
        "/change-requests": {
            "get": {
                "tags": ["ChangeRequests"],
                "summary": "List change requests",
                "parameters": [
                    {"name": "assignmentId", "in": "query", "type": "string"},
                    {"name": "lecturerId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "array", "items": {"type": "string"}},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["ChangeRequests"],
                "summary": "File a change request for an assignment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateChangeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "A pending request already exists"}
                }
            }
        },
        "/change-requests/{id}": {
            "get": {
                "tags": ["ChangeRequests"],
                "summary": "Get a change request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/change-requests/{id}/resolve": {
            "post": {
                "tags": ["ChangeRequests"],
                "summary": "Approve or reject a pending change request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResolveChangeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Resolved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already resolved, or the approved slot now conflicts"}
                }
            }
        }
    },
    "definitions": {
        "GenerateTimetableRequest": {
            "type": "object",
            "properties": {
                "dryRun": {"type": "boolean"},
                "expandTerm": {"type": "boolean"}
            }
        },
        "MoveAssignmentRequest": {
            "type": "object",
            "required": ["day", "interval"],
            "properties": {
                "day": {"type": "string", "enum": ["MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"]},
                "interval": {"type": "integer", "minimum": 1, "maximum": 4}
            }
        },
        "CreateChangeRequest": {
            "type": "object",
            "required": ["assignmentId", "lecturerId", "day", "interval", "reason"],
            "properties": {
                "assignmentId": {"type": "string"},
                "lecturerId": {"type": "string"},
                "day": {"type": "string"},
                "interval": {"type": "integer", "minimum": 1, "maximum": 4},
                "reason": {"type": "string", "minLength": 10}
            }
        },
        "ResolveChangeRequest": {
            "type": "object",
            "required": ["decision"],
            "properties": {
                "decision": {"type": "string", "enum": ["APPROVED", "REJECTED"]},
                "rejectionReason": {"type": "string", "minLength": 10},
                "suggestedSlots": {"type": "array", "items": {"$ref": "#/definitions/TimeSlot"}},
                "attachSuggestions": {"type": "boolean"}
            }
        },
        "TimeSlot": {
            "type": "object",
            "properties": {
                "day": {"type": "string"},
                "interval": {"type": "integer"}
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
