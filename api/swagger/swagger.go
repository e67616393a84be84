package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Caseload API",
        "description": "Caseload management, reminder feed and timesheet note generation for school-based speech therapy.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Students", "description": "Caseload roster management"},
        {"name": "Reminders", "description": "Derived reminder feed"},
        {"name": "Timesheet", "description": "Day-note rendering"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate a user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange a refresh token for a new token pair",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Return the authenticated user's claims",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students on the caseload",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "school", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["active", "discharged"]},
                    {"name": "archived", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"},
                    {"name": "sort_by", "in": "query", "type": "string"},
                    {"name": "sort_order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Add a student to the caseload",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student detail",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update a student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Archive a student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Archived"}
                }
            }
        },
        "/students/{id}/goals": {
            "get": {
                "tags": ["Students"],
                "summary": "List a student's goals",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/reminders": {
            "get": {
                "tags": ["Reminders"],
                "summary": "Aggregated reminder feed",
                "description": "Derives all reminders for the caseload, sorted by priority then urgency.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "school", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reminders/export": {
            "get": {
                "tags": ["Reminders"],
                "summary": "Export the reminder feed as CSV",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "school", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV payload"}
                }
            }
        },
        "/timesheet/note": {
            "get": {
                "tags": ["Timesheet"],
                "summary": "Render the timesheet note for one day",
                "security": [{"BearerAuth": []}],
                "produces": ["text/plain"],
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "teletherapy", "in": "query", "type": "boolean"},
                    {"name": "specific_times", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Rendered note"}
                }
            }
        },
        "/timesheet/note/pdf": {
            "get": {
                "tags": ["Timesheet"],
                "summary": "Render the timesheet note for one day as PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "teletherapy", "in": "query", "type": "boolean"},
                    {"name": "specific_times", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "PDF payload"}
                }
            }
        },
        "/timesheet/prospective": {
            "get": {
                "tags": ["Timesheet"],
                "summary": "Project a note for a future day from the recurring schedule",
                "security": [{"BearerAuth": []}],
                "produces": ["text/plain"],
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "teletherapy", "in": "query", "type": "boolean"},
                    {"name": "specific_times", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Rendered note"}
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
        "CreateStudentRequest": {
            "type": "object",
            "required": ["full_name"],
            "properties": {
                "full_name": {"type": "string"},
                "grade": {"type": "string"},
                "school": {"type": "string"},
                "frequency_per_week": {"type": "integer"},
                "frequency_type": {"type": "string", "enum": ["per-week", "per-month"]},
                "annual_review_date": {"type": "string", "format": "date"}
            }
        },
        "UpdateStudentRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "grade": {"type": "string"},
                "school": {"type": "string"},
                "status": {"type": "string", "enum": ["active", "discharged"]},
                "frequency_per_week": {"type": "integer"},
                "frequency_type": {"type": "string", "enum": ["per-week", "per-month"]},
                "annual_review_date": {"type": "string", "format": "date"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
