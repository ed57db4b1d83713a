package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Thesis Registry API",
        "description": "Thesis records with role-scoped visibility, status approvals and an audit trail.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Theses", "description": "Thesis records, listings and exports"},
        {"name": "Attachments", "description": "Signed attachment downloads"},
        {"name": "Authentication", "description": "Calling actor"},
        {"name": "Admin", "description": "Maintenance operations"}
    ],
    "paths": {
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current actor",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/theses": {
            "get": {
                "tags": ["Theses"],
                "summary": "List visible theses",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "programId", "in": "query", "type": "string"},
                    {"name": "departmentId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "description": "Comma separated statuses"},
                    {"name": "topic", "in": "query", "type": "string"},
                    {"name": "author", "in": "query", "type": "string"},
                    {"name": "programName", "in": "query", "type": "string"},
                    {"name": "language", "in": "query", "type": "string", "enum": ["fi", "en", "sv"]},
                    {"name": "onlyMine", "in": "query", "type": "boolean"},
                    {"name": "sort", "in": "query", "type": "string", "description": "targetDate, startDate, topic, status, createdAt, updatedAt; prefix - for descending"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Theses"],
                "summary": "Create a thesis",
                "description": "JSON body, or multipart form with the payload in field json and files in researchPlan and waysOfWorking.",
                "consumes": ["application/json", "multipart/form-data"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ThesisPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not permitted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/theses/export": {
            "get": {
                "tags": ["Theses"],
                "summary": "Export visible theses",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/theses/{id}": {
            "parameters": [
                {"name": "id", "in": "path", "required": true, "type": "string"}
            ],
            "get": {
                "tags": ["Theses"],
                "summary": "Get a thesis",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found or not visible", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Theses"],
                "summary": "Replace a thesis",
                "consumes": ["application/json", "multipart/form-data"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ThesisPayload"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Status change not permitted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Theses"],
                "summary": "Delete a thesis",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "403": {"description": "Not permitted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/theses/{id}/events": {
            "get": {
                "tags": ["Theses"],
                "summary": "Audit trail of a thesis",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/theses/{id}/attachments/{label}": {
            "get": {
                "tags": ["Attachments"],
                "summary": "Signed download link for a thesis attachment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "label", "in": "path", "required": true, "type": "string", "enum": ["researchPlan", "waysOfWorking"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No attachment", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attachments/download": {
            "get": {
                "tags": ["Attachments"],
                "summary": "Download an attachment with a signed token",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/departments/{id}/theses": {
            "get": {
                "tags": ["Theses"],
                "summary": "List theses supervised within a department",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/metrics": {
            "get": {
                "tags": ["Admin"],
                "summary": "Aggregated runtime counters",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Admins only", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/theses/complete": {
            "post": {
                "tags": ["Admin"],
                "summary": "Mark theses completed after study attainment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {
                        "type": "object",
                        "properties": {"thesisIds": {"type": "array", "items": {"type": "string", "format": "uuid"}}}
                    }}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Admins only", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "PersonRef": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"}
            }
        },
        "ExternalPerson": {
            "type": "object",
            "properties": {
                "firstNames": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "affiliation": {"type": "string"}
            }
        },
        "Supervision": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "percentage": {"type": "integer"},
                "isPrimarySupervisor": {"type": "boolean"},
                "isExternal": {"type": "boolean"},
                "externalUser": {"$ref": "#/definitions/ExternalPerson"}
            }
        },
        "Grader": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "isPrimaryGrader": {"type": "boolean"},
                "isExternal": {"type": "boolean"},
                "externalUser": {"$ref": "#/definitions/ExternalPerson"}
            }
        },
        "AttachmentDescriptor": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "filename": {"type": "string"},
                "originalName": {"type": "string"},
                "mimetype": {"type": "string"},
                "size": {"type": "integer"}
            }
        },
        "ThesisPayload": {
            "type": "object",
            "required": ["programId", "studyTrackId", "topic", "status", "startDate", "targetDate"],
            "properties": {
                "programId": {"type": "string"},
                "studyTrackId": {"type": "string"},
                "topic": {"type": "string"},
                "status": {"type": "string", "enum": ["PLANNING", "STARTED", "IN_PROGRESS", "COMPLETED", "CANCELLED", "ETHESIS", "ETHESIS_SENT"]},
                "startDate": {"type": "string", "format": "date"},
                "targetDate": {"type": "string", "format": "date"},
                "ethesisDate": {"type": "string", "format": "date"},
                "supervisions": {"type": "array", "items": {"$ref": "#/definitions/Supervision"}},
                "graders": {"type": "array", "items": {"$ref": "#/definitions/Grader"}},
                "authors": {"type": "array", "items": {"$ref": "#/definitions/PersonRef"}},
                "approvers": {"type": "array", "items": {"$ref": "#/definitions/PersonRef"}},
                "researchPlan": {"$ref": "#/definitions/AttachmentDescriptor"},
                "waysOfWorking": {"$ref": "#/definitions/AttachmentDescriptor"}
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
                "status": {"type": "integer"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
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
