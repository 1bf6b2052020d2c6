package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EduBuild API",
        "description": "STEM project catalogue with moderation, feedback, recommendations and an AI assistant",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Signup, signin and profile"},
        {"name": "Projects", "description": "Project catalogue and moderation"},
        {"name": "Feedback", "description": "Project ratings and comments"},
        {"name": "AI", "description": "STEM assistant with canned fallback"},
        {"name": "Health", "description": "Probes and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unreachable"}
                }
            }
        },
        "/api/auth/signup": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Signup successful", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload or email taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Invalid admin secret", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/auth/signin": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SigninRequest"}}
                ],
                "responses": {
                    "200": {"description": "Login successful", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/auth/profile": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current account",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/projects": {
            "get": {
                "tags": ["Projects"],
                "summary": "List projects",
                "parameters": [
                    {"name": "budget", "in": "query", "type": "number"},
                    {"name": "classLevel", "in": "query", "type": "string", "enum": ["6-8", "9-10", "11-12"]},
                    {"name": "subject", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Projects"],
                "summary": "Create project",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProjectRequest"}}
                ],
                "responses": {
                    "201": {"description": "Project created successfully", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/projects/mine": {
            "get": {
                "tags": ["Projects"],
                "summary": "List my projects",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/projects/pending": {
            "get": {
                "tags": ["Projects"],
                "summary": "Moderation queue",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Admins only", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/projects/recommendations": {
            "get": {
                "tags": ["Projects"],
                "summary": "Recommend up to three projects",
                "parameters": [
                    {"name": "budget", "in": "query", "type": "number", "required": true},
                    {"name": "classLevel", "in": "query", "type": "string"},
                    {"name": "subject", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Budget missing", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/projects/export": {
            "get": {
                "tags": ["Projects"],
                "summary": "Export catalogue",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "xlsx", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "403": {"description": "Admins only", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/projects/{id}": {
            "get": {
                "tags": ["Projects"],
                "summary": "Get project",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Project is pending approval", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Project not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Projects"],
                "summary": "Update project",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProjectRequest"}}
                ],
                "responses": {
                    "200": {"description": "Project updated successfully", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not authorized to update this project", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Project not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Projects"],
                "summary": "Delete project",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Project deleted successfully", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not authorized to delete this project", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Project not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/projects/{id}/status": {
            "patch": {
                "tags": ["Projects"],
                "summary": "Moderate project",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProjectStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "Status changed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Only admins can approve projects", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/projects/{id}/export.pdf": {
            "get": {
                "tags": ["Projects"],
                "summary": "Download project guide",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF guide"},
                    "404": {"description": "Project not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/feedback": {
            "post": {
                "tags": ["Feedback"],
                "summary": "Submit feedback",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FeedbackRequest"}}
                ],
                "responses": {
                    "201": {"description": "Feedback submitted successfully", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Project not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/feedback/{projectId}": {
            "get": {
                "tags": ["Feedback"],
                "summary": "List feedback, newest first",
                "parameters": [
                    {"name": "projectId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/ai/explain": {
            "post": {
                "tags": ["AI"],
                "summary": "Explain a project",
                "description": "The explanation is wrapped in the response envelope: read data.explanation, not a top-level field.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExplainRequest"}}
                ],
                "responses": {"200": {"description": "Always OK", "schema": {"$ref": "#/definitions/ExplainEnvelope"}}}
            }
        },
        "/api/ai/chat": {
            "post": {
                "tags": ["AI"],
                "summary": "Chat with the STEM assistant",
                "description": "The reply is wrapped in the response envelope: clients read data.reply instead of a top-level reply field.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChatRequest"}}
                ],
                "responses": {"200": {"description": "Always OK", "schema": {"$ref": "#/definitions/ChatEnvelope"}}}
            }
        }
    },
    "definitions": {
        "SignupRequest": {
            "type": "object",
            "required": ["name", "email", "password"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string", "minLength": 6},
                "school": {"type": "string"},
                "state": {"type": "string"},
                "role": {"type": "string", "enum": ["student", "admin"]},
                "adminSecret": {"type": "string"}
            }
        },
        "SigninRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string"}
            }
        },
        "ProjectRequest": {
            "type": "object",
            "required": ["title", "description", "classLevel", "subject"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "image": {"type": "string"},
                "budget": {"type": "number", "minimum": 0},
                "classLevel": {"type": "string", "enum": ["6-8", "9-10", "11-12"]},
                "subject": {"type": "string", "enum": ["Physics", "Chemistry", "Biology", "Mathematics", "Engineering"]},
                "materials": {"type": "array", "items": {"type": "string"}},
                "steps": {"type": "array", "items": {"type": "string"}},
                "learningOutcomes": {"type": "array", "items": {"type": "string"}},
                "difficulty": {"type": "string", "enum": ["Easy", "Medium", "Hard"]},
                "videoUrl": {"type": "string"}
            }
        },
        "ProjectStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["pending", "approved", "rejected"]}
            }
        },
        "FeedbackRequest": {
            "type": "object",
            "required": ["projectId"],
            "properties": {
                "projectId": {"type": "string", "format": "uuid"},
                "rating": {"type": "integer", "minimum": 1, "maximum": 5},
                "difficulty": {"type": "string", "enum": ["Easy", "Medium", "Hard"]},
                "feedback": {"type": "string"},
                "userName": {"type": "string"},
                "schoolName": {"type": "string"}
            }
        },
        "ExplainRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "materials": {"type": "array", "items": {"type": "string"}},
                "language": {"type": "string"}
            }
        },
        "ChatRequest": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "language": {"type": "string"}
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
                "message": {"type": "string"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        },
        "ExplainEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object",
                    "properties": {"explanation": {"type": "string"}}
                }
            }
        },
        "ChatEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object",
                    "properties": {"reply": {"type": "string"}}
                }
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
