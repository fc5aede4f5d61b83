// Package docs holds the OpenAPI description served on /swagger/*.
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
        "/api/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new account",
                "parameters": [
                    {"description": "Registration details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.envelope"}}
                }
            }
        },
        "/api/auth/verify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Verify an account",
                "parameters": [
                    {"description": "Email and verification code", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.verifyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.envelope"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.envelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.unverifiedResponse"}}
                }
            }
        },
        "/api/auth/forgot-password": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Request a password reset code",
                "parameters": [
                    {"description": "Account email", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.forgotPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.envelope"}}
                }
            }
        },
        "/api/auth/reset-password": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Reset password",
                "parameters": [
                    {"description": "Email, reset code and new password", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.resetPasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.envelope"}}
                }
            }
        },
        "/api/auth/check-email/{email}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Check email availability",
                "parameters": [
                    {"type": "string", "description": "Email address", "name": "email", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.checkEmailResponse"}}
                }
            }
        },
        "/api/admin/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Dashboard statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.envelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.envelope"}}
                }
            }
        },
        "/api/admin/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "List users",
                "parameters": [
                    {"type": "integer", "description": "Maximum number of users (1-50)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.envelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.envelope"}}
                }
            }
        },
        "/api/admin/users/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Delete a user",
                "parameters": [
                    {"type": "integer", "description": "Account id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.envelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.envelope"}}
                }
            }
        },
        "/api/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.healthResponse"}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        }
    },
    "definitions": {
        "handler.envelope": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "data": {}
            }
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6, "maxLength": 72},
                "username": {"type": "string", "minLength": 3, "maxLength": 64},
                "full_name": {"type": "string", "maxLength": 100}
            }
        },
        "handler.verifyRequest": {
            "type": "object",
            "required": ["email", "code"],
            "properties": {
                "email": {"type": "string"},
                "code": {"type": "string", "minLength": 6, "maxLength": 6}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.forgotPasswordRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string"}
            }
        },
        "handler.resetPasswordRequest": {
            "type": "object",
            "required": ["email", "code", "newPassword"],
            "properties": {
                "email": {"type": "string"},
                "code": {"type": "string", "minLength": 6, "maxLength": 6},
                "newPassword": {"type": "string", "minLength": 6, "maxLength": 72}
            }
        },
        "handler.unverifiedResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "requires_verification": {"type": "boolean"},
                "email": {"type": "string"}
            }
        },
        "handler.checkEmailResponse": {
            "type": "object",
            "properties": {
                "exists": {"type": "boolean"}
            }
        },
        "handler.healthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "database": {"type": "string"},
                "timestamp": {"type": "string"}
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
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Auth Service API",
	Description:      "Account registration, email verification, login and password reset, plus an admin surface.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
