// Package docs exposes the generated OpenAPI document for the swagger UI.
// Regenerate with: swag init -g internal/platform/httpserver/server.go
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
        "/v1/election/cycle": {
            "get": {
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "Current cycle status",
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "No active cycle"}
                }
            }
        },
        "/v1/election/cycles": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "Start a new election cycle",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "Caller is not the administrator"},
                    "409": {"description": "A cycle is already in progress"}
                }
            }
        },
        "/v1/election/candidates": {
            "get": {
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "Candidate standings in registration order",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "Register the caller as a candidate",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Already registered or wrong phase"}
                }
            }
        },
        "/v1/election/votes": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "Cast the caller's single vote",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "404": {"description": "Target is not an active candidate"},
                    "409": {"description": "Already voted or wrong phase"}
                }
            }
        },
        "/v1/election/pledges": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "Pledge funds to a voted-for candidate",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "Caller has not voted for this candidate"},
                    "422": {"description": "Candidate below threshold or amount below floor"},
                    "502": {"description": "Escrow transfer failed"}
                }
            }
        },
        "/v1/election/delegations": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "Delegate the caller's votes to another candidate",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not an active candidate"},
                    "422": {"description": "Self delegation or destination below threshold"}
                }
            }
        },
        "/v1/election/elect": {
            "post": {
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "Run the election and pick the winner",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Caller is not the administrator"},
                    "409": {"description": "No candidates or wrong phase"}
                }
            }
        },
        "/v1/election/claims/winner": {
            "post": {
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "Winner withdraws the escrowed pledges",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Caller is not the winner"},
                    "409": {"description": "Nothing to claim or wrong phase"}
                }
            }
        },
        "/v1/election/claims/backer": {
            "post": {
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "Losing-side backer refunds their pledge",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Nothing to claim or wrong phase"}
                }
            }
        },
        "/v1/wallet/deposits": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Deposit funds into the caller's wallet",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Amount must be positive"}
                }
            }
        },
        "/v1/wallet/accounts/{account_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Read an account balance",
                "parameters": [
                    {"type": "string", "name": "account_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/v1/wallet/step": {
            "get": {
                "produces": ["application/json"],
                "tags": ["wallet"],
                "summary": "Read the administrator step counter",
                "responses": {
                    "200": {"description": "OK"}
                }
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
	Title:            "Electra API",
	Description:      "Single-cycle election with integrated fund escrow.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
