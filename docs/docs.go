// Package docs registers the OpenAPI description of the ingestion API.
// Regenerate with `swag init -g cmd/portools-service/main.go`.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ops"],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        },
        "/portfolios/{id}": {
            "get": {
                "description": "Return the lots most recently uploaded for the portfolio",
                "produces": ["application/json"],
                "tags": ["portfolios"],
                "summary": "Get a portfolio",
                "parameters": [
                    {"type": "integer", "description": "Portfolio ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Portfolio"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "put": {
                "description": "Replace every lot of the portfolio with the rows of a CSV body. Derived views are recomputed asynchronously.",
                "consumes": ["text/csv"],
                "produces": ["application/json"],
                "tags": ["portfolios"],
                "summary": "Upload a portfolio",
                "parameters": [
                    {"type": "integer", "description": "Portfolio ID", "name": "id", "in": "path", "required": true},
                    {"description": "CSV with columns account, symbol, date_acquired (YYYY/MM/DD), quantity, cost_per_share", "name": "body", "in": "body", "required": true, "schema": {"type": "string"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PutPortfolioResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "411": {"description": "Length Required", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/portfolios/{id}/summaries/{view}": {
            "get": {
                "description": "Return the cost of the portfolio grouped by asset class or by symbol. May lag the latest upload.",
                "produces": ["application/json"],
                "tags": ["portfolios"],
                "summary": "Get a derived view",
                "parameters": [
                    {"type": "integer", "description": "Portfolio ID", "name": "id", "in": "path", "required": true},
                    {"enum": ["asset_class", "symbol"], "type": "string", "description": "View", "name": "view", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SummaryDocument"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.Currency": {
            "type": "object",
            "properties": {
                "amount": {"type": "string", "example": "1803.84"},
                "unit": {"type": "string", "example": "USD"}
            }
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "models.GroupSummary": {
            "type": "object",
            "properties": {
                "cost": {"$ref": "#/definitions/models.Currency"}
            }
        },
        "models.Lot": {
            "type": "object",
            "properties": {
                "account": {"type": "string"},
                "symbol": {"type": "string"},
                "date_acquired": {"type": "string", "example": "2023-03-27"},
                "quantity": {"type": "string"},
                "cost_basis": {"$ref": "#/definitions/models.Currency"}
            }
        },
        "models.Portfolio": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "lots": {"type": "array", "items": {"$ref": "#/definitions/models.Lot"}}
            }
        },
        "models.PutPortfolioResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "num_lots": {"type": "integer"},
                "warnings": {"type": "array", "items": {"$ref": "#/definitions/models.Warning"}}
            }
        },
        "models.Warning": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "W3001"},
                "message": {"type": "string"}
            }
        },
        "models.SummaryDocument": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "view": {"type": "string"},
                "group_to_summary": {"type": "object", "additionalProperties": {"$ref": "#/definitions/models.GroupSummary"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "portools API",
	Description:      "Upload portfolios of lots and read their derived cost summaries.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
