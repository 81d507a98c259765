// Package docs holds the OpenAPI description served at /swagger. It is
// generated by swag from the handler annotations; regenerate with
// swag init -g api/server.go -o api/docs.
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
        "/auth/login": {
            "post": {
                "description": "Exchange operator credentials for a JWT. The token is also set as an HTTP-only cookie.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.LoginResponse"}},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"},
                    "429": {"description": "Too Many Requests"}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Dependency health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}}
                }
            }
        },
        "/api/predictions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Forecast the next delay from a supplied history (most recent first). When active_expected_time is given the deviation of that shipment is checked against the threshold.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Predictions"],
                "summary": "Forecast a delay",
                "parameters": [
                    {"description": "History and active shipment", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PredictRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PredictionResult"}},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/api/predictions/recent": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Predictions"],
                "summary": "Recent stored predictions",
                "parameters": [
                    {"type": "string", "description": "Filter by shipment", "name": "shipment_id", "in": "query"},
                    {"type": "integer", "description": "Maximum rows", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/api/shipments/predictions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Runs a prediction cycle against the data source now and returns one result per active shipment.",
                "produces": ["application/json"],
                "tags": ["Predictions"],
                "summary": "Forecast all in-flight shipments",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/api/anomalies": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Anomalies"],
                "summary": "Stored anomalies",
                "parameters": [
                    {"type": "string", "description": "LOGIN_BRUTE_FORCE, SENSITIVE_READ_BURST, RBAC_VIOLATION or EXPORT_SPIKE", "name": "kind", "in": "query"},
                    {"type": "string", "description": "low, medium, high or critical", "name": "severity", "in": "query"},
                    {"type": "string", "description": "RFC3339 lower bound", "name": "since", "in": "query"},
                    {"type": "string", "description": "Relative window such as 15m, 6h or 7d", "name": "range", "in": "query"},
                    {"type": "integer", "description": "Maximum rows", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/api/anomalies/current": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Runs an anomaly cycle against the data source now.",
                "produces": ["application/json"],
                "tags": ["Anomalies"],
                "summary": "Evaluate live activity",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.AnomaliesResponse"}},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/api/anomalies/evaluate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Runs the brute-force, sensitive-read, RBAC and export rules over the supplied events. Results are deduplicated per kind, account and minute and sorted newest first.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Anomalies"],
                "summary": "Evaluate a security snapshot",
                "parameters": [
                    {"description": "Snapshot", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.EvaluateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.AnomaliesResponse"}},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/api/anomalies/rules": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Anomalies"],
                "summary": "Active rule configuration",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/metrics": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["Metrics"],
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {"description": "Prometheus exposition format", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.LoginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string", "example": "Sentinel#2026"},
                "username": {"type": "string", "example": "dispatcher"}
            }
        },
        "handlers.LoginResponse": {
            "type": "object",
            "properties": {
                "expires_in": {"type": "integer", "example": 86400},
                "token": {"type": "string"},
                "username": {"type": "string", "example": "dispatcher"}
            }
        },
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {
                "checks": {"type": "object", "additionalProperties": {"type": "string"}},
                "status": {"type": "string", "example": "healthy"},
                "timestamp": {"type": "string", "example": "2026-03-02T14:30:00Z"}
            }
        },
        "handlers.PredictRequest": {
            "type": "object",
            "properties": {
                "active_expected_time": {"type": "string", "example": "2026-03-02T14:00:00Z"},
                "as_of": {"type": "string", "example": "2026-03-02T14:30:00Z"},
                "history": {"type": "array", "items": {"$ref": "#/definitions/models.HistoricalDelaySample"}},
                "shipment_id": {"type": "string", "example": "SHP-00042"},
                "threshold_minutes": {"type": "number", "example": 30}
            }
        },
        "handlers.EvaluateRequest": {
            "type": "object",
            "properties": {
                "accesses": {"type": "array", "items": {"$ref": "#/definitions/models.AccessEvent"}},
                "accounts": {"type": "array", "items": {"$ref": "#/definitions/models.AccountProfile"}},
                "as_of": {"type": "string", "example": "2026-03-02T14:30:00Z"},
                "config": {"type": "object"},
                "logins": {"type": "array", "items": {"$ref": "#/definitions/models.LoginAttempt"}}
            }
        },
        "handlers.AnomaliesResponse": {
            "type": "object",
            "properties": {
                "anomalies": {"type": "array", "items": {"$ref": "#/definitions/models.AnomalyRecord"}},
                "count": {"type": "integer"}
            }
        },
        "models.HistoricalDelaySample": {
            "type": "object",
            "properties": {
                "actual_time": {"type": "string"},
                "expected_time": {"type": "string"},
                "shipment_id": {"type": "string"}
            }
        },
        "models.AccountProfile": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "id": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "analyst", "operator"]},
                "username": {"type": "string"}
            }
        },
        "models.LoginAttempt": {
            "type": "object",
            "properties": {
                "account_id": {"type": "string"},
                "ip_address": {"type": "string"},
                "succeeded": {"type": "boolean"},
                "timestamp": {"type": "string"}
            }
        },
        "models.AccessEvent": {
            "type": "object",
            "properties": {
                "account_id": {"type": "string"},
                "action": {"type": "string", "enum": ["read", "write", "export", "delete"]},
                "resource_name": {"type": "string"},
                "size_estimate_mb": {"type": "number"},
                "timestamp": {"type": "string"}
            }
        },
        "models.AnomalyRecord": {
            "type": "object",
            "properties": {
                "account_id": {"type": "string"},
                "description": {"type": "string"},
                "detected_at": {"type": "string"},
                "kind": {"type": "string", "enum": ["LOGIN_BRUTE_FORCE", "SENSITIVE_READ_BURST", "RBAC_VIOLATION", "EXPORT_SPIKE"]},
                "severity": {"type": "string", "enum": ["low", "medium", "high", "critical"]}
            }
        },
        "models.PredictionResult": {
            "type": "object",
            "properties": {
                "alert_triggered": {"type": "boolean"},
                "as_of": {"type": "string"},
                "confidence": {"type": "string", "enum": ["low", "medium", "high"]},
                "current_deviation_minutes": {"type": "number"},
                "linear_regression_component": {"type": "number"},
                "method": {"type": "string"},
                "moving_average_component": {"type": "number"},
                "predicted_delay_minutes": {"type": "number"},
                "r_squared": {"type": "number"},
                "sample_count": {"type": "integer"},
                "shipment_id": {"type": "string"},
                "skipped_samples": {"type": "integer"},
                "threshold_minutes": {"type": "number"}
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
	Title:            "Logistics Sentinel API",
	Description:      "Shipment delay forecasting and security anomaly detection.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
