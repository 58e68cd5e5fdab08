// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/health": {
            "get": {"tags": ["ops"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        },
        "/api/matchups/generate-rounds": {
            "post": {
                "tags": ["matchups"],
                "summary": "Generate a full round schedule for a tournament",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/GenerateRoundsInput"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "array", "items": {"$ref": "#/definitions/Round"}}},
                    "422": {"description": "Validation failed"},
                    "500": {"description": "Generation failed, possibly after some rounds were stored"}
                }
            }
        },
        "/api/matchups/tournament/{tournamentID}": {
            "get": {
                "tags": ["matchups"],
                "summary": "List rounds ordered by round number",
                "parameters": [{"in": "path", "name": "tournamentID", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Round"}}}}
            }
        },
        "/api/matchups/tournament/{tournamentID}/rounds/{round}": {
            "get": {
                "tags": ["matchups"],
                "summary": "Get a single round",
                "parameters": [
                    {"in": "path", "name": "tournamentID", "type": "string", "required": true},
                    {"in": "path", "name": "round", "type": "integer", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Round"}}, "404": {"description": "Not found"}}
            }
        },
        "/api/tournament-results/initialize": {
            "post": {
                "tags": ["tournament-results"],
                "summary": "Create empty standings for players that have none",
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/InitializeStandingsInput"}}],
                "responses": {"201": {"description": "Created", "schema": {"type": "array", "items": {"$ref": "#/definitions/StandingRecord"}}}}
            }
        },
        "/api/tournament-results/update-match": {
            "post": {
                "tags": ["tournament-results"],
                "summary": "Record or correct the result of one match",
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/UpdateMatchInput"}}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Round or match not found"}, "422": {"description": "Validation failed"}}
            }
        },
        "/api/tournament-results/reset-tournament": {
            "post": {
                "tags": ["tournament-results"],
                "summary": "Zero standings and set every match back to pending",
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"type": "object", "properties": {"tournamentId": {"type": "string"}}}}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/tournament-results/standings/{tournamentID}": {
            "get": {
                "tags": ["tournament-results"],
                "summary": "Standings ordered by points, then wins",
                "parameters": [{"in": "path", "name": "tournamentID", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/StandingRecord"}}}}
            }
        },
        "/api/tournament-results/standings/{tournamentID}/export": {
            "post": {
                "tags": ["tournament-results"],
                "summary": "Upload a standings snapshot to object storage",
                "parameters": [{"in": "path", "name": "tournamentID", "type": "string", "required": true}],
                "responses": {"201": {"description": "Created"}, "503": {"description": "Object storage not configured"}}
            }
        },
        "/api/tournament-results/player/{tournamentID}/{playerID}": {
            "get": {
                "tags": ["tournament-results"],
                "summary": "Standing of one player",
                "parameters": [
                    {"in": "path", "name": "tournamentID", "type": "string", "required": true},
                    {"in": "path", "name": "playerID", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/StandingRecord"}}, "404": {"description": "Not found"}}
            }
        }
    },
    "definitions": {
        "Player": {"type": "object", "properties": {"_id": {"type": "string"}, "chesscomUsername": {"type": "string"}}},
        "Match": {"type": "object", "properties": {
            "player1": {"$ref": "#/definitions/Player"},
            "player2": {"$ref": "#/definitions/Player"},
            "result": {"type": "string", "enum": ["pending", "player1", "player2", "draw"]}
        }},
        "Round": {"type": "object", "properties": {
            "id": {"type": "string"},
            "tournamentId": {"type": "string"},
            "round": {"type": "integer"},
            "matches": {"type": "array", "items": {"$ref": "#/definitions/Match"}},
            "createdAt": {"type": "string", "format": "date-time"}
        }},
        "Outcome": {"type": "object", "properties": {
            "roundNumber": {"type": "integer"},
            "opponent": {"$ref": "#/definitions/Player"},
            "result": {"type": "string"},
            "points": {"type": "number"},
            "playedAt": {"type": "string", "format": "date-time"}
        }},
        "StandingRecord": {"type": "object", "properties": {
            "id": {"type": "string"},
            "tournamentId": {"type": "string"},
            "playerId": {"type": "string"},
            "playerName": {"type": "string"},
            "matches": {"type": "array", "items": {"$ref": "#/definitions/Outcome"}},
            "totalPoints": {"type": "number"},
            "wins": {"type": "integer"},
            "losses": {"type": "integer"},
            "draws": {"type": "integer"},
            "performanceRating": {"type": "integer"},
            "updatedAt": {"type": "string", "format": "date-time"}
        }},
        "GenerateRoundsInput": {"type": "object", "properties": {
            "tournamentId": {"type": "string"},
            "players": {"type": "array", "items": {"$ref": "#/definitions/Player"}},
            "numberOfRounds": {"type": "integer"}
        }},
        "InitializeStandingsInput": {"type": "object", "properties": {
            "tournamentId": {"type": "string"},
            "players": {"type": "array", "items": {"$ref": "#/definitions/Player"}}
        }},
        "UpdateMatchInput": {"type": "object", "properties": {
            "tournamentId": {"type": "string"},
            "roundNumber": {"type": "integer"},
            "player1Id": {"type": "string"},
            "player2Id": {"type": "string"},
            "result": {"type": "string", "enum": ["win", "loss", "draw"]}
        }}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Chess pairings API",
	Description:      "Round scheduling and standings for chess tournaments.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
