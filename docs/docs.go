// Package docs registers the gateway's Swagger document with swag so that
// gin-swagger can serve it under /swagger/*any.
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
        "/health": {"get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}},
        "/send-request": {"post": {"tags": ["requests"], "summary": "Send a match request", "parameters": [{"in": "header", "name": "Idempotency-Key", "type": "string"}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SendRequestBody"}}], "responses": {"200": {"description": "Request Sent"}, "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/ErrorResponse"}}, "422": {"description": "Idempotency-Key reused with a different payload"}}}},
        "/requests/incoming": {"get": {"tags": ["requests"], "summary": "Incoming requests", "parameters": [{"in": "query", "name": "userId", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "304": {"description": "Not modified"}}}},
        "/requests/outgoing": {"get": {"tags": ["requests"], "summary": "Outgoing requests", "parameters": [{"in": "query", "name": "userId", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "304": {"description": "Not modified"}}}},
        "/requests/respond": {"post": {"tags": ["requests"], "summary": "Accept or reject a request", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/RespondBody"}}], "responses": {"200": {"description": "OK"}, "403": {"description": "Not the recipient"}, "404": {"description": "Unknown request"}, "409": {"description": "Already resolved"}}}},
        "/check-match": {"get": {"tags": ["matches"], "summary": "Check whether two users are matched", "parameters": [{"in": "query", "name": "user1", "type": "string", "required": true}, {"in": "query", "name": "user2", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/chat-list": {"get": {"tags": ["matches"], "summary": "Chat summaries for a user", "parameters": [{"in": "query", "name": "userId", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/send-message": {"post": {"tags": ["messages"], "summary": "Send a message within a match", "parameters": [{"in": "header", "name": "Idempotency-Key", "type": "string"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Not a participant"}, "404": {"description": "Unknown match"}, "422": {"description": "Idempotency-Key reused with a different payload"}}}},
        "/messages/{match_id}": {"get": {"tags": ["messages"], "summary": "Messages of a match", "parameters": [{"in": "path", "name": "match_id", "type": "string", "required": true}, {"in": "query", "name": "page", "type": "integer"}, {"in": "query", "name": "page_size", "type": "integer"}], "responses": {"200": {"description": "OK"}}}},
        "/message-delivered": {"post": {"tags": ["messages"], "summary": "Mark messages delivered", "responses": {"200": {"description": "OK"}}}},
        "/message-seen": {"post": {"tags": ["messages"], "summary": "Mark messages seen", "responses": {"200": {"description": "OK"}}}},
        "/profiles": {
            "get": {"tags": ["profiles"], "summary": "List profiles", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["profiles"], "summary": "Create a profile", "responses": {"200": {"description": "Profile Saved"}, "409": {"description": "Duplicate"}}}
        },
        "/update-profile": {"post": {"tags": ["profiles"], "summary": "Partially update a profile", "responses": {"200": {"description": "OK"}, "404": {"description": "Unknown profile"}}}},
        "/upload-avatar": {"post": {"tags": ["profiles"], "summary": "Upload an avatar image", "consumes": ["multipart/form-data"], "parameters": [{"in": "formData", "name": "image", "type": "file", "required": true}, {"in": "formData", "name": "user_id", "type": "string"}], "responses": {"200": {"description": "OK"}, "413": {"description": "Too large"}, "503": {"description": "Storage unavailable"}}}},
        "/public-chat/send": {"post": {"tags": ["community"], "summary": "Post to the public room", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/PublicPostBody"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Missing fields"}}}},
        "/public-chat": {"get": {"tags": ["community"], "summary": "Read the public room, oldest first", "responses": {"200": {"description": "OK"}}}},
        "/subscribe": {"post": {"tags": ["community"], "summary": "Activate a subscription plan", "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SubscribeBody"}}], "responses": {"200": {"description": "Subscription Activated"}, "400": {"description": "Missing fields"}}}},
        "/ai-chat": {"post": {"tags": ["assistant"], "summary": "Assistant text reply", "responses": {"200": {"description": "OK"}}}},
        "/ai-image": {"post": {"tags": ["assistant"], "summary": "Assistant image analysis", "consumes": ["multipart/form-data"], "parameters": [{"in": "formData", "name": "image", "type": "file", "required": true}, {"in": "formData", "name": "prompt", "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/ai-speech-to-text": {"post": {"tags": ["assistant"], "summary": "Assistant speech transcription", "consumes": ["multipart/form-data"], "parameters": [{"in": "formData", "name": "audio", "type": "file", "required": true}], "responses": {"200": {"description": "OK"}}}}
    },
    "definitions": {
        "SendRequestBody": {"type": "object", "properties": {"from_user_id": {"type": "string"}, "to_user_id": {"type": "string"}}},
        "RespondBody": {"type": "object", "properties": {"requestId": {"type": "string"}, "action": {"type": "string", "enum": ["accept", "reject"]}, "currentUserId": {"type": "string"}}},
        "PublicPostBody": {"type": "object", "properties": {"user_phone": {"type": "string"}, "message": {"type": "string"}}},
        "SubscribeBody": {"type": "object", "properties": {"user_phone": {"type": "string"}, "plan_name": {"type": "string"}, "price": {"type": "number"}, "duration": {"type": "integer", "description": "days"}}},
        "ErrorResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "request_id": {"type": "string"}, "code": {"type": "string"}, "error": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "go-match-gateway API",
	Description:      "Match requests, chat list, messages, profiles, public room and assistant endpoints.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
