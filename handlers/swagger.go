package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers the API documentation endpoints.
// - GET /swagger/index.html  -> Swagger UI loading doc.json
// - GET /swagger/doc.json    -> OpenAPI document for the blog's routes
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>gogoblog Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "gogoblog", "version": "v0.1.0" },
  "components": {
    "securitySchemes": {
      "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" },
      "cookie": { "type": "apiKey", "in": "cookie", "name": "access_token" }
    },
    "schemas": {
      "PostForm": { "type": "object", "required": ["title", "text"], "properties": { "title": { "type": "string", "maxLength": 200 }, "text": { "type": "string" } } }
    }
  },
  "paths": {
    "/posts/": {
      "get": {
        "summary": "List posts, newest first",
        "parameters": [ { "name": "page", "in": "query", "schema": { "type": "integer", "minimum": 1 } } ],
        "responses": { "200": { "description": "HTML page" } }
      }
    },
    "/posts/{id}/": {
      "get": {
        "summary": "Show one post",
        "parameters": [ { "name": "id", "in": "path", "required": true, "schema": { "type": "integer" } } ],
        "responses": { "200": { "description": "HTML page" }, "304": { "description": "not modified" }, "404": { "description": "no such post" } }
      }
    },
    "/posts/create/": {
      "get": { "summary": "Create form", "security": [ { "bearer": [] }, { "cookie": [] } ], "responses": { "200": { "description": "HTML form" }, "401": { "description": "not signed in" } } },
      "post": {
        "summary": "Create a post",
        "security": [ { "bearer": [] }, { "cookie": [] } ],
        "requestBody": { "content": { "application/x-www-form-urlencoded": { "schema": { "$ref": "#/components/schemas/PostForm" } } } },
        "responses": { "303": { "description": "redirect to /posts/" }, "400": { "description": "form with errors" }, "401": { "description": "not signed in" } }
      }
    },
    "/posts/{id}/update/": {
      "get": {
        "summary": "Update form",
        "security": [ { "bearer": [] }, { "cookie": [] } ],
        "parameters": [ { "name": "id", "in": "path", "required": true, "schema": { "type": "integer" } } ],
        "responses": { "200": { "description": "HTML form" }, "404": { "description": "no such post" } }
      },
      "post": {
        "summary": "Update a post",
        "security": [ { "bearer": [] }, { "cookie": [] } ],
        "parameters": [ { "name": "id", "in": "path", "required": true, "schema": { "type": "integer" } } ],
        "requestBody": { "content": { "application/x-www-form-urlencoded": { "schema": { "$ref": "#/components/schemas/PostForm" } } } },
        "responses": { "303": { "description": "redirect to the post" }, "400": { "description": "form with errors" }, "404": { "description": "no such post" } }
      }
    },
    "/auth/logout": {
      "post": { "summary": "Revoke the presented access token", "security": [ { "bearer": [] }, { "cookie": [] } ], "responses": { "200": { "description": "logged out" }, "401": { "description": "not signed in" } } }
    },
    "/api/v1/me": {
      "get": { "summary": "Acting user", "security": [ { "bearer": [] }, { "cookie": [] } ], "responses": { "200": { "description": "user" }, "401": { "description": "not signed in" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "exposition format" } } } }
  }
}`
