// Package docs holds the generated OpenAPI document served at /docs.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/api/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Exchange credentials for an access token and CSRF token",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Current account",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/bbs/boards": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["boards"],
                "summary": "List boards, provisioning base boards from the area registry first",
                "parameters": [{"name": "is_active", "in": "query", "type": "string", "description": "filter by active flag; omit for all"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/bbs/posts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["posts"],
                "summary": "List posts under the viewer's visibility",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["posts"],
                "summary": "Create a post",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/bbs/posts/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["posts"],
                "summary": "Post detail with reply tree and pilot references",
                "responses": {"200": {"description": "OK"}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["posts"],
                "summary": "Edit a post's title or content",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/bbs/posts/{id}/hide": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["posts"],
                "summary": "Hide a post and all of its replies",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/bbs/posts/{id}/unhide": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["posts"],
                "summary": "Republish a hidden post; replies stay hidden",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/bbs/posts/{id}/pin": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["posts"],
                "summary": "Pin or unpin a post",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/bbs/posts/{id}/replies": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["replies"],
                "summary": "Reply to a post, optionally under a top-level reply",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/bbs/posts/{id}/pilots": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["pilots"],
                "summary": "Replace the manual pilot references on a post (admin only)",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/bbs/replies/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["replies"],
                "summary": "Edit a reply",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/bbs/replies/{id}/hide": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["replies"],
                "summary": "Hide a reply; a top-level reply takes its children with it",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/bbs/pilots/{id}/recent-posts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["pilots"],
                "summary": "Up to three recently active posts referencing a pilot",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/battle-records/{id}/end": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["battle-records"],
                "summary": "Mark a battle record ended and run the auto-post generator",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/healthz": {
            "get": {
                "tags": ["ops"],
                "summary": "Liveness and datastore reachability",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Lacus BBS Service",
	Description:      "Internal staff bulletin board: boards, posts, replies, pilot references and auto-generated stream logs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
