package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Exam Planner API",
        "description": "Imports university final exam schedules and serves them as listings, exports and ICS calendars.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {
            "name": "Import",
            "description": "Schedule ingestion"
        },
        {
            "name": "Exams",
            "description": "Stored exam sittings"
        },
        {
            "name": "Catalog",
            "description": "Subject, course and section lookups"
        },
        {
            "name": "Calendar",
            "description": "ICS feeds and shared links"
        },
        {
            "name": "System",
            "description": "Health and metrics"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "System"
                ],
                "summary": "Liveness probe with a metrics snapshot",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "System"
                ],
                "summary": "Readiness probe checking the database",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Database unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": [
                    "System"
                ],
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/admin/import/exams": {
            "post": {
                "tags": [
                    "Import"
                ],
                "summary": "Import exams from the live schedule or the stored snapshot",
                "parameters": [
                    {
                        "name": "source",
                        "in": "query",
                        "type": "string",
                        "description": "live or static",
                        "default": "live"
                    },
                    {
                        "name": "campus",
                        "in": "query",
                        "type": "string",
                        "description": "Campus code or name",
                        "default": "V"
                    },
                    {
                        "name": "subject",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "course",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "term",
                        "in": "query",
                        "type": "string",
                        "description": "Term selector passed to the schedule site"
                    },
                    {
                        "name": "dryRun",
                        "in": "query",
                        "type": "boolean",
                        "description": "Report without writing",
                        "default": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid request",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "No stored snapshot",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "502": {
                        "description": "Schedule fetch failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Live import not configured",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/admin/import/exams/upload": {
            "post": {
                "tags": [
                    "Import"
                ],
                "summary": "Import exams from an uploaded HTML schedule page",
                "consumes": [
                    "multipart/form-data"
                ],
                "parameters": [
                    {
                        "name": "file",
                        "in": "formData",
                        "type": "file",
                        "required": true
                    },
                    {
                        "name": "campus",
                        "in": "query",
                        "type": "string",
                        "description": "Campus code or name",
                        "default": "V"
                    },
                    {
                        "name": "subject",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "course",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "dryRun",
                        "in": "query",
                        "type": "boolean",
                        "description": "Report without writing",
                        "default": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Missing file",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "415": {
                        "description": "Not an HTML document",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/admin/import/exams/csv": {
            "post": {
                "tags": [
                    "Import"
                ],
                "summary": "Import exams from an uploaded CSV file",
                "description": "Columns: subject,course,section,date,time,duration[,building[,room]]. The first line is a header.",
                "consumes": [
                    "multipart/form-data"
                ],
                "parameters": [
                    {
                        "name": "file",
                        "in": "formData",
                        "type": "file",
                        "required": true
                    },
                    {
                        "name": "campus",
                        "in": "query",
                        "type": "string",
                        "description": "Campus code or name",
                        "default": "V"
                    },
                    {
                        "name": "subject",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "course",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "dryRun",
                        "in": "query",
                        "type": "boolean",
                        "description": "Report without writing",
                        "default": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Missing or unreadable file",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/exams": {
            "get": {
                "tags": [
                    "Exams"
                ],
                "summary": "List exams ordered by start time",
                "parameters": [
                    {
                        "name": "campus",
                        "in": "query",
                        "type": "string",
                        "description": "Campus code or name",
                        "default": "V"
                    },
                    {
                        "name": "subject",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "course",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Exams"
                ],
                "summary": "Create exam",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateExamRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid payload",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Duplicate exam",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/exams/search": {
            "get": {
                "tags": [
                    "Exams"
                ],
                "summary": "Search exams with paging",
                "parameters": [
                    {
                        "name": "campus",
                        "in": "query",
                        "type": "string",
                        "description": "Campus code or name",
                        "default": "V"
                    },
                    {
                        "name": "subject",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "course",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "section",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "default": 1
                    },
                    {
                        "name": "size",
                        "in": "query",
                        "type": "integer",
                        "description": "Page size (1-200)",
                        "default": 20
                    },
                    {
                        "name": "sort",
                        "in": "query",
                        "type": "string",
                        "description": "startTime,asc or startTime,desc"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid sort or paging",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/exams/{id}": {
            "get": {
                "tags": [
                    "Exams"
                ],
                "summary": "Get exam",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Exams"
                ],
                "summary": "Delete exam",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/exams/export": {
            "get": {
                "tags": [
                    "Exams"
                ],
                "summary": "Download the exam schedule as CSV or PDF",
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "description": "csv or pdf",
                        "default": "csv"
                    },
                    {
                        "name": "campus",
                        "in": "query",
                        "type": "string",
                        "description": "Campus code or name",
                        "default": "V"
                    },
                    {
                        "name": "subject",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "course",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "section",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Schedule file",
                        "schema": {
                            "type": "file"
                        }
                    }
                }
            }
        },
        "/api/exams/ics": {
            "get": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Download exams as an ICS calendar",
                "produces": [
                    "text/calendar"
                ],
                "parameters": [
                    {
                        "name": "ids",
                        "in": "query",
                        "type": "string",
                        "description": "Comma separated exam ids; overrides the filter"
                    },
                    {
                        "name": "campus",
                        "in": "query",
                        "type": "string",
                        "description": "Campus code or name",
                        "default": "V"
                    },
                    {
                        "name": "subject",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "course",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "section",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "filename",
                        "in": "query",
                        "type": "string",
                        "default": "exams.ics"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Calendar",
                        "schema": {
                            "type": "file"
                        }
                    }
                }
            }
        },
        "/api/exams/ics/share": {
            "post": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Store a calendar and return an expiring link",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/CalendarQuery"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Sharing not configured",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/exams/ics/shared/{token}": {
            "get": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Download a shared calendar",
                "produces": [
                    "text/calendar"
                ],
                "parameters": [
                    {
                        "name": "token",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Calendar",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "410": {
                        "description": "Link expired",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/catalog/subjects": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "List distinct subjects",
                "parameters": [
                    {
                        "name": "campus",
                        "in": "query",
                        "type": "string",
                        "description": "Campus code or name",
                        "default": "V"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/catalog/courses": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "List distinct courses",
                "parameters": [
                    {
                        "name": "campus",
                        "in": "query",
                        "type": "string",
                        "description": "Campus code or name",
                        "default": "V"
                    },
                    {
                        "name": "subject",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/catalog/sections": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "List distinct sections",
                "parameters": [
                    {
                        "name": "campus",
                        "in": "query",
                        "type": "string",
                        "description": "Campus code or name",
                        "default": "V"
                    },
                    {
                        "name": "subject",
                        "in": "query",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "course",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "CreateExamRequest": {
            "type": "object",
            "required": [
                "subject",
                "course",
                "section",
                "startTime"
            ],
            "properties": {
                "campus": {
                    "type": "string"
                },
                "subject": {
                    "type": "string"
                },
                "course": {
                    "type": "string"
                },
                "section": {
                    "type": "string"
                },
                "startTime": {
                    "type": "string",
                    "format": "date-time"
                },
                "durationMin": {
                    "type": "integer"
                },
                "building": {
                    "type": "string"
                },
                "room": {
                    "type": "string"
                }
            }
        },
        "CalendarQuery": {
            "type": "object",
            "properties": {
                "ids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "campus": {
                    "type": "string"
                },
                "subject": {
                    "type": "string"
                },
                "course": {
                    "type": "string"
                },
                "section": {
                    "type": "string"
                },
                "filename": {
                    "type": "string"
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                },
                "total_pages": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
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
