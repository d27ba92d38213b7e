package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Colegio ADM API",
        "description": "School administration backend: students, grades, attendance and payments",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication and session management"},
        {"name": "Students", "description": "Student roster"},
        {"name": "Teachers", "description": "Teacher roster"},
        {"name": "Subjects", "description": "Subject catalog"},
        {"name": "Groups", "description": "Groups, membership and subject assignment"},
        {"name": "Grades", "description": "Grade registration and report cards"},
        {"name": "Attendance", "description": "Attendance registration and summaries"},
        {"name": "Payments", "description": "Charges, receipts and the payment lifecycle"},
        {"name": "Guardians", "description": "Parent-student links"},
        {"name": "Users", "description": "Account administration"},
        {"name": "Dashboard", "description": "Consolidated overviews"},
        {"name": "Exports", "description": "Report card and receipt downloads"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
