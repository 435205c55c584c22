// Package docs holds the Swagger document served at /swagger/index.html.
// It follows the swag init layout; regenerate with `go generate ./cmd/api`
// after changing handler annotations. internal/handler/docs_test.go fails
// when this file and the annotations drift apart.
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
        "/api/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "현재 토큰을 만료 시각까지 폐기합니다.",
                "produces": ["application/json"],
                "tags": ["API (Protected)"],
                "summary": "로그아웃",
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/auth/session": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "토큰에 해당하는 사용자 정보를 반환합니다. (JWT 필요)",
                "produces": ["application/json"],
                "tags": ["API (Protected)"],
                "summary": "현재 세션 조회",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.UserResponse"}},
                    "401": {"description": "인증 토큰 누락, 만료 또는 로그아웃됨", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/files/download": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "본인 파일을 바로 스트리밍합니다.",
                "produces": ["application/pdf", "image/png"],
                "tags": ["Files"],
                "summary": "파일 다운로드",
                "parameters": [
                    {"type": "string", "description": "저장 경로", "name": "path", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "파일 바이너리", "schema": {"type": "file"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "파일을 찾을 수 없음", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/files/url": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "본인 파일(<userId>/...)에 대해 만료 시간이 있는 다운로드 URL 을 발급합니다.",
                "produces": ["application/json"],
                "tags": ["Files"],
                "summary": "파일 서명 URL 발급",
                "parameters": [
                    {"type": "string", "description": "저장 경로 (resumePath 또는 imagePath)", "name": "path", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.FileURLResponse"}},
                    "400": {"description": "잘못된 경로", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "403": {"description": "다른 사용자의 파일", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/resumes": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "분석이 끝난(피드백이 있는) 이력서를 최신순으로 반환합니다.",
                "produces": ["application/json"],
                "tags": ["Resume"],
                "summary": "내 이력서 목록",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ResumeListResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "PDF 이력서와 지원 정보로 미리보기 이미지 생성, 파일 저장, AI 분석, 피드백 저장을 한 번에 수행합니다.\n<br> 진행 상태는 /ws/status 로 실시간 전달되며 upload-id 로 구분할 수 있습니다.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Resume"],
                "summary": "이력서 업로드 및 분석",
                "parameters": [
                    {"type": "string", "description": "회사명", "name": "company-name", "in": "formData", "required": true},
                    {"type": "string", "description": "직무명", "name": "job-title", "in": "formData", "required": true},
                    {"type": "string", "description": "직무 설명", "name": "job-description", "in": "formData", "required": true},
                    {"type": "string", "description": "상태 메시지 구분용 클라이언트 ID", "name": "upload-id", "in": "formData"},
                    {"type": "file", "description": "PDF 이력서", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/review.UploadResult"}},
                    "400": {"description": "필수 항목 누락, PDF 아님, 변환 실패", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "413": {"description": "파일 크기 초과", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "429": {"description": "업로드 빈도 제한", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "502": {"description": "파일 저장소 오류", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/resumes/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "이력서와 피드백을 반환합니다. 다른 사용자의 이력서는 404 입니다.",
                "produces": ["application/json"],
                "tags": ["Resume"],
                "summary": "이력서 상세",
                "parameters": [
                    {"type": "string", "description": "이력서 ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ResumeResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "PDF와 미리보기 파일을 삭제한 뒤 레코드를 삭제합니다. 피드백은 함께 삭제됩니다.",
                "tags": ["Resume"],
                "summary": "이력서 삭제",
                "parameters": [
                    {"type": "string", "description": "이력서 ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "502": {"description": "파일 삭제 실패", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/resumes/{id}/feedback": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "피드백이 없는 이력서에 피드백을 저장하고 overall score 를 갱신합니다.",
                "consumes": ["application/json"],
                "tags": ["Resume"],
                "summary": "피드백 저장",
                "parameters": [
                    {"type": "string", "description": "이력서 ID", "name": "id", "in": "path", "required": true},
                    {"description": "피드백", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.Feedback"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "점수 범위, 팁 형식 오류", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "이미 피드백 존재", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "피드백을 삭제하고 overall score 를 비웁니다.",
                "tags": ["Resume"],
                "summary": "피드백 삭제",
                "parameters": [
                    {"type": "string", "description": "이력서 ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "이메일과 비밀번호로 로그인하고 JWT 토큰을 발급받습니다.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "로그인 (Login)",
                "parameters": [
                    {"description": "로그인 요청 정보", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SessionResponse"}},
                    "400": {"description": "잘못된 요청", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "401": {"description": "인증 실패 (자격 증명 오류)", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/auth/password/reset": {
            "post": {
                "description": "재설정 토큰을 메일로 보냅니다. 가입 여부와 관계없이 항상 같은 응답을 반환합니다.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "비밀번호 재설정 요청",
                "parameters": [
                    {"description": "이메일", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ResetPasswordRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/auth/password/reset/confirm": {
            "post": {
                "description": "메일로 받은 토큰과 새 비밀번호로 비밀번호를 변경합니다.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "비밀번호 재설정 확정",
                "parameters": [
                    {"description": "토큰과 새 비밀번호", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ConfirmResetRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SuccessResponse"}},
                    "400": {"description": "만료되었거나 잘못된 토큰", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/auth/signup": {
            "post": {
                "description": "새로운 사용자 계정을 생성하고 바로 로그인 세션을 발급합니다. username을 비우면 이메일 @ 앞부분을 사용합니다.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "회원가입 (Signup)",
                "parameters": [
                    {"type": "string", "description": "초대 코드 (서버에 설정된 경우 필수)", "name": "X-Invite-Code", "in": "header"},
                    {"description": "회원가입 요청 정보", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.SessionResponse"}},
                    "400": {"description": "잘못된 이메일 또는 비밀번호", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "403": {"description": "초대 코드 불일치", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "이미 가입된 이메일", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/files/{path}": {
            "get": {
                "description": "/api/files/url 이 발급한 로컬 저장소 링크를 처리합니다. 만료되었거나 서명이 틀리면 403 입니다.",
                "tags": ["Files"],
                "summary": "서명된 파일 링크",
                "parameters": [
                    {"type": "string", "description": "저장 경로", "name": "path", "in": "path", "required": true},
                    {"type": "string", "description": "만료 시각 (unix)", "name": "expires", "in": "query", "required": true},
                    {"type": "string", "description": "HMAC 서명", "name": "signature", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "파일 바이너리", "schema": {"type": "file"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "description": "데이터베이스 연결을 확인합니다.",
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "헬스 체크",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/ws/status": {
            "get": {
                "description": "업로드 파이프라인의 단계(converting, uploading, analyzing, completed, failed)를 실시간으로 수신합니다.\n<br>\n**참고: 이것은 표준 HTTP API가 아닙니다.**\n클라이언트는 ` + "`" + `ws://` + "`" + ` 또는 ` + "`" + `wss://` + "`" + ` 스킴을 사용하여 이 엔드포인트에 연결해야 합니다.\n인증은 HTTP Header가 아닌 **쿼리 파라미터('token')**를 통해 수행됩니다.",
                "tags": ["WebSocket (Status)"],
                "summary": "업로드 진행 상태 WebSocket 연결",
                "parameters": [
                    {"type": "string", "description": "로그인 시 발급받은 JWT 토큰", "name": "token", "in": "query", "required": true}
                ],
                "responses": {
                    "101": {"description": "101 Switching Protocols (WebSocket으로 프로토콜 전환 성공)", "schema": {"type": "string"}},
                    "401": {"description": "토큰 누락 또는 유효하지 않은 토큰", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.ConfirmResetRequest": {
            "type": "object",
            "properties": {
                "password": {"type": "string", "example": "new-password"},
                "token": {"type": "string", "example": "5f2b..."}
            }
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "에러 원인 및 설명"}
            }
        },
        "handler.FileURLResponse": {
            "type": "object",
            "properties": {
                "url": {"type": "string"}
            }
        },
        "handler.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "jane@example.com"},
                "password": {"type": "string", "example": "password123"}
            }
        },
        "handler.ResetPasswordRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "jane@example.com"}
            }
        },
        "handler.ResumeListResponse": {
            "type": "object",
            "properties": {
                "resumes": {"type": "array", "items": {"$ref": "#/definitions/models.Resume"}}
            }
        },
        "handler.ResumeResponse": {
            "type": "object",
            "properties": {
                "resume": {"$ref": "#/definitions/models.Resume"}
            }
        },
        "handler.SessionResponse": {
            "type": "object",
            "properties": {
                "expires_at": {"type": "string"},
                "token": {"type": "string", "example": "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."},
                "user": {"$ref": "#/definitions/models.User"}
            }
        },
        "handler.SignupRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "jane@example.com"},
                "password": {"type": "string", "example": "password123"},
                "username": {"type": "string", "example": "jane"}
            }
        },
        "handler.SuccessResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Password updated"}
            }
        },
        "handler.UserResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/models.User"}
            }
        },
        "models.Category": {
            "type": "object",
            "properties": {
                "score": {"type": "integer"},
                "tips": {"type": "array", "items": {"$ref": "#/definitions/models.Tip"}}
            }
        },
        "models.Feedback": {
            "type": "object",
            "properties": {
                "ATS": {"$ref": "#/definitions/models.Category"},
                "content": {"$ref": "#/definitions/models.Category"},
                "overallScore": {"type": "integer"},
                "skills": {"$ref": "#/definitions/models.Category"},
                "structure": {"$ref": "#/definitions/models.Category"},
                "toneAndStyle": {"$ref": "#/definitions/models.Category"}
            }
        },
        "models.Resume": {
            "type": "object",
            "properties": {
                "companyName": {"type": "string"},
                "createdAt": {"type": "string"},
                "feedback": {"$ref": "#/definitions/models.Feedback"},
                "id": {"type": "string"},
                "imagePath": {"type": "string"},
                "jobDescription": {"type": "string"},
                "jobTitle": {"type": "string"},
                "overallScore": {"type": "integer"},
                "resumePath": {"type": "string"},
                "userId": {"type": "string"}
            }
        },
        "models.Tip": {
            "type": "object",
            "properties": {
                "explanation": {"type": "string"},
                "tip": {"type": "string"},
                "type": {"type": "string", "enum": ["good", "improve"]}
            }
        },
        "models.User": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "email": {"type": "string"},
                "id": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "review.UploadResult": {
            "type": "object",
            "properties": {
                "fallback": {"type": "boolean"},
                "feedback": {"$ref": "#/definitions/models.Feedback"},
                "resume_id": {"type": "string"},
                "upload_id": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "\"Bearer \" 뒤에 JWT 토큰을 입력하세요.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "ResumeSense API",
	Description:      "이력서 업로드, PDF 미리보기 변환, AI 피드백 분석 서버",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
