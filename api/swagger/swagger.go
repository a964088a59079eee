package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SistemaFIC API",
        "description": "Plataforma de cursos FIC: inscrições, vagas e validação",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Autenticação e recuperação de senha"},
        {"name": "Usuários", "description": "Registro e conta"},
        {"name": "Alunos", "description": "Perfil do aluno"},
        {"name": "Professores", "description": "Gestão de professores (CCA)"},
        {"name": "Cursos", "description": "Ciclo de vida do curso"},
        {"name": "Inscrições", "description": "Pedidos e validação de inscrição"},
        {"name": "Localidades", "description": "Estados e municípios"}
    ],
    "paths": {
        "/token": {
            "post": {
                "tags": ["Auth"],
                "summary": "Autenticar usuário",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Credenciais inválidas"}
                }
            }
        },
        "/token/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Renovar tokens",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revogar refresh token",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/usuario/change-password": {
            "post": {
                "tags": ["Auth"],
                "summary": "Trocar senha",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/usuario/reset-password": {
            "post": {
                "tags": ["Auth"],
                "summary": "Solicitar redefinição de senha",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResetPasswordRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted"}
                }
            }
        },
        "/usuario/reset-password-confirm/{uid}/{token}": {
            "post": {
                "tags": ["Auth"],
                "summary": "Concluir redefinição de senha",
                "parameters": [
                    {"name": "uid", "in": "path", "required": true, "type": "string"},
                    {"name": "token", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConfirmResetPasswordRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/registro/aluno": {
            "post": {
                "tags": ["Usuários"],
                "summary": "Registrar aluno",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/usuario/me": {
            "get": {
                "tags": ["Usuários"],
                "summary": "Usuário autenticado",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/usuarios/{id}": {
            "delete": {
                "tags": ["Usuários"],
                "summary": "Remover conta (própria ou CCA)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/aluno/me": {
            "get": {
                "tags": ["Alunos"],
                "summary": "Obter perfil do aluno",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Alunos"],
                "summary": "Criar ou atualizar perfil",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertStudentProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Alunos"],
                "summary": "Remover perfil do aluno",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/professores": {
            "get": {
                "tags": ["Professores"],
                "summary": "Listar professores",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Professores"],
                "summary": "Criar professor",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateProfessorRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/professores/{id}": {
            "get": {
                "tags": ["Professores"],
                "summary": "Obter professor",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Professores"],
                "summary": "Atualizar professor",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProfessorRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Professores"],
                "summary": "Remover professor",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/cursos": {
            "get": {
                "tags": ["Cursos"],
                "summary": "Listar cursos visíveis ao usuário",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Cursos"],
                "summary": "Criar curso (professor)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cursos/{id}": {
            "get": {
                "tags": ["Cursos"],
                "summary": "Obter curso",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Cursos"],
                "summary": "Atualizar curso (dono ou CCA)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cursos/{id}/cancelar": {
            "post": {
                "tags": ["Cursos"],
                "summary": "Cancelar curso (CCA)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Curso já encerrado"}
                }
            }
        },
        "/cursos/{id}/inscricoes/export": {
            "get": {
                "tags": ["Cursos"],
                "summary": "Exportar lista de inscritos (CSV ou PDF)",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Arquivo gerado"}
                }
            }
        },
        "/inscricoes-aluno": {
            "get": {
                "tags": ["Inscrições"],
                "summary": "Listar inscrições visíveis ao usuário",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "curso_id", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "tipo_vaga", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Inscrições"],
                "summary": "Solicitar inscrição (aluno, multipart com documentos)",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "curso_id", "in": "formData", "required": true, "type": "string"},
                    {"name": "tipo_vaga", "in": "formData", "required": true, "type": "string", "enum": ["INTERNO", "EXTERNO"]},
                    {"name": "matricula", "in": "formData", "type": "string"},
                    {"name": "documentos", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Vagas esgotadas ou inscrições fechadas"}
                }
            }
        },
        "/inscricoes-aluno/{id}": {
            "get": {
                "tags": ["Inscrições"],
                "summary": "Obter inscrição",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/inscricoes-aluno/{id}/documentos": {
            "get": {
                "tags": ["Inscrições"],
                "summary": "Listar documentos anexados",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/inscricoes-aluno/{id}/validar": {
            "post": {
                "tags": ["Inscrições"],
                "summary": "Validar inscrição (CCA)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidateEnrollmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Vaga esgotada ou inscrição já decidida"}
                }
            }
        },
        "/estados": {
            "get": {
                "tags": ["Localidades"],
                "summary": "Listar estados",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/estados/{id}/municipios": {
            "get": {
                "tags": ["Localidades"],
                "summary": "Listar municípios de um estado",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/municipios": {
            "get": {
                "tags": ["Localidades"],
                "summary": "Listar municípios de um estado",
                "parameters": [
                    {"name": "estado_id", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "senha_atual": {"type": "string"},
                "nova_senha": {"type": "string"}
            },
            "required": ["senha_atual", "nova_senha"]
        },
        "ResetPasswordRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"}
            },
            "required": ["email"]
        },
        "ConfirmResetPasswordRequest": {
            "type": "object",
            "properties": {
                "nova_senha": {"type": "string"}
            },
            "required": ["nova_senha"]
        },
        "RegisterStudentRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "nome_completo": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "nome_completo", "password"]
        },
        "UpsertStudentProfileRequest": {
            "type": "object",
            "properties": {
                "data_nascimento": {"type": "string"},
                "sexo": {"type": "string", "enum": ["F", "M", "O", "N"]},
                "cpf": {"type": "string"},
                "rg": {"type": "string"},
                "orgao_expedidor": {"type": "string"},
                "estado_expedidor_id": {"type": "integer"},
                "telefone_celular": {"type": "string"},
                "endereco": {"type": "string"},
                "cep": {"type": "string"},
                "municipio_id": {"type": "integer"}
            }
        },
        "CreateProfessorRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "nome_completo": {"type": "string"},
                "password": {"type": "string"},
                "siape": {"type": "string"},
                "cpf": {"type": "string"},
                "data_nascimento": {"type": "string"}
            },
            "required": ["email", "nome_completo", "password", "siape"]
        },
        "UpdateProfessorRequest": {
            "type": "object",
            "properties": {
                "siape": {"type": "string"},
                "cpf": {"type": "string"},
                "data_nascimento": {"type": "string"}
            }
        },
        "CreateCourseRequest": {
            "type": "object",
            "properties": {
                "nome": {"type": "string"},
                "descricao": {"type": "string"},
                "carga_horaria": {"type": "integer"},
                "vagas_internas": {"type": "integer"},
                "vagas_externas": {"type": "integer"},
                "data_inicio_inscricoes": {"type": "string"},
                "data_fim_inscricoes": {"type": "string"},
                "data_inicio_curso": {"type": "string"},
                "data_fim_curso": {"type": "string"}
            },
            "required": ["nome", "carga_horaria"]
        },
        "ValidateEnrollmentRequest": {
            "type": "object",
            "properties": {
                "aprovar": {"type": "boolean"}
            },
            "required": ["aprovar"]
        },
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
