package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Protocolo API",
        "description": "API de abertura e acompanhamento de protocolos municipais",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Público", "description": "Portal do cidadão, sem autenticação"},
        {"name": "Auth", "description": "Sessões da equipe interna"},
        {"name": "Protocolos", "description": "Gestão e tramitação de protocolos"},
        {"name": "Catálogos", "description": "Secretarias, setores, solicitações e status"},
        {"name": "Relatórios", "description": "Exportações assíncronas"}
    ],
    "paths": {
        "/publico/municipio": {
            "get": {
                "tags": ["Público"],
                "summary": "Identidade visual do município",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/publico/solicitacoes": {
            "get": {
                "tags": ["Público"],
                "summary": "Tipos de solicitação disponíveis",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/publico/protocolos": {
            "post": {
                "tags": ["Público"],
                "summary": "Abre um protocolo pelo portal do cidadão",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AbrirProtocoloRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Payload inválido"},
                    "429": {"description": "Limite de requisições excedido"}
                }
            }
        },
        "/publico/protocolos/{codigo}": {
            "get": {
                "tags": ["Público"],
                "summary": "Consulta um protocolo pelo código de acompanhamento",
                "parameters": [
                    {"name": "codigo", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Não encontrado"}
                }
            }
        },
        "/publico/consulta": {
            "get": {
                "tags": ["Público"],
                "summary": "Consulta pelo número do protocolo e documento do solicitante",
                "parameters": [
                    {"name": "numero", "in": "query", "required": true, "type": "string"},
                    {"name": "documento", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Não encontrado"}
                }
            }
        },
        "/publico/meus-protocolos": {
            "get": {
                "tags": ["Público"],
                "summary": "Lista os protocolos de um CPF ou CNPJ",
                "parameters": [
                    {"name": "documento", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Autentica um usuário interno",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Credenciais inválidas"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Renova o par de tokens",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/protocolos": {
            "get": {
                "tags": ["Protocolos"],
                "security": [{"BearerAuth": []}],
                "summary": "Lista protocolos com filtros",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status_id", "in": "query", "type": "string"},
                    {"name": "secretaria_id", "in": "query", "type": "string"},
                    {"name": "setor_id", "in": "query", "type": "string"},
                    {"name": "atrasados", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Protocolos"],
                "security": [{"BearerAuth": []}],
                "summary": "Abre um protocolo pelo atendimento presencial",
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/protocolos/{id}": {
            "get": {
                "tags": ["Protocolos"],
                "security": [{"BearerAuth": []}],
                "summary": "Detalha um protocolo e seu histórico",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Protocolos"],
                "security": [{"BearerAuth": []}],
                "summary": "Remove um protocolo (perfil MASTER)",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/protocolos/{id}/tramitar": {
            "post": {
                "tags": ["Protocolos"],
                "security": [{"BearerAuth": []}],
                "summary": "Registra despacho, mudança de status ou transferência",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TramitarRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Protocolo encerrado"}
                }
            }
        },
        "/protocolos/{id}/comprovante": {
            "get": {
                "tags": ["Protocolos"],
                "security": [{"BearerAuth": []}],
                "summary": "Comprovante de abertura em PDF",
                "produces": ["application/pdf"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/protocolos/{id}/anexos": {
            "get": {
                "tags": ["Protocolos"],
                "security": [{"BearerAuth": []}],
                "summary": "Lista anexos com links assinados",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Protocolos"],
                "security": [{"BearerAuth": []}],
                "summary": "Envia um anexo",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "arquivo", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/relatorios": {
            "post": {
                "tags": ["Relatórios"],
                "security": [{"BearerAuth": []}],
                "summary": "Solicita uma exportação em CSV ou PDF",
                "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "get": {
                "tags": ["Relatórios"],
                "security": [{"BearerAuth": []}],
                "summary": "Lista as exportações do usuário",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/secretarias": {
            "get": {
                "tags": ["Catálogos"],
                "security": [{"BearerAuth": []}],
                "summary": "Lista secretarias",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/status": {
            "get": {
                "tags": ["Catálogos"],
                "security": [{"BearerAuth": []}],
                "summary": "Lista o catálogo de status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "AbrirProtocoloRequest": {
            "type": "object",
            "properties": {
                "solicitacao_id": {"type": "string"},
                "descricao": {"type": "string"},
                "solicitante": {"$ref": "#/definitions/SolicitanteRequest"}
            },
            "required": ["solicitacao_id", "descricao", "solicitante"]
        },
        "SolicitanteRequest": {
            "type": "object",
            "properties": {
                "documento": {"type": "string"},
                "nome": {"type": "string"},
                "email": {"type": "string"},
                "telefone": {"type": "string"},
                "endereco": {"type": "string"}
            },
            "required": ["documento", "nome"]
        },
        "TramitarRequest": {
            "type": "object",
            "properties": {
                "status_id": {"type": "string"},
                "secretaria_id": {"type": "string"},
                "setor_id": {"type": "string"},
                "observacao": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "senha": {"type": "string"}
            },
            "required": ["email", "senha"]
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
