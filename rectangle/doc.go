// Package rectangle expõe o retângulo compartilhado via HTTP (net/http + gorilla/mux).
//
// Visão geral (camadas):
//
//   - domain: tipos e contratos (Dimensions, Store, erros), sem net/http
//   - application: casos de uso (validação, atraso + persistência, rate limit) sem net/http
//   - infra: implementações concretas (memória, arquivo, redis, token bucket, semáforo)
//   - rectangle (este pacote): handlers, middlewares e tradução de erros para status/corpo
//
// Fluxo de um POST /api/rectangle:
//
//  1. Log da requisição (X-Request-ID), métricas e CORS, por fora do mux
//  2. Rate limit por cliente (429) e limite de atualizações pendentes (503)
//  3. Decodifica o corpo; corpo inválido responde 400 {"error":"bad request body","detail":...}
//  4. Espera o atraso de validação (10s por padrão) e valida width <= height (400 {"error":...})
//  5. Persiste no Store (500 se falhar) e devolve as dimensões gravadas
//
// Variáveis de ambiente do binário (cmd/rectangle-server) controlam o comportamento,
// como STORE_BACKEND, VALIDATION_DELAY, VALIDATE_ENDPOINT e CORS_ALLOWED_ORIGINS.
package rectangle
