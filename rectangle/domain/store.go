package domain

import "context"

// Store guarda o valor atual de Dimensions.
//
// Get e Set são atômicos entre si: um leitor nunca observa width de uma escrita
// e height de outra. Escritas concorrentes seguem last-committed-wins, sem token
// de concorrência otimista.
type Store interface {
	Get(ctx context.Context) (Dimensions, error)
	// Set persiste (quando durável) antes de retornar sucesso.
	Set(ctx context.Context, d Dimensions) error
}
