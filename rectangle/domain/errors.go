package domain

import "errors"

// ErrClientStatsDisabled indica que o StatsStore não guarda contagem por cliente.
var ErrClientStatsDisabled = errors.New("per-client stats are not enabled")

// ReasonWidthExceedsHeight é a mensagem devolvida ao cliente quando width > height.
const ReasonWidthExceedsHeight = "width exceeds height"

// ValidationError indica que as dimensões candidatas violam width <= height.
// Nenhum estado é alterado quando ele é retornado.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// StoreError indica falha de leitura/persistência no Store.
//
// Em backends duráveis, um Set que retorna StoreError não altera o valor em memória.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return "rectangle store " + e.Op
	}
	return "rectangle store " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
