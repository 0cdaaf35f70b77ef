// Package application contém os casos de uso do retângulo: validação,
// atualização com atraso simulado, decisão de rate limit e reserva de vagas
// para atualizações pendentes.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: UpdateService.Update(ctx, d) espera o atraso, valida e persiste.
package application
