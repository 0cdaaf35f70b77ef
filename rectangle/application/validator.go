package application

import "rectangle-service/rectangle/domain"

// Validate aplica a única regra de negócio: width <= height.
//
// A igualdade é válida. Valores negativos ou zero não são rejeitados aqui.
func Validate(candidate domain.Dimensions) error {
	if candidate.Width > candidate.Height {
		return &domain.ValidationError{Reason: domain.ReasonWidthExceedsHeight}
	}
	return nil
}
