package domain

// Dimensions é o único valor gerenciado pelo serviço.
//
// A forma canônica (wire e arquivo) é {"width":<n>,"height":<n>}.
// Width e Height são sempre substituídos juntos.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Perimeter não é serializado; aparece só nos logs.
func (d Dimensions) Perimeter() float64 {
	return 2 * (d.Width + d.Height)
}

// Valores iniciais usados quando não existe registro durável.
const (
	DefaultWidth  = 80
	DefaultHeight = 100
)

func DefaultDimensions() Dimensions {
	return Dimensions{Width: DefaultWidth, Height: DefaultHeight}
}
