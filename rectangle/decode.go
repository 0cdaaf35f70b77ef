package rectangle

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"rectangle-service/rectangle/domain"
)

const maxBodyBytes = 1 << 20

// malformedBodyError é o MalformedRequest: o corpo não vira dois números.
type malformedBodyError struct {
	detail string
}

func (e *malformedBodyError) Error() string { return "bad request body: " + e.detail }

func malformed(format string, args ...any) error {
	return &malformedBodyError{detail: fmt.Sprintf(format, args...)}
}

type candidateBody struct {
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

// decodeCandidate lê {"width":<n>,"height":<n>}. Os dois campos são obrigatórios;
// campos extras são ignorados.
func decodeCandidate(w http.ResponseWriter, r *http.Request) (domain.Dimensions, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	var in candidateBody
	if err := dec.Decode(&in); err != nil {
		var typeErr *json.UnmarshalTypeError
		var syntaxErr *json.SyntaxError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return domain.Dimensions{}, malformed("body is empty")
		case errors.As(err, &typeErr) && typeErr.Field == "":
			return domain.Dimensions{}, malformed("body must be a JSON object")
		case errors.As(err, &typeErr):
			return domain.Dimensions{}, malformed("%s must be a number", typeErr.Field)
		case errors.As(err, &syntaxErr):
			return domain.Dimensions{}, malformed("invalid JSON at offset %d", syntaxErr.Offset)
		case errors.As(err, &maxErr):
			return domain.Dimensions{}, malformed("body exceeds %d bytes", maxErr.Limit)
		default:
			return domain.Dimensions{}, malformed("%v", err)
		}
	}
	// só espaço em branco pode vir depois do objeto
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.Dimensions{}, malformed("unexpected data after JSON object")
	}

	switch {
	case in.Width == nil && in.Height == nil:
		return domain.Dimensions{}, malformed("width and height are required")
	case in.Width == nil:
		return domain.Dimensions{}, malformed("width is required")
	case in.Height == nil:
		return domain.Dimensions{}, malformed("height is required")
	}
	return domain.Dimensions{Width: *in.Width, Height: *in.Height}, nil
}
