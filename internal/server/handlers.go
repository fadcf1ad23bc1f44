package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps request bodies. Cover letters are the largest field.
const maxBodyBytes = 1 << 20

// validatable is implemented by the request types.
type validatable interface {
	Validate() error
}

// decodeBody decodes and validates a JSON body. An empty body is decoded
// as the zero value so optional bodies can be left out.
func decodeBody(r *http.Request, dst validatable) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := dst.Validate(); err != nil {
		return errors.New(validationMessage(err))
	}
	return nil
}

// validationMessage reports the first failed field.
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return fmt.Sprintf("validation error: %s - %s", ve[0].Field(), ve[0].Tag())
	}
	return "validation error: invalid request"
}

// queryInt reads a positive integer query parameter, falling back to def
// when it is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}
