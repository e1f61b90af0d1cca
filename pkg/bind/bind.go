// Package bind decodes a JSON request body into a struct and runs the
// struct's validate tags over it.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/feria/config"
	"github.com/shashiranjanraj/feria/pkg/validate"
)

const defaultMaxBody = 4 << 20 // 4 MB

func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", ""), 10, 64)
	if err != nil || n <= 0 {
		return defaultMaxBody
	}
	return n
}

// JSON fills dest from r.Body and validates it. Three outcomes:
//
//   - (nil, nil): dest is populated and valid
//   - (errs, nil): dest decoded but failed validation, errs maps
//     field name to message
//   - (nil, err): the body was unreadable — malformed JSON or over the
//     MAX_BODY_BYTES cap
func JSON(r *http.Request, dest any) (map[string]string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", tooBig.Limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}
