package uuidutil

import (
	"encoding/base64"
	"github.com/google/uuid"
	"strings"
)

// the escaped alphabet keeps ids free of '-' and '_' so they can be grepped
// out of logfmt and json logs alike
var escaper = strings.NewReplacer("9", "99", "-", "90", "_", "91")

// ShortUUID renders a random UUID in 22-24 url safe characters.
// refer to https://stackoverflow.com/questions/37934162/output-uuid-in-go-as-a-short-string
func ShortUUID() string {
	return Shorten(uuid.New())
}

func Shorten(id uuid.UUID) string {
	return escaper.Replace(base64.RawURLEncoding.EncodeToString(id[:]))
}
