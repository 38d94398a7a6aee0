package uuidutil

import (
	"github.com/google/uuid"
	"strings"
	"testing"
)

func TestShortUUID(t *testing.T) {
	expect := ShortUUID()

	actual := ShortUUID()

	if expect == actual {
		t.Errorf("actual %v, expect a different id", actual)
	}
}

func TestShortenEscapes(t *testing.T) {
	id := uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")

	actual := Shorten(id)

	if strings.ContainsAny(actual, "-_") {
		t.Errorf("actual %v, expect no '-' or '_'", actual)
	}
}
