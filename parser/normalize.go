package parser

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/bakape/forum/common"
)

// Delimiters of smiley placeholders. Reserved and removed from user input.
const (
	placeholderOpen  = '\uE000'
	placeholderClose = '\uE001'
)

var reservedRunes = strings.NewReplacer(
	string(placeholderOpen), "",
	string(placeholderClose), "",
)

// Normalize trims and validates a raw message body and applies the legacy
// literal substitutions
func Normalize(body string) (string, error) {
	if !utf8.ValidString(body) {
		return "", common.ErrInvalidField("body", errors.New("invalid UTF-8"))
	}
	body = strings.TrimSpace(reservedRunes.Replace(body))
	if body == "" {
		return "", common.ErrEmptyBody
	}
	if len(body) > common.MaxLenBody {
		return "", common.ErrBodyTooLong
	}
	return strings.ReplaceAll(body, "*heartsmiley*", "<3"), nil
}
