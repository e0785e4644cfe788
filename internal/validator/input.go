package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

// spaceRegexp is compiled once at package init and reused across all Sanitize calls.
var spaceRegexp = regexp.MustCompile(`\s+`)

// ErrEmptyMessage is returned for a message with no text and no attachments.
var ErrEmptyMessage = errors.New("message is empty")

// MessageValidator checks chat input before it reaches the conversation.
type MessageValidator struct {
	maxLength      int
	maxAttachments int
}

func NewMessageValidator() *MessageValidator {
	return &MessageValidator{
		maxLength:      2000,
		maxAttachments: 10,
	}
}

// Validate accepts a message when it has text or at least one attachment.
func (v *MessageValidator) Validate(text string, attachments []types.Attachment) error {
	if strings.TrimSpace(text) == "" && len(attachments) == 0 {
		return ErrEmptyMessage
	}

	if utf8.RuneCountInString(text) > v.maxLength {
		return fmt.Errorf("message too long: maximum %d characters", v.maxLength)
	}

	if !utf8.ValidString(text) {
		return errors.New("invalid UTF-8 encoding")
	}

	if len(attachments) > v.maxAttachments {
		return fmt.Errorf("too many attachments: maximum %d", v.maxAttachments)
	}

	for i, a := range attachments {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("attachment %d has no name", i)
		}
	}

	return nil
}

func (v *MessageValidator) Sanitize(text string) string {
	text = strings.TrimSpace(text)
	text = spaceRegexp.ReplaceAllString(text, " ")
	return text
}
