package agent

import (
	"errors"

	"github.com/ashutoshrp06/propcalc/internal/history"
	"github.com/ashutoshrp06/propcalc/internal/tools"
	"github.com/ashutoshrp06/propcalc/internal/validator"
)

var (
	// ErrEmptyMessage is returned when a message has neither text nor attachments.
	ErrEmptyMessage = validator.ErrEmptyMessage

	// ErrBusy is returned while a reply is being revealed or a form is computing.
	ErrBusy = errors.New("still working on the previous request")

	// ErrNoActiveForm is returned when a form operation targets a form that
	// is not the active one.
	ErrNoActiveForm = errors.New("no active form")

	ErrMessageNotFound  = history.ErrMessageNotFound
	ErrAlreadySubmitted = errors.New("form already submitted")
	ErrToolMismatch     = errors.New("message shows a different tool")
	ErrUnknownField     = errors.New("unknown field")
	ErrUnknownTool      = tools.ErrUnknownTool
)
