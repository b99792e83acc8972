package httperr

import (
	"errors"
	"fmt"
)

// Códigos de negócio usados pelo funil.
const (
	CodeMissingEmail    = "missing_email"
	CodeInvalidEmail    = "invalid_email"
	CodeMissingIdentity = "missing_identity"
	CodeMissingSlot     = "missing_slot"
	CodeInvalidSlot     = "invalid_slot"
	CodeStepOutOfOrder  = "step_out_of_order"
	CodeSlotTaken       = "slot_taken"
	CodeInvalidState    = "invalid_state"
	CodeNotFound        = "not_found"
	CodeIntegrity       = "integrity_error"
)

type BusinessError struct {
	Code   string
	Detail string
}

func (e BusinessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Detail)
	}
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func ErrBusinessDetail(code, detail string) error {
	return BusinessError{Code: code, Detail: detail}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// CodeOf devolve o código de negócio, se houver.
func CodeOf(err error) (string, bool) {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code, true
	}
	return "", false
}

func IsConflict(err error) bool {
	return IsBusiness(err, CodeSlotTaken)
}

// IsInput cobre os erros de validação que o visitante pode corrigir e reenviar.
func IsInput(err error) bool {
	code, ok := CodeOf(err)
	if !ok {
		return false
	}
	switch code {
	case CodeMissingEmail, CodeInvalidEmail, CodeMissingIdentity,
		CodeMissingSlot, CodeInvalidSlot, CodeStepOutOfOrder:
		return true
	}
	return false
}
