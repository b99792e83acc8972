package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Step    string `json:"step,omitempty"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

// WriteStep inclui o passo atual do funil para o cliente se reposicionar.
func WriteStep(c *gin.Context, status int, code, message, step string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
		Step:    step,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Conflict(c *gin.Context, code, message string) {
	Write(c, http.StatusConflict, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

var messages = map[string]string{
	CodeMissingEmail:    "El correo es obligatorio.",
	CodeInvalidEmail:    "El correo no es válido.",
	CodeMissingIdentity: "Error de sesión. Por favor inicie nuevamente.",
	CodeMissingSlot:     "Error en la selección de horario. Intente nuevamente.",
	CodeInvalidSlot:     "Error en la selección de horario. Intente nuevamente.",
	CodeStepOutOfOrder:  "Paso inválido para el estado actual.",
	CodeSlotTaken:       "Lo sentimos, este horario acaba de ser ocupado.",
	CodeInvalidState:    "Operación no permitida en el estado actual.",
	CodeNotFound:        "Registro no encontrado.",
	CodeIntegrity:       "Error en la operación. Verifique dependencias.",
}

// FromError traduz a taxonomia de erros de negócio em resposta HTTP.
// Erros desconhecidos viram 500 genérico, sem vazar detalhes.
func FromError(c *gin.Context, err error) {
	FromErrorStep(c, err, "")
}

func FromErrorStep(c *gin.Context, err error, step string) {
	code, ok := CodeOf(err)
	if !ok {
		if IsUniqueViolation(err) {
			code = CodeIntegrity
		} else {
			Internal(c, "internal_error", "Error en la operación.")
			return
		}
	}

	status := http.StatusBadRequest
	switch code {
	case CodeSlotTaken:
		status = http.StatusConflict
	case CodeNotFound:
		status = http.StatusNotFound
	case CodeIntegrity:
		status = http.StatusInternalServerError
	}
	WriteStep(c, status, code, messages[code], step)
}
