package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrYaRevertido        = errors.New("el movimiento ya fue revertido")
	ErrSaldoInsuficiente  = errors.New("saldo insuficiente para el movimiento")
	ErrSignoInconsistente = errors.New("el signo del delta no coincide con la dirección")
)
