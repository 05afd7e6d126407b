package server

import (
	"errors"

	"github.com/creachadair/jrpc2"
	"github.com/powersched/powersched/common"
	"github.com/powersched/powersched/internal/task"
)

// rpcError maps a command boundary error onto a JSON-RPC error so clients
// can recover the category from the code.
func rpcError(err error) error {
	if err == nil {
		return nil
	}
	var code int
	switch {
	case errors.Is(err, task.ErrInvalidTime):
		code = common.CodeInvalidTime
	case errors.Is(err, task.ErrInvalidInput):
		code = common.CodeInvalidInput
	case errors.Is(err, task.ErrNotFound):
		code = common.CodeNotFound
	case errors.Is(err, task.ErrInvalidState):
		code = common.CodeInvalidState
	case errors.Is(err, task.ErrPersistence):
		code = common.CodePersistence
	default:
		return &jrpc2.Error{Code: jrpc2.InternalError, Message: err.Error()}
	}
	return &jrpc2.Error{Code: jrpc2.Code(code), Message: err.Error()}
}
