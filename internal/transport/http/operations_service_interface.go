package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	apierrors "offgascli/internal/errors"
	"offgascli/internal/operations"
)

// RunSource is the read side of the operations manager
type RunSource interface {
	Last() *operations.OperationState
	GetOperation(id string) (*operations.OperationState, error)
	ListOperations() []*operations.OperationResponse
}

// completedRun returns the data of the last run. Until a run has completed it
// returns RUN_NOT_READY, or the mapped cause when the run failed on bad input.
func completedRun(src RunSource) (*operations.OperationState, *operations.RunData, *apierrors.APIError) {
	state := src.Last()
	if state == nil {
		return nil, nil, apierrors.ErrRunNotReady
	}
	if state.GetStatus() == operations.OperationStatusFailed {
		var appErr *apierrors.AppError
		if errors.As(state.Error, &appErr) {
			return nil, nil, apierrors.FromAppError(appErr)
		}
	}
	if state.GetStatus() != operations.OperationStatusCompleted || state.Data == nil {
		return nil, nil, apierrors.ErrRunNotReady
	}
	return state, state.Data, nil
}

// renderError writes err in the standard error envelope
func renderError(w http.ResponseWriter, r *http.Request, err *apierrors.APIError) {
	_ = render.Render(w, r, apierrors.NewErrorResponse(err))
}
