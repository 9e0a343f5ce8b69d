package status

import "github.com/viant/taskflow/model/types"

// CheckStartStatus fails when a new process may not be started for a business
// key whose latest instance carries status.
func CheckStartStatus(status Business) error {
	switch status {
	case Waiting:
		return types.NewInvalidStateError("the request has already been submitted and is under approval")
	case Finish:
		return types.NewInvalidStateError("the request has already been completed")
	case Invalid:
		return types.NewInvalidStateError("the request has been invalidated")
	case Termination:
		return types.NewInvalidStateError("the request has been terminated")
	case Unknown:
		return types.NewInvalidStateError("the request has no business status")
	}
	return nil
}

// CheckStatus fails when status does not allow mutating the process any
// further (terminate, reject, complete ...).
func CheckStatus(status Business) error {
	switch status {
	case Termination:
		return types.NewInvalidStateError("the request has been terminated")
	case Finish:
		return types.NewInvalidStateError("the request has already been completed")
	case Invalid:
		return types.NewInvalidStateError("the request has been invalidated")
	case Unknown:
		return types.NewInvalidStateError("the request has no business status")
	}
	return nil
}
