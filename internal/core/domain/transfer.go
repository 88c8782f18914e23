package domain

import "fmt"

type Action string

const (
	ActionUpload Action = "Upload"
	ActionDelete Action = "Delete"
)

func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionUpload, ActionDelete:
		return Action(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
}

// TransferRequest asks for one artifact to be copied in or removed.
type TransferRequest struct {
	JobIdentifier string
	Region        string
	Role          RoleReference
	Action        Action
}

func (r TransferRequest) Validate() error {
	if r.JobIdentifier == "" {
		return ErrMissingJobID
	}
	if r.Region == "" {
		return ErrMissingRegion
	}
	if r.Role.ARN == "" {
		return ErrInvalidRoleARN
	}
	if _, err := ParseAction(string(r.Action)); err != nil {
		return err
	}
	return nil
}

// TransferState is a terminal state of the transfer state machine.
type TransferState string

const (
	StateAlreadyPresent TransferState = "AlreadyPresent"
	StateComplete       TransferState = "Complete"
	StateAlreadyAbsent  TransferState = "AlreadyAbsent"
	StateDeleted        TransferState = "Deleted"
)

// Terminal messages returned to callers. Front ends match on these strings.
const (
	MessageAlreadyPresent = "Model already present."
	MessageUploaded       = "Model uploaded."
	MessageAlreadyAbsent  = "Model was not uploaded so nothing to delete."
	MessageDeleted        = "Model deleted."
)

var stateMessages = map[TransferState]string{
	StateAlreadyPresent: MessageAlreadyPresent,
	StateComplete:       MessageUploaded,
	StateAlreadyAbsent:  MessageAlreadyAbsent,
	StateDeleted:        MessageDeleted,
}

// TransferOutcome is the result of a completed transfer invocation.
type TransferOutcome struct {
	State          TransferState
	DestinationKey string
}

func (o TransferOutcome) Message() string {
	return stateMessages[o.State]
}

// Changed reports whether the invocation mutated the destination store.
func (o TransferOutcome) Changed() bool {
	return o.State == StateComplete || o.State == StateDeleted
}
