package chat

import "errors"

// ErrorKind classifies why a send failed.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindEmptyInput
	KindBusy
	KindRemoteUnavailable
	KindCancelled
)

var (
	ErrEmptyInput        = errors.New("question is empty")
	ErrBusy              = errors.New("another request is in flight")
	ErrRemoteUnavailable = errors.New("remote model unavailable")
	ErrCancelled         = errors.New("request cancelled")
)

// ApologyMessage is shown to the user whenever a send fails remotely.
const ApologyMessage = "I apologize, but I encountered an error. Please try again."

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindEmptyInput:
		return "empty_input"
	case KindBusy:
		return "busy"
	case KindRemoteUnavailable:
		return "remote_unavailable"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Err returns the sentinel error for the kind, nil for KindNone.
func (k ErrorKind) Err() error {
	switch k {
	case KindEmptyInput:
		return ErrEmptyInput
	case KindBusy:
		return ErrBusy
	case KindRemoteUnavailable:
		return ErrRemoteUnavailable
	case KindCancelled:
		return ErrCancelled
	default:
		return nil
	}
}

// Outcome is the result of a send: either the raw reply text or a failure kind.
type Outcome struct {
	Text string
	Kind ErrorKind
}

func Success(text string) Outcome {
	return Outcome{Text: text}
}

func Failure(kind ErrorKind) Outcome {
	return Outcome{Kind: kind}
}

// OK reports whether the outcome carries a reply.
func (o Outcome) OK() bool {
	return o.Kind == KindNone
}

func (o Outcome) Err() error {
	return o.Kind.Err()
}

// UserMessage is the text to display for the outcome.
func (o Outcome) UserMessage() string {
	switch o.Kind {
	case KindNone:
		return o.Text
	case KindEmptyInput:
		return "Please enter a question."
	case KindBusy:
		return "Still working on your previous question."
	default:
		return ApologyMessage
	}
}
