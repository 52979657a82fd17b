package window

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Error classes. Every error returned by this package matches exactly one of
// these through errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrShape         = errors.New("shape error")
	ErrDecode        = errors.New("decode error")
)

// ConfigError reports a static misconfiguration: bad window parameters, a
// round count that does not divide the detector count, or failed inference.
type ConfigError struct {
	Field  string
	Value  int
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("window: invalid %s=%d: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

// ShapeError reports input data whose dimensions disagree with the declared
// detector or observable counts.
type ShapeError struct {
	What string
	Got  int
	Want int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("window: %s: got %d, want %d", e.What, e.Got, e.Want)
}

func (e *ShapeError) Is(target error) bool { return target == ErrShape }

// DecodeError reports a matcher failure or malformed matcher output. Shot and
// Window are -1 when the failure is not attributable to one of them. When a
// single matcher call covered several shots, Shot is the first of them and
// Shots their count.
type DecodeError struct {
	Shot   int
	Shots  int
	Window int
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Shots > 1 {
		return fmt.Sprintf("window: decode shots [%d,%d) all windows: %v", e.Shot, e.Shot+e.Shots, e.Err)
	}
	return fmt.Sprintf("window: decode shot %d window %d: %v", e.Shot, e.Window, e.Err)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func (e *DecodeError) Unwrap() error { return e.Err }

// Code is a coarse error class used for log fields and metric labels.
type Code string

const (
	CodeUnknown Code = "unknown"
	CodeConfig  Code = "config"
	CodeShape   Code = "shape"
	CodeDecode  Code = "decode"
	CodeIO      Code = "io"
	CodeCancel  Code = "cancel"
)

// Classify maps err onto a Code.
func Classify(err error) Code {
	switch {
	case err == nil:
		return CodeUnknown
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCancel
	case errors.Is(err, ErrConfiguration):
		return CodeConfig
	case errors.Is(err, ErrShape):
		return CodeShape
	case errors.Is(err, ErrDecode):
		return CodeDecode
	}
	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}
