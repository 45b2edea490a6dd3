package id3

import (
	"fmt"

	"github.com/pkg/errors"
)

// NotATagError is returned when the data does not start with an ID3v2
// tag header.
type NotATagError struct {
	Magic [3]byte
}

func (err *NotATagError) Error() string {
	return fmt.Sprintf("Not an ID3v2 header: %q", err.Magic[:])
}

// IsNotATag reports whether err, or an error it wraps, is a
// *NotATagError.
func IsNotATag(err error) bool {
	var nt *NotATagError
	return errors.As(err, &nt)
}

// FormatError describes a structurally invalid tag header, such as
// an unsupported version or a malformed size field.
type FormatError struct {
	Msg string
}

func (err *FormatError) Error() string {
	return err.Msg
}

func formatErrorf(format string, args ...interface{}) *FormatError {
	return &FormatError{Msg: fmt.Sprintf(format, args...)}
}

// TruncatedFrameError describes a frame whose declared size runs past
// the end of the tag. The decoder logs it and treats the remainder of
// the tag as padding.
type TruncatedFrameError struct {
	ID        FrameType
	Size      int
	Remaining int
}

func (err *TruncatedFrameError) Error() string {
	return fmt.Sprintf("Frame %q declares %d bytes but only %d remain", err.ID, err.Size, err.Remaining)
}

// EncodingError is a field-local text encoding failure: the bytes
// could not be decoded, or the text cannot be represented in the
// requested encoding.
type EncodingError struct {
	Encoding Encoding
	Version  Version
	Err      error
}

func (err *EncodingError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("%s text in %s: %s", err.Encoding, err.Version, err.Err)
	}
	return fmt.Sprintf("%s text is not allowed in %s", err.Encoding, err.Version)
}

func (err *EncodingError) Unwrap() error { return err.Err }

// IOError records a failed file operation.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (err *IOError) Error() string {
	return err.Op + " " + err.Path + ": " + err.Err.Error()
}

func (err *IOError) Unwrap() error { return err.Err }

func ioErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}
