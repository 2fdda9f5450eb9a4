package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for every failure class the store reports. Callers match
// them with errors.Is; the structured types below wrap them with context.
var (
	ErrInvalidKey            = errors.New("invalid key")
	ErrStoreNotInitialized   = errors.New("store not initialized")
	ErrDirectoryCreateFailed = errors.New("directory create failed")
	ErrNotFound              = errors.New("not found")
	ErrReadFailed            = errors.New("read failed")
	ErrIO                    = errors.New("i/o error")
	ErrToolNotFound          = errors.New("tool not found")
	ErrToolFailed            = errors.New("tool failed")
	ErrDecodedContentInvalid = errors.New("decoded content invalid")
	ErrLengthTooSmall        = errors.New("length too small")
	ErrTraversalFailed       = errors.New("traversal failed")
	ErrMissingEnvironment    = errors.New("missing environment")
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
	Err        error
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  Try: " + e.Suggestion
	}

	return msg
}

func (e ConfigError) Unwrap() error {
	return e.Err
}

// CommandError represents a failed external command. It always unwraps to
// ErrToolFailed or ErrToolNotFound so callers can classify it.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
	NotFound bool
	Err      error
}

func (e CommandError) Error() string {
	if e.NotFound {
		if e.Err != nil {
			return fmt.Sprintf("command '%s' not found: %v", e.Command, e.Err)
		}
		return fmt.Sprintf("command '%s' not found", e.Command)
	}
	msg := fmt.Sprintf("command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Is lets errors.Is match a CommandError against the tool sentinels.
func (e CommandError) Is(target error) bool {
	if e.NotFound {
		return target == ErrToolNotFound
	}
	return target == ErrToolFailed
}

func (e CommandError) Unwrap() error {
	return e.Err
}

// OpError attaches the failing operation and key to an underlying error.
type OpError struct {
	Op  string
	Key string
	Err error
}

func (e *OpError) Error() string {
	if e.Key == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Op wraps err with operation context. A nil err stays nil.
func Op(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Key: key, Err: err}
}

// Wrap joins a sentinel with the underlying cause so both remain matchable.
func Wrap(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// WrapCommandNotFound wraps command not found errors with helpful suggestions
func WrapCommandNotFound(command string, err error) error {
	return CommandError{
		Command:  command,
		NotFound: true,
		Err:      err,
	}
}

// Friendly converts store errors into UserErrors carrying a suggestion for the
// command line. Errors it does not recognise are returned unchanged.
func Friendly(err error) error {
	if err == nil {
		return nil
	}

	var ue UserError
	if errors.As(err, &ue) {
		return err
	}
	var ce ConfigError
	if errors.As(err, &ce) {
		return err
	}

	suggestion := suggestionFor(err)
	if suggestion == "" {
		return err
	}

	return UserError{
		Message:    err.Error(),
		Suggestion: suggestion,
		Err:        err,
	}
}

func suggestionFor(err error) string {
	switch {
	case errors.Is(err, ErrStoreNotInitialized):
		return "Run 'passmng init' to create the password store"
	case errors.Is(err, ErrInvalidKey):
		return "Keys are '/'-separated names; segments may not be empty, '.' or '..'"
	case errors.Is(err, ErrNotFound):
		return "Check the key with 'passmng list'"
	case errors.Is(err, ErrMissingEnvironment):
		return "Set RECIPIENT to the gpg key id or email that should be able to decrypt the secret"
	case errors.Is(err, ErrToolNotFound):
		return "Install GnuPG (https://gnupg.org/) or set gpg_binary in the config file"
	case errors.Is(err, ErrToolFailed):
		return "Check that the recipient's key is in your keyring and gpg-agent is running"
	case errors.Is(err, ErrLengthTooSmall):
		return "Request a longer password"
	case errors.Is(err, ErrDecodedContentInvalid):
		return "The secret decrypted to binary data; it was not written by passmng"
	}

	if strings.Contains(strings.ToLower(err.Error()), "permission denied") {
		return "Check file permissions on the password store"
	}
	return ""
}
