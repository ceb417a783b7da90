package errors

import (
	stderrors "errors"
	"fmt"
)

// Common error constructors used throughout the linter

// ConfigurationError creates a configuration error
func ConfigurationError(configType, message string) *BaseError {
	fullMessage := fmt.Sprintf("configuration error in '%s': %s", configType, message)
	return New(ConfigurationErrorCode, fullMessage).
		WithContext("config_type", configType)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configType)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_type", configType).
		WithContext("operation", operation)
}

// FileSystemError wraps a failed file operation
func FileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithLocation(SourceLocation{File: path}).
		WithContext("operation", operation)
}

// WrapParseError wraps a failure to parse a source file
func WrapParseError(path string, cause error) *BaseError {
	return Wrap(SyntaxErrorCode, "failed to parse source", cause).
		WithLocation(SourceLocation{File: path})
}

// WrapInspectionError wraps a failure raised while a cop inspected a file
func WrapInspectionError(path, copName string, cause error) *BaseError {
	message := fmt.Sprintf("an error occurred while %s inspected the file", copName)
	return Wrap(InspectionErrorCode, message, cause).
		WithLocation(SourceLocation{File: path}).
		WithContext("cop", copName)
}

// CorrectionError creates an autocorrection error
func CorrectionError(path, message string) *BaseError {
	return New(CorrectionErrorCode, message).
		WithLocation(SourceLocation{File: path})
}

// CodeOf returns the ErrorCode of the first LintError in err's chain
func CodeOf(err error) ErrorCode {
	var lintErr LintError
	if stderrors.As(err, &lintErr) {
		return lintErr.ErrorCode()
	}
	return UnknownErrorCode
}

// IsConfigurationError reports whether err carries a configuration error
func IsConfigurationError(err error) bool {
	return CodeOf(err) == ConfigurationErrorCode
}

// AddToMultiple adds an error to a MultipleErrors, creating it if nil
func AddToMultiple(multiple **MultipleErrors, err LintError) {
	if *multiple == nil {
		*multiple = NewMultipleErrors()
	}
	(*multiple).Add(err)
}
