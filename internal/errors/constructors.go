package errors

// Convenience functions for common error patterns

func ConfigNotFound(path string) *ClassifiedError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(path string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration file invalid").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *ClassifiedError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// RevisionUnavailable marks version-control metadata as unreadable. It is
// recovered inside the revision package and only ever logged.
func RevisionUnavailable(backend string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryRevision, SeverityWarning, "revision metadata unavailable").
		WithContext("backend", backend)
}

func SidebarFailed(root string, cause error) *ClassifiedError {
	return Wrap(cause, CategorySidebar, SeverityWarning, "sidebar generation failed").
		WithContext("root", root)
}

func OutputFailed(path string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "writing output failed").
		WithContext("path", path)
}

func InternalError(message string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
