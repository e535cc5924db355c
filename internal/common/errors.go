package common

import "fmt"

// Kind is the stable error taxonomy tag from spec.md §7. The HTTP layer
// and logs key off this string, never off Go's dynamic error type.
type Kind string

const (
	KindArchiveUnavailable  Kind = "ArchiveUnavailable"
	KindProviderUnavailable Kind = "ProviderUnavailable"
	KindProviderSchema      Kind = "ProviderSchema"
	KindCdxParse            Kind = "CdxParse"
	KindPageFetch           Kind = "PageFetch"
	KindUpsert              Kind = "Upsert"
	KindMigrationStatement  Kind = "MigrationStatement"
	KindInvalidProvider     Kind = "InvalidProvider"
	KindInternal            Kind = "Internal"
)

// TaggedError carries one of the Kind values above plus a human message
// and, where relevant, the wrapped cause.
type TaggedError struct {
	kind    Kind
	Message string
	Cause   error
}

// Kind reports the stable taxonomy tag, so the HTTP layer and logs can key
// off a string instead of Go's dynamic error type.
func (e *TaggedError) Kind() string { return string(e.kind) }

func (e *TaggedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.Message)
}

func (e *TaggedError) Unwrap() error { return e.Cause }

func NewError(kind Kind, msg string, cause error) *TaggedError {
	return &TaggedError{kind: kind, Message: msg, Cause: cause}
}

func ErrArchiveUnavailable(msg string, cause error) error {
	return NewError(KindArchiveUnavailable, msg, cause)
}

func ErrProviderUnavailable(provider, token string, status int) error {
	return NewError(KindProviderUnavailable, fmt.Sprintf("provider=%s token=%s status=%d", provider, token, status), nil)
}

func ErrProviderSchema(provider, token, detail string) error {
	return NewError(KindProviderSchema, fmt.Sprintf("provider=%s token=%s detail=%s", provider, token, detail), nil)
}

func ErrCdxParse(line, detail string) error {
	return NewError(KindCdxParse, fmt.Sprintf("line=%q detail=%s", line, detail), nil)
}

func ErrPageFetch(page int, cause error) error {
	return NewError(KindPageFetch, fmt.Sprintf("page=%d", page), cause)
}

func ErrUpsert(table string, cause error) error {
	return NewError(KindUpsert, fmt.Sprintf("table=%s", table), cause)
}

func ErrInvalidProvider(input string) error {
	return NewError(KindInvalidProvider, fmt.Sprintf("input=%q", input), nil)
}

func ErrInternal(msg string, cause error) error {
	return NewError(KindInternal, msg, cause)
}
