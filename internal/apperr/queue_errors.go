package apperr

var (
	// Validation: rejected before touching storage, never retried.
	ErrMissingField   = Validation("required field is missing")
	ErrSelfReference  = Validation("caller and partner must be different users")
	ErrNotMember      = Validation("caller is not a member of this chat")
	ErrEmptyMessage   = Validation("message cannot be empty")
	ErrMessageTooLong = Validation("message is too long")

	// NotFound: the caller is expected to re-poll.
	ErrNotQueued       = NotFound("user is not in the queue")
	ErrSessionNotFound = NotFound("chat session not found")

	// Conflict: the transaction was rolled back and the caller's state is untouched.
	ErrAlreadyQueued   = Conflict("user is already in the queue")
	ErrChatMismatch    = Conflict("chat id does not match the caller's active chat")
	ErrPartnerMismatch = Conflict("user is not the caller's partner in this chat")
	ErrPartnerMissing  = Conflict("partner queue entry disappeared")
	ErrEntryMissing    = Conflict("caller queue entry disappeared")
	ErrMalformedChat   = Conflict("chat session does not have two members")

	ErrBanned = Forbidden("user is banned")
)
