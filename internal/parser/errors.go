package parser

import "govetachun/kvsql/internal/dberrors"

func newSyntaxError(pos int, format string, args ...any) error {
	return dberrors.Parsef("at position %d: "+format, append([]any{pos}, args...)...)
}
