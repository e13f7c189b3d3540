package translog

import "errors"

// ErrMalformedEntry is returned when a line in the log file does not have
// the expected tab-separated field count. A broken hash chain is not an
// error in this sense: Verify reports it via its ok/brokenAt return values
// instead, since replaying a tampered log is an expected, successful
// operation that simply finds the tamper.
var ErrMalformedEntry = errors.New("translog: malformed entry line")
