package usecase

import "errors"

// errIgnored marks an action the current phase drops without a reply.
var errIgnored = errors.New("action ignored in current phase")
