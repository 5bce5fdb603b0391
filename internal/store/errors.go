package store

import "errors"

// ErrNoSession is returned by Update when the session does not exist
// and no create function was supplied.
var ErrNoSession = errors.New("session not found")
