package usecases

import (
	"regexp"
	"time"
)

// Listing pages are fixed size
const DefaultPageSize = 12

// Session lifetime when the refresh expiry is not configured
const DefaultSessionTTL = 7 * 24 * time.Hour

const (
	MinUsernameLength = 3
	MaxUsernameLength = 150
)

// Letters, digits and @/./+/-/_ only
var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
