package git

import (
	"fmt"
	"strconv"
	"strings"
)

// Token returns the identity of a hunk within one extraction pass.
func Token(path string, ordinal int) string {
	return path + ":" + strconv.Itoa(ordinal)
}

// ParseToken splits a path:ordinal token. Paths may contain ':' themselves, so
// the ordinal is whatever follows the last one.
func ParseToken(token string) (path string, ordinal int, err error) {
	token = strings.TrimSpace(token)
	idx := strings.LastIndexByte(token, ':')
	if idx <= 0 || idx == len(token)-1 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}
	ordinal, err = strconv.Atoi(token[idx+1:])
	if err != nil || ordinal < 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}
	return token[:idx], ordinal, nil
}
