// Package email holds address normalization shared by value objects.
package email

import "strings"

// Normalize lower-cases addr. When stripTags is set, a "+tag" extension of the
// local part is removed as well: "JohnDoe+test@Example.com" becomes
// "johndoe@example.com". Normalize is idempotent.
func Normalize(addr string, stripTags bool) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if !stripTags {
		return addr
	}
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 {
		return addr
	}
	local := addr[:at]
	plus := strings.IndexByte(local, '+')
	if plus < 0 || plus == len(local)-1 {
		return addr
	}
	return local[:plus] + addr[at:]
}
