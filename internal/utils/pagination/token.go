package pagination

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// EncodeMultiFieldToken creates a token with any number of string fields
// This provides flexibility for different pagination strategies
func EncodeMultiFieldToken(fields ...string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = url.QueryEscape(f)
	}
	tokenStr := strings.Join(escaped, "|")
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeMultiFieldToken decodes a token into its component fields
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}

	tokenStr := string(decodedBytes)
	parts := strings.Split(tokenStr, "|")
	for i, p := range parts {
		field, err := url.QueryUnescape(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pagination token format (field): %w", err)
		}
		parts[i] = field
	}
	return parts, nil
}

// EncodeOffsetToken binds an offset to the query it pages through, given as
// scope fields such as tenant, account and date bounds.
func EncodeOffsetToken(offset int, scope ...string) string {
	return EncodeMultiFieldToken(append(append([]string{}, scope...), strconv.Itoa(offset))...)
}

// DecodeOffsetToken returns the offset in token, rejecting tokens issued for
// another scope. An empty token is offset 0.
func DecodeOffsetToken(token string, scope ...string) (int, error) {
	if token == "" {
		return 0, nil
	}
	parts, err := DecodeMultiFieldToken(token)
	if err != nil {
		return 0, err
	}
	if len(parts) != len(scope)+1 {
		return 0, fmt.Errorf("invalid pagination token format (split)")
	}
	for i, field := range scope {
		if parts[i] != field {
			return 0, fmt.Errorf("pagination token was issued for a different query")
		}
	}
	offset, err := strconv.Atoi(parts[len(scope)])
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("invalid pagination token format (offset)")
	}
	return offset, nil
}
