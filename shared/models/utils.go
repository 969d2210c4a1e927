package models

// StringPtr returns a pointer to s. Handy for patch fields.
func StringPtr(s string) *string {
	return &s
}
