package handler

import "regexp"

var emailRegexp = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

// validator accumulates field-level validation errors so a response
// can report every problem at once instead of the first one found.
type validator struct {
	errors map[string]string
}

func newValidator() *validator {
	return &validator{errors: make(map[string]string)}
}

// check records msg under key when cond does not hold. The first
// failure per field wins.
func (v *validator) check(cond bool, key, msg string) {
	if cond {
		return
	}
	if _, ok := v.errors[key]; !ok {
		v.errors[key] = msg
	}
}

func (v *validator) checkEmail(email string) {
	v.check(email != "", "email", "must be provided")
	v.check(emailRegexp.MatchString(email), "email", "must be a valid email address")
}

func (v *validator) checkPassword(password string) {
	v.check(password != "", "password", "must be provided")
	v.check(len(password) >= 6, "password", "must be at least 6 characters long")
	// bcrypt silently truncates beyond 72 bytes, so reject instead.
	v.check(len(password) <= 72, "password", "must be at most 72 characters long")
}

func (v *validator) ok() bool {
	return len(v.errors) == 0
}
