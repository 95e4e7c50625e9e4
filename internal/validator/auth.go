package validator

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 6

// Register checks the registration input shape. A nil map means valid.
func Register(email, username, password string) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(email) == "" {
		errs["email"] = "email must not be empty"
	} else if !emailRe.MatchString(email) {
		errs["email"] = "invalid email address"
	}
	if strings.TrimSpace(username) == "" {
		errs["username"] = "username must not be empty"
	}
	if password == "" {
		errs["password"] = "password must not be empty"
	} else if len(password) < minPasswordLength {
		errs["password"] = "password must be at least 6 characters"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Login checks the login input shape. Identity is an email or a username.
func Login(identity, password string) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(identity) == "" {
		errs["identity"] = "email or username must not be empty"
	}
	if password == "" {
		errs["password"] = "password must not be empty"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ForgotPassword(email string) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(email) == "" {
		errs["email"] = "email must not be empty"
	} else if !emailRe.MatchString(email) {
		errs["email"] = "invalid email address"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ResetPassword(password string) map[string]string {
	errs := map[string]string{}

	if password == "" {
		errs["password"] = "password must not be empty"
	} else if len(password) < minPasswordLength {
		errs["password"] = "password must be at least 6 characters"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
