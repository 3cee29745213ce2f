package domain

import "github.com/robby/adminctl/internal/form"

// Minimum password length accepted by the registration and reset forms.
const MinPasswordLength = 8

// LoginFields is the sign-in form.
func LoginFields() []form.Field {
	return []form.Field{
		form.TextField{Key: "email", Title: "Email", Placeholder: "you@example.com", Validators: []form.Rule{
			form.Required("Email is required"),
			form.Email("Enter a valid email address"),
		}},
		form.TextField{Key: "password", Title: "Password", Secret: true, Validators: []form.Rule{
			form.Required("Password is required"),
		}},
	}
}

// RegisterFields is the sign-up form.
func RegisterFields() []form.Field {
	return []form.Field{
		form.TextField{Key: "first_name", Title: "First name", Group: "About you", Validators: []form.Rule{
			form.Required("First name is required"),
		}},
		form.TextField{Key: "last_name", Title: "Last name", Group: "About you", Validators: []form.Rule{
			form.Required("Last name is required"),
		}},
		form.TextField{Key: "email", Title: "Email", Group: "Account", Validators: []form.Rule{
			form.Required("Email is required"),
			form.Email("Enter a valid email address"),
		}},
		newPasswordField("Account"),
		confirmPasswordField("Account"),
	}
}

// RequestResetFields asks for the address a reset link is mailed to.
func RequestResetFields() []form.Field {
	return []form.Field{
		form.TextField{Key: "email", Title: "Email", Validators: []form.Rule{
			form.Required("Email is required"),
			form.Email("Enter a valid email address"),
		}},
	}
}

// ResetPasswordFields sets a new password with the token from a reset link.
// The token travels in the endpoint path, not in the body.
func ResetPasswordFields() []form.Field {
	return []form.Field{
		form.TextField{Key: "token", Title: "Reset token", Transient: true, Validators: []form.Rule{
			form.Required("Reset token is required"),
		}},
		newPasswordField(""),
		confirmPasswordField(""),
	}
}

func newPasswordField(group string) form.TextField {
	return form.TextField{Key: "password", Title: "Password", Group: group, Secret: true, Validators: []form.Rule{
		form.Required("Password is required"),
		form.MinLength(MinPasswordLength, "Password must be at least 8 characters"),
	}}
}

func confirmPasswordField(group string) form.TextField {
	return form.TextField{Key: "confirm_password", Title: "Confirm password", Group: group, Secret: true, Transient: true, Validators: []form.Rule{
		form.Matches("password", "passwords do not match"),
	}}
}
