// Package forms объявляет формы страниц аккаунта и их схемы.
package forms

import "acmeshell/internal/shell/domain/form"

// Имена страниц с формами.
const (
	PageLogin        = "login"
	PageRegistration = "register"
	PageRecovery     = "forgot-password"
)

// Сообщения проверки полей.
const (
	MsgLoginEmail         = "Invalid email address."
	MsgLoginPassword      = "Password is required."
	MsgRegistrationName   = "Name must be at least 2 characters."
	MsgValidEmail         = "Please enter a valid email address."
	MsgPasswordTooShort   = "Password must be at least 8 characters long."
	MsgPasswordsDoNotMatch = "Passwords do not match."
)

// Login - данные формы входа.
type Login struct {
	Email      string `form:"email" json:"email"`
	Password   string `form:"password" json:"-"`
	RememberMe bool   `form:"rememberMe" json:"remember_me"`
}

// Registration - данные формы регистрации.
type Registration struct {
	Name            string `form:"name" json:"name"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"-"`
	ConfirmPassword string `form:"confirmPassword" json:"-"`
}

// Recovery - данные формы восстановления пароля.
type Recovery struct {
	Email string `form:"email" json:"email"`
}

// LoginSchema описывает форму входа.
var LoginSchema = form.MustSchema(PageLogin,
	form.Field[Login]{
		Name:        "email",
		Kind:        form.EmailField,
		Label:       "Email Address",
		InputID:     "email-login",
		Placeholder: "you@example.com",
		Value:       func(v Login) string { return v.Email },
		Constraints: []form.Constraint{form.Email(MsgLoginEmail)},
	},
	form.Field[Login]{
		Name:        "password",
		Kind:        form.PasswordField,
		Label:       "Password",
		InputID:     "password-login",
		Placeholder: "••••••••",
		Value:       func(v Login) string { return v.Password },
		Constraints: []form.Constraint{form.Required(MsgLoginPassword)},
	},
	form.Field[Login]{
		Name:    "rememberMe",
		Kind:    form.BooleanField,
		Label:   "Remember me",
		InputID: "rememberMe-login",
		Value:   form.BoolValue(func(v Login) bool { return v.RememberMe }),
	},
)

// RegistrationSchema описывает форму регистрации.
var RegistrationSchema = form.MustSchema(PageRegistration,
	form.Field[Registration]{
		Name:        "name",
		Kind:        form.TextField,
		Label:       "Full Name",
		InputID:     "name-register",
		Placeholder: "e.g., John Doe",
		Value:       func(v Registration) string { return v.Name },
		Constraints: []form.Constraint{form.MinLength(2, MsgRegistrationName)},
	},
	form.Field[Registration]{
		Name:        "email",
		Kind:        form.EmailField,
		Label:       "Email Address",
		InputID:     "email-register",
		Placeholder: "you@example.com",
		Value:       func(v Registration) string { return v.Email },
		Constraints: []form.Constraint{form.Email(MsgValidEmail)},
	},
	form.Field[Registration]{
		Name:        "password",
		Kind:        form.PasswordField,
		Label:       "Create Password",
		InputID:     "password-register",
		Placeholder: "Minimum 8 characters",
		Value:       func(v Registration) string { return v.Password },
		Constraints: []form.Constraint{form.MinLength(8, MsgPasswordTooShort)},
	},
	form.Field[Registration]{
		Name:        "confirmPassword",
		Kind:        form.PasswordField,
		Label:       "Confirm Password",
		InputID:     "confirmPassword-register",
		Placeholder: "Re-enter your password",
		Value:       func(v Registration) string { return v.ConfirmPassword },
		Constraints: []form.Constraint{form.EqualsField("password", MsgPasswordsDoNotMatch)},
	},
)

// RecoverySchema описывает форму восстановления пароля.
var RecoverySchema = form.MustSchema(PageRecovery,
	form.Field[Recovery]{
		Name:        "email",
		Kind:        form.EmailField,
		Label:       "Enter your Email Address",
		InputID:     "email-forgot",
		Placeholder: "you@example.com",
		Value:       func(v Recovery) string { return v.Email },
		Constraints: []form.Constraint{form.Email(MsgValidEmail)},
	},
)
