package security

import (
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// PasswordValidationError represents a single password policy violation.
type PasswordValidationError struct {
	Code    string
	Message string
}

// Error implements error for PasswordValidationError.
func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordRule validates a password according to a specific policy rule.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a function to be used as a PasswordRule.
type PasswordRuleFunc func(password string) error

// Validate executes the underlying rule function.
func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// PasswordValidator applies a sequence of password rules.
type PasswordValidator struct {
	rules []PasswordRule
}

// NewPasswordValidator constructs a validator with the provided rules.
func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &PasswordValidator{rules: copied}
}

// PasswordPolicy builds the registration validator from configured
// thresholds. A zero threshold disables its rule, so an unconfigured policy
// accepts any non-empty password.
func PasswordPolicy(minLength, minScore int) *PasswordValidator {
	var rules []PasswordRule
	if minLength > 0 {
		rules = append(rules, MinLengthRule(minLength))
	}
	if minScore > 0 {
		rules = append(rules, RequirePasswordStrengthRule(minScore))
	}
	return NewPasswordValidator(rules...)
}

// Validate executes all rules and returns the first encountered violation.
func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return fmt.Errorf("password validator not configured")
	}
	for _, rule := range v.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

// MinLengthRule ensures the password has at least min characters.
func MinLengthRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if len([]rune(password)) < min {
			return &PasswordValidationError{
				Code:    "min_length",
				Message: fmt.Sprintf("password must be at least %d characters long", min),
			}
		}
		return nil
	})
}

// RequirePasswordStrengthRule enforces a minimum zxcvbn score to reject weak passwords.
func RequirePasswordStrengthRule(minScore int, userInputs ...string) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if minScore <= 0 {
			return nil
		}
		if minScore > 4 {
			minScore = 4
		}

		result := zxcvbn.PasswordStrength(password, userInputs)
		if result.Score >= minScore {
			return nil
		}

		return &PasswordValidationError{
			Code:    "weak_password",
			Message: "password is too weak; choose a more complex value",
		}
	})
}
