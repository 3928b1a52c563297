package user

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/econspark/core"
)

var (
	unameMinLenTag = "unameminlen"
	pwdMinLenTag   = "pwdminlen"

	pwdMaxBytes     = 72 // bcrypt input limit
	pwdMaxBytesTag  = "pwdmaxbytes"
	pwdMaxBytesText = "password must not exceed 72 bytes"

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password is too similar to the username"
)

// InitValidators registers the identity validations, using the configured length minimums.
func InitValidators(validate *validator.Validate, translator ut.Translator, conf core.UserConfig) {
	validate.RegisterStructValidation(userStructValidation(conf), NewUser{})

	core.RegisterCustomTranslation(validate, translator, unameMinLenTag,
		fmt.Sprintf("username must contain at least %d characters", conf.UsernameMinLength))
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag,
		fmt.Sprintf("password must contain at least %d characters", conf.PasswordMinLength))
	core.RegisterCustomTranslation(validate, translator, pwdMaxBytesTag, pwdMaxBytesText)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

// userStructValidation does struct level validation on NewUser.
func userStructValidation(conf core.UserConfig) validator.StructLevelFunc {
	return func(sl validator.StructLevel) {
		nu, ok := sl.Current().Interface().(NewUser)
		if !ok {
			return
		}
		if nu.Username != "" && utf8.RuneCountInString(nu.Username) < conf.UsernameMinLength {
			sl.ReportError(nu.Username, "username", "Username", unameMinLenTag, "")
		}
		if nu.Password != "" {
			validatePassword(nu.Password, nu.Username, conf.PasswordMinLength, sl)
		}
	}
}

// validatePassword applies the password policy to provided password:
// - minLen (configured)
// - at most pwdMaxBytes bytes
// - no whitespace
// - not too similar to the username
func validatePassword(pwd, uname string, minLen int, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	if utf8.RuneCountInString(pwd) < minLen {
		reportErr(pwdMinLenTag)
		return
	}
	if len(pwd) > pwdMaxBytes {
		reportErr(pwdMaxBytesTag)
		return
	}
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
	}

	if uname != "" {
		ratio := difflib.NewMatcher(strings.Split(strings.ToLower(pwd), ""), strings.Split(uname, "")).QuickRatio()
		if ratio >= pwdMaxSim {
			reportErr(pwdAttrSimTag)
		}
	}
}
