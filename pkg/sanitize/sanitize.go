package sanitize

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// MaxTextLength 自由文本最大长度（字节）
const MaxTextLength = 1000

var (
	htmlPolicy = bluemonday.StrictPolicy()
	phoneRegex = regexp.MustCompile(`^[0-9]{10,15}$`)
)

// Text 去除首尾空白、空字节与全部HTML标签，并截断到 MaxTextLength
func Text(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = htmlPolicy.Sanitize(input)
	input = strings.TrimSpace(input)
	if len(input) > MaxTextLength {
		input = truncate(input, MaxTextLength)
	}
	return input
}

// truncate 按字节截断但不拆开多字节字符
func truncate(s string, n int) string {
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// NormalizePhone 去掉常见分隔符
func NormalizePhone(phone string) string {
	phone = strings.ReplaceAll(phone, "-", "")
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "+", "")
	return phone
}

// ValidPhone 去掉分隔符后为10-15位数字
func ValidPhone(phone string) bool {
	return phoneRegex.MatchString(NormalizePhone(phone))
}

// RegisterValidators 为gin的校验器注册自定义tag，空值交给 omitempty/required 处理
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
}
