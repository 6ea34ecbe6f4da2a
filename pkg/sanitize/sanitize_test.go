package sanitize

import (
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "Assalamualaikum", "Assalamualaikum"},
		{"trims", "  hello \n", "hello"},
		{"strips tags", "<b>bold</b>", "bold"},
		{"drops script", "<script>alert(1)</script>hi", "hi"},
		{"null bytes", "a\x00b", "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestTextTruncatesOnRuneBoundary(t *testing.T) {
	in := strings.Repeat("é", MaxTextLength)
	out := Text(in)
	assert.LessOrEqual(t, len(out), MaxTextLength)
	assert.True(t, strings.HasPrefix(in, out))
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("081234567890"))
	assert.True(t, ValidPhone("+62 812-3456-7890"))
	assert.False(t, ValidPhone("12345"))
	assert.False(t, ValidPhone("0812abc45678"))
	assert.False(t, ValidPhone("1234567890123456"))
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type payload struct {
		Phone string `binding:"omitempty,phone"`
	}
	v := binding.Validator.Engine().(*validator.Validate)
	assert.NoError(t, v.Struct(payload{Phone: "0812-3456-7890"}))
	assert.NoError(t, v.Struct(payload{}))
	assert.Error(t, v.Struct(payload{Phone: "abc"}))
}
