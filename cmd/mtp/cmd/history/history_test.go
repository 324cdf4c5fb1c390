package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "Hello\nworld", "Hello world"},
		{"empty", "", ""},
		{"long", "a b c d e f g h i j k l m n o p q r s t u v w x y z a b c d e f g h", "a b c d e f g h i j k l m n o p q r s t u v w x y z a b c..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, preview(tt.in))
		})
	}
}
