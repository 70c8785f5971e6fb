package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	auth "github.com/groceria/groceria-auth"
)

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		region string
		want   string
	}{
		{name: "local nigerian", raw: "0803 123 4567", region: "NG", want: "+2348031234567"},
		{name: "already e164", raw: "+2348031234567", region: "NG", want: "+2348031234567"},
		{name: "default region", raw: "08031234567", region: "", want: "+2348031234567"},
		{name: "lowercase region", raw: "08031234567", region: "ng", want: "+2348031234567"},
		{name: "other region", raw: "(415) 555-2671", region: "US", want: "+14155552671"},
		{name: "invalid kept", raw: "555", region: "NG", want: "555"},
		{name: "garbage kept", raw: " not a phone ", region: "NG", want: "not a phone"},
		{name: "empty", raw: "", region: "NG", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.NormalizePhoneNumber(tt.raw, tt.region))
		})
	}
}
