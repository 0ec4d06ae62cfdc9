package contact_test

import (
	"testing"

	"placement/internal/contact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTelephone(t *testing.T) {
	cases := []struct {
		raw     string
		prefix  string
		number  string
		wantErr bool
	}{
		{raw: "39123456", prefix: "39", number: "123456"},
		{raw: "+39123456", prefix: "39", number: "123456"},
		{raw: "  441234  ", prefix: "44", number: "1234"},
		{raw: "391", prefix: "39", number: "1"},
		{raw: "39", wantErr: true},
		{raw: "+3", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "39 123456", wantErr: true},
		{raw: "39-123456", wantErr: true},
		{raw: "++39123456", wantErr: true},
	}
	for _, tc := range cases {
		prefix, number, err := contact.NormalizeTelephone(tc.raw)
		if tc.wantErr {
			assert.ErrorIs(t, err, contact.ErrValidation, "raw %q", tc.raw)
			continue
		}
		require.NoError(t, err, "raw %q", tc.raw)
		assert.Equal(t, tc.prefix, prefix, "raw %q", tc.raw)
		assert.Equal(t, tc.number, number, "raw %q", tc.raw)
	}
}
