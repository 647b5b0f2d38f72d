package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksumAddress(t *testing.T) {
	// Reference vectors from the EIP-55 specification.
	tests := []struct {
		in   string
		want string
	}{
		{
			"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
			"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		},
		{
			"0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359",
			"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		},
		{
			"0xdbf03b407c01e7cd3cbea99509d93f8dddc8c6fb",
			"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ChecksumAddress(tt.in))
	}
}

func TestIsValidAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"lowercase", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"valid checksum", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", true},
		{"broken checksum", "0x5Aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed", false},
		{"too short", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beae", false},
		{"no prefix", "5aaeb6053f3e94c9b9a09f33669435e7ef1beaed00", false},
		{"non-hex", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beazz", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidAddress(tt.in))
		})
	}
}
