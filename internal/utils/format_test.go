package utils_test

import (
	"testing"

	"github.com/mtarasenko/reposcribe/internal/utils"
)

func TestFormatFileSize(testingHandle *testing.T) {
	testCases := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{name: "negative", bytes: -1, expected: "0b"},
		{name: "zero", bytes: 0, expected: "0b"},
		{name: "bytes", bytes: 512, expected: "512b"},
		{name: "one kilobyte", bytes: 1024, expected: "1kb"},
		{name: "fractional kilobyte", bytes: 1536, expected: "1.5kb"},
		{name: "tens of kilobytes", bytes: 10240, expected: "10kb"},
		{name: "one megabyte", bytes: 1024 * 1024, expected: "1mb"},
		{name: "gigabytes", bytes: 3 * 1024 * 1024 * 1024, expected: "3gb"},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(subtest *testing.T) {
			if got := utils.FormatFileSize(testCase.bytes); got != testCase.expected {
				subtest.Fatalf("FormatFileSize(%d) = %q, want %q", testCase.bytes, got, testCase.expected)
			}
		})
	}
}
