package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsInteger(t *testing.T) {
	testData := []struct {
		Content string
		Expect  bool
	}{
		{Content: "0", Expect: true},
		{Content: "32767", Expect: true},
		{Content: "", Expect: false},
		{Content: "12a", Expect: false},
		{Content: "-1", Expect: false},
	}
	for _, data := range testData {
		assert.Equal(t, data.Expect, IsInteger(data.Content), data.Content)
	}
}

func TestIsIdentifier(t *testing.T) {
	testData := []struct {
		Content string
		Expect  bool
	}{
		{Content: "a", Expect: true},
		{Content: "_tmp1", Expect: true},
		{Content: "Main", Expect: true},
		{Content: "1abc", Expect: false},
		{Content: "", Expect: false},
		{Content: "a-b", Expect: false},
		{Content: "\"str\"", Expect: false},
	}
	for _, data := range testData {
		assert.Equal(t, data.Expect, IsIdentifier(data.Content), data.Content)
	}
}
