package normalize

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type brokenStringer struct{}

func (*brokenStringer) String() string { panic("boom") }

func TestString(t *testing.T) {
	var nilPtr *int
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"bool", true, "true"},
		{"int", 12, "12"},
		{"float", 1.5, "1.5"},
		{"whole float", float64(75), "75"},
		{"json number", json.Number("3.25"), "3.25"},
		{"nil pointer", nilPtr, ""},
		{"slice", []any{1, "a"}, `[1,"a"]`},
		{"map", map[string]any{"k": "v"}, `{"k":"v"}`},
		{"panicking stringer", &brokenStringer{}, ""},
		{"channel", make(chan int), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "channel" {
				assert.NotPanics(t, func() { String(tt.in) })
				return
			}
			assert.Equal(t, tt.want, String(tt.in))
		})
	}
}

func TestBool(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, false},
		{"true", true, true},
		{"false", false, false},
		{"string true", "TRUE", true},
		{"string yes", "yes", false},
		{"empty string", "", false},
		{"zero", 0, false},
		{"one", 1, true},
		{"nan", math.NaN(), false},
		{"object", map[string]any{}, true},
		{"json number", json.Number("0"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Bool(tt.in))
		})
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"float", 2.5, 2.5},
		{"int", 7, 7},
		{"bool", true, 1},
		{"numeric string", " 42.5 ", 42.5},
		{"empty string", "", 0},
		{"garbage", "abc", 0},
		{"hex", "0x10", 0},
		{"infinity string", "Infinity", 0},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
		{"slice", []int{1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Number(tt.in)
			assert.Equal(t, tt.want, got)
			assert.False(t, math.IsNaN(got))
		})
	}
}

func TestInt(t *testing.T) {
	assert.Equal(t, 2, Int("2.9"))
	assert.Equal(t, 0, Int("x"))
	assert.Equal(t, 0, Int(1e12))
}
