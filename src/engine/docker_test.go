package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetag(t *testing.T) {
	tests := []struct {
		ref  string
		tag  string
		want string
	}{
		{"app:latest", "v1.2.3", "app:v1.2.3"},
		{"app", "v1.2.3", "app:v1.2.3"},
		{"registry.example.com/team/app:latest", "stable", "registry.example.com/team/app:stable"},
		{"localhost:5000/app", "v1", "localhost:5000/app:v1"},
		{"localhost:5000/app:old", "new", "localhost:5000/app:new"},
	}
	for _, tt := range tests {
		t.Run(tt.ref+"+"+tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, Retag(tt.ref, tt.tag))
		})
	}
}
