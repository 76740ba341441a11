package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in                       string
		street, city, state, zip string
	}{
		{"123 Main St, Springfield, IL 62701, USA", "123 Main St", "Springfield", "IL", "62701"},
		{"500 Congress Ave Suite 2, Austin, TX 78701-1234, United States", "500 Congress Ave Suite 2", "Austin", "TX", "78701-1234"},
		{"9 Elm Rd, Boulder, CO", "9 Elm Rd", "Boulder", "CO", ""},
		{"Springfield, IL 62701", "", "Springfield", "IL", "62701"},
		{"123 Main St, Springfield", "123 Main St", "Springfield", "", ""},
		{"123 Main St, Springfield, US", "123 Main St", "Springfield", "", ""},
		{"Somewhere", "Somewhere", "", "", ""},
		{"", "", "", "", ""},
		{" , , ", "", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			street, city, state, zip := parseAddress(tt.in)
			assert.Equal(t, tt.street, street, "street")
			assert.Equal(t, tt.city, city, "city")
			assert.Equal(t, tt.state, state, "state")
			assert.Equal(t, tt.zip, zip, "zip")
		})
	}
}

func TestParseStateZip(t *testing.T) {
	s, z := parseStateZip("CA 94103")
	assert.Equal(t, "CA", s)
	assert.Equal(t, "94103", z)

	s, z = parseStateZip("ca 94103")
	assert.Empty(t, s)
	assert.Empty(t, z)

	s, _ = parseStateZip("CA ABCDE")
	assert.Empty(t, s)

	s, _ = parseStateZip("New York NY")
	assert.Empty(t, s)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "the-daily-grind", slugify("  The Daily  Grind "))
	assert.Equal(t, "", slugify("   "))
}
