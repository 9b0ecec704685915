package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocation(t *testing.T) {
	n, c := Location("Bole, Addis Ababa")
	assert.Equal(t, "BOLE", n)
	assert.Equal(t, "ADDIS ABABA", c)

	n, c = Location("  old airport ")
	assert.Equal(t, "OLD AIRPORT", n)
	assert.Equal(t, "ADDIS ABABA", c)

	n, c = Location("")
	assert.Empty(t, n)
	assert.Empty(t, c)
}

func TestKey(t *testing.T) {
	a := Key("Serenity Heights", "Bole, Addis Ababa")
	b := Key("serenity   heights!", "BOLE ,  addis ababa")
	assert.Equal(t, "serenity heights|bole|addis ababa", a)
	assert.Equal(t, a, b)

	assert.Equal(t, Key("Platinum Heights", "Kazanchis"), Key("Platinum Heights Apt 4B", "Kazanchis, Addis Ababa"))
	assert.NotEqual(t, a, Key("Serenity Heights", "CMC, Addis Ababa"))
	assert.Empty(t, Key("", ""))
}

func TestSearchText(t *testing.T) {
	assert.Equal(t, "garden villa", SearchText("  Garden \t VILLA "))
}
