package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFleet(t *testing.T) {
	db, err := Open("", filepath.Join(t.TempDir(), "fleet.db"))
	require.NoError(t, err)

	require.NoError(t, db.Create(&Boat{Slug: "double", Label: "Double", Capacity: 2, Available: 3}).Error)
	require.NoError(t, db.Create(&Boat{Slug: "sonar", Label: "Sonar", Capacity: 5, MinSkippers: 1, IsStable: true, Available: 1}).Error)

	defs, inv, err := LoadFleet(db)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "double", defs[0].ID)
	assert.Equal(t, 1, defs[1].MinSkippers)
	assert.True(t, defs[1].IsStable)
	assert.Equal(t, 3, inv["double"])
	assert.Equal(t, 1, inv["sonar"])
}
