package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunMigrationsRejectsDirection(t *testing.T) {
	_, err := RunMigrations(nil, "../../migrations", "sideways")
	assert.Error(t, err)
}
