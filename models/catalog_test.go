package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMedicineRefreshActive(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	m := &Medicine{IsActive: true, ExpiryDate: now.AddDate(0, 1, 0)}
	m.RefreshActive(now, true)
	assert.True(t, m.IsActive)

	m.RefreshActive(now, false)
	assert.False(t, m.IsActive)

	m = &Medicine{IsActive: true, ExpiryDate: now}
	m.RefreshActive(now, true)
	assert.False(t, m.IsActive)

	m = &Medicine{IsActive: false, ExpiryDate: now.AddDate(1, 0, 0)}
	m.RefreshActive(now, true)
	assert.False(t, m.IsActive)
}

func TestMedicineValidate(t *testing.T) {
	m := &Medicine{DrugName: "Amoxicillin", Unit: UnitCapsule, ExpiryDate: time.Now().AddDate(1, 0, 0)}
	assert.NoError(t, m.Validate())

	m.Unit = "spoon"
	assert.Error(t, m.Validate())

	m.Unit = UnitCapsule
	m.StockQuantity = -1
	assert.Error(t, m.Validate())
}
