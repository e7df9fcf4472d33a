package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusCancellable(t *testing.T) {
	cases := map[OrderStatus]bool{
		OrderStatusPending:    true,
		OrderStatusProcessing: true,
		OrderStatusShipped:    false,
		OrderStatusDelivered:  false,
		OrderStatusCancelled:  false,
	}
	for status, want := range cases {
		assert.Equal(t, want, status.IsCancellable(), status.String())
	}
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusShipped.IsTerminal())
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, status)

	_, err = ParseOrderStatus("lost")
	require.Error(t, err)
}

func TestParseLanguageNormalizes(t *testing.T) {
	lang, err := ParseLanguage(" AR ")
	require.NoError(t, err)
	assert.Equal(t, LanguageArabic, lang)

	_, err = ParseLanguage("fr")
	require.Error(t, err)
}

func TestRoleFor(t *testing.T) {
	assert.Equal(t, UserRoleAdmin, RoleFor(true))
	assert.Equal(t, UserRoleUser, RoleFor(false))
	assert.True(t, UserRoleAdmin.IsValid())
	assert.False(t, UserRole("owner").IsValid())
}

func TestPlantConditionsReturnsCopy(t *testing.T) {
	conditions := PlantConditions()
	require.Len(t, conditions, 5)
	conditions[0] = "mutated"
	assert.Equal(t, PlantConditionHealthy, PlantConditions()[0])
}
